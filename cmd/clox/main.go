// Command clox is the CLI front end: a REPL when invoked with no
// arguments, a script interpreter when given one path, and a usage
// error otherwise.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/kristofer/clox/pkg/natives"
	"github.com/kristofer/clox/pkg/value"
	"github.com/kristofer/clox/pkg/vm"
)

const (
	exitOK           = 0
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

// maxLineBytes bounds one REPL line at 1023 bytes plus the NUL a C
// fgets-style fixed char[1024] buffer would reserve.
const maxLineBytes = 1023

func main() {
	switch len(os.Args) {
	case 1:
		repl()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: clox [path]")
		os.Exit(exitUsage)
	}
}

func newVM() *vm.VM {
	machine := vm.New(value.NewInterner())
	natives.RegisterAll(machine)
	return machine
}

func repl() {
	machine := newVM()
	prompt := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	reader := bufio.NewReader(os.Stdin)
	for {
		if prompt {
			fmt.Print(">> ")
		}
		line, err := readLine(reader)
		if err != nil {
			fmt.Println()
			return
		}
		machine.Interpret(line)
	}
}

// readLine reads one line, capped at maxLineBytes the way the reference
// REPL's fixed char[1024] buffer (1023 usable bytes plus NUL) is: bytes
// past the cap are discarded along with the rest of that physical line.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimRight(line, "\n")
	line = strings.TrimRight(line, "\r")
	if len(line) > maxLineBytes {
		line = line[:maxLineBytes]
	}
	return line, nil
}

func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open file \"%s\".\n", path)
		os.Exit(exitIOError)
	}

	machine := newVM()
	switch machine.Interpret(string(source)) {
	case vm.ResultCompileError:
		os.Exit(exitCompileError)
	case vm.ResultRuntimeError:
		os.Exit(exitRuntimeError)
	default:
		os.Exit(exitOK)
	}
}
