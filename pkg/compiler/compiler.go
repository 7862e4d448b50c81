// Package compiler implements the single-pass Pratt compiler: it walks
// tokens exactly once, emitting bytecode directly into a Chunk with no
// intermediate syntax tree.
//
// The compiler is a straightforward recursive-descent/precedence-climbing
// parser. Each function scope being compiled (the top-level script, or a
// nested `fun`) gets its own scope, which owns the Function under
// construction, its locals, its upvalue descriptors, and its loop
// contexts; scopes chain to their enclosing scope so upvalue resolution
// can walk outward.
package compiler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kristofer/clox/pkg/chunk"
	"github.com/kristofer/clox/pkg/lexer"
	"github.com/kristofer/clox/pkg/value"
)

// FunctionType distinguishes the implicit top-level script from an
// ordinary named function. returnStatement uses it to reject `return`
// in the top-level script.
type FunctionType int

const (
	typeFunction FunctionType = iota
	typeScript
)

const maxLocals = 256
const maxUpvalues = 255
const maxArgs = 255

// local is one entry in a scope's local-variable list.
type local struct {
	name       string
	depth      int // -1 while declared but not yet initialised
	isCaptured bool
}

// upvalueDesc records where a function scope's Nth upvalue comes from:
// either slot `index` of the immediately enclosing function's locals
// (isLocal true), or upvalue `index` of that enclosing function itself.
type upvalueDesc struct {
	index   byte
	isLocal bool
}

// loopContext tracks the bytecode offset a `continue` jumps back to and
// the as-yet-unpatched `break` jump sites belonging to one loop.
type loopContext struct {
	start  int
	breaks []int
	depth  int // scope depth when the loop began; break/continue discard locals deeper than this
}

// scope is the compiler's per-function-being-compiled state.
type scope struct {
	enclosing  *scope
	function   *value.ObjFunction
	fnType     FunctionType
	locals     []local
	scopeDepth int
	upvalues   []upvalueDesc
	loops      []*loopContext
}

// Compiler holds all state for a single compile: the token stream, error
// flags, the shared interner, and the chain of function scopes currently
// being built (innermost last).
type Compiler struct {
	scanner   *lexer.Scanner
	interner  *value.Interner
	current   lexer.Token
	previous  lexer.Token
	hadError  bool
	panicMode bool
	scope     *scope
}

// Compile compiles source into a top-level script Function. The second
// return value reports success; on failure the returned Function holds
// partial bytecode and must be discarded, never run.
func Compile(source string, interner *value.Interner) (*value.ObjFunction, bool) {
	c := &Compiler{
		scanner:  lexer.New(source),
		interner: interner,
	}
	c.pushScope(typeScript, "")
	c.advance()
	for !c.match(lexer.TokenEOF) {
		c.declaration()
	}
	fn := c.popScope()
	return fn, !c.hadError
}

func (c *Compiler) pushScope(fnType FunctionType, name string) {
	fn := &value.ObjFunction{}
	if name != "" {
		fn.Name = c.interner.Intern(name)
	}
	s := &scope{enclosing: c.scope, function: fn, fnType: fnType}
	// Slot 0 is reserved for the callee itself (the closure being
	// invoked), named empty so user code can never refer to it.
	s.locals = append(s.locals, local{name: "", depth: 0})
	c.scope = s
}

// popScope finishes the current function scope (emitting the implicit
// trailing return) and restores the enclosing scope.
func (c *Compiler) popScope() *value.ObjFunction {
	c.emitReturn()
	fn := c.scope.function
	c.scope = c.scope.enclosing
	return fn
}

func (c *Compiler) currentChunk() *chunk.Chunk {
	return &c.scope.function.Chunk
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t lexer.TokenType) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t lexer.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t lexer.TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- error reporting ----------------------------------------------------

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAt(tok lexer.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	switch tok.Type {
	case lexer.TokenEOF:
		fmt.Fprintf(os.Stderr, "[line %d] Error at end: %s\n", tok.Line, message)
	case lexer.TokenError:
		fmt.Fprintf(os.Stderr, "[line %d] Error: %s\n", tok.Line, message)
	default:
		fmt.Fprintf(os.Stderr, "[line %d] Error at '%s': %s\n", tok.Line, tok.Lexeme, message)
	}
	c.hadError = true
}

// synchronize skips tokens until one that plausibly starts a new
// statement, so a single syntax error doesn't cascade into a wall of
// spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != lexer.TokenEOF {
		if c.previous.Type == lexer.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case lexer.TokenClass, lexer.TokenFun, lexer.TokenVar, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		c.advance()
	}
}

// --- emission helpers ----------------------------------------------------

func (c *Compiler) emitByte(b byte) {
	chunk.Write(c.currentChunk(), b, c.previous.Line)
}

func (c *Compiler) emitOp(op chunk.Opcode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitBytes(a, b byte) {
	c.emitByte(a)
	c.emitByte(b)
}

func (c *Compiler) emitOpByte(op chunk.Opcode, b byte) {
	c.emitBytes(byte(op), b)
}

func (c *Compiler) emitReturn() {
	c.emitOp(chunk.OpNil)
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) emitConstant(v value.Value) {
	if err := chunk.WriteConstant(c.currentChunk(), v, c.previous.Line); err != nil {
		c.error("Too many constants in one chunk.")
	}
}

// emitJump writes op followed by a two-byte placeholder and returns the
// offset of the placeholder's first byte, to be filled in by patchJump.
func (c *Compiler) emitJump(op chunk.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(site int) {
	code := c.currentChunk().Code
	jump := len(code) - site - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	code[site] = byte(jump >> 8)
	code[site+1] = byte(jump)
}

func (c *Compiler) emitLoop(start int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.currentChunk().Code) + 2 - start
	if offset > 0xffff {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

// --- scope discipline ----------------------------------------------------

func (c *Compiler) beginScope() {
	c.scope.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scope.scopeDepth--
	s := c.scope
	for len(s.locals) > 0 && s.locals[len(s.locals)-1].depth > s.scopeDepth {
		if s.locals[len(s.locals)-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		s.locals = s.locals[:len(s.locals)-1]
	}
}

func (c *Compiler) beginLoop(start int) *loopContext {
	ctx := &loopContext{start: start, depth: c.scope.scopeDepth}
	c.scope.loops = append(c.scope.loops, ctx)
	return ctx
}

func (c *Compiler) endLoop() {
	s := c.scope
	ctx := s.loops[len(s.loops)-1]
	s.loops = s.loops[:len(s.loops)-1]
	target := len(c.currentChunk().Code)
	for _, site := range ctx.breaks {
		code := c.currentChunk().Code
		jump := target - site - 2
		code[site] = byte(jump >> 8)
		code[site+1] = byte(jump)
	}
}

func (c *Compiler) currentLoop() *loopContext {
	s := c.scope
	if len(s.loops) == 0 {
		return nil
	}
	return s.loops[len(s.loops)-1]
}

// discardLocalsAbove emits the cleanup (POP or CLOSE_UPVALUE) for every
// local declared deeper than depth, without removing them from the
// scope's locals list. break/continue use this: they jump out of nested
// blocks without running those blocks' normal endScope.
func (c *Compiler) discardLocalsAbove(depth int) {
	s := c.scope
	for i := len(s.locals) - 1; i >= 0 && s.locals[i].depth > depth; i-- {
		if s.locals[i].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
	}
}

// --- variables -----------------------------------------------------------

func (c *Compiler) identifierConstant(name string) byte {
	idx := chunk.AddConstant(c.currentChunk(), value.FromObj(c.interner.Intern(name)))
	return byte(idx)
}

func (c *Compiler) addLocal(name string) {
	if len(c.scope.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.scope.locals = append(c.scope.locals, local{name: name, depth: -1})
}

func (c *Compiler) declareVariable(name string) {
	if c.scope.scopeDepth == 0 {
		return
	}
	for i := len(c.scope.locals) - 1; i >= 0; i-- {
		l := c.scope.locals[i]
		if l.depth != -1 && l.depth < c.scope.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// parseVariable consumes an identifier, declares it (if local), and
// returns the constant-pool index to use for DEFINE_GLOBAL if it turns
// out to be global (the return value is meaningless for locals).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(lexer.TokenIdentifier, errMsg)
	name := c.previous.Lexeme
	c.declareVariable(name)
	if c.scope.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) markInitialized() {
	if c.scope.scopeDepth == 0 {
		return
	}
	c.scope.locals[len(c.scope.locals)-1].depth = c.scope.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scope.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(chunk.OpDefineGlobal, global)
}

func resolveLocal(s *scope, name string) int {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveLocal(s *scope, name string) int {
	idx := resolveLocal(s, name)
	if idx != -1 && s.locals[idx].depth == -1 {
		c.error("Can't read local variable in its own initializer.")
	}
	return idx
}

func (c *Compiler) addUpvalue(s *scope, index byte, isLocal bool) int {
	for i, uv := range s.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(s.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	s.upvalues = append(s.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	s.function.UpvalueCount = len(s.upvalues)
	return len(s.upvalues) - 1
}

// resolveUpvalue recursively walks enclosing scopes looking for name as
// a local, threading an upvalue descriptor through every intermediate
// function scope along the way.
func (c *Compiler) resolveUpvalue(s *scope, name string) int {
	if s.enclosing == nil {
		return -1
	}
	if localIdx := resolveLocal(s.enclosing, name); localIdx != -1 {
		if s.enclosing.locals[localIdx].depth == -1 {
			c.error("Can't read local variable in its own initializer.")
		}
		s.enclosing.locals[localIdx].isCaptured = true
		return c.addUpvalue(s, byte(localIdx), true)
	}
	if upvalue := c.resolveUpvalue(s.enclosing, name); upvalue != -1 {
		return c.addUpvalue(s, byte(upvalue), false)
	}
	return -1
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Opcode
	arg := c.resolveLocal(c.scope, name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else if arg = c.resolveUpvalue(c.scope, name); arg != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}
	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

// --- expressions -----------------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Type).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := p <= PrecAssignment
	prefixRule(c, canAssign)

	for p <= getRule(c.current.Type).precedence {
		c.advance()
		infixRule := getRule(c.previous.Type).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(lexer.TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

func number(c *Compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func stringLiteral(c *Compiler, _ bool) {
	raw := c.previous.Lexeme
	contents := raw[1 : len(raw)-1]
	obj := c.interner.Intern(contents)
	c.emitConstant(value.FromObj(obj))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Type {
	case lexer.TokenFalse:
		c.emitOp(chunk.OpFalse)
	case lexer.TokenTrue:
		c.emitOp(chunk.OpTrue)
	case lexer.TokenNil:
		c.emitOp(chunk.OpNil)
	}
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case lexer.TokenBang:
		c.emitOp(chunk.OpNot)
	case lexer.TokenMinus:
		c.emitOp(chunk.OpNegate)
	}
}

func binary(c *Compiler, _ bool) {
	opType := c.previous.Type
	r := getRule(opType)
	c.parsePrecedence(r.precedence + 1)
	switch opType {
	case lexer.TokenPlus:
		c.emitOp(chunk.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(chunk.OpSubtract)
	case lexer.TokenStar:
		c.emitOp(chunk.OpMultiply)
	case lexer.TokenSlash:
		c.emitOp(chunk.OpDivide)
	case lexer.TokenEqualEqual:
		c.emitOp(chunk.OpEqual)
	case lexer.TokenBangEqual:
		c.emitOp(chunk.OpEqual)
		c.emitOp(chunk.OpNot)
	case lexer.TokenGreater:
		c.emitOp(chunk.OpGreater)
	case lexer.TokenGreaterEqual:
		c.emitOp(chunk.OpLess)
		c.emitOp(chunk.OpNot)
	case lexer.TokenLess:
		c.emitOp(chunk.OpLess)
	case lexer.TokenLessEqual:
		c.emitOp(chunk.OpGreater)
		c.emitOp(chunk.OpNot)
	}
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func ternary(c *Compiler, _ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecTernary)
	endJump := c.emitJump(chunk.OpJump)
	c.consume(lexer.TokenColon, "Expect ':' after then branch of ternary expression.")
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecTernary)
	c.patchJump(endJump)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitOpByte(chunk.OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	count := 0
	if !c.check(lexer.TokenRightParen) {
		for {
			c.expression()
			if count == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}
