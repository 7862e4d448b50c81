package compiler

import (
	"github.com/kristofer/clox/pkg/chunk"
	"github.com/kristofer/clox/pkg/lexer"
	"github.com/kristofer/clox/pkg/value"
)

const maxParams = 255

// declaration parses one top-level-or-block item: a `fun`/`var` binding
// form, or an ordinary statement. It resynchronizes on error so one bad
// statement doesn't abort the rest of the compile.
func (c *Compiler) declaration() {
	switch {
	case c.match(lexer.TokenFun):
		c.funDeclaration()
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.TokenPrint):
		c.printStatement()
	case c.match(lexer.TokenFor):
		c.forStatement()
	case c.match(lexer.TokenIf):
		c.ifStatement()
	case c.match(lexer.TokenReturn):
		c.returnStatement()
	case c.match(lexer.TokenWhile):
		c.whileStatement()
	case c.match(lexer.TokenBreak):
		c.breakStatement()
	case c.match(lexer.TokenContinue):
		c.continueStatement()
	case c.match(lexer.TokenSwitch):
		c.switchStatement()
	case c.match(lexer.TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
		c.declaration()
	}
	c.consume(lexer.TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(lexer.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	// A function may call itself: mark it initialised before compiling
	// the body so a recursive reference resolves as a local/global
	// rather than erroring as "read in its own initializer".
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles the parameter list and body of a `fun` into a fresh
// scope, then emits CLOSURE in the *enclosing* scope's chunk, followed
// by one (is_local, index) byte pair per upvalue the new function
// captured.
func (c *Compiler) function(fnType FunctionType) {
	name := c.previous.Lexeme
	c.pushScope(fnType, name)
	c.beginScope()

	c.consume(lexer.TokenLeftParen, "Expect '(' after function name.")
	if !c.check(lexer.TokenRightParen) {
		for {
			c.scope.function.Arity++
			if c.scope.function.Arity > maxParams {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConstant := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConstant)
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.consume(lexer.TokenRightParen, "Expect ')' after parameters.")
	c.consume(lexer.TokenLeftBrace, "Expect '{' before function body.")
	c.block()

	upvalues := c.scope.upvalues
	fn := c.popScope()

	idx := chunk.AddConstant(c.currentChunk(), value.FromObj(fn))
	c.emitOpByte(chunk.OpClosure, byte(idx))
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitBytes(isLocal, uv.index)
	}
}

func (c *Compiler) returnStatement() {
	if c.scope.fnType == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(lexer.TokenSemicolon) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(lexer.TokenSemicolon, "Expect ';' after return value.")
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) ifStatement() {
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(lexer.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)

	c.beginLoop(loopStart)
	c.statement()
	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
	c.endLoop()
}

// forStatement compiles the classic three-clause C-style loop down to
// the same bytecode shape a hand-written while+increment would produce:
// the increment clause, if present, is spliced in between the body and
// the jump back to the condition, and the loop's "continue" target is
// retargeted to the increment so `continue` still runs it.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(lexer.TokenSemicolon):
		// no initializer
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loop := c.beginLoop(len(c.currentChunk().Code))
	loopStart := loop.start

	exitJump := -1
	if !c.match(lexer.TokenSemicolon) {
		c.expression()
		c.consume(lexer.TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.match(lexer.TokenRightParen) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrementStart := len(c.currentChunk().Code)
		loop.start = incrementStart
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(lexer.TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	loop.start = loopStart
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}

	c.endLoop()
	c.endScope()
}

func (c *Compiler) breakStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(lexer.TokenSemicolon, "Expect ';' after 'break'.")
		return
	}
	c.consume(lexer.TokenSemicolon, "Expect ';' after 'break'.")
	c.discardLocalsAbove(loop.depth)
	jump := c.emitJump(chunk.OpJump)
	loop.breaks = append(loop.breaks, jump)
}

func (c *Compiler) continueStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(lexer.TokenSemicolon, "Expect ';' after 'continue'.")
		return
	}
	c.consume(lexer.TokenSemicolon, "Expect ';' after 'continue'.")
	c.discardLocalsAbove(loop.depth)
	c.emitLoop(loop.start)
}

// switchStatement implements the tri-valued COMPARE/JUMP_IF_NO_EQUAL
// dispatch described for the switch opcode: the subject expression
// stays on the stack under each case's comparison result until a case
// matches (or falls through to `default`), at which point it is popped
// exactly once, regardless of which branch ran.
func (c *Compiler) switchStatement() {
	c.consume(lexer.TokenLeftParen, "Expect '(' after 'switch'.")
	c.expression()
	c.consume(lexer.TokenRightParen, "Expect ')' after switch subject.")
	c.consume(lexer.TokenLeftBrace, "Expect '{' before switch body.")

	var endJumps []int
	for c.match(lexer.TokenCase) {
		c.expression()
		c.consume(lexer.TokenColon, "Expect ':' after case value.")
		c.emitOp(chunk.OpCompare)
		nextJump := c.emitJump(chunk.OpJumpIfNoEqual)
		c.emitOp(chunk.OpPop)

		for !c.check(lexer.TokenCase) && !c.check(lexer.TokenDefault) &&
			!c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
			c.statement()
		}
		endJumps = append(endJumps, c.emitJump(chunk.OpJump))
		c.patchJump(nextJump)
		c.emitOp(chunk.OpPop)
	}

	if c.match(lexer.TokenDefault) {
		c.consume(lexer.TokenColon, "Expect ':' after 'default'.")
		for !c.check(lexer.TokenRightBrace) && !c.check(lexer.TokenEOF) {
			c.statement()
		}
	}

	c.consume(lexer.TokenRightBrace, "Expect '}' after switch statement.")
	for _, j := range endJumps {
		c.patchJump(j)
	}
	c.emitOp(chunk.OpPop)
}
