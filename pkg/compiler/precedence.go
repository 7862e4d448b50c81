package compiler

import "github.com/kristofer/clox/pkg/lexer"

// Precedence orders the binding power of infix operators, lowest first.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecTernary
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is a prefix or infix handler: it consumes from c.previous onward
// and may itself call parsePrecedence recursively.
type parseFn func(c *Compiler, canAssign bool)

// rule is one parse table entry: the handler to run when a token kind
// appears in prefix position, the handler when it appears in infix
// position, and the precedence of the infix use (ignored for prefix-only
// entries).
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is indexed by lexer.TokenType and filled once at package init.
// Token kinds not set there (TokenEOF among them) keep the zero entry
// (nil, nil, PrecNone).
var rules [lexer.TokenWhile + 1]rule

func init() {
	rules[lexer.TokenLeftParen] = rule{grouping, call, PrecCall}
	rules[lexer.TokenMinus] = rule{unary, binary, PrecTerm}
	rules[lexer.TokenPlus] = rule{nil, binary, PrecTerm}
	rules[lexer.TokenSlash] = rule{nil, binary, PrecFactor}
	rules[lexer.TokenStar] = rule{nil, binary, PrecFactor}
	rules[lexer.TokenBang] = rule{unary, nil, PrecNone}
	rules[lexer.TokenBangEqual] = rule{nil, binary, PrecEquality}
	rules[lexer.TokenEqualEqual] = rule{nil, binary, PrecEquality}
	rules[lexer.TokenGreater] = rule{nil, binary, PrecComparison}
	rules[lexer.TokenGreaterEqual] = rule{nil, binary, PrecComparison}
	rules[lexer.TokenLess] = rule{nil, binary, PrecComparison}
	rules[lexer.TokenLessEqual] = rule{nil, binary, PrecComparison}
	rules[lexer.TokenIdentifier] = rule{variable, nil, PrecNone}
	rules[lexer.TokenString] = rule{stringLiteral, nil, PrecNone}
	rules[lexer.TokenNumber] = rule{number, nil, PrecNone}
	rules[lexer.TokenAnd] = rule{nil, and_, PrecAnd}
	rules[lexer.TokenOr] = rule{nil, or_, PrecOr}
	rules[lexer.TokenFalse] = rule{literal, nil, PrecNone}
	rules[lexer.TokenTrue] = rule{literal, nil, PrecNone}
	rules[lexer.TokenNil] = rule{literal, nil, PrecNone}
	rules[lexer.TokenQuestion] = rule{nil, ternary, PrecTernary}
}

func getRule(t lexer.TokenType) rule {
	if int(t) < 0 || int(t) >= len(rules) {
		return rule{}
	}
	return rules[t]
}
