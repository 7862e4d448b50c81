package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanToken_Punctuation(t *testing.T) {
	s := New("( ) { } , . - + ; / * ? :")

	want := []TokenType{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenComma, TokenDot, TokenMinus, TokenPlus, TokenSemicolon,
		TokenSlash, TokenStar, TokenQuestion, TokenColon, TokenEOF,
	}

	for i, wantType := range want {
		tok := s.ScanToken()
		assert.Equalf(t, wantType, tok.Type, "token %d", i)
	}
}

func TestScanToken_TwoCharacterOperators(t *testing.T) {
	s := New("! != = == < <= > >=")
	want := []TokenType{
		TokenBang, TokenBangEqual, TokenEqual, TokenEqualEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
	}
	for _, wantType := range want {
		tok := s.ScanToken()
		assert.Equal(t, wantType, tok.Type)
	}
}

func TestScanToken_Keywords(t *testing.T) {
	source := "and break case class continue default else false for fun if nil or " +
		"print return super switch this true var while"
	want := []TokenType{
		TokenAnd, TokenBreak, TokenCase, TokenClass, TokenContinue, TokenDefault,
		TokenElse, TokenFalse, TokenFor, TokenFun, TokenIf, TokenNil, TokenOr,
		TokenPrint, TokenReturn, TokenSuper, TokenSwitch, TokenThis, TokenTrue,
		TokenVar, TokenWhile,
	}
	s := New(source)
	for _, wantType := range want {
		tok := s.ScanToken()
		assert.Equal(t, wantType, tok.Type)
	}
}

func TestScanToken_IdentifierNotKeywordPrefix(t *testing.T) {
	s := New("classy forest")
	tok := s.ScanToken()
	assert.Equal(t, TokenIdentifier, tok.Type)
	assert.Equal(t, "classy", tok.Lexeme)

	tok = s.ScanToken()
	assert.Equal(t, TokenIdentifier, tok.Type)
	assert.Equal(t, "forest", tok.Lexeme)
}

func TestScanToken_Numbers(t *testing.T) {
	s := New("123 3.14 4.")
	tok := s.ScanToken()
	assert.Equal(t, TokenNumber, tok.Type)
	assert.Equal(t, "123", tok.Lexeme)

	tok = s.ScanToken()
	assert.Equal(t, TokenNumber, tok.Type)
	assert.Equal(t, "3.14", tok.Lexeme)

	// A trailing dot with no following digit is not consumed as part of
	// the number: "4" then a separate DOT token.
	tok = s.ScanToken()
	assert.Equal(t, TokenNumber, tok.Type)
	assert.Equal(t, "4", tok.Lexeme)
	tok = s.ScanToken()
	assert.Equal(t, TokenDot, tok.Type)
}

func TestScanToken_Strings(t *testing.T) {
	s := New(`"hello world"`)
	tok := s.ScanToken()
	assert.Equal(t, TokenString, tok.Type)
	assert.Equal(t, `"hello world"`, tok.Lexeme)
}

func TestScanToken_MultilineString(t *testing.T) {
	s := New("\"line one\nline two\" rest")
	tok := s.ScanToken()
	assert.Equal(t, TokenString, tok.Type)
	tok = s.ScanToken()
	assert.Equal(t, TokenIdentifier, tok.Type)
	assert.Equal(t, 2, tok.Line)
}

func TestScanToken_UnterminatedString(t *testing.T) {
	s := New(`"never closes`)
	tok := s.ScanToken()
	assert.Equal(t, TokenError, tok.Type)
	assert.Equal(t, "Unterminated string.", tok.Lexeme)
}

func TestScanToken_LineComments(t *testing.T) {
	s := New("1 // this is ignored\n2")
	tok := s.ScanToken()
	assert.Equal(t, "1", tok.Lexeme)
	tok = s.ScanToken()
	assert.Equal(t, "2", tok.Lexeme)
	assert.Equal(t, 2, tok.Line)
}

func TestScanToken_UnknownByte(t *testing.T) {
	s := New("@")
	tok := s.ScanToken()
	assert.Equal(t, TokenError, tok.Type)
}

// Round-trip property from the spec: scanning a token's own lexeme back
// through a fresh Scanner yields a token of the same kind, for every
// non-error token.
func TestScanToken_LexemeRoundTrips(t *testing.T) {
	source := `var x = 1; if (x <= 2) { print "hi"; } else { x = x + 1.5; }`
	s := New(source)
	for {
		tok := s.ScanToken()
		if tok.Type == TokenEOF {
			break
		}
		if tok.Type == TokenError {
			t.Fatalf("unexpected error token: %s", tok.Lexeme)
		}
		again := New(tok.Lexeme).ScanToken()
		assert.Equalf(t, tok.Type, again.Type, "lexeme %q", tok.Lexeme)
	}
}
