// lexer.go: byte scanner turning script source into a token stream.
//
// The lexer strips '--' line comments and '--[[ ... ]]' block comments and
// resolves quoted string literals (single or double quotes, backslash
// escapes) into their values. Because the parser only ever sees tokens,
// keywords and operators occurring inside string literals can never be
// mistaken for structure by later stages.
package luaengine

import (
	"strconv"
	"strings"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN   // "("
	RPAREN   // ")"
	LBRACKET // "["
	RBRACKET // "]"
	LBRACE   // "{"
	RBRACE   // "}"
	COMMA    // ","
	SEMI     // ";"
	DOT      // "."

	// Operators
	PLUS    // "+"
	MINUS   // "-"
	STAR    // "*"
	SLASH   // "/"
	PERCENT // "%"
	CONCAT  // ".."
	ASSIGN  // "="
	EQ      // "==" (and the strict alias "===")
	NEQ     // "~=" (and the aliases "!=" / "!==")
	LT      // "<"
	LE      // "<="
	GT      // ">"
	GE      // ">="

	// Literals & identifiers
	IDENT
	STRING
	NUMBER

	// Keywords
	AND
	OR
	NOT
	NIL
	TRUE
	FALSE
	IF
	THEN
	ELSEIF
	ELSE
	END
	WHILE
	FOR
	DO
	FUNCTION
	RETURN
	BREAK
	LOCAL
)

// Token is a lexical token with an optional parsed literal value.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text slice
	Literal any    // float64 for NUMBER, string for STRING
	Line    int    // 1-based
	Col     int    // 1-based
}

var keywords = map[string]TokenType{
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"nil":      NIL,
	"true":     TRUE,
	"false":    FALSE,
	"if":       IF,
	"then":     THEN,
	"elseif":   ELSEIF,
	"else":     ELSE,
	"end":      END,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"function": FUNCTION,
	"return":   RETURN,
	"break":    BREAK,
	"local":    LOCAL,
}

// Lexer scans a script source string into tokens.
type Lexer struct {
	src   string
	start int // start index of current token
	cur   int // current index
	line  int // 1-based
	col   int // 1-based column of cur

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) makeToken(tt TokenType, lit any) Token {
	return Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
}

func (l *Lexer) errf(format string, args ...any) *ScriptError {
	return syntaxErr(l.tokStartLine, l.tokStartCol, format, args...)
}

// Lex scans the whole source. On the first lexical error it stops and
// returns the error; the token slice is not usable in that case.
func (l *Lexer) Lex() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipSpaceAndComments()
	l.start = l.cur
	l.tokStartLine = l.line
	l.tokStartCol = l.col

	if l.isAtEnd() {
		return l.makeToken(EOF, nil), nil
	}

	ch := l.advance()
	switch {
	case isDigit(ch), ch == '.' && isDigit(l.peek()):
		return l.scanNumber()
	case isIdentStart(ch):
		return l.scanIdent(), nil
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	}

	switch ch {
	case '(':
		return l.makeToken(LPAREN, nil), nil
	case ')':
		return l.makeToken(RPAREN, nil), nil
	case '[':
		return l.makeToken(LBRACKET, nil), nil
	case ']':
		return l.makeToken(RBRACKET, nil), nil
	case '{':
		return l.makeToken(LBRACE, nil), nil
	case '}':
		return l.makeToken(RBRACE, nil), nil
	case ',':
		return l.makeToken(COMMA, nil), nil
	case ';':
		return l.makeToken(SEMI, nil), nil
	case '+':
		return l.makeToken(PLUS, nil), nil
	case '-':
		return l.makeToken(MINUS, nil), nil
	case '*':
		return l.makeToken(STAR, nil), nil
	case '/':
		return l.makeToken(SLASH, nil), nil
	case '%':
		return l.makeToken(PERCENT, nil), nil
	case '.':
		if l.match('.') {
			return l.makeToken(CONCAT, nil), nil
		}
		return l.makeToken(DOT, nil), nil
	case '=':
		if l.match('=') {
			l.match('=') // accept the strict spelling "==="
			return l.makeToken(EQ, nil), nil
		}
		return l.makeToken(ASSIGN, nil), nil
	case '~':
		if l.match('=') {
			return l.makeToken(NEQ, nil), nil
		}
		return Token{}, l.errf("unexpected character '~'")
	case '!':
		if l.match('=') {
			l.match('=') // accept "!=="
			return l.makeToken(NEQ, nil), nil
		}
		return Token{}, l.errf("unexpected character '!'")
	case '<':
		if l.match('=') {
			return l.makeToken(LE, nil), nil
		}
		return l.makeToken(LT, nil), nil
	case '>':
		if l.match('=') {
			return l.makeToken(GE, nil), nil
		}
		return l.makeToken(GT, nil), nil
	}
	return Token{}, l.errf("unexpected character %q", string(ch))
}

// skipSpaceAndComments consumes whitespace, '--' line comments, and
// '--[[ ... ]]' block comments (which may span lines).
func (l *Lexer) skipSpaceAndComments() {
	for !l.isAtEnd() {
		ch := l.peek()
		switch ch {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '-':
			if l.peekN(1) != '-' {
				return
			}
			l.advance()
			l.advance()
			if l.peek() == '[' && l.peekN(1) == '[' {
				l.advance()
				l.advance()
				// Block comment: runs to ']]' or, unterminated, to EOF.
				for !l.isAtEnd() {
					if l.peek() == ']' && l.peekN(1) == ']' {
						l.advance()
						l.advance()
						break
					}
					l.advance()
				}
			} else {
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanNumber() (Token, error) {
	for isDigit(l.peek()) {
		l.advance()
	}
	// Fraction; but never consume the first dot of a '..' operator.
	if l.peek() == '.' && l.peekN(1) != '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekN(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekN(2))) {
			l.advance() // e
			l.advance() // sign or first digit
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	f, err := strconv.ParseFloat(l.src[l.start:l.cur], 64)
	if err != nil {
		return Token{}, l.errf("malformed number %q", l.src[l.start:l.cur])
	}
	return l.makeToken(NUMBER, f), nil
}

func (l *Lexer) scanIdent() Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	name := l.src[l.start:l.cur]
	if kw, ok := keywords[name]; ok {
		return l.makeToken(kw, nil)
	}
	return l.makeToken(IDENT, nil)
}

func (l *Lexer) scanString(quote byte) (Token, error) {
	var b strings.Builder
	for {
		if l.isAtEnd() || l.peek() == '\n' {
			return Token{}, l.errf("unterminated string")
		}
		ch := l.advance()
		if ch == quote {
			return l.makeToken(STRING, b.String()), nil
		}
		if ch == '\\' {
			if l.isAtEnd() {
				return Token{}, l.errf("unterminated string")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(esc)
			default:
				// Unknown escapes pass through verbatim; authoring
				// scripts are forgiving about '\' in prose.
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(ch)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
