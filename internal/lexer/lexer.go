package lexer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/funvibe/rabbit/internal/diagnostics"
	"github.com/funvibe/rabbit/internal/token"
)

// ErrSyntax is the sentinel wrapped by every failed scan.
var ErrSyntax = errors.New("syntax error")

// Scan tokenizes source in a single pass. Every diagnostic is handed to
// reporter the moment it is found (nil means discard) and scanning goes on
// to the end of input. If anything was reported the token stream is dropped
// and the returned error is a *diagnostics.ErrorList wrapping ErrSyntax.
// On success the stream is terminated by an EOF token.
func Scan(source string, reporter diagnostics.Reporter) ([]token.Token, error) {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	l := &lexer{input: source, reporter: reporter}
	l.readChar()
	return l.run()
}

type lexer struct {
	input        string
	position     int  // start of ch
	readPosition int  // first byte after ch
	ch           rune // current char under examination

	tokens   []token.Token
	errors   []*diagnostics.Diagnostic
	reporter diagnostics.Reporter
}

func (l *lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *lexer) readChar() {
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += w
}

func (l *lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// match consumes the current char if it equals expected.
func (l *lexer) match(expected rune) bool {
	if l.atEnd() || l.ch != expected {
		return false
	}
	l.readChar()
	return true
}

func (l *lexer) run() ([]token.Token, error) {
	for !l.atEnd() {
		start, ch := l.position, l.ch
		l.readChar()
		l.scanToken(ch, start)
	}

	if len(l.errors) > 0 {
		return nil, &diagnostics.ErrorList{Kind: ErrSyntax, Diagnostics: l.errors}
	}

	eof := 0
	if len(l.input) > 0 {
		eof = len(l.input) - 1
	}
	l.tokens = append(l.tokens, token.Token{Kind: token.EOF, Span: token.Span{Start: eof, End: eof}})
	return l.tokens, nil
}

func (l *lexer) scanToken(ch rune, start int) {
	switch ch {
	case '(':
		l.addToken(token.LEFT_PAREN, start)
	case ')':
		l.addToken(token.RIGHT_PAREN, start)
	case '[':
		l.addToken(token.LEFT_BRACKET, start)
	case ']':
		l.addToken(token.RIGHT_BRACKET, start)
	case '{':
		l.addToken(token.LEFT_BRACE, start)
	case '}':
		l.addToken(token.RIGHT_BRACE, start)
	case ';':
		l.addToken(token.SEMICOLON, start)
	case ',':
		l.addToken(token.COMMA, start)
	case '.':
		l.addToken(token.DOT, start)
	case '?':
		l.addToken(token.QUESTION, start)
	case ':':
		l.addToken(token.COLON, start)
	case '!':
		l.addCompound(token.BANG, token.BANG_EQUAL, start)
	case '=':
		l.addCompound(token.EQUAL, token.EQUAL_EQUAL, start)
	case '<':
		l.addCompound(token.LESS, token.LESS_EQUAL, start)
	case '>':
		l.addCompound(token.GREATER, token.GREATER_EQUAL, start)
	case '+':
		l.addCompound(token.PLUS, token.PLUS_EQUAL, start)
	case '-':
		l.addCompound(token.MINUS, token.MINUS_EQUAL, start)
	case '*':
		l.addCompound(token.STAR, token.STAR_EQUAL, start)
	case '%':
		l.addCompound(token.PERCENT, token.PERCENT_EQUAL, start)
	case '/':
		if l.match('/') {
			l.skipComment()
		} else {
			l.addCompound(token.SLASH, token.SLASH_EQUAL, start)
		}
	case '"':
		l.readString(start)
	case ' ', '\t', '\r', '\n':
		// whitespace
	default:
		switch {
		case isDigit(ch):
			l.readNumber(start)
		case isLetter(ch):
			l.readIdentifier(start)
		default:
			l.error(diagnostics.ErrL001, token.Span{Start: start, End: l.position}, "",
				fmt.Sprintf("Unexpected character '%c'.", ch))
		}
	}
}

func (l *lexer) addToken(kind token.Kind, start int) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Span: token.Span{Start: start, End: l.position}})
}

// addCompound emits compound when the next char is '=', simple otherwise.
func (l *lexer) addCompound(simple, compound token.Kind, start int) {
	if l.match('=') {
		l.addToken(compound, start)
	} else {
		l.addToken(simple, start)
	}
}

// skipComment stops before the line break so the newline is handled as whitespace.
func (l *lexer) skipComment() {
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *lexer) readNumber(start int) {
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	// A '.' without a following digit is left for the next token.
	if !l.atEnd() && l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}
	l.addToken(token.NUMBER, start)
}

func (l *lexer) readIdentifier(start int) {
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	l.addToken(token.LookupIdent(l.input[start:l.position]), start)
}

func (l *lexer) readString(start int) {
	for !l.atEnd() && l.ch != '"' {
		l.readChar()
	}
	if l.atEnd() {
		l.error(diagnostics.ErrL002, token.Span{Start: start, End: l.position}, " at end", "Unterminated string.")
		return
	}
	l.readChar() // closing quote
	l.addToken(token.STRING, start)
}

func (l *lexer) error(code diagnostics.Code, span token.Span, where, message string) {
	d := diagnostics.NewError(code, l.input, span, where, message)
	l.errors = append(l.errors, d)
	l.reporter.Report(d)
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
