// Package token defines the token kinds produced by the lexer.
package token

import "fmt"

// Kind identifies the class of a token.
type Kind uint8

const (
	// Single-character tokens
	LEFT_PAREN    Kind = iota // (
	RIGHT_PAREN               // )
	LEFT_BRACKET              // [
	RIGHT_BRACKET             // ]
	LEFT_BRACE                // {
	RIGHT_BRACE               // }
	SEMICOLON                 // ;
	COMMA                     // ,
	DOT                       // .
	QUESTION                  // ?
	COLON                     // :

	// One or two character tokens
	BANG          // !
	BANG_EQUAL    // !=
	EQUAL         // =
	EQUAL_EQUAL   // ==
	GREATER       // >
	GREATER_EQUAL // >=
	LESS          // <
	LESS_EQUAL    // <=
	PLUS          // +
	PLUS_EQUAL    // +=
	MINUS         // -
	MINUS_EQUAL   // -=
	STAR          // *
	STAR_EQUAL    // *=
	SLASH         // /
	SLASH_EQUAL   // /=
	PERCENT       // %
	PERCENT_EQUAL // %=

	// Literals
	IDENTIFIER
	STRING
	NUMBER

	// Keywords
	AND
	CLASS
	ELSE
	EXTENDS
	FALSE
	FOR
	FN
	IN
	IF
	LET
	NULL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	WHILE

	ERROR
	EOF
)

var kindNames = [...]string{
	LEFT_PAREN:    "LEFT_PAREN",
	RIGHT_PAREN:   "RIGHT_PAREN",
	LEFT_BRACKET:  "LEFT_BRACKET",
	RIGHT_BRACKET: "RIGHT_BRACKET",
	LEFT_BRACE:    "LEFT_BRACE",
	RIGHT_BRACE:   "RIGHT_BRACE",
	SEMICOLON:     "SEMICOLON",
	COMMA:         "COMMA",
	DOT:           "DOT",
	QUESTION:      "QUESTION",
	COLON:         "COLON",

	BANG:          "BANG",
	BANG_EQUAL:    "BANG_EQUAL",
	EQUAL:         "EQUAL",
	EQUAL_EQUAL:   "EQUAL_EQUAL",
	GREATER:       "GREATER",
	GREATER_EQUAL: "GREATER_EQUAL",
	LESS:          "LESS",
	LESS_EQUAL:    "LESS_EQUAL",
	PLUS:          "PLUS",
	PLUS_EQUAL:    "PLUS_EQUAL",
	MINUS:         "MINUS",
	MINUS_EQUAL:   "MINUS_EQUAL",
	STAR:          "STAR",
	STAR_EQUAL:    "STAR_EQUAL",
	SLASH:         "SLASH",
	SLASH_EQUAL:   "SLASH_EQUAL",
	PERCENT:       "PERCENT",
	PERCENT_EQUAL: "PERCENT_EQUAL",

	IDENTIFIER: "IDENTIFIER",
	STRING:     "STRING",
	NUMBER:     "NUMBER",

	AND:     "AND",
	CLASS:   "CLASS",
	ELSE:    "ELSE",
	EXTENDS: "EXTENDS",
	FALSE:   "FALSE",
	FOR:     "FOR",
	FN:      "FN",
	IN:      "IN",
	IF:      "IF",
	LET:     "LET",
	NULL:    "NULL",
	OR:      "OR",
	PRINT:   "PRINT",
	RETURN:  "RETURN",
	SUPER:   "SUPER",
	THIS:    "THIS",
	TRUE:    "TRUE",
	WHILE:   "WHILE",

	ERROR: "ERROR",
	EOF:   "EOF",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// keywords maps reserved words to their kinds. Lookup is exact and case-sensitive.
var keywords = map[string]Kind{
	"and":     AND,
	"class":   CLASS,
	"else":    ELSE,
	"extends": EXTENDS,
	"false":   FALSE,
	"for":     FOR,
	"fn":      FN,
	"in":      IN,
	"if":      IF,
	"let":     LET,
	"null":    NULL,
	"or":      OR,
	"print":   PRINT,
	"return":  RETURN,
	"super":   SUPER,
	"this":    THIS,
	"true":    TRUE,
	"while":   WHILE,
}

// LookupIdent returns the keyword kind for ident, or IDENTIFIER.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENTIFIER
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= AND && k <= WHILE
}

// Span is a half-open byte range [Start, End) into a source buffer.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Token is a classified slice of source. The lexeme is not stored; use Lexeme.
type Token struct {
	Kind Kind
	Span Span
}

// Lexeme returns the source text covered by the token.
func (t Token) Lexeme(source string) string {
	if t.Span.Start < 0 || t.Span.End > len(source) || t.Span.Start > t.Span.End {
		return ""
	}
	return source[t.Span.Start:t.Span.End]
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}
