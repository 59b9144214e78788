package vm

import (
	"errors"
	"strconv"

	"github.com/funvibe/rabbit/internal/diagnostics"
	"github.com/funvibe/rabbit/internal/token"
)

// ErrCompile is the sentinel wrapped by every failed compilation.
var ErrCompile = errors.New("compile error")

// Precedence levels, lowest first.
type Precedence int

const (
	PREC_NONE Precedence = iota
	PREC_TERM            // + -
	PREC_FACTOR          // * /
	PREC_UNARY           // -
	PREC_PRIMARY
)

var binaryOps = map[token.Kind]struct {
	op   Opcode
	prec Precedence
}{
	token.PLUS:  {OP_ADD, PREC_TERM},
	token.MINUS: {OP_SUBTRACT, PREC_TERM},
	token.STAR:  {OP_MULTIPLY, PREC_FACTOR},
	token.SLASH: {OP_DIVIDE, PREC_FACTOR},
}

// Compiler turns the token stream of a single arithmetic expression into a
// chunk ending in OP_RETURN. It makes one pass and emits as it parses.
type Compiler struct {
	source  string
	tokens  []token.Token
	current int

	chunk    *Chunk
	errors   []*diagnostics.Diagnostic
	reporter diagnostics.Reporter
}

// compileAbort unwinds the parser after the first error.
type compileAbort struct{}

// NewCompiler creates a compiler over tokens scanned from source. The token
// slice must end with an EOF token.
func NewCompiler(source string, tokens []token.Token, reporter diagnostics.Reporter) *Compiler {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Compiler{
		source:   source,
		tokens:   tokens,
		chunk:    NewChunk(),
		reporter: reporter,
	}
}

// Compile produces the chunk, or a *diagnostics.ErrorList wrapping
// ErrCompile.
func (c *Compiler) Compile() (chunk *Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(compileAbort); !ok {
				panic(r)
			}
			chunk, err = nil, &diagnostics.ErrorList{Kind: ErrCompile, Diagnostics: c.errors}
		}
	}()

	if len(c.tokens) == 0 || c.tokens[len(c.tokens)-1].Kind != token.EOF {
		c.tokens = append(c.tokens, token.Token{Kind: token.EOF, Span: token.Span{Start: len(c.source), End: len(c.source)}})
	}

	c.expression()
	c.match(token.SEMICOLON)
	c.consume(token.EOF, diagnostics.ErrC003, "Expect end of expression.")
	c.emit(Simple(OP_RETURN), c.previous())
	return c.chunk, nil
}

func (c *Compiler) peek() token.Token {
	return c.tokens[c.current]
}

func (c *Compiler) previous() token.Token {
	if c.current == 0 {
		return c.tokens[0]
	}
	return c.tokens[c.current-1]
}

func (c *Compiler) advance() token.Token {
	tok := c.peek()
	if tok.Kind != token.EOF {
		c.current++
	}
	return tok
}

func (c *Compiler) match(kind token.Kind) bool {
	if c.peek().Kind != kind {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, code diagnostics.Code, message string) {
	if c.peek().Kind == kind {
		c.advance()
		return
	}
	c.errorAt(c.peek(), code, message)
}

func (c *Compiler) expression() {
	c.parsePrecedence(PREC_TERM)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	tok := c.advance()
	switch tok.Kind {
	case token.NUMBER:
		c.number(tok)
	case token.LEFT_PAREN:
		c.expression()
		c.consume(token.RIGHT_PAREN, diagnostics.ErrC002, "Expect ')' after expression.")
	case token.MINUS:
		c.parsePrecedence(PREC_UNARY)
		c.emit(Simple(OP_NEGATE), tok)
	default:
		c.errorAt(tok, diagnostics.ErrC001, "Expect expression.")
	}

	for {
		rule, ok := binaryOps[c.peek().Kind]
		if !ok || rule.prec < prec {
			return
		}
		opTok := c.advance()
		c.parsePrecedence(rule.prec + 1)
		c.emit(Simple(rule.op), opTok)
	}
}

func (c *Compiler) number(tok token.Token) {
	f, err := strconv.ParseFloat(tok.Lexeme(c.source), 64)
	if err != nil {
		c.errorAt(tok, diagnostics.ErrC001, "Invalid number literal.")
	}
	if c.chunk.ConstantCount() >= MaxConstants {
		c.errorAt(tok, diagnostics.ErrC004, "Too many constants in one chunk.")
	}
	c.emit(LoadConstant(c.chunk.AddConstant(Value(f))), tok)
}

func (c *Compiler) emit(ins Instruction, tok token.Token) {
	line, col := diagnostics.Locate(c.source, tok.Span.Start)
	if err := c.chunk.Write(ins, Position{Line: line, Column: col}); err != nil {
		// Only reachable through a compiler bug.
		panic(err)
	}
}

func (c *Compiler) errorAt(tok token.Token, code diagnostics.Code, message string) {
	where := " at end"
	if tok.Kind != token.EOF {
		where = " at '" + tok.Lexeme(c.source) + "'"
	}
	d := diagnostics.NewError(code, c.source, tok.Span, where, message)
	c.errors = append(c.errors, d)
	c.reporter.Report(d)
	panic(compileAbort{})
}
