package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/rabbit/internal/diagnostics"
	"github.com/funvibe/rabbit/internal/token"
)

type expectedToken struct {
	kind   token.Kind
	lexeme string
}

// scanOK scans input and fails the test on any diagnostic.
func scanOK(t *testing.T, input string) []token.Token {
	t.Helper()
	tokens, err := Scan(input, nil)
	if err != nil {
		t.Fatalf("Scan(%q) failed: %v", input, err)
	}
	return tokens
}

func checkTokens(t *testing.T, input string, tokens []token.Token, want []expectedToken) {
	t.Helper()
	// Every stream ends in EOF, which is not listed in want.
	if len(tokens) != len(want)+1 {
		t.Fatalf("input %q: got %d tokens %v, want %d", input, len(tokens), tokens, len(want)+1)
	}
	for i, tt := range want {
		tok := tokens[i]
		if tok.Kind != tt.kind {
			t.Errorf("input %q token %d: kind = %s, want %s", input, i, tok.Kind, tt.kind)
		}
		if got := input[tok.Span.Start:tok.Span.End]; got != tt.lexeme {
			t.Errorf("input %q token %d: lexeme = %q, want %q", input, i, got, tt.lexeme)
		}
	}
	if last := tokens[len(tokens)-1]; last.Kind != token.EOF {
		t.Errorf("input %q: last token = %s, want EOF", input, last.Kind)
	}
}

func TestPunctuation(t *testing.T) {
	input := "()[]{};,.?:"
	tokens := scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.LEFT_PAREN, "("},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACKET, "["},
		{token.RIGHT_BRACKET, "]"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.COMMA, ","},
		{token.DOT, "."},
		{token.QUESTION, "?"},
		{token.COLON, ":"},
	})

	eof := tokens[len(tokens)-1]
	if eof.Span != (token.Span{Start: 10, End: 10}) {
		t.Errorf("EOF span = %s, want 10..10", eof.Span)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input  string
		simple token.Kind
		comp   token.Kind
	}{
		{"!", token.BANG, token.BANG_EQUAL},
		{"=", token.EQUAL, token.EQUAL_EQUAL},
		{"<", token.LESS, token.LESS_EQUAL},
		{">", token.GREATER, token.GREATER_EQUAL},
		{"+", token.PLUS, token.PLUS_EQUAL},
		{"-", token.MINUS, token.MINUS_EQUAL},
		{"*", token.STAR, token.STAR_EQUAL},
		{"/", token.SLASH, token.SLASH_EQUAL},
		{"%", token.PERCENT, token.PERCENT_EQUAL},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanOK(t, tt.input)
			checkTokens(t, tt.input, tokens, []expectedToken{{tt.simple, tt.input}})

			compound := tt.input + "="
			tokens = scanOK(t, compound)
			checkTokens(t, compound, tokens, []expectedToken{{tt.comp, compound}})

			// Never more than two characters per operator token.
			triple := tt.input + "=="
			tokens = scanOK(t, triple)
			checkTokens(t, triple, tokens, []expectedToken{{tt.comp, compound}, {token.EQUAL, "="}})
		})
	}
}

func TestOperatorSequence(t *testing.T) {
	input := "a != b <= c >= d == e += 1 -= 2 *= 3 /= 4 %= 5"
	tokens := scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.IDENTIFIER, "a"},
		{token.BANG_EQUAL, "!="},
		{token.IDENTIFIER, "b"},
		{token.LESS_EQUAL, "<="},
		{token.IDENTIFIER, "c"},
		{token.GREATER_EQUAL, ">="},
		{token.IDENTIFIER, "d"},
		{token.EQUAL_EQUAL, "=="},
		{token.IDENTIFIER, "e"},
		{token.PLUS_EQUAL, "+="},
		{token.NUMBER, "1"},
		{token.MINUS_EQUAL, "-="},
		{token.NUMBER, "2"},
		{token.STAR_EQUAL, "*="},
		{token.NUMBER, "3"},
		{token.SLASH_EQUAL, "/="},
		{token.NUMBER, "4"},
		{token.PERCENT_EQUAL, "%="},
		{token.NUMBER, "5"},
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  []expectedToken
	}{
		{"123", []expectedToken{{token.NUMBER, "123"}}},
		{"3.14", []expectedToken{{token.NUMBER, "3.14"}}},
		{"0.5", []expectedToken{{token.NUMBER, "0.5"}}},
		{"1.", []expectedToken{{token.NUMBER, "1"}, {token.DOT, "."}}},
		{"1.foo", []expectedToken{{token.NUMBER, "1"}, {token.DOT, "."}, {token.IDENTIFIER, "foo"}}},
		{"1.2.3", []expectedToken{{token.NUMBER, "1.2"}, {token.DOT, "."}, {token.NUMBER, "3"}}},
		{".5", []expectedToken{{token.DOT, "."}, {token.NUMBER, "5"}}},
		{"12 34", []expectedToken{{token.NUMBER, "12"}, {token.NUMBER, "34"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := scanOK(t, tt.input)
			checkTokens(t, tt.input, tokens, tt.want)
		})
	}
}

func TestNumberAndDotDoNotShareInput(t *testing.T) {
	tokens := scanOK(t, "42.")
	num, dot := tokens[0], tokens[1]
	if num.Span != (token.Span{Start: 0, End: 2}) {
		t.Errorf("number span = %s, want 0..2", num.Span)
	}
	if dot.Span != (token.Span{Start: 2, End: 3}) {
		t.Errorf("dot span = %s, want 2..3", dot.Span)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	keywords := map[string]token.Kind{
		"and": token.AND, "class": token.CLASS, "else": token.ELSE,
		"extends": token.EXTENDS, "false": token.FALSE, "for": token.FOR,
		"fn": token.FN, "in": token.IN, "if": token.IF, "let": token.LET,
		"null": token.NULL, "or": token.OR, "print": token.PRINT,
		"return": token.RETURN, "super": token.SUPER, "this": token.THIS,
		"true": token.TRUE, "while": token.WHILE,
	}
	for word, kind := range keywords {
		tokens := scanOK(t, word)
		checkTokens(t, word, tokens, []expectedToken{{kind, word}})
	}

	for _, ident := range []string{"And", "CLASS", "iff", "fns", "_", "_while", "x1", "letter", "returns", "a_b_c"} {
		tokens := scanOK(t, ident)
		checkTokens(t, ident, tokens, []expectedToken{{token.IDENTIFIER, ident}})
	}
}

func TestStrings(t *testing.T) {
	input := `let s = "hello world";`
	tokens := scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.LET, "let"},
		{token.IDENTIFIER, "s"},
		{token.EQUAL, "="},
		{token.STRING, `"hello world"`},
		{token.SEMICOLON, ";"},
	})

	// No escape sequences: a backslash does not protect the quote.
	input = `"a\" b`
	tokens = scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.STRING, `"a\"`},
		{token.IDENTIFIER, "b"},
	})

	input = "\"multi\nline\""
	tokens = scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{{token.STRING, input}})
}

func TestComments(t *testing.T) {
	input := "1 // everything here is ignored ( \" $\n+ 2"
	tokens := scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.NUMBER, "1"},
		{token.PLUS, "+"},
		{token.NUMBER, "2"},
	})

	input = "// only a comment"
	tokens = scanOK(t, input)
	checkTokens(t, input, tokens, nil)

	input = "a /= b // c"
	tokens = scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.IDENTIFIER, "a"},
		{token.SLASH_EQUAL, "/="},
		{token.IDENTIFIER, "b"},
	})
}

func TestWhitespace(t *testing.T) {
	input := " \t\r\n  fn \n\t x "
	tokens := scanOK(t, input)
	checkTokens(t, input, tokens, []expectedToken{
		{token.FN, "fn"},
		{token.IDENTIFIER, "x"},
	})
}

func TestEmptyInput(t *testing.T) {
	tokens := scanOK(t, "")
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	if tokens[0].Kind != token.EOF || tokens[0].Span != (token.Span{}) {
		t.Errorf("got %v, want EOF@0..0", tokens[0])
	}
}

func TestSpansAreOrdered(t *testing.T) {
	input := "fn add(a, b) { return a + b; } // done\nlet x = 1.5 * (2 - 3.25);"
	tokens := scanOK(t, input)
	prevEnd := 0
	for i, tok := range tokens {
		if tok.Span.Start > tok.Span.End {
			t.Fatalf("token %d: inverted span %s", i, tok.Span)
		}
		if tok.Kind != token.EOF && tok.Span.Start < prevEnd {
			t.Fatalf("token %d: span %s overlaps previous end %d", i, tok.Span, prevEnd)
		}
		prevEnd = tok.Span.End
	}
}

// collector records reported diagnostics.
type collector struct {
	got []*diagnostics.Diagnostic
}

func (c *collector) Report(d *diagnostics.Diagnostic) { c.got = append(c.got, d) }

func TestUnterminatedString(t *testing.T) {
	c := &collector{}
	tokens, err := Scan(`"hello`, c)
	if err == nil {
		t.Fatalf("expected syntax error, got tokens %v", tokens)
	}
	if tokens != nil {
		t.Errorf("tokens must be discarded on failure, got %v", tokens)
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("error %v should wrap ErrSyntax", err)
	}
	if len(c.got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(c.got))
	}
	d := c.got[0]
	if d.Code != diagnostics.ErrL002 || d.Message != "Unterminated string." || d.Where != " at end" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Span != (token.Span{Start: 0, End: 6}) {
		t.Errorf("span = %s, want 0..6", d.Span)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	c := &collector{}
	_, err := Scan("let x = 1 $ 2;", c)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
	if len(c.got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(c.got))
	}
	if c.got[0].Message != "Unexpected character '$'." {
		t.Errorf("message = %q", c.got[0].Message)
	}
	if c.got[0].Span != (token.Span{Start: 10, End: 11}) {
		t.Errorf("span = %s, want 10..11", c.got[0].Span)
	}
}

func TestScanContinuesAfterErrors(t *testing.T) {
	c := &collector{}
	_, err := Scan("1 @ 2 # 3 \"open", c)
	if err == nil {
		t.Fatal("expected failure")
	}
	if len(c.got) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(c.got))
	}

	var list *diagnostics.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error %T is not *diagnostics.ErrorList", err)
	}
	if list.Len() != 3 {
		t.Errorf("error list holds %d diagnostics, want 3", list.Len())
	}
	for i, d := range list.Diagnostics {
		if d != c.got[i] {
			t.Errorf("diagnostic %d was not the one reported", i)
		}
	}
	if !strings.Contains(list.Diagnostics[1].Message, "'#'") {
		t.Errorf("second diagnostic = %q", list.Diagnostics[1].Message)
	}
}

func TestNonASCIICharacterIsRejectedWhole(t *testing.T) {
	c := &collector{}
	_, err := Scan("é", c)
	if err == nil {
		t.Fatal("expected failure")
	}
	if c.got[0].Span != (token.Span{Start: 0, End: 2}) {
		t.Errorf("span = %s, want the whole rune 0..2", c.got[0].Span)
	}
	if c.got[0].Message != "Unexpected character 'é'." {
		t.Errorf("message = %q", c.got[0].Message)
	}
}
