package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/funvibe/rabbit/internal/config"
	"github.com/funvibe/rabbit/internal/lexer"
	"github.com/funvibe/rabbit/internal/token"
)

// lineReader yields one line of input per call; io.EOF ends the session.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// linerReader is used when stdin is a terminal: line editing plus history.
type linerReader struct {
	state   *liner.State
	history string
}

func newLinerReader(historyPath string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}
	return &linerReader{state: state, history: historyPath}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *linerReader) Close() error {
	if r.history != "" {
		if f, err := os.Create(r.history); err == nil {
			_, _ = r.state.WriteHistory(f)
			_ = f.Close()
		}
	}
	return r.state.Close()
}

// plainReader reads piped input without prompts. Lines may be of any length.
type plainReader struct {
	reader *bufio.Reader
}

func newPlainReader(r io.Reader) *plainReader {
	return &plainReader{reader: bufio.NewReader(r)}
}

func (r *plainReader) ReadLine(string) (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (r *plainReader) Close() error { return nil }

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runREPL scans each input line and prints its tokens, or the diagnostics
// when the line does not scan.
func (s *session) runREPL() int {
	var in lineReader
	interactive := isTerminal(s.stdin)
	if interactive {
		fmt.Fprintln(s.stdout, "rabbit "+config.Version+" (type :quit to exit)")
		in = newLinerReader(s.cfg.ResolveHistoryFile())
	} else {
		in = newPlainReader(s.stdin)
	}
	defer in.Close()

	sessionID := uuid.NewString()
	log.Debugf("repl %s: started (interactive=%t)", sessionID, interactive)

	lines := 0
	for {
		line, err := in.ReadLine(config.Prompt)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(s.stderr, "Error reading input: %s\n", err)
			return config.ExitIOErr
		}
		if strings.TrimSpace(line) == ":quit" {
			break
		}
		lines++
		s.scanLine(line)
	}

	log.Debugf("repl %s: ended after %d lines", sessionID, lines)
	return config.ExitOK
}

func (s *session) scanLine(line string) {
	tokens, err := lexer.Scan(line, s.reporter())
	if err != nil {
		return
	}
	printTokens(s.stdout, line, tokens)
}

// printTokens writes one token per line: span, kind and lexeme.
func printTokens(w io.Writer, source string, tokens []token.Token) {
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-8s %-14s '%s'\n", tok.Span, tok.Kind, tok.Lexeme(source))
	}
}
