package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/tliron/kutil/util"

	"github.com/funvibe/rabbit/internal/backend"
	"github.com/funvibe/rabbit/internal/config"
	"github.com/funvibe/rabbit/internal/diagnostics"
	"github.com/funvibe/rabbit/internal/lexer"
	"github.com/funvibe/rabbit/internal/logging"
	"github.com/funvibe/rabbit/internal/pipeline"
	"github.com/funvibe/rabbit/internal/vm"
)

var log = logging.GetLogger("cli")

const usageText = `Usage: rabbit [flags] [script]

With no script, starts an interactive session that scans each line.
With a script path, compiles and runs it.

Flags:
`

// session holds the resolved settings and streams of one invocation.
type session struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// Run is the process entry point: it runs Main with the process streams and
// exits with its status.
func Run() {
	// util.Exit runs the exit hooks that close the log file.
	util.Exit(Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Main parses args, dispatches to the REPL, the script runner or -e, and
// returns the process exit status.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rabbit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	trace := fs.Bool("trace", false, "print the stack and each instruction before it executes")
	disasm := fs.Bool("disasm", false, "print the compiled chunk before running it")
	configPath := fs.String("config", "", "config file (default: rabbit.yaml or rabbit.toml in the working directory)")
	color := fs.String("color", "", "colour diagnostics: auto, always or never")
	verbosity := fs.Int("v", 0, "log verbosity")
	showVersion := fs.Bool("version", false, "print the version and exit")
	expr := fs.String("e", "", "compile and run an expression")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitOK
		}
		return config.ExitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, "rabbit "+config.Version)
		return config.ExitOK
	}

	cfg, cfgPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return config.ExitUsage
	}

	// Flags override the config file only when given explicitly.
	evalMode := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "e":
			evalMode = true
		case "trace":
			cfg.Trace = *trace
		case "disasm":
			cfg.Disassemble = *disasm
		case "color":
			cfg.Color = *color
		case "v":
			cfg.LogLevel = *verbosity
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return config.ExitUsage
	}

	if err := logging.Configure(cfg.LogLevel, cfg.LogFile, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return config.ExitIOErr
	}
	if cfgPath != "" {
		log.Debugf("loaded config from %s", cfgPath)
	}

	s := &session{
		cfg:    cfg,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		color:  useColor(cfg.Color, stderr),
	}

	rest := fs.Args()
	switch {
	case evalMode:
		if len(rest) > 0 {
			fs.Usage()
			return config.ExitUsage
		}
		return s.runSource(*expr, "")
	case len(rest) == 0:
		return s.runREPL()
	case len(rest) == 1:
		return s.runFile(rest[0])
	default:
		fs.Usage()
		return config.ExitUsage
	}
}

// loadConfig reads the explicit config file, or the one discovered in the
// working directory, falling back to defaults. The returned path is empty
// when defaults were used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Discover(wd)
		}
	}
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// useColor resolves the color mode against the diagnostics writer.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ExitCode maps an interpretation result to the process exit status.
func ExitCode(result vm.InterpretResult) int {
	switch result {
	case vm.InterpretOk:
		return config.ExitOK
	case vm.InterpretSyntaxError, vm.InterpretCompileError:
		return config.ExitDataErr
	default:
		return config.ExitSoftware
	}
}

func (s *session) runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.stderr, "Error reading input: %s\n", err)
		return config.ExitIOErr
	}
	if !isSourceFile(path) {
		log.Warningf("%s: expected one of %s", path, strings.Join(config.SourceFileExtensions, ", "))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return s.runSource(string(source), path)
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (s *session) reporter() diagnostics.Reporter {
	return &diagnostics.WriterReporter{W: s.stderr, Color: s.color}
}

// runSource pushes source through lex, compile, (disassemble) and execute.
func (s *session) runSource(source, path string) int {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = path
	ctx.RunID = uuid.NewString()
	ctx.Reporter = s.reporter()
	ctx.Out = s.stdout
	if s.cfg.Trace {
		ctx.Tracer = vm.NewWriterTracer(s.stdout)
	}

	log.Debugf("run %s: starting %q", ctx.RunID, displayName(path))

	processingPipeline := pipeline.New(
		&lexer.LexerProcessor{},
		&backend.CompileProcessor{},
		pipeline.ProcessorFunc(s.disassemble),
		backend.NewExecutionProcessor(backend.NewVM()),
	)
	finalContext := processingPipeline.Run(ctx)

	// Lexer and compiler diagnostics were reported as they were found; only
	// runtime faults still need printing.
	for _, err := range finalContext.Errors {
		var rerr *vm.RuntimeError
		if errors.As(err, &rerr) {
			fmt.Fprintf(s.stderr, "%s\n", rerr)
		}
	}

	result := finalContext.Result()
	log.Debugf("run %s: finished with %s", ctx.RunID, result)
	return ExitCode(result)
}

func (s *session) disassemble(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if s.cfg.Disassemble && ctx.Chunk != nil && !ctx.Failed() {
		fmt.Fprint(s.stdout, vm.Disassemble(ctx.Chunk, displayName(ctx.FilePath)))
	}
	return ctx
}

func displayName(path string) string {
	if path == "" {
		return "<eval>"
	}
	return filepath.Base(path)
}
