package config

// Version is the program version, reported by -version.
const Version = "0.1.0"

const SourceFileExt = ".rbt"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".rbt", ".rabbit"}

// ConfigFileNames are looked up, in order, by Discover.
var ConfigFileNames = []string{"rabbit.yaml", "rabbit.yml", "rabbit.toml"}

// Process exit codes (BSD sysexits).
const (
	ExitOK       = 0
	ExitUsage    = 64 // EX_USAGE
	ExitDataErr  = 65 // EX_DATAERR: syntax or compile error
	ExitSoftware = 70 // EX_SOFTWARE: runtime error
	ExitIOErr    = 74 // EX_IOERR: script could not be read
)

// Color modes accepted by the color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default REPL prompt and history file name (relative to the home directory).
const (
	Prompt          = "> "
	HistoryFileName = ".rabbit_history"
)
