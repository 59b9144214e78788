// Package logging wires the commonlog backend used by the driver and the
// pipeline stages.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"
	"github.com/tliron/kutil/util"
)

// Root is the logger name prefix for this program.
const Root = "rabbit"

var (
	lock     sync.Mutex
	logFile  *os.File
	exitHook sync.Once
)

// Configure installs an unbuffered simple backend at the given verbosity.
// Messages go to the file at path, or to w when path is empty. Calling it
// again replaces the backend and closes the previous log file.
func Configure(verbosity int, path string, w io.Writer) error {
	lock.Lock()
	defer lock.Unlock()

	maxLevel := commonlog.VerbosityToMaxLevel(verbosity)
	out := w
	var file *os.File
	if path != "" && maxLevel != commonlog.None {
		var err error
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, simple.LOG_FILE_WRITE_PERMISSIONS)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		out = file
	}
	if out == nil {
		out = io.Discard
	}

	backend := simple.NewBackend()
	backend.Buffered = false
	backend.Writer = util.NewSyncedWriter(out)
	backend.SetMaxLevel(maxLevel)
	commonlog.SetBackend(backend)

	closeLogFile()
	logFile = file
	exitHook.Do(func() {
		util.OnExit(func() {
			lock.Lock()
			defer lock.Unlock()
			closeLogFile()
		})
	})
	return nil
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// GetLogger returns the named child logger, e.g. GetLogger("vm").
func GetLogger(name string) commonlog.Logger {
	if name == "" {
		return commonlog.GetLogger(Root)
	}
	return commonlog.GetLogger(Root + "." + name)
}
