package log

import (
	"io"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

var (
	// reuse the same logger across all tests
	_testingLoggerMutex = sync.Mutex{}
	_testingLogger      Logger
)

// TestingLogger returns a Logger which writes to STDOUT if testing being run
// with the verbose (-v) flag, NopLogger otherwise.
//
// Note that the call to TestingLogger() must be made
// inside a test (not in the init func) because
// verbose flag only set at the time of testing.
func TestingLogger() Logger {
	return TestingLoggerWithOutput(os.Stdout)
}

// TestingLoggerWithOutput returns a Logger which writes to (w io.Writer) if testing being run
// with the verbose (-v) flag, NopLogger otherwise.
func TestingLoggerWithOutput(w io.Writer) Logger {
	_testingLoggerMutex.Lock()
	defer _testingLoggerMutex.Unlock()
	if _testingLogger != nil {
		return _testingLogger
	}

	if testing.Verbose() {
		_testingLogger = &defaultLogger{
			Logger: zerolog.New(newConsoleWriter(NewSyncWriter(w))).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
		}
	} else {
		_testingLogger = NewNopLogger()
	}

	return _testingLogger
}
