package errors

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/crowdstake/crowdstake-server/common/logging"
)

var logger logging.Logger

// Initialize sets the logger used by Catch.
func Initialize(l logging.Logger) {
	logger = l
}

// Catch logs a panic with its stack and terminates. Call it deferred at the top of main.
func Catch() {
	if recovered := recover(); recovered != nil {
		logger.Critical("%v\n%s", recovered, string(debug.Stack()))
	}
}

// CatchWithLogger logs a panic with its stack and keeps the process alive.
func CatchWithLogger(logger logging.Logger) {
	if recovered := recover(); recovered != nil {
		format := "\x1b[31m%v\n[Stack Trace]\n%s\x1b[m"
		stack := debug.Stack()
		if logger != nil {
			logger.Error(format, recovered, stack)
		} else {
			fmt.Fprintf(os.Stderr, format, recovered, stack)
		}
	}
}
