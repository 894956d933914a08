// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger prints diagnostic messages for the pubsite CLI. Debug and
// Info lines appear only with --verbose; warnings are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables debug and info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Writer returns the current output.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func write(gated bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message when verbose.
func Debug(format string, args ...any) { write(true, "[DEBUG] ", format, args...) }

// Info prints a message when verbose.
func Info(format string, args ...any) { write(true, "[INFO] ", format, args...) }

// Warn always prints.
func Warn(format string, args ...any) { write(false, "warning: ", format, args...) }
