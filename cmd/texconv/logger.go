package main

import (
	"fmt"
	"io"
	"time"

	"github.com/loov/hrtime"
)

// Logger prints timed progress steps. A disabled logger discards output.
type Logger struct {
	out        io.Writer
	stepStart  time.Duration
	totalStart time.Duration
}

// NewLogger returns a logger writing to out, or discarding when verbose is
// false.
func NewLogger(out io.Writer, verbose bool) *Logger {
	if !verbose {
		out = io.Discard
	}
	return &Logger{out: out, totalStart: hrtime.Now()}
}

// Step starts a step.
// Format: [name] param ...
func (l *Logger) Step(name string, params ...interface{}) {
	l.stepStart = hrtime.Now()
	if len(params) > 0 {
		fmt.Fprintf(l.out, "[%s] %v ... ", name, params[0])
	} else {
		fmt.Fprintf(l.out, "[%s] ", name)
	}
}

// Done finishes the current step. Steps under 100ms omit their timing.
func (l *Logger) Done(result string) {
	elapsed := hrtime.Since(l.stepStart)
	if elapsed > 100*time.Millisecond {
		fmt.Fprintf(l.out, "→ %s (%.2fs)\n", result, elapsed.Seconds())
	} else {
		fmt.Fprintf(l.out, "→ %s\n", result)
	}
}

// Total prints the time since the logger was created.
func (l *Logger) Total() {
	fmt.Fprintf(l.out, "total: %.2fs\n", hrtime.Since(l.totalStart).Seconds())
}

// Info prints an untimed line.
func (l *Logger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "  • "+format+"\n", args...)
}
