// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

type ctxKey struct{}

var (
	debugEnabled atomic.Bool

	outMu sync.Mutex
	out   io.Writer = os.Stdout

	infoLabel  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnLabel  = color.New(color.FgWhite, color.BgYellow).SprintFunc()
	errorLabel = color.New(color.FgRed).SprintFunc()
	debugLabel = color.New(color.FgCyan).SprintFunc()
)

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// SetOutput redirects all log output. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID retrieves the request ID stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// formatLog formats log message with optional request ID
func formatLog(requestID string, format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		return fmt.Sprintf("[req_id=%s] %s", requestID, msg)
	}
	return msg
}

func emit(label func(a ...interface{}) string, level, requestID, format string, a ...interface{}) {
	line := formatLog(requestID, format, a...)
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, "%s %s\n", label("["+level+"]"), line)
}

// Info log information
func Info(format string, a ...interface{}) {
	emit(infoLabel, "INFO", "", format, a...)
}

// InfoWithContext logs information with context (includes request ID if available)
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	emit(infoLabel, "INFO", RequestID(ctx), format, a...)
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	emit(warnLabel, "WARN", "", format, a...)
}

// WarnWithContext logs warning with context (includes request ID if available)
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	emit(warnLabel, "WARN", RequestID(ctx), format, a...)
}

// Error log error
func Error(format string, a ...interface{}) {
	emit(errorLabel, "ERROR", "", format, a...)
}

// ErrorWithContext logs error with context (includes request ID if available)
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	emit(errorLabel, "ERROR", RequestID(ctx), format, a...)
}

// Debug logs only when debug output is enabled.
func Debug(format string, a ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	emit(debugLabel, "DEBUG", "", format, a...)
}

// DebugWithContext is Debug with the request ID from ctx.
func DebugWithContext(ctx context.Context, format string, a ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	emit(debugLabel, "DEBUG", RequestID(ctx), format, a...)
}

// Dump writes a spew dump of the values when debug output is enabled.
func Dump(label string, a ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	emit(debugLabel, "DEBUG", "", "%s\n%s", label, spew.Sdump(a...))
}
