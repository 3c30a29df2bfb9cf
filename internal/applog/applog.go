// Package applog writes a structured run log to a file. The TUI owns the
// terminal, so background jobs and client failures must never print to
// stdout; they land here instead.
package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	logFileName = "simsearch.log"
	maxFileSize = 2 << 20 // rotate past 2 MB
	maxValueLen = 300
)

var (
	mu   sync.Mutex
	file *os.File
)

// Init opens the log file under dir for appending, rotating a too-large file
// to .log.1 first. Call once at startup. If Init is never called every log
// call is a no-op, which tests rely on.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, logFileName)

	if info, err := os.Stat(path); err == nil && info.Size() > maxFileSize {
		_ = os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	file = f
	mu.Unlock()
	return nil
}

// Close closes the log file. Subsequent log calls become no-ops.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

// Info logs one event line with key=value pairs.
//
//	applog.Info("search.done", "seq", 3, "papers", 5)
func Info(event string, kv ...any) {
	write("INFO", event, nil, kv)
}

// Error logs an event with its error.
//
//	applog.Error("summary.failed", err, "rank", 2)
func Error(event string, err error, kv ...any) {
	write("ERROR", event, err, kv)
}

func write(level, event string, err error, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)

	if err != nil {
		b.WriteString(" err=")
		b.WriteString(quote(err.Error()))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		b.WriteString(quote(fmt.Sprint(kv[i+1])))
	}
	b.WriteByte('\n')

	_, _ = file.WriteString(b.String())
}

func quote(s string) string {
	if len(s) > maxValueLen {
		s = s[:maxValueLen] + "…"
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
	}
	return s
}
