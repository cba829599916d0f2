package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// NameKey is the attribute a component uses to name its logger ("aspace.operations").
const NameKey = "logger"

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Out   io.Writer
	File  string // optional; lines are appended there as well
	Debug bool
}

// Setup builds the process logger. Lines look like
//
//	2026-10-19T09:14:03.120Z INFO aspace.operations.GetRecord(): Retrieved record: /repositories/2/accessions/1
//
// The returned cleanup closes the log file, if any.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	cleanup := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return Discard(), cleanup, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return Discard(), cleanup, err
		}
		out = io.MultiWriter(out, f)
		cleanup = f.Close
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	l := slog.New(NewLineHandler(out, level))
	l.Debug("logger initialized", NameKey, "logger", "file", cfg.File, "debug", cfg.Debug)
	return l, cleanup, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Named returns l tagged with a component name.
func Named(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(NameKey, name)
}

// LineHandler is a slog.Handler producing one human-readable line per record.
type LineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	name   string
	attrs  []slog.Attr
	groups []string
}

func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == NameKey && len(h.groups) == 0 {
			c.name = a.Value.String()
			continue
		}
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return &c
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.UTC().Format(timeLayout))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')

	name := h.name
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == NameKey && len(h.groups) == 0 {
			name = a.Value.String()
		}
		return true
	})
	if name != "" {
		b.WriteString(name)
		b.WriteByte('.')
	}
	b.WriteString(funcName(r.PC))
	b.WriteString("(): ")
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == NameKey && len(h.groups) == 0 {
			return true
		}
		writeAttr(&b, h.qualify(a))
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *LineHandler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}
	a.Key = strings.Join(h.groups, ".") + "." + a.Key
	return a
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			ga.Key = a.Key + "." + ga.Key
			writeAttr(b, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')

	var s string
	switch a.Value.Kind() {
	case slog.KindTime:
		s = a.Value.Time().UTC().Format(timeLayout)
	default:
		s = a.Value.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}

// funcName returns the bare function or method name for a program counter.
func funcName(pc uintptr) string {
	if pc == 0 {
		return "unknown"
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if fn := shortFuncName(f.Function); fn != "" {
		return fn
	}
	return fmt.Sprintf("pc%x", pc)
}

// shortFuncName reduces a runtime function name to the declared name: package path,
// receiver, type arguments and closure suffixes are dropped.
//
//	github.com/x/usecase.Run[...].func2 -> Run
//	github.com/x/aspace.(*Operations).GetRecord -> GetRecord
func shortFuncName(full string) string {
	fn := stripTypeArgs(full)
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	parts := strings.Split(fn, ".")
	for len(parts) > 1 && isClosureSuffix(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return parts[len(parts)-1]
}

func stripTypeArgs(fn string) string {
	var b strings.Builder
	depth := 0
	for _, r := range fn {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isClosureSuffix matches the "func1" and "1" segments the compiler gives anonymous functions.
func isClosureSuffix(s string) bool {
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
