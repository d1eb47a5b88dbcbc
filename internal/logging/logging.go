// Package logging provides the slog based logger shared by the command line
// tools. It satisfies the trigger library Logger interface.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const timeFormat = "2006/01/02 15:04:05.000"

// Logger writes progress messages as text lines on one writer and errors as
// JSON on another.
type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func New(out io.Writer, errOut io.Writer, level slog.Level) Logger {
	opts := &slog.HandlerOptions{Level: level}
	return Logger{
		InfoLog:  slog.New(NewHandler(out, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(errOut, opts)),
	}
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}

// Handler formats records as
//
//	[time] LEVEL [module] message key=value ...
//
// The module attribute, when present, is printed as a tag before the message.
type Handler struct {
	level  slog.Leveler
	mu     *sync.Mutex
	out    io.Writer
	module string
	attrs  []slog.Attr
	group  string
}

func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) clone() *Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *Handler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if a.Key == "module" && h.group == "" {
			c.module = a.Value.String()
			continue
		}
		c.attrs = append(c.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.group = c.qualify(name)
	return c
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if !r.Time.IsZero() {
		fmt.Fprintf(&sb, "[%s] ", r.Time.Format(timeFormat))
	}
	sb.WriteString(r.Level.String())

	module := h.module
	attrs := h.attrs
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "module" && h.group == "" {
			module = a.Value.String()
		} else {
			attrs = append(attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
		}
		return true
	})
	if module != "" {
		fmt.Fprintf(&sb, " [%s]", module)
	}
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	for _, a := range attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}
