// Package cloudlog tees slog records to Google Cloud Logging.
package cloudlog

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/logging"
)

// LogName is the Cloud Logging log the application writes to.
const LogName = "autoreview"

type entryLogger interface {
	Log(e logging.Entry)
}

// Handler forwards every record to the wrapped handler and to Cloud Logging.
// The wrapped handler decides which levels are enabled. Grouped attributes
// are flattened into dotted payload keys.
type Handler struct {
	next   slog.Handler
	logger entryLogger
	attrs  []slog.Attr
	prefix string
}

// Sink owns the Cloud Logging client behind one or more Handlers.
type Sink struct {
	client *logging.Client
	logger *logging.Logger
}

// NewSink connects to Cloud Logging for projectID.
func NewSink(ctx context.Context, projectID string) (*Sink, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create logging client: %w", err)
	}
	return &Sink{client: client, logger: client.Logger(LogName)}, nil
}

// Handler wraps next so its records are also sent to the sink.
func (s *Sink) Handler(next slog.Handler) *Handler {
	return newHandler(next, s.logger)
}

// Close flushes buffered entries and closes the client.
func (s *Sink) Close() error {
	return s.client.Close()
}

func newHandler(next slog.Handler, logger entryLogger) *Handler {
	return &Handler{next: next, logger: logger}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	payload := make(map[string]any, len(h.attrs)+r.NumAttrs()+1)
	payload["message"] = r.Message
	for _, a := range h.attrs {
		addAttr(payload, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(payload, h.prefix, a)
		return true
	})

	h.logger.Log(logging.Entry{
		Timestamp: r.Time,
		Severity:  severity(r.Level),
		Payload:   payload,
	})

	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addAttr(payload map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addAttr(payload, group, ga)
		}
		return
	}

	key := prefix + a.Key
	switch v := a.Value.Any().(type) {
	case error:
		payload[key] = v.Error()
	case fmt.Stringer:
		payload[key] = v.String()
	default:
		payload[key] = v
	}
}

func severity(level slog.Level) logging.Severity {
	switch {
	case level >= slog.LevelError:
		return logging.Error
	case level >= slog.LevelWarn:
		return logging.Warning
	case level >= slog.LevelInfo:
		return logging.Info
	default:
		return logging.Debug
	}
}
