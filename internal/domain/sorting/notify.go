package sorting

import (
	"context"
	"log/slog"
	"sync"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// NotificationSink surfaces the outcome of a submission to whoever is watching.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification)
}

type NopSink struct{}

func (NopSink) Notify(context.Context, Notification) {}

type LogSink struct{ Log *slog.Logger }

func (s LogSink) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Kind == KindError {
		level = slog.LevelWarn
	}
	s.Log.Log(ctx, level, "notification", "kind", n.Kind, "message", n.Message)
}

// MultiSink fans a notification out to every sink in order.
type MultiSink []NotificationSink

func (m MultiSink) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}

// Collector keeps every notification it receives.
type Collector struct {
	mu   sync.Mutex
	seen []Notification
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	c.seen = append(c.seen, n)
	c.mu.Unlock()
}

func (c *Collector) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.seen...)
}

// Last returns the most recent notification, or false if none arrived yet.
func (c *Collector) Last() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.seen) == 0 {
		return Notification{}, false
	}
	return c.seen[len(c.seen)-1], true
}

type ctxSinkKey struct{}

// WithSink attaches a per-request sink to ctx. ContextSink forwards to it.
func WithSink(ctx context.Context, s NotificationSink) context.Context {
	return context.WithValue(ctx, ctxSinkKey{}, s)
}

// ContextSink forwards to the sink stored by WithSink, if any.
type ContextSink struct{}

func (ContextSink) Notify(ctx context.Context, n Notification) {
	if s, ok := ctx.Value(ctxSinkKey{}).(NotificationSink); ok && s != nil {
		s.Notify(ctx, n)
	}
}
