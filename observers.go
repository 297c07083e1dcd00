package nova

import (
	"log/slog"
	"sync/atomic"
)

// LoggingHandler returns a handler that writes each observed transition as
// a structured log record. If logger is nil, slog.Default() is used.
// Register it under a wildcard key to log every transition:
//
//	sm.AddHandler(nova.AnyToAny[State](), nova.LoggingHandler[State, Event](logger))
func LoggingHandler[S, E comparable](logger *slog.Logger) Handler[S, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c Context[S, E]) {
		attrs := []any{
			slog.Any("from", c.From),
			slog.Any("to", c.To),
		}
		if c.Event != nil {
			attrs = append(attrs, slog.Any("event", *c.Event))
		}
		if c.UserInfo != nil {
			attrs = append(attrs, slog.Any("user_info", c.UserInfo))
		}
		logger.Info("transition", attrs...)
	}
}

// ErrorLoggingHandler returns an error handler that logs rejected
// transition attempts. If logger is nil, slog.Default() is used.
func ErrorLoggingHandler[S, E comparable](logger *slog.Logger) Handler[S, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c Context[S, E]) {
		attrs := []any{
			slog.Any("state", c.From),
		}
		if c.Event != nil {
			attrs = append(attrs, slog.Any("event", *c.Event))
		}
		logger.Warn("transition_rejected", attrs...)
	}
}

// Metrics counts transitions and rejections. Register Handler under a
// wildcard key and ErrorHandler via AddErrorHandler, optionally alongside
// the logging handlers. Counters are atomic so externally synchronized
// machines can share one Metrics value.
type Metrics[S, E comparable] struct {
	transitions atomic.Int64
	rejections  atomic.Int64
}

// MetricsSnapshot is an immutable snapshot of Metrics.
type MetricsSnapshot struct {
	Transitions int64
	Rejections  int64
}

// Handler returns the success-counting handler.
func (m *Metrics[S, E]) Handler() Handler[S, E] {
	return func(Context[S, E]) {
		m.transitions.Add(1)
	}
}

// ErrorHandler returns the rejection-counting handler.
func (m *Metrics[S, E]) ErrorHandler() Handler[S, E] {
	return func(Context[S, E]) {
		m.rejections.Add(1)
	}
}

// Snapshot returns the current counter values.
func (m *Metrics[S, E]) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Transitions: m.transitions.Load(),
		Rejections:  m.rejections.Load(),
	}
}
