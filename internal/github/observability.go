package github

import "log/slog"

// CallEvent records metadata about a single API call.
type CallEvent struct {
	Operation     string
	Method        string
	StatusCode    int
	LatencyMs     int64
	Success       bool
	ErrorCode     string
	RateRemaining int // -1 when the response carried no quota header
}

// Observer receives events about API calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a structured logger: successes at
// debug level, failures at warn.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"operation", event.Operation,
		"method", event.Method,
		"status_code", event.StatusCode,
		"latency_ms", event.LatencyMs,
		"rate_remaining", event.RateRemaining,
	}
	if event.Success {
		o.logger.Debug("github_call", attrs...)
		return
	}
	o.logger.Warn("github_call", append(attrs, "error_code", event.ErrorCode)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
