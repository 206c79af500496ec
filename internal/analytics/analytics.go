// Package analytics is the fire-and-forget telemetry boundary. The game core
// emits typed events; a Sink consumes them. Sink failures never affect game
// state.
package analytics

import (
	"context"

	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/logger"
)

// Sink receives domain events emitted by game sessions.
type Sink interface {
	Track(ctx context.Context, event game.Event)
}

// LogSink writes events to the application log. It is the default sink and
// the one used in development.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Track(ctx context.Context, event game.Event) {
	logger.FromContext(ctx).WithPrefix("analytics").Debug("event %s: %+v", event.EventName(), event)
}

// NopSink discards all events. Used in tests.
type NopSink struct{}

func (NopSink) Track(ctx context.Context, event game.Event) {}
