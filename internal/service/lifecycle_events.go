package service

import (
	"context"
	"time"

	"carematch-be/internal/pkg/logger"
	"carematch-be/pkg/events"
)

// emitter publishes lifecycle events after a unit of work has committed.
// A failed publish is logged; the committed change stands.
type emitter struct {
	publisher events.Publisher
	logger    logger.ILogger
}

func newEmitter(publisher events.Publisher, logger logger.ILogger) emitter {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return emitter{publisher: publisher, logger: logger}
}

func (e emitter) emit(ctx context.Context, eventType string, at time.Time, data map[string]interface{}) {
	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: at}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Error("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err,
		})
	}
}
