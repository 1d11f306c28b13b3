package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/events"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
)

// EventPublisher delivers CloudEvents to a topic. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error
}

// Notifier sends an HTML message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, toEmail, subject, htmlBody string) error
}

// publishEvent builds the envelope and sends it. Failures are logged and
// reported so callers on a cleanup path can surface them.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic, eventType, subject string, data interface{}) error {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, subject, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}

	if err := publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// emitEvent publishes without waiting on the outcome. Failures are only logged.
func emitEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic, eventType, subject string, data interface{}) {
	_ = publishEvent(ctx, publisher, logger, topic, eventType, subject, data)
}
