package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
)

// MessageSource delivers messages to a handler until ctx is cancelled.
type MessageSource interface {
	Consume(ctx context.Context, handler kafka.MessageHandler) error
	Close() error
}

// AccountRemover deletes accounts left without a breeder.
type AccountRemover interface {
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// CleanupConsumer retries the file and account removals that failed after
// their originating transaction committed.
type CleanupConsumer struct {
	source   MessageSource
	photos   photostore.Store
	accounts AccountRemover
	logger   *zap.Logger
}

// NewCleanupConsumer creates a consumer of TopicCleanup.
func NewCleanupConsumer(brokers []string, groupID string, photos photostore.Store, accounts AccountRemover, logger *zap.Logger) *CleanupConsumer {
	return NewCleanupConsumerFromSource(kafka.NewConsumer(brokers, groupID, TopicCleanup, logger), photos, accounts, logger)
}

// NewCleanupConsumerFromSource wires the consumer to an existing message source.
func NewCleanupConsumerFromSource(source MessageSource, photos photostore.Store, accounts AccountRemover, logger *zap.Logger) *CleanupConsumer {
	return &CleanupConsumer{source: source, photos: photos, accounts: accounts, logger: logger}
}

// Start begins consuming cleanup work. This blocks until the context is cancelled.
func (c *CleanupConsumer) Start(ctx context.Context) error {
	return c.source.Consume(ctx, c.handleMessage)
}

// Close closes the underlying source.
func (c *CleanupConsumer) Close() error {
	return c.source.Close()
}

func (c *CleanupConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from cleanup topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PhotoFileOrphaned:
		return c.handlePhotoFileOrphaned(ctx, cloudEvent)
	case AccountOrphaned:
		return c.handleAccountOrphaned(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled cleanup event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CleanupConsumer) handlePhotoFileOrphaned(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PhotoFileOrphanedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PhotoFileOrphanedEvent data", zap.Error(err))
		return nil
	}

	if err := c.photos.Delete(ctx, evt.FileName); err != nil {
		c.logger.Warn("orphaned photo file still not deleted",
			zap.String("file_name", evt.FileName),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("orphaned photo file deleted",
		zap.String("file_name", evt.FileName),
		zap.Uint("animal_id", evt.AnimalID),
	)
	return nil
}

func (c *CleanupConsumer) handleAccountOrphaned(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt AccountOrphanedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse AccountOrphanedEvent data", zap.Error(err))
		return nil
	}

	// Redelivery is keyed by account id; an account that is already gone counts as cleaned.
	if err := c.accounts.DeleteAccount(ctx, evt.AccountID); err != nil && !domain.IsNotFound(err) {
		c.logger.Warn("orphaned account still not deleted",
			zap.String("account_id", evt.AccountID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("orphaned account cleaned up",
		zap.String("account_id", evt.AccountID.String()),
	)
	return nil
}
