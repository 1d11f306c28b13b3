// Package events defines the topics and payloads the kennel publishes, and
// consumes the cleanup topic to retry failed best-effort work.
package events

import "github.com/google/uuid"

// Source is the CloudEvents source attribute for every kennel event.
const Source = "service-kennel"

const (
	// TopicKennelEvents carries domain events for other services.
	TopicKennelEvents = "kennel.events"
	// TopicCleanup carries work that failed after a commit and must be retried.
	TopicCleanup = "kennel.cleanup"
)

const (
	AnimalCreated     = "kennel.animal.created"
	AnimalDeleted     = "kennel.animal.deleted"
	BreederRegistered = "kennel.breeder.registered"
	PhotoFileOrphaned = "kennel.photo.file.orphaned"
	AccountOrphaned   = "kennel.account.orphaned"
)

type AnimalCreatedEvent struct {
	AnimalID  uint     `json:"animal_id"`
	Name      string   `json:"name"`
	BreedID   uint     `json:"breed_id"`
	BreederID uint     `json:"breeder_id"`
	FileNames []string `json:"file_names"`
}

type AnimalDeletedEvent struct {
	AnimalID uint `json:"animal_id"`
	Photos   int  `json:"photos"`
}

type BreederRegisteredEvent struct {
	BreederID uint      `json:"breeder_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
}

// PhotoFileOrphanedEvent names a stored file no Photo row references.
type PhotoFileOrphanedEvent struct {
	FileName string `json:"file_name"`
	AnimalID uint   `json:"animal_id,omitempty"`
	Reason   string `json:"reason"`
}

// AccountOrphanedEvent names an account left without a linked breeder.
type AccountOrphanedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Reason    string    `json:"reason"`
}
