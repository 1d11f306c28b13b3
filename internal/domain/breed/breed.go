package breed

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

const maxNameLength = 100

// Breed is a reference classification for animals.
type Breed struct {
	id        uint
	name      string
	createdAt time.Time
}

// NewBreed creates a breed with a validated name.
func NewBreed(name string) (*Breed, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("invalid breed", domain.FieldError{Field: "name", Message: "is required"})
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, domain.NewValidationError("invalid breed", domain.FieldError{Field: "name", Message: "must be at most 100 characters"})
	}
	return &Breed{name: name, createdAt: time.Now().UTC()}, nil
}

// Reconstruct rebuilds a Breed from persistence data (no validation).
func Reconstruct(id uint, name string, createdAt time.Time) *Breed {
	return &Breed{id: id, name: name, createdAt: createdAt}
}

func (b *Breed) ID() uint             { return b.id }
func (b *Breed) Name() string         { return b.name }
func (b *Breed) CreatedAt() time.Time { return b.createdAt }

// AssignID records the surrogate key generated on insert.
func (b *Breed) AssignID(id uint) { b.id = id }
