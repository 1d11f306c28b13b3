package breeder

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/validation"
)

const maxNameLength = 100

// Breeder is a person or kennel that owns animals. It may be linked to
// exactly one authenticated account.
type Breeder struct {
	id        uint
	name      string
	email     string
	userID    *uuid.UUID
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBreeder creates an unlinked breeder (administrative entry).
func NewBreeder(name, email string) (*Breeder, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if fields := validate(name, email); len(fields) > 0 {
		return nil, domain.NewValidationError("invalid breeder", fields...)
	}
	now := time.Now().UTC()
	return &Breeder{
		name:      name,
		email:     email,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewLinkedBreeder creates a breeder bound to an account. The email always
// comes from the account, never from the submitted profile.
func NewLinkedBreeder(name string, userID uuid.UUID, accountEmail string) (*Breeder, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("invalid breeder", domain.FieldError{Field: "user_id", Message: "is required"})
	}
	b, err := NewBreeder(name, accountEmail)
	if err != nil {
		return nil, err
	}
	id := userID
	b.userID = &id
	return b, nil
}

// Reconstruct rebuilds a Breeder from persistence data (no validation).
func Reconstruct(id uint, name, email string, userID *uuid.UUID, version int64, createdAt, updatedAt time.Time) *Breeder {
	return &Breeder{
		id:        id,
		name:      name,
		email:     email,
		userID:    userID,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (b *Breeder) ID() uint             { return b.id }
func (b *Breeder) Name() string         { return b.name }
func (b *Breeder) Email() string        { return b.email }
func (b *Breeder) UserID() *uuid.UUID   { return b.userID }
func (b *Breeder) Version() int64       { return b.version }
func (b *Breeder) CreatedAt() time.Time { return b.createdAt }
func (b *Breeder) UpdatedAt() time.Time { return b.updatedAt }

// IsLinked reports whether the breeder is bound to an account.
func (b *Breeder) IsLinked() bool { return b.userID != nil }

// AssignID records the surrogate key generated on insert.
func (b *Breeder) AssignID(id uint) { b.id = id }

// Update changes the profile. A linked breeder keeps the account's email.
func (b *Breeder) Update(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email == "" {
		email = b.email
	}
	fields := validate(name, email)
	if b.IsLinked() && !strings.EqualFold(email, b.email) {
		fields = append(fields, domain.FieldError{Field: "email", Message: "is managed by the linked account"})
	}
	if len(fields) > 0 {
		return domain.NewValidationError("invalid breeder", fields...)
	}
	b.name = name
	b.email = email
	b.version++
	b.updatedAt = time.Now().UTC()
	return nil
}

func validate(name, email string) []domain.FieldError {
	var fields []domain.FieldError
	if name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	} else if utf8.RuneCountInString(name) > maxNameLength {
		fields = append(fields, domain.FieldError{Field: "name", Message: "must be at most 100 characters"})
	}
	if !validation.Email(email) {
		fields = append(fields, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	return fields
}
