package animal

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

const (
	maxNameLength           = 100
	maxRegistryNumberLength = 50
)

var (
	// ErrMissingBreed means the breed reference is zero or unresolved.
	ErrMissingBreed = errors.New("missing breed")
	// ErrMissingBreeder means the breeder reference is zero or unresolved.
	ErrMissingBreeder = errors.New("missing breeder")
)

// Attributes are the user-editable fields of an Animal.
type Attributes struct {
	Name               string
	BirthDate          time.Time
	PurchaseDate       *time.Time
	PurchasePriceCents int64
	Sex                Sex
	RegistryNumber     string
	BreederID          uint
	BreedID            uint
}

// Relations carries associated rows loaded alongside an Animal.
type Relations struct {
	Breed   *breed.Breed
	Breeder *breeder.Breeder
	Photos  []*Photo
}

// Animal is the aggregate root for a registered dog. It owns its photos.
type Animal struct {
	id        uint
	attrs     Attributes
	photos    []*Photo
	breed     *breed.Breed
	breeder   *breeder.Breeder
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewAnimal validates attrs and creates an unsaved animal.
func NewAnimal(attrs Attributes) (*Animal, error) {
	attrs = normalize(attrs)
	if fields := ValidateAttributes(attrs); len(fields) > 0 {
		return nil, domain.NewValidationError("invalid animal", fields...)
	}
	now := time.Now().UTC()
	return &Animal{
		attrs:     attrs,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an Animal from persistence data (no validation).
func Reconstruct(id uint, attrs Attributes, rel Relations, version int64, createdAt, updatedAt time.Time) *Animal {
	return &Animal{
		id:        id,
		attrs:     attrs,
		photos:    rel.Photos,
		breed:     rel.Breed,
		breeder:   rel.Breeder,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (a *Animal) ID() uint                  { return a.id }
func (a *Animal) Name() string              { return a.attrs.Name }
func (a *Animal) BirthDate() time.Time      { return a.attrs.BirthDate }
func (a *Animal) PurchaseDate() *time.Time  { return a.attrs.PurchaseDate }
func (a *Animal) PurchasePriceCents() int64 { return a.attrs.PurchasePriceCents }
func (a *Animal) Sex() Sex                  { return a.attrs.Sex }
func (a *Animal) RegistryNumber() string    { return a.attrs.RegistryNumber }
func (a *Animal) BreederID() uint           { return a.attrs.BreederID }
func (a *Animal) BreedID() uint             { return a.attrs.BreedID }
func (a *Animal) Attributes() Attributes    { return a.attrs }
func (a *Animal) Photos() []*Photo          { return a.photos }
func (a *Animal) Breed() *breed.Breed       { return a.breed }
func (a *Animal) Breeder() *breeder.Breeder { return a.breeder }
func (a *Animal) Version() int64            { return a.version }
func (a *Animal) CreatedAt() time.Time      { return a.createdAt }
func (a *Animal) UpdatedAt() time.Time      { return a.updatedAt }

// --- Behavior ---

// AttachPhoto adds a photo to the animal before it is saved.
func (a *Animal) AttachPhoto(p *Photo) {
	a.photos = append(a.photos, p)
}

// AssignID records the surrogate key generated on insert.
func (a *Animal) AssignID(id uint) { a.id = id }

// Update replaces the editable fields. Photos are left untouched.
func (a *Animal) Update(attrs Attributes) error {
	attrs = normalize(attrs)
	if fields := ValidateAttributes(attrs); len(fields) > 0 {
		return domain.NewValidationError("invalid animal", fields...)
	}
	a.attrs = attrs
	a.breed = nil
	a.breeder = nil
	a.version++
	a.updatedAt = time.Now().UTC()
	return nil
}

// ValidateAttributes checks the per-field constraints. Reference existence
// is checked by the caller against storage.
func ValidateAttributes(attrs Attributes) []domain.FieldError {
	var fields []domain.FieldError
	if attrs.Name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	} else if utf8.RuneCountInString(attrs.Name) > maxNameLength {
		fields = append(fields, domain.FieldError{Field: "name", Message: "must be at most 100 characters"})
	}
	if attrs.BirthDate.IsZero() {
		fields = append(fields, domain.FieldError{Field: "birth_date", Message: "is required"})
	}
	if attrs.PurchaseDate != nil && !attrs.BirthDate.IsZero() && attrs.PurchaseDate.Before(attrs.BirthDate) {
		fields = append(fields, domain.FieldError{Field: "purchase_date", Message: "cannot precede the birth date"})
	}
	if attrs.PurchasePriceCents < 0 {
		fields = append(fields, domain.FieldError{Field: "purchase_price", Message: "cannot be negative"})
	}
	if !attrs.Sex.IsValid() {
		fields = append(fields, domain.FieldError{Field: "sex", Message: "must be F or M"})
	}
	if utf8.RuneCountInString(attrs.RegistryNumber) > maxRegistryNumberLength {
		fields = append(fields, domain.FieldError{Field: "registry_number", Message: "must be at most 50 characters"})
	}
	return fields
}

func normalize(attrs Attributes) Attributes {
	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.RegistryNumber = strings.TrimSpace(attrs.RegistryNumber)
	attrs.BirthDate = truncateDay(attrs.BirthDate)
	if attrs.PurchaseDate != nil {
		d := truncateDay(*attrs.PurchaseDate)
		attrs.PurchaseDate = &d
	}
	return attrs
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
