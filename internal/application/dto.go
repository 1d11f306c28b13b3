package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
)

// Option is an (id, display name) pair for selection inputs.
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BreedDTO is the response representation of a breed.
type BreedDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BreederDTO is the response representation of a breeder.
type BreederDTO struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PhotoDTO is the response representation of an animal photo.
type PhotoDTO struct {
	ID       uint      `json:"id"`
	TakenAt  time.Time `json:"taken_at"`
	Location string    `json:"location"`
	FileName string    `json:"file_name"`
	Sentinel bool      `json:"sentinel"`
}

// AnimalDTO is the response representation of an animal.
type AnimalDTO struct {
	ID             uint        `json:"id"`
	Name           string      `json:"name"`
	BirthDate      string      `json:"birth_date"`
	PurchaseDate   string      `json:"purchase_date,omitempty"`
	PurchasePrice  string      `json:"purchase_price"`
	Sex            string      `json:"sex"`
	RegistryNumber string      `json:"registry_number,omitempty"`
	BreedID        uint        `json:"breed_id"`
	BreederID      uint        `json:"breeder_id"`
	Breed          *BreedDTO   `json:"breed,omitempty"`
	Breeder        *BreederDTO `json:"breeder,omitempty"`
	Photos         []PhotoDTO  `json:"photos,omitempty"`
	Version        int64       `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func toBreedDTO(b *breed.Breed) *BreedDTO {
	return &BreedDTO{ID: b.ID(), Name: b.Name(), CreatedAt: b.CreatedAt()}
}

func toBreederDTO(b *breeder.Breeder) *BreederDTO {
	return &BreederDTO{
		ID:        b.ID(),
		Name:      b.Name(),
		Email:     b.Email(),
		UserID:    b.UserID(),
		Version:   b.Version(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toAnimalDTO(a *animal.Animal) *AnimalDTO {
	dto := &AnimalDTO{
		ID:             a.ID(),
		Name:           a.Name(),
		BirthDate:      a.BirthDate().Format(dateLayout),
		PurchasePrice:  animal.FormatPriceCents(a.PurchasePriceCents()),
		Sex:            string(a.Sex()),
		RegistryNumber: a.RegistryNumber(),
		BreedID:        a.BreedID(),
		BreederID:      a.BreederID(),
		Version:        a.Version(),
		CreatedAt:      a.CreatedAt(),
		UpdatedAt:      a.UpdatedAt(),
	}
	if d := a.PurchaseDate(); d != nil {
		dto.PurchaseDate = d.Format(dateLayout)
	}
	if a.Breed() != nil {
		dto.Breed = toBreedDTO(a.Breed())
	}
	if a.Breeder() != nil {
		dto.Breeder = toBreederDTO(a.Breeder())
	}
	for _, p := range a.Photos() {
		dto.Photos = append(dto.Photos, PhotoDTO{
			ID:       p.ID(),
			TakenAt:  p.TakenAt(),
			Location: p.Location(),
			FileName: p.FileName(),
			Sentinel: p.IsSentinel(),
		})
	}
	return dto
}
