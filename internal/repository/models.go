package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BreedModel is the GORM model for the breeds table.
type BreedModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (BreedModel) TableName() string { return "breeds" }

// BreederModel is the GORM model for the breeders table.
type BreederModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"size:100;not null"`
	Email     string     `gorm:"size:254;not null"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Version   int64      `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (BreederModel) TableName() string { return "breeders" }

// AnimalModel is the GORM model for the animals table.
type AnimalModel struct {
	ID                 uint          `gorm:"primaryKey;autoIncrement"`
	Name               string        `gorm:"size:100;not null"`
	BirthDate          time.Time     `gorm:"not null"`
	PurchaseDate       *time.Time    `gorm:"default:null"`
	PurchasePriceCents int64         `gorm:"not null;default:0"`
	Sex                string        `gorm:"size:1;not null"`
	RegistryNumber     string        `gorm:"size:50"`
	BreederID          uint          `gorm:"not null;index"`
	BreedID            uint          `gorm:"not null;index"`
	Breeder            *BreederModel `gorm:"foreignKey:BreederID;constraint:OnDelete:RESTRICT"`
	Breed              *BreedModel   `gorm:"foreignKey:BreedID;constraint:OnDelete:RESTRICT"`
	Photos             []PhotoModel  `gorm:"foreignKey:AnimalID;constraint:OnDelete:CASCADE"`
	Version            int64         `gorm:"not null;default:1"`
	CreatedAt          time.Time     `gorm:"not null"`
	UpdatedAt          time.Time     `gorm:"not null"`
}

func (AnimalModel) TableName() string { return "animals" }

// PhotoModel is the GORM model for the photos table.
type PhotoModel struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	AnimalID uint      `gorm:"not null;index"`
	TakenAt  time.Time `gorm:"not null"`
	Location string    `gorm:"size:200"`
	FileName string    `gorm:"size:255;not null"`
}

func (PhotoModel) TableName() string { return "photos" }

// AutoMigrate creates the kennel tables. Used in development and tests;
// other environments apply the SQL files under migrations/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BreedModel{}, &BreederModel{}, &AnimalModel{}, &PhotoModel{})
}
