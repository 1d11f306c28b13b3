package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel is the GORM model for the accounts table.
type AccountModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                 string    `gorm:"size:254;not null"`
	NormalizedEmail       string    `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash          string    `gorm:"size:100;not null"`
	EmailConfirmed        bool      `gorm:"not null;default:false"`
	ConfirmationTokenHash string    `gorm:"size:64"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (AccountModel) TableName() string { return "accounts" }

// AutoMigrate creates the accounts table. Used in development and tests only.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AccountModel{})
}
