package breeder

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for breeders.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*Breeder, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Breeder, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]*Breeder, error)
	Save(ctx context.Context, b *Breeder) error
	Update(ctx context.Context, b *Breeder) error
}
