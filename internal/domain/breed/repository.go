package breed

import "context"

// Repository defines persistence operations for breeds.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*Breed, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]*Breed, error)
	Save(ctx context.Context, b *Breed) error
	Delete(ctx context.Context, id uint) error
}
