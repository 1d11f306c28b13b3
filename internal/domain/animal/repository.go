package animal

import "context"

// Include selects which relations a query loads.
type Include struct {
	Breed   bool
	Breeder bool
	Photos  bool
}

// Repository defines persistence operations for animals and their photos.
type Repository interface {
	FindByID(ctx context.Context, id uint, include Include) (*Animal, error)
	List(ctx context.Context, include Include) ([]*Animal, error)
	Exists(ctx context.Context, id uint) (bool, error)
	CountByBreed(ctx context.Context, breedID uint) (int64, error)
	// Save inserts the animal together with its attached photos.
	Save(ctx context.Context, a *Animal) error
	// Update applies an optimistic write against the version before the last change.
	Update(ctx context.Context, a *Animal) error
	// Delete removes the animal and every photo it owns.
	Delete(ctx context.Context, id uint) error
	FindPhotos(ctx context.Context, animalID uint) ([]*Photo, error)
	ListPhotos(ctx context.Context) ([]*Photo, error)
	// ResetPhoto points a photo row back at the sentinel.
	ResetPhoto(ctx context.Context, photoID uint) error
}
