package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	breedDomain "github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// GormBreedRepository implements breed.Repository using GORM.
type GormBreedRepository struct {
	db *gorm.DB
}

func NewGormBreedRepository(db *gorm.DB) *GormBreedRepository {
	return &GormBreedRepository{db: db}
}

func (r *GormBreedRepository) FindByID(ctx context.Context, id uint) (*breedDomain.Breed, error) {
	var model BreedModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Breed", strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return toBreedDomain(&model), nil
}

func (r *GormBreedRepository) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&BreedModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every breed ordered by name.
func (r *GormBreedRepository) List(ctx context.Context) ([]*breedDomain.Breed, error) {
	var models []BreedModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	breeds := make([]*breedDomain.Breed, len(models))
	for i := range models {
		breeds[i] = toBreedDomain(&models[i])
	}
	return breeds, nil
}

func (r *GormBreedRepository) Save(ctx context.Context, b *breedDomain.Breed) error {
	model := toBreedModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	b.AssignID(model.ID)
	return nil
}

func (r *GormBreedRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BreedModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Breed", strconv.FormatUint(uint64(id), 10))
	}
	return nil
}

func toBreedModel(b *breedDomain.Breed) *BreedModel {
	return &BreedModel{ID: b.ID(), Name: b.Name(), CreatedAt: b.CreatedAt()}
}

func toBreedDomain(m *BreedModel) *breedDomain.Breed {
	return breedDomain.Reconstruct(m.ID, m.Name, m.CreatedAt)
}
