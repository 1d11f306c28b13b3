package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	breederDomain "github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// GormBreederRepository implements breeder.Repository using GORM.
type GormBreederRepository struct {
	db *gorm.DB
}

func NewGormBreederRepository(db *gorm.DB) *GormBreederRepository {
	return &GormBreederRepository{db: db}
}

func (r *GormBreederRepository) FindByID(ctx context.Context, id uint) (*breederDomain.Breeder, error) {
	var model BreederModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Breeder", strconv.FormatUint(uint64(id), 10))
		}
		return nil, err
	}
	return toBreederDomain(&model), nil
}

func (r *GormBreederRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*breederDomain.Breeder, error) {
	var model BreederModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Breeder", userID.String())
		}
		return nil, err
	}
	return toBreederDomain(&model), nil
}

func (r *GormBreederRepository) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&BreederModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every breeder ordered by name.
func (r *GormBreederRepository) List(ctx context.Context) ([]*breederDomain.Breeder, error) {
	var models []BreederModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	breeders := make([]*breederDomain.Breeder, len(models))
	for i := range models {
		breeders[i] = toBreederDomain(&models[i])
	}
	return breeders, nil
}

func (r *GormBreederRepository) Save(ctx context.Context, b *breederDomain.Breeder) error {
	model := toBreederModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("account is already linked to a breeder")
		}
		return err
	}
	b.AssignID(model.ID)
	return nil
}

func (r *GormBreederRepository) Update(ctx context.Context, b *breederDomain.Breeder) error {
	model := toBreederModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BreederModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("name", "email", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("breeder was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toBreederModel(b *breederDomain.Breeder) *BreederModel {
	return &BreederModel{
		ID:        b.ID(),
		Name:      b.Name(),
		Email:     b.Email(),
		UserID:    b.UserID(),
		Version:   b.Version(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toBreederDomain(m *BreederModel) *breederDomain.Breeder {
	return breederDomain.Reconstruct(m.ID, m.Name, m.Email, m.UserID, m.Version, m.CreatedAt, m.UpdatedAt)
}
