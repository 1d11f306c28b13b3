package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	animalDomain "github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// GormAnimalRepository implements animal.Repository using GORM.
type GormAnimalRepository struct {
	db *gorm.DB
}

func NewGormAnimalRepository(db *gorm.DB) *GormAnimalRepository {
	return &GormAnimalRepository{db: db}
}

func (r *GormAnimalRepository) query(ctx context.Context, include animalDomain.Include) *gorm.DB {
	q := r.db.WithContext(ctx)
	if include.Breed {
		q = q.Preload("Breed")
	}
	if include.Breeder {
		q = q.Preload("Breeder")
	}
	if include.Photos {
		q = q.Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("photos.id ASC") })
	}
	return q
}

func (r *GormAnimalRepository) FindByID(ctx context.Context, id uint, include animalDomain.Include) (*animalDomain.Animal, error) {
	var model AnimalModel
	if err := r.query(ctx, include).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, animalNotFound(id)
		}
		return nil, err
	}
	return toAnimalDomain(&model), nil
}

func (r *GormAnimalRepository) List(ctx context.Context, include animalDomain.Include) ([]*animalDomain.Animal, error) {
	var models []AnimalModel
	if err := r.query(ctx, include).Order("name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	animals := make([]*animalDomain.Animal, len(models))
	for i := range models {
		animals[i] = toAnimalDomain(&models[i])
	}
	return animals, nil
}

func (r *GormAnimalRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&AnimalModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormAnimalRepository) CountByBreed(ctx context.Context, breedID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AnimalModel{}).Where("breed_id = ?", breedID).Count(&count).Error
	return count, err
}

// Save inserts the animal row first, then each attached photo with the new key.
// Run it inside a transaction so a failing photo insert discards the animal.
func (r *GormAnimalRepository) Save(ctx context.Context, a *animalDomain.Animal) error {
	model := toAnimalModel(a)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	a.AssignID(model.ID)

	for _, p := range a.Photos() {
		pm := toPhotoModel(p)
		pm.AnimalID = model.ID
		if err := db.Create(pm).Error; err != nil {
			return err
		}
		p.AssignIDs(pm.ID, model.ID)
	}
	return nil
}

func (r *GormAnimalRepository) Update(ctx context.Context, a *animalDomain.Animal) error {
	model := toAnimalModel(a)
	previousVersion := a.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&AnimalModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("name", "birth_date", "purchase_date", "purchase_price_cents", "sex",
			"registry_number", "breeder_id", "breed_id", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("animal was modified by another transaction")
	}
	return nil
}

// Delete removes the photos explicitly as well as relying on the cascade,
// so the result is the same on databases created without foreign keys.
func (r *GormAnimalRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("animal_id = ?", id).Delete(&PhotoModel{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&AnimalModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return animalNotFound(id)
	}
	return nil
}

func (r *GormAnimalRepository) FindPhotos(ctx context.Context, animalID uint) ([]*animalDomain.Photo, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toPhotosDomain(models), nil
}

func (r *GormAnimalRepository) ListPhotos(ctx context.Context) ([]*animalDomain.Photo, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toPhotosDomain(models), nil
}

func (r *GormAnimalRepository) ResetPhoto(ctx context.Context, photoID uint) error {
	result := r.db.WithContext(ctx).
		Model(&PhotoModel{}).
		Where("id = ?", photoID).
		Updates(map[string]any{
			"file_name": animalDomain.SentinelFileName,
			"location":  animalDomain.NoPhotoLocation,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Photo", strconv.FormatUint(uint64(photoID), 10))
	}
	return nil
}

func animalNotFound(id uint) error {
	return domain.NewNotFoundError("Animal", strconv.FormatUint(uint64(id), 10))
}

// --- Conversions ---

func toAnimalModel(a *animalDomain.Animal) *AnimalModel {
	return &AnimalModel{
		ID:                 a.ID(),
		Name:               a.Name(),
		BirthDate:          a.BirthDate(),
		PurchaseDate:       a.PurchaseDate(),
		PurchasePriceCents: a.PurchasePriceCents(),
		Sex:                string(a.Sex()),
		RegistryNumber:     a.RegistryNumber(),
		BreederID:          a.BreederID(),
		BreedID:            a.BreedID(),
		Version:            a.Version(),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
}

func toAnimalDomain(m *AnimalModel) *animalDomain.Animal {
	attrs := animalDomain.Attributes{
		Name:               m.Name,
		BirthDate:          m.BirthDate,
		PurchaseDate:       m.PurchaseDate,
		PurchasePriceCents: m.PurchasePriceCents,
		Sex:                animalDomain.Sex(m.Sex),
		RegistryNumber:     m.RegistryNumber,
		BreederID:          m.BreederID,
		BreedID:            m.BreedID,
	}
	var rel animalDomain.Relations
	if m.Breed != nil {
		rel.Breed = breed.Reconstruct(m.Breed.ID, m.Breed.Name, m.Breed.CreatedAt)
	}
	if m.Breeder != nil {
		rel.Breeder = breeder.Reconstruct(m.Breeder.ID, m.Breeder.Name, m.Breeder.Email,
			m.Breeder.UserID, m.Breeder.Version, m.Breeder.CreatedAt, m.Breeder.UpdatedAt)
	}
	if m.Photos != nil {
		rel.Photos = toPhotosDomain(m.Photos)
	}
	return animalDomain.Reconstruct(m.ID, attrs, rel, m.Version, m.CreatedAt, m.UpdatedAt)
}

func toPhotoModel(p *animalDomain.Photo) *PhotoModel {
	return &PhotoModel{
		ID:       p.ID(),
		AnimalID: p.AnimalID(),
		TakenAt:  p.TakenAt(),
		Location: p.Location(),
		FileName: p.FileName(),
	}
}

func toPhotosDomain(models []PhotoModel) []*animalDomain.Photo {
	photos := make([]*animalDomain.Photo, len(models))
	for i, m := range models {
		photos[i] = animalDomain.ReconstructPhoto(m.ID, m.AnimalID, m.TakenAt, m.Location, m.FileName)
	}
	return photos
}
