package application

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// CreateBreedRequest holds the data to add a breed.
type CreateBreedRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

// CreateBreederRequest holds the data for an administrative breeder entry.
type CreateBreederRequest struct {
	Name  string `json:"name" form:"name" binding:"required"`
	Email string `json:"email" form:"email" binding:"required"`
}

// UpdateBreederRequest changes a breeder profile. Version is the value the
// caller read; a mismatch is reported as a conflict.
type UpdateBreederRequest struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email"`
	Version int64  `json:"version" form:"version"`
}

// CatalogService handles administrative entry of breeds and breeders.
type CatalogService struct {
	gw     gateway.Gateway
	lookup *LookupService
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(gw gateway.Gateway, lookup *LookupService, logger *zap.Logger) *CatalogService {
	return &CatalogService{gw: gw, lookup: lookup, logger: logger}
}

// CreateBreed adds a breed.
func (s *CatalogService) CreateBreed(ctx context.Context, req CreateBreedRequest) (*BreedDTO, error) {
	b, err := breed.NewBreed(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.gw.Stores().Breeds.Save(ctx, b); err != nil {
		return nil, err
	}
	s.lookup.Invalidate()

	s.logger.Info("breed created", zap.Uint("breed_id", b.ID()), zap.String("name", b.Name()))
	return toBreedDTO(b), nil
}

// DeleteBreed removes a breed no animal references.
func (s *CatalogService) DeleteBreed(ctx context.Context, id uint) error {
	err := s.gw.RunInTx(ctx, func(st gateway.Stores) error {
		if _, err := st.Breeds.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := st.Animals.CountByBreed(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.NewConflictError("breed is referenced by " + strconv.FormatInt(n, 10) + " animal(s)")
		}
		return st.Breeds.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.lookup.Invalidate()

	s.logger.Info("breed deleted", zap.Uint("breed_id", id))
	return nil
}

// CreateBreeder adds a breeder that is not linked to an account.
func (s *CatalogService) CreateBreeder(ctx context.Context, req CreateBreederRequest) (*BreederDTO, error) {
	b, err := breeder.NewBreeder(req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.gw.Stores().Breeders.Save(ctx, b); err != nil {
		return nil, err
	}
	s.lookup.Invalidate()

	s.logger.Info("breeder created", zap.Uint("breeder_id", b.ID()))
	return toBreederDTO(b), nil
}

// GetBreeder returns a breeder by id.
func (s *CatalogService) GetBreeder(ctx context.Context, id uint) (*BreederDTO, error) {
	b, err := s.gw.Stores().Breeders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBreederDTO(b), nil
}

// UpdateBreeder changes a breeder profile under optimistic concurrency.
func (s *CatalogService) UpdateBreeder(ctx context.Context, id uint, req UpdateBreederRequest) (*BreederDTO, error) {
	breeders := s.gw.Stores().Breeders
	b, err := breeders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != b.Version() {
		return nil, domain.NewConflictError("breeder was modified since it was read")
	}
	if err := b.Update(req.Name, req.Email); err != nil {
		return nil, err
	}
	if err := breeders.Update(ctx, b); err != nil {
		if domain.IsConflict(err) {
			if ok, exErr := breeders.Exists(ctx, id); exErr == nil && !ok {
				return nil, domain.NewNotFoundError("Breeder", strconv.FormatUint(uint64(id), 10))
			}
		}
		return nil, err
	}
	s.lookup.Invalidate()

	s.logger.Info("breeder updated", zap.Uint("breeder_id", id), zap.Int64("version", b.Version()))
	return toBreederDTO(b), nil
}
