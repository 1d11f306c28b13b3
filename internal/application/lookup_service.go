package application

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
)

const (
	breedsKey   = "breeds"
	breedersKey = "breeders"
)

// LookupService serves the (id, name) projections used to fill selection
// inputs. With a zero TTL every call reads committed state. A positive TTL
// caches the lists for at most that long; catalog writes flush the cache.
type LookupService struct {
	gw     gateway.Gateway
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewLookupService creates a new LookupService.
func NewLookupService(gw gateway.Gateway, ttl time.Duration, logger *zap.Logger) *LookupService {
	s := &LookupService{gw: gw, logger: logger}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

// ListBreeds returns every breed ordered by name.
func (s *LookupService) ListBreeds(ctx context.Context) ([]Option, error) {
	return s.cached(breedsKey, func() ([]Option, error) {
		breeds, err := s.gw.Stores().Breeds.List(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(breeds))
		for i, b := range breeds {
			opts[i] = Option{ID: b.ID(), Name: b.Name()}
		}
		return opts, nil
	})
}

// ListBreeders returns every breeder ordered by name.
func (s *LookupService) ListBreeders(ctx context.Context) ([]Option, error) {
	return s.cached(breedersKey, func() ([]Option, error) {
		breeders, err := s.gw.Stores().Breeders.List(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(breeders))
		for i, b := range breeders {
			opts[i] = Option{ID: b.ID(), Name: b.Name()}
		}
		return opts, nil
	})
}

// Options returns both lists, as needed to redisplay an animal form.
func (s *LookupService) Options(ctx context.Context) (breeds, breeders []Option, err error) {
	if breeds, err = s.ListBreeds(ctx); err != nil {
		return nil, nil, err
	}
	if breeders, err = s.ListBreeders(ctx); err != nil {
		return nil, nil, err
	}
	return breeds, breeders, nil
}

// Invalidate drops cached lists after a catalog write.
func (s *LookupService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func (s *LookupService) cached(key string, load func() ([]Option, error)) ([]Option, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return copyOptions(v.([]Option)), nil
		}
	}
	opts, err := load()
	if err != nil {
		s.logger.Error("failed to load lookup list", zap.String("list", key), zap.Error(err))
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, copyOptions(opts))
	}
	return opts, nil
}

func copyOptions(in []Option) []Option {
	out := make([]Option, len(in))
	copy(out, in)
	return out
}
