// Package gateway defines the transactional boundary over the kennel relations.
package gateway

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
)

// Stores groups the repositories bound to one connection or transaction.
type Stores struct {
	Breeds   breed.Repository
	Breeders breeder.Repository
	Animals  animal.Repository
}

// Gateway hands out repositories and runs units of work atomically.
type Gateway interface {
	// Stores returns repositories outside any transaction.
	Stores() Stores
	// RunInTx commits every change made through the given stores, or none
	// of them when fn returns an error.
	RunInTx(ctx context.Context, fn func(Stores) error) error
}
