package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
)

// Gateway implements gateway.Gateway on a GORM connection.
type Gateway struct {
	db *gorm.DB
}

func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Stores() gateway.Stores {
	return storesFor(g.db)
}

// RunInTx binds fresh repositories to a transaction. Repositories captured
// from Stores() must not be used inside fn; they run outside the transaction.
func (g *Gateway) RunInTx(ctx context.Context, fn func(gateway.Stores) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(storesFor(tx))
	})
}

func storesFor(db *gorm.DB) gateway.Stores {
	return gateway.Stores{
		Breeds:   NewGormBreedRepository(db),
		Breeders: NewGormBreederRepository(db),
		Animals:  NewGormAnimalRepository(db),
	}
}
