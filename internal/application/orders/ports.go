package orders

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// LifecycleRepos repositorios atados a la transacción de una transición de orden.
type LifecycleRepos struct {
	Orders    repository.OrderRepository
	Movements repository.StockMovementRepository
	Stock     repository.StockRepository
	Products  repository.ProductRepository
	Entries   repository.AccountEntryRepository
	Cash      repository.CashMovementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD con todos los
// repositorios que una transición puede tocar. O todos los efectos confirman,
// o ninguno.
type TxRunner interface {
	RunLifecycle(ctx context.Context, fn func(r LifecycleRepos) error) error
}
