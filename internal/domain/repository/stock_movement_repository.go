package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de stock
// (append-only: no hay Update ni Delete).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(referenceID string) ([]*entity.StockMovement, error)
	// HasReversalFor indica si ya existen movimientos compensatorios para la
	// referencia (hace idempotente la reversa).
	HasReversalFor(referenceID string) (bool, error)
	// SumByProduct suma las cantidades con signo de todos los movimientos del
	// producto: el stock actual derivado del libro.
	SumByProduct(productID string) (decimal.Decimal, error)
}
