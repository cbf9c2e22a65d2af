package finance

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// financieros atados a esa tx (liquidaciones y anulaciones atómicas).
type TxRunner interface {
	RunFinance(ctx context.Context, fn func(
		entryRepo repository.AccountEntryRepository,
		cashRepo repository.CashMovementRepository,
	) error) error
}
