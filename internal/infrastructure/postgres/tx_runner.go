package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/application/orders"
	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// Ensure TxRunner implements the application transaction ports.
var _ stock.TxRunner = (*TxRunner)(nil)
var _ finance.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del libro de stock y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	stockRepo := NewStockRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(movRepo, stockRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunFinance inicia una transacción con los repos financieros (cuentas y caja).
func (r *TxRunner) RunFinance(ctx context.Context, fn func(
	entryRepo repository.AccountEntryRepository,
	cashRepo repository.CashMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entryRepo := NewAccountEntryRepository(tx)
	cashRepo := NewCashMovementRepository(tx)

	if err := fn(entryRepo, cashRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunLifecycle inicia una transacción con todos los repos que una transición de
// orden puede tocar: o todos los efectos confirman, o ninguno.
func (r *TxRunner) RunLifecycle(ctx context.Context, fn func(repos orders.LifecycleRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := orders.LifecycleRepos{
		Orders:    NewOrderRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Stock:     NewStockRepository(tx),
		Products:  NewProductRepository(tx),
		Entries:   NewAccountEntryRepository(tx),
		Cash:      NewCashMovementRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
