package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de stock sobre PostgreSQL. Append-only:
// solo INSERT y SELECT, nunca UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento en el libro.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, resulting_stock, reference_type, reference_id, reversal_of, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.Kind, movement.Quantity, movement.ResultingStock,
		movement.ReferenceType, movement.ReferenceID, movement.ReversalOf, movement.Notes,
		movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, kind, quantity, resulting_stock, reference_type, reference_id, reversal_of, notes, created_at, created_by
		FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.ResultingStock,
		&m.ReferenceType, &m.ReferenceID, &m.ReversalOf, &m.Notes, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return &m, nil
}

// ListByProduct lista los movimientos de un producto, más recientes primero,
// con filtro opcional por rango de fechas.
func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, kind, quantity, resulting_stock, reference_type, reference_id, reversal_of, notes, created_at, created_by
		FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, productID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByReference lista los movimientos ligados a un documento (venta u orden de servicio).
func (r *StockMovementRepo) ListByReference(referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, kind, quantity, resulting_stock, reference_type, reference_id, reversal_of, notes, created_at, created_by
		FROM stock_movements WHERE reference_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// HasReversalFor indica si ya existen movimientos compensatorios para la referencia.
func (r *StockMovementRepo) HasReversalFor(referenceID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM stock_movements WHERE reference_id = $1 AND reversal_of <> '')`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reversal: %w", err)
	}
	return exists, nil
}

// SumByProduct suma las cantidades con signo: el stock actual derivado del libro.
func (r *StockMovementRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE product_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.ResultingStock,
			&m.ReferenceType, &m.ReferenceID, &m.ReversalOf, &m.Notes, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
