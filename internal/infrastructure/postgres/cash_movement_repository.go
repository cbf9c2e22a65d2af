package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.CashMovementRepository = (*CashMovementRepo)(nil)

// CashMovementRepo implementación de CashMovementRepository sobre PostgreSQL.
// Append-only: la caja no se edita, se corrige con movimientos nuevos.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

// Create inserta un movimiento de caja.
func (r *CashMovementRepo) Create(movement *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, type, amount, category, description, account_entry_id, method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Type, movement.Amount, movement.Category, movement.Description,
		movement.AccountEntryID, movement.Method, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// List lista movimientos de caja con filtros opcionales por tipo, categoría y rango de fechas.
func (r *CashMovementRepo) List(movType, category string, from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, type, amount, category, description, account_entry_id, method, created_at, created_by
		FROM cash_movements
		WHERE ($1 = '' OR type = $1) AND ($2 = '' OR category = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(context.Background(), query, movType, category, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.Type, &m.Amount, &m.Category, &m.Description,
			&m.AccountEntryID, &m.Method, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
