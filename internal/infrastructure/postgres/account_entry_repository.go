package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.AccountEntryRepository = (*AccountEntryRepo)(nil)

const entryColumns = `id, order_id, direction, amount, due_date, status, paid_amount, paid_at, version, created_at, updated_at`

// AccountEntryRepo implementación de AccountEntryRepository sobre PostgreSQL.
// El estado overdue y el recargo por mora son derivados en lectura: nunca se persisten.
type AccountEntryRepo struct {
	q Querier
}

// NewAccountEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountEntryRepository(q Querier) *AccountEntryRepo {
	return &AccountEntryRepo{q: q}
}

// Create persiste una cuenta. La restricción única sobre order_id garantiza
// una sola cuenta por orden: violarla devuelve ErrDuplicate.
func (r *AccountEntryRepo) Create(entry *entity.AccountEntry) error {
	query := `
		INSERT INTO account_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.OrderID, entry.Direction, entry.Amount, entry.DueDate,
		entry.Status, entry.PaidAmount, entry.PaidAt, entry.Version, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert account entry: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *AccountEntryRepo) GetByID(id string) (*entity.AccountEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE id = $1`
	return scanEntry(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene la cuenta bloqueando su fila (SELECT FOR UPDATE).
func (r *AccountEntryRepo) GetForUpdate(id string) (*entity.AccountEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE id = $1 FOR UPDATE`
	return scanEntry(r.q.QueryRow(context.Background(), query, id))
}

// GetByOrderID obtiene la cuenta ligada a una orden.
func (r *AccountEntryRepo) GetByOrderID(orderID string) (*entity.AccountEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE order_id = $1`
	return scanEntry(r.q.QueryRow(context.Background(), query, orderID))
}

// Update persiste estado y abonos con control optimista: compara Version y la
// incrementa; si la fila cambió, ErrConcurrencyConflict.
func (r *AccountEntryRepo) Update(entry *entity.AccountEntry) error {
	query := `
		UPDATE account_entries SET status = $2, paid_amount = $3, paid_at = $4,
			version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $6`
	cmd, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.Status, entry.PaidAmount, entry.PaidAt, entry.UpdatedAt, entry.Version,
	)
	if err != nil {
		return fmt.Errorf("update account entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		existing, err := r.GetByID(entry.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrencyConflict
	}
	entry.Version++
	return nil
}

// List lista cuentas con filtros opcionales por dirección y estado persistido.
func (r *AccountEntryRepo) List(direction, status string, limit, offset int) ([]*entity.AccountEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM account_entries
		WHERE ($1 = '' OR direction = $1) AND ($2 = '' OR status = $2)
		ORDER BY due_date LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, direction, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list account entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AccountEntry
	for rows.Next() {
		var e entity.AccountEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Direction, &e.Amount, &e.DueDate,
			&e.Status, &e.PaidAmount, &e.PaidAt, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func scanEntry(row pgx.Row) (*entity.AccountEntry, error) {
	var e entity.AccountEntry
	err := row.Scan(&e.ID, &e.OrderID, &e.Direction, &e.Amount, &e.DueDate,
		&e.Status, &e.PaidAmount, &e.PaidAt, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account entry: %w", err)
	}
	return &e, nil
}
