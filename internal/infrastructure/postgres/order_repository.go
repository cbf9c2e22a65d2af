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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, number, kind, status, customer_id, vehicle_id, order_discount_type, order_discount_value,
	labor_cost, subtotal, discount_amount, total_amount, payment_method, paid, valid_until, converted_to_id,
	notes, version, created_at, updated_at, created_by`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste una orden nueva con sus líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Number, order.Kind, order.Status, order.CustomerID, order.VehicleID,
		order.OrderDiscountType, order.OrderDiscountValue, order.LaborCost,
		order.Subtotal, order.DiscountAmount, order.TotalAmount,
		order.PaymentMethod, order.Paid, order.ValidUntil, order.ConvertedToID,
		order.Notes, order.Version, order.CreatedAt, order.UpdatedAt, order.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertLines(order.ID, order.Lines)
}

// GetByID obtiene una orden con sus líneas.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.getOne(id, false)
}

// GetForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE). Usar solo
// dentro de la transacción de una transición.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.getOne(id, true)
}

// Update persiste estado y totales con control optimista: compara Version y la
// incrementa; si la fila cambió, ErrConcurrencyConflict.
func (r *OrderRepo) Update(order *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, order_discount_type = $3, order_discount_value = $4,
			labor_cost = $5, subtotal = $6, discount_amount = $7, total_amount = $8,
			payment_method = $9, paid = $10, valid_until = $11, converted_to_id = $12,
			notes = $13, version = version + 1, updated_at = $14
		WHERE id = $1 AND version = $15`
	cmd, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.OrderDiscountType, order.OrderDiscountValue,
		order.LaborCost, order.Subtotal, order.DiscountAmount, order.TotalAmount,
		order.PaymentMethod, order.Paid, order.ValidUntil, order.ConvertedToID,
		order.Notes, order.UpdatedAt, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		existing, err := r.GetByID(order.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrencyConflict
	}
	order.Version++
	return nil
}

// ReplaceLines reemplaza todas las líneas de la orden.
func (r *OrderRepo) ReplaceLines(orderID string, lines []entity.OrderLine) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return r.insertLines(orderID, lines)
}

// List lista órdenes con filtros opcionales por clase y estado.
func (r *OrderRepo) List(kind, status string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, kind, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return r.scanWithLines(rows)
}

// ListByCustomer lista las órdenes de un cliente.
func (r *OrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders by customer: %w", err)
	}
	defer rows.Close()
	return r.scanWithLines(rows)
}

// NextNumber devuelve el siguiente consecutivo para la clase de orden. El upsert
// sobre el contador es atómico: dos llamadas concurrentes nunca reciben el mismo número.
func (r *OrderRepo) NextNumber(kind string) (int, error) {
	query := `
		INSERT INTO order_counters (kind, value) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET value = order_counters.value + 1
		RETURNING value`
	var n int
	if err := r.q.QueryRow(context.Background(), query, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// RegisterTransition inserta la llave de idempotencia (order_id, to_status).
// Devuelve false si ya existía: la transición ya fue aplicada.
func (r *OrderRepo) RegisterTransition(orderID, toStatus, actorID string) (bool, error) {
	query := `
		INSERT INTO order_transitions (order_id, to_status, actor_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (order_id, to_status) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query, orderID, toStatus, actorID)
	if err != nil {
		return false, fmt.Errorf("register transition: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *OrderRepo) getOne(id string, forUpdate bool) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.Number, &o.Kind, &o.Status, &o.CustomerID, &o.VehicleID,
		&o.OrderDiscountType, &o.OrderDiscountValue, &o.LaborCost,
		&o.Subtotal, &o.DiscountAmount, &o.TotalAmount,
		&o.PaymentMethod, &o.Paid, &o.ValidUntil, &o.ConvertedToID,
		&o.Notes, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	lines, err := r.loadLines(o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) insertLines(orderID string, lines []entity.OrderLine) error {
	for _, line := range lines {
		query := `
			INSERT INTO order_lines (id, order_id, product_id, description, quantity, unit_price, line_discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := r.q.Exec(context.Background(), query,
			line.ID, orderID, line.ProductID, line.Description,
			line.Quantity, line.UnitPrice, line.LineDiscount, line.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) loadLines(orderID string) ([]entity.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, description, quantity, unit_price, line_discount, line_total
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.LineDiscount, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *OrderRepo) scanWithLines(rows pgx.Rows) ([]*entity.Order, error) {
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.Kind, &o.Status, &o.CustomerID, &o.VehicleID,
			&o.OrderDiscountType, &o.OrderDiscountValue, &o.LaborCost,
			&o.Subtotal, &o.DiscountAmount, &o.TotalAmount,
			&o.PaymentMethod, &o.Paid, &o.ValidUntil, &o.ConvertedToID,
			&o.Notes, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		lines, err := r.loadLines(o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}
	return list, nil
}
