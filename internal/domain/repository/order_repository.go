package repository

import "github.com/jhoicas/taller-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE); usar dentro
	// de la transacción de una transición.
	GetForUpdate(id string) (*entity.Order, error)
	// Update persiste estado y totales con control optimista: compara Version
	// y la incrementa; si la fila cambió, ErrConcurrencyConflict.
	Update(order *entity.Order) error
	ReplaceLines(orderID string, lines []entity.OrderLine) error
	List(kind, status string, limit, offset int) ([]*entity.Order, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error)
	// NextNumber devuelve el siguiente consecutivo para la clase de orden.
	NextNumber(kind string) (int, error)
	// RegisterTransition inserta la llave de idempotencia (order_id, to_status).
	// Devuelve false si ya existía: la transición ya fue aplicada.
	RegisterTransition(orderID, toStatus, actorID string) (bool, error)
}
