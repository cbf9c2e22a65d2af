package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clases de movimiento de stock.
const (
	MovementKindEntry      = "entry"      // entrada (compra, devolución)
	MovementKindExit       = "exit"       // salida (venta, orden de servicio)
	MovementKindAdjustment = "adjustment" // ajuste administrativo
)

// Tipos de referencia de un movimiento (a qué documento pertenece).
const (
	ReferenceSale         = "sale"
	ReferenceServiceOrder = "service_order"
	ReferenceManual       = "manual"
)

// StockMovement es una entrada del libro de stock (append-only). Inmutable una vez
// confirmada: la reversa se hace agregando un movimiento compensatorio con signo
// invertido y ReversalOf apuntando al movimiento original, nunca borrando historia.
type StockMovement struct {
	ID             string
	ProductID      string
	Kind           string          // entry, exit, adjustment
	Quantity       decimal.Decimal // con signo: positivo entrada, negativo salida
	ResultingStock decimal.Decimal // saldo después de aplicar este movimiento
	ReferenceType  string          // sale, service_order, manual
	ReferenceID    string
	ReversalOf     string // ID del movimiento que compensa, vacío si no es reversa
	Notes          string
	CreatedAt      time.Time
	CreatedBy      string // UserID
}
