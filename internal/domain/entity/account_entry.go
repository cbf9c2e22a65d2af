package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por cobrar/pagar. "overdue" es derivado en lectura
// (ComputeOverdue), nunca se persiste.
const (
	EntryPending   = "pending"
	EntryPartial   = "partial"
	EntryPaid      = "paid"
	EntryOverdue   = "overdue"
	EntryCancelled = "cancelled"
)

// Direcciones de la cuenta.
const (
	EntryReceivable = "receivable" // por cobrar
	EntryPayable    = "payable"    // por pagar
)

// AccountEntry es una cuenta por cobrar o pagar ligada a exactamente una orden
// confirmada. Se crea atómicamente con la confirmación y se anula atómicamente
// con la cancelación.
type AccountEntry struct {
	ID         string
	OrderID    string
	Direction  string // receivable, payable
	Amount     decimal.Decimal
	DueDate    time.Time
	Status     string // pending, partial, paid, cancelled
	PaidAmount decimal.Decimal
	PaidAt     *time.Time
	LateFee    decimal.Decimal // derivado al consultar, no autoritativo
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Outstanding devuelve el saldo pendiente de la cuenta.
func (e *AccountEntry) Outstanding() decimal.Decimal {
	return e.Amount.Sub(e.PaidAmount)
}
