package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de caja.
const (
	CashIncome  = "income"
	CashExpense = "expense"
)

// CashMovement es un movimiento de caja. Se crea cuando una AccountEntry pasa a
// paid/partial, o manualmente para gastos/ingresos sueltos.
type CashMovement struct {
	ID             string
	Type           string // income, expense
	Amount         decimal.Decimal
	Category       string // sale, service_order, expense, other
	Description    string
	AccountEntryID string // opcional: cuenta que originó el movimiento
	Method         string // método de pago usado
	CreatedAt      time.Time
	CreatedBy      string
}
