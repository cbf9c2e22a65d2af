package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettleRequest body para POST /api/finance/entries/:id/settle.
type SettleRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// AccountEntryResponse cuenta por cobrar/pagar. Status y LateFee se derivan al
// momento de la consulta (overdue no se persiste).
type AccountEntryResponse struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	LateFee    decimal.Decimal `json:"late_fee"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RegisterCashMovementRequest body para POST /api/finance/cash (movimiento manual).
type RegisterCashMovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Method      string          `json:"method"`
}

// CashMovementResponse un movimiento de caja.
type CashMovementResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category,omitempty"`
	Description    string          `json:"description,omitempty"`
	AccountEntryID string          `json:"account_entry_id,omitempty"`
	Method         string          `json:"method,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
