package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterStockMovementRequest body para POST /api/stock/movements (movimiento manual).
// Quantity con signo: positivo entrada, negativo salida.
type RegisterStockMovementRequest struct {
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	Kind          string          `json:"kind" validate:"required,oneof=entry exit adjustment"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"` // entradas: recalcula costo promedio si > 0
	Notes         string          `json:"notes"`
	AllowNegative bool            `json:"allow_negative"` // solo ajustes administrativos
}

// StockMovementResponse una entrada del libro de stock.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Kind           string          `json:"kind"`
	Quantity       decimal.Decimal `json:"quantity"`
	ResultingStock decimal.Decimal `json:"resulting_stock"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	ReversalOf     string          `json:"reversal_of,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CurrentStockResponse stock actual derivado del libro.
type CurrentStockResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}
