package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de una orden. UnitPrice cero = tomar el precio actual del producto.
type OrderLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Kind          string             `json:"kind" validate:"required,oneof=sale quote service_order"`
	CustomerID    string             `json:"customer_id" validate:"required,uuid"`
	VehicleID     string             `json:"vehicle_id"` // obligatorio en service_order
	Lines         []OrderLineRequest `json:"lines"`
	DiscountType  string             `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	LaborCost     decimal.Decimal    `json:"labor_cost"` // solo service_order
	PaymentMethod string             `json:"payment_method"`
	ValidUntil    *time.Time         `json:"valid_until"` // solo quote
	Notes         string             `json:"notes"`
}

// UpdateOrderLinesRequest body para PUT /api/orders/:id/lines (solo estados editables).
type UpdateOrderLinesRequest struct {
	Lines         []OrderLineRequest `json:"lines"`
	DiscountType  *string            `json:"discount_type"`
	DiscountValue *decimal.Decimal   `json:"discount_value"`
	LaborCost     *decimal.Decimal   `json:"labor_cost"`
}

// TransitionRequest body para POST /api/orders/:id/transition.
type TransitionRequest struct {
	Status string          `json:"status" validate:"required"`
	Amount decimal.Decimal `json:"amount"` // pago opcional; cero = saldo completo
	Method string          `json:"method"` // método de pago del abono
}

// OrderLineResponse línea de orden en respuestas.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID             string              `json:"id"`
	Number         int                 `json:"number"`
	Kind           string              `json:"kind"`
	Status         string              `json:"status"`
	CustomerID     string              `json:"customer_id"`
	VehicleID      string              `json:"vehicle_id,omitempty"`
	Lines          []OrderLineResponse `json:"lines"`
	DiscountType   string              `json:"discount_type,omitempty"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	LaborCost      decimal.Decimal     `json:"labor_cost"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	Paid           bool                `json:"paid"`
	ValidUntil     *time.Time          `json:"valid_until,omitempty"`
	ConvertedToID  string              `json:"converted_to_id,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TransitionResponse salida de una transición aplicada.
type TransitionResponse struct {
	Order          OrderResponse `json:"order"`
	AppliedEffects []string      `json:"applied_effects"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
