package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o repuesto del taller.
// El stock actual NO se guarda aquí como fuente de verdad: se deriva del libro de
// movimientos (stock ledger); la tabla stock es solo un cache para bloqueo y lectura rápida.
type Product struct {
	ID          string
	Code        string // código único (ej. OIL001)
	Barcode     string // opcional
	Name        string
	Description string
	UnitPrice   decimal.Decimal // precio de venta
	CostPrice   decimal.Decimal // costo de compra
	MinStock    decimal.Decimal // punto de alerta de reposición
	MaxStock    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
