package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es el saldo materializado de un producto (cache del libro de movimientos).
// La fila se bloquea con SELECT FOR UPDATE para serializar movimientos por producto;
// se recalcula/actualiza en cada movimiento confirmado.
type Stock struct {
	ProductID string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
