package repository

import "github.com/jhoicas/taller-api/internal/domain/entity"

// StockRepository define el puerto para el saldo materializado por producto.
// GetForUpdate bloquea la fila (SELECT FOR UPDATE): es el punto de serialización
// por producto de todo movimiento de stock; usar solo dentro de una transacción.
type StockRepository interface {
	Get(productID string) (*entity.Stock, error)
	GetForUpdate(productID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
}
