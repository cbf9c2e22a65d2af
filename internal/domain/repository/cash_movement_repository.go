package repository

import (
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// CashMovementRepository define el puerto de persistencia para movimientos de caja.
type CashMovementRepository interface {
	Create(movement *entity.CashMovement) error
	List(movType, category string, from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error)
}
