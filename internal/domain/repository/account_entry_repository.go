package repository

import "github.com/jhoicas/taller-api/internal/domain/entity"

// AccountEntryRepository define el puerto de persistencia para cuentas por cobrar/pagar.
type AccountEntryRepository interface {
	Create(entry *entity.AccountEntry) error
	GetByID(id string) (*entity.AccountEntry, error)
	GetForUpdate(id string) (*entity.AccountEntry, error)
	GetByOrderID(orderID string) (*entity.AccountEntry, error)
	// Update compara Version y la incrementa; ErrConcurrencyConflict si la fila cambió.
	Update(entry *entity.AccountEntry) error
	List(direction, status string, limit, offset int) ([]*entity.AccountEntry, error)
}
