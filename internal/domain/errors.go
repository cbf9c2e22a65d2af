package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintentar la operación")
)

// StockShortfallError detalla un faltante de stock: producto, cantidad pedida y disponible.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando en los handlers.
type StockShortfallError struct {
	ProductCode string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockShortfallError) Error() string {
	return fmt.Sprintf("se requieren %s unidades de %s, hay %s disponibles",
		e.Requested.String(), e.ProductCode, e.Available.String())
}

func (e *StockShortfallError) Unwrap() error { return ErrInsufficientStock }
