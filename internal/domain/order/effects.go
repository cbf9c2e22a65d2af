package order

import "github.com/jhoicas/taller-api/internal/domain/entity"

// Effect describe un efecto colateral que una transición aceptada exige. La máquina
// de estados solo los describe; el orquestador los ejecuta dentro de una transacción.
type Effect string

const (
	// EffectDecrementStock descuenta del stock cada línea de la orden.
	EffectDecrementStock Effect = "decrement_stock"
	// EffectReverseStock agrega movimientos compensatorios para toda salida previa de la orden.
	EffectReverseStock Effect = "reverse_stock"
	// EffectCreateReceivable crea la cuenta por cobrar por TotalAmount.
	EffectCreateReceivable Effect = "create_receivable"
	// EffectSettleReceivable liquida (total o parcialmente) la cuenta por cobrar.
	EffectSettleReceivable Effect = "settle_receivable"
	// EffectVoidReceivable anula la cuenta por cobrar de la orden.
	EffectVoidReceivable Effect = "void_receivable"
	// EffectSpawnSale crea una venta nueva copiando las líneas de la cotización.
	EffectSpawnSale Effect = "spawn_sale"
)

// effectsFor mapea cada transición legal a sus efectos. Las transiciones sin entrada
// no tienen efectos (cambio de estado puro).
func effectsFor(kind, from, to string) []Effect {
	switch kind {
	case entity.OrderKindSale:
		switch {
		case from == entity.StatusPending && to == entity.StatusConfirmed:
			return []Effect{EffectDecrementStock, EffectCreateReceivable}
		case from == entity.StatusConfirmed && to == entity.StatusPaid:
			return []Effect{EffectSettleReceivable}
		case from == entity.StatusConfirmed && to == entity.StatusCancelled:
			return []Effect{EffectReverseStock, EffectVoidReceivable}
		}
	case entity.OrderKindQuote:
		if from == entity.StatusPending && to == entity.StatusConverted {
			return []Effect{EffectSpawnSale}
		}
	case entity.OrderKindServiceOrder:
		switch {
		case from == entity.StatusInProgress && to == entity.StatusCompleted:
			return []Effect{EffectDecrementStock, EffectCreateReceivable}
		case from == entity.StatusCompleted && to == entity.StatusDelivered:
			return []Effect{EffectSettleReceivable}
		case from == entity.StatusCompleted && to == entity.StatusCancelled:
			return []Effect{EffectReverseStock, EffectVoidReceivable}
		}
	}
	return nil
}
