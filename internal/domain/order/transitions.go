package order

import (
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// Tabla de transiciones explícita y total por clase de orden: todo par
// (estado, estado solicitado) que no aparece aquí se rechaza con
// ErrInvalidTransition. No hay fallback implícito.
var transitions = map[string]map[string][]string{
	entity.OrderKindSale: {
		entity.StatusPending:   {entity.StatusConfirmed, entity.StatusCancelled},
		entity.StatusConfirmed: {entity.StatusPaid, entity.StatusCancelled},
	},
	entity.OrderKindQuote: {
		entity.StatusPending: {entity.StatusConverted, entity.StatusCancelled},
	},
	entity.OrderKindServiceOrder: {
		entity.StatusPending:      {entity.StatusInProgress, entity.StatusCancelled},
		entity.StatusInProgress:   {entity.StatusWaitingParts, entity.StatusCompleted, entity.StatusCancelled},
		entity.StatusWaitingParts: {entity.StatusInProgress, entity.StatusCancelled},
		entity.StatusCompleted:    {entity.StatusDelivered, entity.StatusCancelled},
	},
}

// CanTransition indica si la transición estado → target es legal para la clase dada.
func CanTransition(kind, from, to string) bool {
	targets, ok := transitions[kind][from]
	if !ok {
		return false
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// CanEdit indica si las líneas de la orden aún se pueden modificar. Solo en los
// estados de captura; alcanzado un estado terminal o con efectos aplicados, las
// líneas quedan congeladas.
func CanEdit(status string) bool {
	switch status {
	case entity.StatusPending, entity.StatusInProgress, entity.StatusWaitingParts:
		return true
	}
	return false
}

// CanCancel indica si la orden se puede cancelar: todo estado no terminal.
func CanCancel(kind, status string) bool {
	return CanTransition(kind, status, entity.StatusCancelled)
}

// CanConvert indica si la orden se puede convertir en venta: solo cotizaciones pendientes.
func CanConvert(kind, status string) bool {
	return kind == entity.OrderKindQuote && status == entity.StatusPending
}

// Plan valida la transición y devuelve la lista de efectos que implica, en el orden
// en que el orquestador debe aplicarlos (stock antes que finanzas). No hace I/O.
func Plan(kind, from, to string) ([]Effect, error) {
	if !CanTransition(kind, from, to) {
		return nil, domain.ErrInvalidTransition
	}
	return effectsFor(kind, from, to), nil
}
