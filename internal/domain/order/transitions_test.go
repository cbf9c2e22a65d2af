package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/order"
)

func TestCanTransition_TablaCompleta(t *testing.T) {
	cases := []struct {
		kind, from, to string
		want           bool
	}{
		// Ventas
		{entity.OrderKindSale, entity.StatusPending, entity.StatusConfirmed, true},
		{entity.OrderKindSale, entity.StatusPending, entity.StatusCancelled, true},
		{entity.OrderKindSale, entity.StatusPending, entity.StatusPaid, false},
		{entity.OrderKindSale, entity.StatusConfirmed, entity.StatusPaid, true},
		{entity.OrderKindSale, entity.StatusConfirmed, entity.StatusCancelled, true},
		{entity.OrderKindSale, entity.StatusPaid, entity.StatusCancelled, false},
		{entity.OrderKindSale, entity.StatusCancelled, entity.StatusConfirmed, false},
		{entity.OrderKindSale, entity.StatusPending, entity.StatusConverted, false},
		// Cotizaciones
		{entity.OrderKindQuote, entity.StatusPending, entity.StatusConverted, true},
		{entity.OrderKindQuote, entity.StatusPending, entity.StatusCancelled, true},
		{entity.OrderKindQuote, entity.StatusPending, entity.StatusConfirmed, false},
		{entity.OrderKindQuote, entity.StatusConverted, entity.StatusCancelled, false},
		{entity.OrderKindQuote, entity.StatusCancelled, entity.StatusConverted, false},
		// Órdenes de servicio
		{entity.OrderKindServiceOrder, entity.StatusPending, entity.StatusInProgress, true},
		{entity.OrderKindServiceOrder, entity.StatusPending, entity.StatusCompleted, false},
		{entity.OrderKindServiceOrder, entity.StatusInProgress, entity.StatusWaitingParts, true},
		{entity.OrderKindServiceOrder, entity.StatusInProgress, entity.StatusCompleted, true},
		{entity.OrderKindServiceOrder, entity.StatusWaitingParts, entity.StatusInProgress, true},
		{entity.OrderKindServiceOrder, entity.StatusWaitingParts, entity.StatusCompleted, false},
		{entity.OrderKindServiceOrder, entity.StatusCompleted, entity.StatusDelivered, true},
		{entity.OrderKindServiceOrder, entity.StatusCompleted, entity.StatusCancelled, true},
		{entity.OrderKindServiceOrder, entity.StatusDelivered, entity.StatusCancelled, false},
		// Clase desconocida
		{"bogus", entity.StatusPending, entity.StatusConfirmed, false},
	}
	for _, tc := range cases {
		got := order.CanTransition(tc.kind, tc.from, tc.to)
		assert.Equal(t, tc.want, got, "%s: %s → %s", tc.kind, tc.from, tc.to)
	}
}

func TestCanEdit(t *testing.T) {
	assert.True(t, order.CanEdit(entity.StatusPending))
	assert.True(t, order.CanEdit(entity.StatusInProgress))
	assert.True(t, order.CanEdit(entity.StatusWaitingParts))
	assert.False(t, order.CanEdit(entity.StatusConfirmed))
	assert.False(t, order.CanEdit(entity.StatusCompleted))
	assert.False(t, order.CanEdit(entity.StatusPaid))
	assert.False(t, order.CanEdit(entity.StatusCancelled))
	assert.False(t, order.CanEdit(entity.StatusDelivered))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, order.CanCancel(entity.OrderKindSale, entity.StatusPending))
	assert.True(t, order.CanCancel(entity.OrderKindSale, entity.StatusConfirmed))
	assert.False(t, order.CanCancel(entity.OrderKindSale, entity.StatusPaid))
	assert.True(t, order.CanCancel(entity.OrderKindServiceOrder, entity.StatusCompleted))
	assert.False(t, order.CanCancel(entity.OrderKindServiceOrder, entity.StatusDelivered))
	assert.False(t, order.CanCancel(entity.OrderKindQuote, entity.StatusConverted))
}

func TestCanConvert(t *testing.T) {
	assert.True(t, order.CanConvert(entity.OrderKindQuote, entity.StatusPending))
	assert.False(t, order.CanConvert(entity.OrderKindQuote, entity.StatusCancelled))
	assert.False(t, order.CanConvert(entity.OrderKindSale, entity.StatusPending))
}

func TestPlan_EfectosPorTransicion(t *testing.T) {
	effects, err := order.Plan(entity.OrderKindSale, entity.StatusPending, entity.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, []order.Effect{order.EffectDecrementStock, order.EffectCreateReceivable}, effects,
		"el stock va antes que la cuenta por cobrar")

	effects, err = order.Plan(entity.OrderKindSale, entity.StatusConfirmed, entity.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, []order.Effect{order.EffectSettleReceivable}, effects)

	effects, err = order.Plan(entity.OrderKindSale, entity.StatusConfirmed, entity.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, []order.Effect{order.EffectReverseStock, order.EffectVoidReceivable}, effects)

	effects, err = order.Plan(entity.OrderKindQuote, entity.StatusPending, entity.StatusConverted)
	require.NoError(t, err)
	assert.Equal(t, []order.Effect{order.EffectSpawnSale}, effects)

	effects, err = order.Plan(entity.OrderKindServiceOrder, entity.StatusInProgress, entity.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []order.Effect{order.EffectDecrementStock, order.EffectCreateReceivable}, effects)
}

func TestPlan_TransicionesSinEfectos(t *testing.T) {
	for _, tc := range [][3]string{
		{entity.OrderKindSale, entity.StatusPending, entity.StatusCancelled},
		{entity.OrderKindServiceOrder, entity.StatusPending, entity.StatusInProgress},
		{entity.OrderKindServiceOrder, entity.StatusInProgress, entity.StatusWaitingParts},
		{entity.OrderKindServiceOrder, entity.StatusWaitingParts, entity.StatusInProgress},
	} {
		effects, err := order.Plan(tc[0], tc[1], tc[2])
		require.NoError(t, err)
		assert.Empty(t, effects, "%s: %s → %s", tc[0], tc[1], tc[2])
	}
}

func TestPlan_TransicionIlegal(t *testing.T) {
	_, err := order.Plan(entity.OrderKindSale, entity.StatusPaid, entity.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
