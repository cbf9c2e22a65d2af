package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/pricing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Líneas de ejemplo: 2×25.50−1.00 = 50.00 y 1×17.80−0.50 = 17.30; subtotal 67.30.
func sampleLines() []entity.OrderLine {
	return []entity.OrderLine{
		{Quantity: dec("2"), UnitPrice: dec("25.50"), LineDiscount: dec("1.00")},
		{Quantity: dec("1"), UnitPrice: dec("17.80"), LineDiscount: dec("0.50")},
	}
}

func TestLineTotal(t *testing.T) {
	total, err := pricing.LineTotal(entity.OrderLine{Quantity: dec("2"), UnitPrice: dec("25.50"), LineDiscount: dec("1.00")})
	require.NoError(t, err)
	assert.True(t, dec("50.00").Equal(total))
}

func TestLineTotal_Invalida(t *testing.T) {
	cases := []struct {
		name string
		line entity.OrderLine
	}{
		{"cantidad cero", entity.OrderLine{Quantity: dec("0"), UnitPrice: dec("10")}},
		{"cantidad negativa", entity.OrderLine{Quantity: dec("-1"), UnitPrice: dec("10")}},
		{"precio negativo", entity.OrderLine{Quantity: dec("1"), UnitPrice: dec("-5")}},
		{"descuento negativo", entity.OrderLine{Quantity: dec("1"), UnitPrice: dec("10"), LineDiscount: dec("-1")}},
		{"descuento mayor al bruto", entity.OrderLine{Quantity: dec("1"), UnitPrice: dec("10"), LineDiscount: dec("10.01")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.LineTotal(tc.line)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestComputeTotals_DescuentoPorcentaje(t *testing.T) {
	totals, err := pricing.ComputeTotals(sampleLines(), decimal.Zero, pricing.Discount{Type: entity.DiscountPercentage, Value: dec("10")})
	require.NoError(t, err)
	assert.True(t, dec("67.30").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, dec("6.73").Equal(totals.DiscountAmount), "descuento %s", totals.DiscountAmount)
	assert.True(t, dec("60.57").Equal(totals.TotalAmount), "total %s", totals.TotalAmount)
}

func TestComputeTotals_DescuentoFijo(t *testing.T) {
	totals, err := pricing.ComputeTotals(sampleLines(), decimal.Zero, pricing.Discount{Type: entity.DiscountFixed, Value: dec("10")})
	require.NoError(t, err)
	assert.True(t, dec("57.30").Equal(totals.TotalAmount))
}

func TestComputeTotals_ManoDeObra(t *testing.T) {
	totals, err := pricing.ComputeTotals(sampleLines(), dec("34.50"), pricing.Discount{})
	require.NoError(t, err)
	assert.True(t, dec("101.80").Equal(totals.Subtotal))
	assert.True(t, dec("101.80").Equal(totals.TotalAmount))
}

func TestComputeTotals_SinLineas_SoloManoDeObra(t *testing.T) {
	totals, err := pricing.ComputeTotals(nil, dec("80"), pricing.Discount{})
	require.NoError(t, err)
	assert.True(t, dec("80").Equal(totals.TotalAmount))
}

func TestComputeTotals_DescuentoFijoMayorAlSubtotal_TotalNuncaNegativo(t *testing.T) {
	totals, err := pricing.ComputeTotals(sampleLines(), decimal.Zero, pricing.Discount{Type: entity.DiscountFixed, Value: dec("1000")})
	require.NoError(t, err)
	assert.True(t, dec("67.30").Equal(totals.DiscountAmount), "el fijo se recorta al subtotal")
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestComputeTotals_Invalidos(t *testing.T) {
	cases := []struct {
		name  string
		labor decimal.Decimal
		disc  pricing.Discount
	}{
		{"porcentaje mayor a 100", decimal.Zero, pricing.Discount{Type: entity.DiscountPercentage, Value: dec("101")}},
		{"porcentaje negativo", decimal.Zero, pricing.Discount{Type: entity.DiscountPercentage, Value: dec("-1")}},
		{"fijo negativo", decimal.Zero, pricing.Discount{Type: entity.DiscountFixed, Value: dec("-5")}},
		{"tipo desconocido", decimal.Zero, pricing.Discount{Type: "bogus", Value: dec("5")}},
		{"mano de obra negativa", dec("-1"), pricing.Discount{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.ComputeTotals(sampleLines(), tc.labor, tc.disc)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Idempotencia: recalcular sobre los mismos datos da el mismo resultado.
func TestComputeTotals_EsPura(t *testing.T) {
	disc := pricing.Discount{Type: entity.DiscountPercentage, Value: dec("10")}
	a, err := pricing.ComputeTotals(sampleLines(), decimal.Zero, disc)
	require.NoError(t, err)
	b, err := pricing.ComputeTotals(sampleLines(), decimal.Zero, disc)
	require.NoError(t, err)
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
}

func TestWeightedAverageCost(t *testing.T) {
	// 10 unidades a 5.00 + entrada de 10 a 7.00 → costo 6.00
	got := pricing.WeightedAverageCost(dec("10"), dec("5.00"), dec("10"), dec("7.00"))
	assert.True(t, dec("6").Equal(got), "got %s", got)
}

func TestWeightedAverageCost_SinStock(t *testing.T) {
	got := pricing.WeightedAverageCost(dec("0"), dec("0"), dec("0"), dec("9.99"))
	assert.True(t, got.IsZero())
}
