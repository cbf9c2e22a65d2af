package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// Totals resultado del cálculo de totales de una orden.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Discount especificación de descuento a nivel de orden.
type Discount struct {
	Type  string // percentage, fixed, vacío = sin descuento
	Value decimal.Decimal
}

var cien = decimal.NewFromInt(100)

// LineTotal calcula el total de una línea: Quantity*UnitPrice − LineDiscount.
// Valida cantidad > 0, precio >= 0 y 0 <= descuento <= Quantity*UnitPrice.
func LineTotal(line entity.OrderLine) (decimal.Decimal, error) {
	if !line.Quantity.GreaterThan(decimal.Zero) || line.UnitPrice.LessThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	gross := line.Quantity.Mul(line.UnitPrice)
	if line.LineDiscount.LessThan(decimal.Zero) || line.LineDiscount.GreaterThan(gross) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return gross.Sub(line.LineDiscount), nil
}

// ComputeTotals calcula subtotal, descuento y total para las líneas más la mano de
// obra (órdenes de servicio; cero en ventas). Función pura, sin efectos: se puede
// llamar cualquier número de veces. Los valores monetarios se redondean a 2
// decimales (mitad hacia arriba) una sola vez, al fijar los totales.
func ComputeTotals(lines []entity.OrderLine, laborCost decimal.Decimal, disc Discount) (Totals, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		lt, err := LineTotal(line)
		if err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(lt)
	}
	if laborCost.LessThan(decimal.Zero) {
		return Totals{}, domain.ErrInvalidInput
	}
	subtotal = subtotal.Add(laborCost).Round(2)

	var discount decimal.Decimal
	switch disc.Type {
	case "":
		discount = decimal.Zero
	case entity.DiscountPercentage:
		if disc.Value.LessThan(decimal.Zero) || disc.Value.GreaterThan(cien) {
			return Totals{}, domain.ErrInvalidInput
		}
		discount = subtotal.Mul(disc.Value).Div(cien).Round(2)
	case entity.DiscountFixed:
		if disc.Value.LessThan(decimal.Zero) {
			return Totals{}, domain.ErrInvalidInput
		}
		discount = decimal.Min(disc.Value, subtotal).Round(2)
	default:
		return Totals{}, domain.ErrInvalidInput
	}

	total := subtotal.Sub(discount)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TotalAmount:    total.Round(2),
	}, nil
}
