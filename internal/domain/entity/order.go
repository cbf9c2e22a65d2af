package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clases de orden.
const (
	OrderKindSale         = "sale"
	OrderKindQuote        = "quote"
	OrderKindServiceOrder = "service_order"
)

// Estados de orden. Venta/cotización: pending → confirmed → paid; cancelled desde
// pending/confirmed; converted solo cotizaciones. Orden de servicio:
// pending → in_progress → completed → delivered, con in_progress ↔ waiting_parts
// y cancelled desde cualquier estado salvo delivered.
const (
	StatusPending      = "pending"
	StatusConfirmed    = "confirmed"
	StatusPaid         = "paid"
	StatusCancelled    = "cancelled"
	StatusConverted    = "converted"
	StatusInProgress   = "in_progress"
	StatusWaitingParts = "waiting_parts"
	StatusCompleted    = "completed"
	StatusDelivered    = "delivered"
)

// Tipos de descuento a nivel de orden.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Métodos de pago.
const (
	PaymentCash     = "cash"
	PaymentDebit    = "debit"
	PaymentCredit   = "credit"
	PaymentPix      = "pix"
	PaymentTransfer = "transfer"
	PaymentTerm     = "term" // a plazo: genera cuenta por cobrar con vencimiento
)

// Order generaliza venta, cotización y orden de servicio: líneas, estado y totales.
// Invariantes: TotalAmount == Subtotal − DiscountAmount y Subtotal == Σ LineTotal
// (+ LaborCost en órdenes de servicio). Version es el control optimista: toda
// escritura compara y incrementa; si no coincide, ErrConcurrencyConflict.
type Order struct {
	ID                 string
	Number             int    // consecutivo único por clase
	Kind               string // sale, quote, service_order
	Status             string
	CustomerID         string
	VehicleID          string // solo órdenes de servicio
	Lines              []OrderLine
	OrderDiscountType  string // percentage, fixed, vacío = sin descuento
	OrderDiscountValue decimal.Decimal
	LaborCost          decimal.Decimal // mano de obra, solo órdenes de servicio
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	PaymentMethod      string
	Paid               bool
	ValidUntil         *time.Time // solo cotizaciones
	ConvertedToID      string     // venta generada al convertir una cotización
	Notes              string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedBy          string
}

// OrderLine es una línea de la orden. UnitPrice se captura al agregar la línea y no
// cambia aunque cambie el precio del producto.
type OrderLine struct {
	ID           string
	OrderID      string
	ProductID    string
	Description  string
	Quantity     decimal.Decimal // > 0
	UnitPrice    decimal.Decimal
	LineDiscount decimal.Decimal // >= 0 y <= Quantity*UnitPrice
	LineTotal    decimal.Decimal // Quantity*UnitPrice − LineDiscount
}

// IsQuoteExpired indica si una cotización venció a la fecha dada.
func (o *Order) IsQuoteExpired(asOf time.Time) bool {
	return o.Kind == OrderKindQuote && o.ValidUntil != nil && o.ValidUntil.Before(asOf)
}
