package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/order"
	"github.com/jhoicas/taller-api/internal/domain/pricing"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// Reintentos ante conflicto de concurrencia (versión de orden o lock de stock).
const (
	maxTransitionAttempts = 3
	retryBaseBackoff      = 50 * time.Millisecond
)

// PaymentInfo datos de pago opcionales de una transición (confirmed → paid,
// completed → delivered). Amount cero = liquidar el saldo completo.
type PaymentInfo struct {
	Amount decimal.Decimal
	Method string
}

// TransitionResult orden resultante y efectos aplicados por la transición.
type TransitionResult struct {
	Order          *entity.Order
	AppliedEffects []order.Effect
}

// Orchestrator coordina el ciclo de vida de las órdenes: valida la transición con
// la máquina de estados, y aplica los efectos de stock y financieros como una sola
// unidad atómica. Cualquier fallo deja la orden y los libros exactamente como estaban.
type Orchestrator struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	stockUC   *stock.LedgerUseCase
	financeUC *finance.PosterUseCase
	clock     clock.Clock
	log       *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	stockUC *stock.LedgerUseCase,
	financeUC *finance.PosterUseCase,
	clk clock.Clock,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		stockUC:   stockUC,
		financeUC: financeUC,
		clock:     clk,
		log:       log,
	}
}

// RequestTransition solicita mover la orden a targetStatus. Reintenta con backoff
// ante ErrConcurrencyConflict; todo otro error se propaga sin cambios.
func (uc *Orchestrator) RequestTransition(ctx context.Context, orderID, targetStatus, actorID string, payment *PaymentInfo) (*TransitionResult, error) {
	if orderID == "" || targetStatus == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}

	// Vencimiento de cotizaciones: derivado al intentar la transición. Una
	// cotización vencida pasa a cancelled en su propia transacción y la
	// transición pedida (si no era la cancelación) se rechaza.
	if err := uc.expireQuoteIfDue(ctx, orderID, targetStatus, actorID); err != nil {
		return nil, err
	}

	var result *TransitionResult
	var err error
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		result, err = uc.transitionOnce(ctx, orderID, targetStatus, actorID, payment)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBaseBackoff * time.Duration(attempt)):
		}
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", orderID).
		Str("status", targetStatus).
		Str("actor", actorID).
		Int("effects", len(result.AppliedEffects)).
		Msg("transición de orden aplicada")
	return result, nil
}

// transitionOnce ejecuta una transición completa dentro de una sola transacción.
func (uc *Orchestrator) transitionOnce(ctx context.Context, orderID, targetStatus, actorID string, payment *PaymentInfo) (*TransitionResult, error) {
	now := uc.clock.Now()
	var result *TransitionResult

	err := uc.txRunner.RunLifecycle(ctx, func(r LifecycleRepos) error {
		ord, err := r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrNotFound
		}

		// Replay de una transición ya alcanzada: no-op, no ErrInvalidTransition.
		if ord.Status == targetStatus {
			result = &TransitionResult{Order: ord}
			return nil
		}

		effects, err := order.Plan(ord.Kind, ord.Status, targetStatus)
		if err != nil {
			return err
		}

		// Llave de idempotencia (order_id, target) solo para transiciones con
		// efectos: un replay tras un crash no reaplica stock ni finanzas. Las
		// transiciones sin efectos (ej. in_progress ↔ waiting_parts) pueden
		// repetirse legítimamente y no registran llave.
		if len(effects) > 0 {
			applied, err := r.Orders.RegisterTransition(ord.ID, targetStatus, actorID)
			if err != nil {
				return err
			}
			if !applied {
				result = &TransitionResult{Order: ord}
				return nil
			}
		}

		// Totales se recalculan de las líneas antes de congelarlos con los efectos.
		totals, err := pricing.ComputeTotals(ord.Lines, ord.LaborCost, pricing.Discount{
			Type:  ord.OrderDiscountType,
			Value: ord.OrderDiscountValue,
		})
		if err != nil {
			return err
		}
		ord.Subtotal = totals.Subtotal
		ord.DiscountAmount = totals.DiscountAmount
		ord.TotalAmount = totals.TotalAmount

		// Efectos en orden fijo: stock antes que finanzas, para que un fallo de
		// stock nunca deje una cuenta por cobrar colgando.
		for _, eff := range effects {
			if err := uc.applyEffect(r, ord, eff, payment, actorID, now); err != nil {
				return err
			}
		}

		ord.Status = targetStatus
		if targetStatus == entity.StatusPaid {
			ord.Paid = true
		}
		ord.UpdatedAt = now
		if err := r.Orders.Update(ord); err != nil {
			return err
		}
		result = &TransitionResult{Order: ord, AppliedEffects: effects}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *Orchestrator) applyEffect(r LifecycleRepos, ord *entity.Order, eff order.Effect, payment *PaymentInfo, actorID string, now time.Time) error {
	switch eff {
	case order.EffectDecrementStock:
		refType := entity.ReferenceSale
		if ord.Kind == entity.OrderKindServiceOrder {
			refType = entity.ReferenceServiceOrder
		}
		for _, line := range ord.Lines {
			product, err := r.Products.GetByID(line.ProductID)
			if err != nil || product == nil {
				return domain.ErrNotFound
			}
			if err := uc.stockUC.ApplyExitInTx(r.Movements, r.Stock, product, line.Quantity, refType, ord.ID, actorID, now); err != nil {
				return err
			}
		}
		return nil

	case order.EffectReverseStock:
		return uc.stockUC.ReverseByReferenceInTx(r.Movements, r.Stock, ord.ID, actorID, now)

	case order.EffectCreateReceivable:
		if !ord.TotalAmount.GreaterThan(decimal.Zero) {
			return nil // orden sin cobro: no se rastrea pago
		}
		_, err := uc.financeUC.PostReceivableInTx(r.Entries, ord, now)
		return err

	case order.EffectSettleReceivable:
		entry, err := r.Entries.GetByOrderID(ord.ID)
		if err != nil {
			return err
		}
		if entry == nil {
			ord.Paid = true // total cero: nada que liquidar
			return nil
		}
		amount := entry.Outstanding()
		method := ord.PaymentMethod
		if payment != nil {
			if payment.Amount.GreaterThan(decimal.Zero) {
				amount = payment.Amount
			}
			if payment.Method != "" {
				method = payment.Method
			}
		}
		settled, err := uc.financeUC.SettleInTx(r.Entries, r.Cash, entry.ID, amount, method, actorID, now)
		if err != nil {
			return err
		}
		// Un abono parcial no completa la transición a paid/delivered.
		if settled.Status != entity.EntryPaid {
			return domain.ErrConflict
		}
		ord.Paid = true
		return nil

	case order.EffectVoidReceivable:
		_, err := uc.financeUC.VoidByOrderInTx(r.Entries, ord.ID, now)
		return err

	case order.EffectSpawnSale:
		return uc.spawnSale(r, ord, actorID, now)
	}
	return nil
}

// spawnSale crea la venta derivada de una cotización convertida, copiando líneas,
// descuento y cliente; la venta nace pending con sus propios totales.
func (uc *Orchestrator) spawnSale(r LifecycleRepos, quote *entity.Order, actorID string, now time.Time) error {
	number, err := r.Orders.NextNumber(entity.OrderKindSale)
	if err != nil {
		return err
	}
	sale := &entity.Order{
		ID:                 uuid.New().String(),
		Number:             number,
		Kind:               entity.OrderKindSale,
		Status:             entity.StatusPending,
		CustomerID:         quote.CustomerID,
		OrderDiscountType:  quote.OrderDiscountType,
		OrderDiscountValue: quote.OrderDiscountValue,
		Subtotal:           quote.Subtotal,
		DiscountAmount:     quote.DiscountAmount,
		TotalAmount:        quote.TotalAmount,
		PaymentMethod:      quote.PaymentMethod,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          actorID,
	}
	for _, line := range quote.Lines {
		sale.Lines = append(sale.Lines, entity.OrderLine{
			ID:           uuid.New().String(),
			OrderID:      sale.ID,
			ProductID:    line.ProductID,
			Description:  line.Description,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice, // precio capturado en la cotización
			LineDiscount: line.LineDiscount,
			LineTotal:    line.LineTotal,
		})
	}
	if err := r.Orders.Create(sale); err != nil {
		return err
	}
	quote.ConvertedToID = sale.ID
	return nil
}

// expireQuoteIfDue cancela una cotización vencida antes de evaluar la transición
// pedida. La cancelación queda persistida aunque la transición original falle.
func (uc *Orchestrator) expireQuoteIfDue(ctx context.Context, orderID, targetStatus, actorID string) error {
	ord, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if ord == nil {
		return domain.ErrNotFound
	}
	if !ord.IsQuoteExpired(uc.clock.Now()) || ord.Status != entity.StatusPending {
		return nil
	}
	if _, err := uc.transitionOnce(ctx, orderID, entity.StatusCancelled, actorID, nil); err != nil {
		return err
	}
	uc.log.Info().Str("order_id", orderID).Msg("cotización vencida cancelada automáticamente")
	if targetStatus != entity.StatusCancelled {
		return domain.ErrInvalidTransition
	}
	return nil
}
