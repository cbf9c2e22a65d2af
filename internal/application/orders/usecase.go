package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/order"
	"github.com/jhoicas/taller-api/internal/domain/pricing"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
)

// QuotePolicy vigencia por defecto de cotizaciones.
type QuotePolicy struct {
	ValidDays int
}

// UseCase operaciones CRUD de órdenes (captura). Las transiciones de estado y sus
// efectos son responsabilidad exclusiva del Orchestrator.
type UseCase struct {
	txRunner     TxRunner
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	vehicleRepo  repository.VehicleRepository
	clock        clock.Clock
	quotes       QuotePolicy
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	vehicleRepo repository.VehicleRepository,
	clk clock.Clock,
	quotes QuotePolicy,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		clock:        clk,
		quotes:       quotes,
	}
}

// Create crea una orden en pending con sus líneas y totales calculados. El precio
// unitario se captura del producto en este momento (o el enviado, si viene > 0) y
// no cambia aunque cambie el precio del producto.
func (uc *UseCase) Create(ctx context.Context, actorID string, in dto.CreateOrderRequest) (*entity.Order, error) {
	switch in.Kind {
	case entity.OrderKindSale, entity.OrderKindQuote:
		if in.CustomerID == "" {
			return nil, domain.ErrInvalidInput
		}
	case entity.OrderKindServiceOrder:
		if in.CustomerID == "" || in.VehicleID == "" {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 && in.Kind != entity.OrderKindServiceOrder {
		return nil, domain.ErrInvalidInput
	}

	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil || customer == nil {
		return nil, domain.ErrNotFound
	}
	if in.Kind == entity.OrderKindServiceOrder {
		vehicle, err := uc.vehicleRepo.GetByID(in.VehicleID)
		if err != nil || vehicle == nil {
			return nil, domain.ErrNotFound
		}
		if vehicle.CustomerID != in.CustomerID {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.clock.Now()
	ord := &entity.Order{
		ID:                 uuid.New().String(),
		Kind:               in.Kind,
		Status:             entity.StatusPending,
		CustomerID:         in.CustomerID,
		VehicleID:          in.VehicleID,
		OrderDiscountType:  in.DiscountType,
		OrderDiscountValue: in.DiscountValue,
		LaborCost:          in.LaborCost,
		PaymentMethod:      in.PaymentMethod,
		Notes:              in.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          actorID,
	}
	if in.Kind != entity.OrderKindServiceOrder {
		ord.LaborCost = decimal.Zero
	}
	if in.Kind == entity.OrderKindQuote {
		validUntil := in.ValidUntil
		if validUntil == nil {
			v := now.AddDate(0, 0, uc.quotes.ValidDays)
			validUntil = &v
		}
		ord.ValidUntil = validUntil
	}

	lines, err := uc.buildLines(ord.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	ord.Lines = lines

	totals, err := pricing.ComputeTotals(ord.Lines, ord.LaborCost, pricing.Discount{Type: ord.OrderDiscountType, Value: ord.OrderDiscountValue})
	if err != nil {
		return nil, err
	}
	ord.Subtotal = totals.Subtotal
	ord.DiscountAmount = totals.DiscountAmount
	ord.TotalAmount = totals.TotalAmount

	err = uc.txRunner.RunLifecycle(ctx, func(r LifecycleRepos) error {
		number, err := r.Orders.NextNumber(in.Kind)
		if err != nil {
			return err
		}
		ord.Number = number
		return r.Orders.Create(ord)
	})
	if err != nil {
		return nil, err
	}
	return ord, nil
}

// UpdateLines reemplaza las líneas (y descuento/mano de obra) de una orden aún
// editable y recalcula totales. Control optimista vía Version.
func (uc *UseCase) UpdateLines(ctx context.Context, orderID string, in dto.UpdateOrderLinesRequest) (*entity.Order, error) {
	var updated *entity.Order
	err := uc.txRunner.RunLifecycle(ctx, func(r LifecycleRepos) error {
		ord, err := r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrNotFound
		}
		if !order.CanEdit(ord.Status) {
			return domain.ErrInvalidTransition
		}

		lines, err := uc.buildLines(ord.ID, in.Lines)
		if err != nil {
			return err
		}
		ord.Lines = lines
		if in.DiscountType != nil {
			ord.OrderDiscountType = *in.DiscountType
		}
		if in.DiscountValue != nil {
			ord.OrderDiscountValue = *in.DiscountValue
		}
		if in.LaborCost != nil && ord.Kind == entity.OrderKindServiceOrder {
			ord.LaborCost = *in.LaborCost
		}

		totals, err := pricing.ComputeTotals(ord.Lines, ord.LaborCost, pricing.Discount{Type: ord.OrderDiscountType, Value: ord.OrderDiscountValue})
		if err != nil {
			return err
		}
		ord.Subtotal = totals.Subtotal
		ord.DiscountAmount = totals.DiscountAmount
		ord.TotalAmount = totals.TotalAmount
		ord.UpdatedAt = uc.clock.Now()

		if err := r.Orders.ReplaceLines(ord.ID, ord.Lines); err != nil {
			return err
		}
		if err := r.Orders.Update(ord); err != nil {
			return err
		}
		updated = ord
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID devuelve una orden con líneas.
func (uc *UseCase) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	ord, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, domain.ErrNotFound
	}
	return ord, nil
}

// List lista órdenes con filtros opcionales de clase y estado.
func (uc *UseCase) List(ctx context.Context, kind, status string, limit, offset int) ([]*entity.Order, error) {
	return uc.orderRepo.List(kind, status, limit, offset)
}

// ListByCustomer lista las órdenes de un cliente.
func (uc *UseCase) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Order, error) {
	return uc.orderRepo.ListByCustomer(customerID, limit, offset)
}

// buildLines valida cada línea contra el producto, captura el precio unitario y
// calcula el total de línea.
func (uc *UseCase) buildLines(orderID string, in []dto.OrderLineRequest) ([]entity.OrderLine, error) {
	lines := make([]entity.OrderLine, 0, len(in))
	for _, item := range in {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		unitPrice := item.UnitPrice
		if unitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if unitPrice.IsZero() {
			unitPrice = product.UnitPrice
		}
		line := entity.OrderLine{
			ID:           uuid.New().String(),
			OrderID:      orderID,
			ProductID:    item.ProductID,
			Description:  product.Name,
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			LineDiscount: item.LineDiscount,
		}
		total, err := pricing.LineTotal(line)
		if err != nil {
			return nil, err
		}
		line.LineTotal = total
		lines = append(lines, line)
	}
	return lines, nil
}
