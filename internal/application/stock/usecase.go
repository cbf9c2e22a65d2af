package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/pricing"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
)

// LedgerUseCase mantiene el libro de stock (append-only) de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) sobre el saldo materializado para
// serializar los movimientos de cada producto.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	clock       clock.Clock
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	clk clock.Clock,
) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, productRepo: productRepo, movRepo: movRepo, clock: clk}
}

// MovementInputDTO entrada para registrar un movimiento manual de stock.
// Quantity con signo: positivo entrada, negativo salida. AllowNegative solo aplica
// a ajustes administrativos marcados explícitamente.
type MovementInputDTO struct {
	UserID        string
	ProductID     string
	Kind          string // entry, exit, adjustment
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal // costo unitario de la entrada; cero = no recalcular costo
	Notes         string
	AllowNegative bool
}

// RegisterMovement inicia una transacción, bloquea la fila de saldo y agrega el
// movimiento al libro; Commit o Rollback según resultado.
func (uc *LedgerUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) error {
	switch input.Kind {
	case entity.MovementKindEntry:
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindExit:
		if !input.Quantity.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindAdjustment:
		if input.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	if input.ProductID == "" {
		return domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil || product == nil {
		return domain.ErrNotFound
	}

	now := uc.clock.Now()
	allowNegative := input.Kind == entity.MovementKindAdjustment && input.AllowNegative

	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		mov, err := uc.appendInTx(movRepo, stockRepo, appendInput{
			product:       product,
			kind:          input.Kind,
			quantity:      input.Quantity,
			referenceType: entity.ReferenceManual,
			referenceID:   "",
			notes:         input.Notes,
			allowNegative: allowNegative,
			userID:        input.UserID,
			now:           now,
		})
		if err != nil {
			return err
		}
		// Entrada con costo: recalcular el costo promedio ponderado del producto.
		if input.Kind == entity.MovementKindEntry && input.UnitCost.GreaterThan(decimal.Zero) {
			prev := mov.ResultingStock.Sub(input.Quantity)
			product.CostPrice = pricing.WeightedAverageCost(prev, product.CostPrice, input.Quantity, input.UnitCost).Round(2)
			product.UpdatedAt = now
			return productRepo.Update(product)
		}
		return nil
	})
}

// CurrentStock devuelve el stock actual derivado del libro: suma de las cantidades
// con signo de todos los movimientos del producto.
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return uc.movRepo.SumByProduct(productID)
}

// ListMovements lista el libro de un producto (auditoría).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByProduct(productID, from, to, limit, offset)
}

// ApplyExitInTx descuenta stock de un producto dentro de la transacción del caller
// (misma tx de la transición de orden). Falla con StockShortfallError si el saldo
// resultante sería negativo; el rollback lo hace el caller.
func (uc *LedgerUseCase) ApplyExitInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	product *entity.Product,
	quantity decimal.Decimal,
	referenceType, referenceID, userID string,
	now time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	_, err := uc.appendInTx(movRepo, stockRepo, appendInput{
		product:       product,
		kind:          entity.MovementKindExit,
		quantity:      quantity.Neg(),
		referenceType: referenceType,
		referenceID:   referenceID,
		userID:        userID,
		now:           now,
	})
	return err
}

// ReverseByReferenceInTx agrega movimientos compensatorios (signo invertido) para
// todo movimiento ligado a la referencia, dentro de la transacción del caller.
// Idempotente: si la referencia ya fue revertida, es un no-op.
func (uc *LedgerUseCase) ReverseByReferenceInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	referenceID, userID string,
	now time.Time,
) error {
	if referenceID == "" {
		return domain.ErrInvalidInput
	}
	reversed, err := movRepo.HasReversalFor(referenceID)
	if err != nil {
		return err
	}
	if reversed {
		return nil
	}
	movements, err := movRepo.ListByReference(referenceID)
	if err != nil {
		return err
	}
	for _, mov := range movements {
		if mov.ReversalOf != "" {
			continue // ya es una compensación
		}
		kind := entity.MovementKindEntry
		if mov.Quantity.GreaterThan(decimal.Zero) {
			kind = entity.MovementKindExit
		}
		if mov.Kind == entity.MovementKindAdjustment {
			kind = entity.MovementKindAdjustment
		}
		if _, err := uc.appendInTx(movRepo, stockRepo, appendInput{
			productID:     mov.ProductID,
			kind:          kind,
			quantity:      mov.Quantity.Neg(),
			referenceType: mov.ReferenceType,
			referenceID:   referenceID,
			reversalOf:    mov.ID,
			allowNegative: true, // la compensación exacta nunca debe fallar por saldo
			userID:        userID,
			now:           now,
		}); err != nil {
			return err
		}
	}
	return nil
}

type appendInput struct {
	product       *entity.Product
	productID     string
	kind          string
	quantity      decimal.Decimal // con signo
	referenceType string
	referenceID   string
	reversalOf    string
	notes         string
	allowNegative bool
	userID        string
	now           time.Time
}

// appendInTx bloquea la fila de saldo, verifica no-negatividad, agrega el movimiento
// con el snapshot del saldo resultante y actualiza el cache.
func (uc *LedgerUseCase) appendInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	in appendInput,
) (*entity.StockMovement, error) {
	productID := in.productID
	productCode := productID
	if in.product != nil {
		productID = in.product.ID
		productCode = in.product.Code
	}

	// Punto de serialización por producto: dos transiciones concurrentes sobre el
	// mismo producto quedan en fila aquí y ninguna valida contra un saldo viejo.
	current, err := stockRepo.GetForUpdate(productID)
	if err != nil {
		return nil, err
	}
	resulting := current.Quantity.Add(in.quantity)
	if resulting.LessThan(decimal.Zero) && !in.allowNegative {
		return nil, &domain.StockShortfallError{
			ProductCode: productCode,
			Requested:   in.quantity.Neg(),
			Available:   current.Quantity,
		}
	}

	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		Kind:           in.kind,
		Quantity:       in.quantity,
		ResultingStock: resulting,
		ReferenceType:  in.referenceType,
		ReferenceID:    in.referenceID,
		ReversalOf:     in.reversalOf,
		Notes:          in.notes,
		CreatedAt:      in.now,
		CreatedBy:      in.userID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}

	current.Quantity = resulting
	current.UpdatedAt = in.now
	if err := stockRepo.Upsert(current); err != nil {
		return nil, err
	}
	return mov, nil
}
