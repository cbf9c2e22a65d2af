package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
)

// Policy política financiera: plazo de crédito y mora.
type Policy struct {
	TermDays        int
	LateFeeDailyPct decimal.Decimal // % diario sobre el saldo pendiente
	LateFeeMaxPct   decimal.Decimal // tope como % del saldo pendiente
}

// PosterUseCase crea y liquida cuentas por cobrar/pagar y registra los movimientos
// de caja correspondientes, en sincronía con las transiciones de órdenes.
type PosterUseCase struct {
	txRunner  TxRunner
	entryRepo repository.AccountEntryRepository
	cashRepo  repository.CashMovementRepository
	clock     clock.Clock
	policy    Policy
}

// NewPosterUseCase construye el caso de uso.
func NewPosterUseCase(
	txRunner TxRunner,
	entryRepo repository.AccountEntryRepository,
	cashRepo repository.CashMovementRepository,
	clk clock.Clock,
	policy Policy,
) *PosterUseCase {
	return &PosterUseCase{txRunner: txRunner, entryRepo: entryRepo, cashRepo: cashRepo, clock: clk, policy: policy}
}

// PostReceivableInTx crea la cuenta por cobrar de una orden confirmada, dentro de la
// transacción del caller. Vencimiento: inmediato para pagos de contado, con plazo
// (TermDays) para ventas a crédito.
func (uc *PosterUseCase) PostReceivableInTx(
	entryRepo repository.AccountEntryRepository,
	order *entity.Order,
	now time.Time,
) (*entity.AccountEntry, error) {
	if order == nil || !order.TotalAmount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := entryRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate // exactamente una cuenta por orden
	}
	dueDate := now
	if order.PaymentMethod == entity.PaymentTerm {
		dueDate = now.AddDate(0, 0, uc.policy.TermDays)
	}
	entry := &entity.AccountEntry{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		Direction:  entity.EntryReceivable,
		Amount:     order.TotalAmount,
		DueDate:    dueDate,
		Status:     entity.EntryPending,
		PaidAmount: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := entryRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SettleInTx abona paymentAmount a la cuenta dentro de la transacción del caller.
// Si cubre el saldo queda paid (el excedente no se abona); si no, partial. Siempre
// agrega un CashMovement por el monto efectivamente liquidado. Rechaza cuentas ya
// paid/cancelled con ErrInvalidTransition.
func (uc *PosterUseCase) SettleInTx(
	entryRepo repository.AccountEntryRepository,
	cashRepo repository.CashMovementRepository,
	entryID string,
	paymentAmount decimal.Decimal,
	method, actorID string,
	now time.Time,
) (*entity.AccountEntry, error) {
	if !paymentAmount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	entry, err := entryRepo.GetForUpdate(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	if entry.Status == entity.EntryPaid || entry.Status == entity.EntryCancelled {
		return nil, domain.ErrInvalidTransition
	}

	settled := decimal.Min(paymentAmount, entry.Outstanding())
	entry.PaidAmount = entry.PaidAmount.Add(settled)
	if entry.Outstanding().IsZero() {
		entry.Status = entity.EntryPaid
		paidAt := now
		entry.PaidAt = &paidAt
	} else {
		entry.Status = entity.EntryPartial
	}
	entry.UpdatedAt = now
	if err := entryRepo.Update(entry); err != nil {
		return nil, err
	}

	cash := &entity.CashMovement{
		ID:             uuid.New().String(),
		Type:           entity.CashIncome,
		Amount:         settled,
		Category:       categoryForEntry(entry),
		AccountEntryID: entry.ID,
		Method:         method,
		CreatedAt:      now,
		CreatedBy:      actorID,
	}
	if err := cashRepo.Create(cash); err != nil {
		return nil, err
	}
	return entry, nil
}

// Settle liquida una cuenta en su propia transacción (pagos por fuera del ciclo de
// la orden, ej. abono de una cuenta a plazo desde caja).
func (uc *PosterUseCase) Settle(ctx context.Context, entryID string, paymentAmount decimal.Decimal, method, actorID string) (*entity.AccountEntry, error) {
	now := uc.clock.Now()
	var settled *entity.AccountEntry
	err := uc.txRunner.RunFinance(ctx, func(
		entryRepo repository.AccountEntryRepository,
		cashRepo repository.CashMovementRepository,
	) error {
		e, err := uc.SettleInTx(entryRepo, cashRepo, entryID, paymentAmount, method, actorID, now)
		if err != nil {
			return err
		}
		settled = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// VoidByOrderInTx anula la cuenta de una orden cancelada dentro de la transacción
// del caller. Solo legal en pending, o partial con cero abonado; una cuenta con
// abonos no se anula en silencio: ErrConflict (resolver manualmente).
func (uc *PosterUseCase) VoidByOrderInTx(
	entryRepo repository.AccountEntryRepository,
	orderID string,
	now time.Time,
) (*entity.AccountEntry, error) {
	entry, err := entryRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil // orden sin cuenta (total cero): nada que anular
	}
	return uc.voidInTx(entryRepo, entry.ID, now)
}

// Void anula una cuenta en su propia transacción.
func (uc *PosterUseCase) Void(ctx context.Context, entryID string) (*entity.AccountEntry, error) {
	now := uc.clock.Now()
	var voided *entity.AccountEntry
	err := uc.txRunner.RunFinance(ctx, func(
		entryRepo repository.AccountEntryRepository,
		_ repository.CashMovementRepository,
	) error {
		e, err := uc.voidInTx(entryRepo, entryID, now)
		if err != nil {
			return err
		}
		voided = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voided, nil
}

func (uc *PosterUseCase) voidInTx(entryRepo repository.AccountEntryRepository, entryID string, now time.Time) (*entity.AccountEntry, error) {
	entry, err := entryRepo.GetForUpdate(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	switch entry.Status {
	case entity.EntryPending:
	case entity.EntryPartial:
		if !entry.PaidAmount.IsZero() {
			return nil, domain.ErrConflict
		}
	default:
		return nil, domain.ErrConflict
	}
	entry.Status = entity.EntryCancelled
	entry.UpdatedAt = now
	if err := entryRepo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ComputeOverdue deriva en lectura el estado overdue y la mora de una cuenta a la
// fecha dada: % diario sobre el saldo, con tope. No muta nada persistido.
func (uc *PosterUseCase) ComputeOverdue(entry *entity.AccountEntry, asOf time.Time) (status string, lateFee decimal.Decimal) {
	status = entry.Status
	lateFee = decimal.Zero
	if entry.Status != entity.EntryPending && entry.Status != entity.EntryPartial {
		return status, lateFee
	}
	if !entry.DueDate.Before(asOf) {
		return status, lateFee
	}
	status = entity.EntryOverdue
	days := int64(asOf.Sub(entry.DueDate).Hours() / 24)
	if days <= 0 {
		return status, lateFee
	}
	outstanding := entry.Outstanding()
	cien := decimal.NewFromInt(100)
	lateFee = outstanding.Mul(uc.policy.LateFeeDailyPct).Div(cien).Mul(decimal.NewFromInt(days))
	cap := outstanding.Mul(uc.policy.LateFeeMaxPct).Div(cien)
	if lateFee.GreaterThan(cap) {
		lateFee = cap
	}
	return status, lateFee.Round(2)
}

// ListEntries lista cuentas con el estado overdue y la mora derivados al momento
// de la consulta.
func (uc *PosterUseCase) ListEntries(ctx context.Context, direction, status string, limit, offset int) ([]*entity.AccountEntry, error) {
	entries, err := uc.entryRepo.List(direction, status, limit, offset)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	for _, e := range entries {
		derived, fee := uc.ComputeOverdue(e, now)
		e.Status = derived
		e.LateFee = fee
	}
	return entries, nil
}

// GetEntry devuelve una cuenta con overdue/mora derivados.
func (uc *PosterUseCase) GetEntry(ctx context.Context, entryID string) (*entity.AccountEntry, error) {
	entry, err := uc.entryRepo.GetByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	derived, fee := uc.ComputeOverdue(entry, uc.clock.Now())
	entry.Status = derived
	entry.LateFee = fee
	return entry, nil
}

// RegisterCashMovement registra un movimiento de caja manual (gasto o ingreso suelto).
func (uc *PosterUseCase) RegisterCashMovement(ctx context.Context, movType, category, description, method, actorID string, amount decimal.Decimal) (*entity.CashMovement, error) {
	if movType != entity.CashIncome && movType != entity.CashExpense {
		return nil, domain.ErrInvalidInput
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	mov := &entity.CashMovement{
		ID:          uuid.New().String(),
		Type:        movType,
		Amount:      amount,
		Category:    category,
		Description: description,
		Method:      method,
		CreatedAt:   uc.clock.Now(),
		CreatedBy:   actorID,
	}
	if err := uc.cashRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ListCashMovements lista la caja con filtros opcionales.
func (uc *PosterUseCase) ListCashMovements(ctx context.Context, movType, category string, from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	return uc.cashRepo.List(movType, category, from, to, limit, offset)
}

func categoryForEntry(entry *entity.AccountEntry) string {
	if entry.Direction == entity.EntryPayable {
		return "expense"
	}
	return "sale"
}
