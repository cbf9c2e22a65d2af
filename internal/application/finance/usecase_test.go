package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/finance"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
)

type memFinanceStore struct {
	entries map[string]*entity.AccountEntry
	cash    []*entity.CashMovement
}

func newMemFinanceStore() *memFinanceStore {
	return &memFinanceStore{entries: make(map[string]*entity.AccountEntry)}
}

func (s *memFinanceStore) clone() *memFinanceStore {
	c := newMemFinanceStore()
	for k, v := range s.entries {
		vc := *v
		c.entries[k] = &vc
	}
	for _, m := range s.cash {
		mc := *m
		c.cash = append(c.cash, &mc)
	}
	return c
}

type memEntryRepo struct{ s *memFinanceStore }

func (r *memEntryRepo) Create(e *entity.AccountEntry) error {
	for _, existing := range r.s.entries {
		if existing.OrderID == e.OrderID {
			return domain.ErrDuplicate
		}
	}
	ec := *e
	r.s.entries[e.ID] = &ec
	return nil
}

func (r *memEntryRepo) GetByID(id string) (*entity.AccountEntry, error) {
	if e, ok := r.s.entries[id]; ok {
		ec := *e
		return &ec, nil
	}
	return nil, nil
}

func (r *memEntryRepo) GetForUpdate(id string) (*entity.AccountEntry, error) {
	return r.GetByID(id)
}

func (r *memEntryRepo) GetByOrderID(orderID string) (*entity.AccountEntry, error) {
	for _, e := range r.s.entries {
		if e.OrderID == orderID {
			ec := *e
			return &ec, nil
		}
	}
	return nil, nil
}

func (r *memEntryRepo) Update(e *entity.AccountEntry) error {
	stored, ok := r.s.entries[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != e.Version {
		return domain.ErrConcurrencyConflict
	}
	ec := *e
	ec.Version++
	r.s.entries[e.ID] = &ec
	e.Version++
	return nil
}

func (r *memEntryRepo) List(direction, status string, limit, offset int) ([]*entity.AccountEntry, error) {
	var out []*entity.AccountEntry
	for _, e := range r.s.entries {
		if direction != "" && e.Direction != direction {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		ec := *e
		out = append(out, &ec)
	}
	return out, nil
}

type memCashRepo struct{ s *memFinanceStore }

func (r *memCashRepo) Create(m *entity.CashMovement) error {
	mc := *m
	r.s.cash = append(r.s.cash, &mc)
	return nil
}

func (r *memCashRepo) List(movType, category string, from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	for _, m := range r.s.cash {
		if movType != "" && m.Type != movType {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		mc := *m
		out = append(out, &mc)
	}
	return out, nil
}

type memFinanceTxRunner struct{ s *memFinanceStore }

func (r *memFinanceTxRunner) RunFinance(ctx context.Context, fn func(
	entryRepo repository.AccountEntryRepository,
	cashRepo repository.CashMovementRepository,
) error) error {
	snapshot := r.s.clone()
	if err := fn(&memEntryRepo{r.s}, &memCashRepo{r.s}); err != nil {
		*r.s = *snapshot
		return err
	}
	return nil
}

func defaultPolicy() finance.Policy {
	return finance.Policy{
		TermDays:        30,
		LateFeeDailyPct: decimal.RequireFromString("0.1"),
		LateFeeMaxPct:   decimal.NewFromInt(10),
	}
}

func newPosterFixture(t *testing.T) (*finance.PosterUseCase, *memFinanceStore, *clock.Fixed) {
	t.Helper()
	s := newMemFinanceStore()
	clk := clock.NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	uc := finance.NewPosterUseCase(&memFinanceTxRunner{s}, &memEntryRepo{s}, &memCashRepo{s}, clk, defaultPolicy())
	return uc, s, clk
}

func seedEntry(s *memFinanceStore, status string, amount, paid int64, due time.Time) *entity.AccountEntry {
	e := &entity.AccountEntry{
		ID:         uuid.New().String(),
		OrderID:    uuid.New().String(),
		Direction:  entity.EntryReceivable,
		Amount:     decimal.NewFromInt(amount),
		DueDate:    due,
		Status:     status,
		PaidAmount: decimal.NewFromInt(paid),
	}
	s.entries[e.ID] = e
	return e
}

func TestPostReceivableInTx_Contado(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	ord := &entity.Order{ID: "ord1", TotalAmount: decimal.NewFromInt(100), PaymentMethod: entity.PaymentCash}

	entry, err := uc.PostReceivableInTx(&memEntryRepo{s}, ord, clk.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.EntryReceivable, entry.Direction)
	assert.Equal(t, entity.EntryPending, entry.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(entry.Amount))
	assert.True(t, entry.DueDate.Equal(clk.Now()), "contado vence de inmediato")
}

func TestPostReceivableInTx_Credito(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	ord := &entity.Order{ID: "ord1", TotalAmount: decimal.NewFromInt(100), PaymentMethod: entity.PaymentTerm}

	entry, err := uc.PostReceivableInTx(&memEntryRepo{s}, ord, clk.Now())
	require.NoError(t, err)
	assert.True(t, entry.DueDate.Equal(clk.Now().AddDate(0, 0, 30)), "crédito vence a 30 días")
}

func TestPostReceivableInTx_Rechazos(t *testing.T) {
	uc, s, clk := newPosterFixture(t)

	_, err := uc.PostReceivableInTx(&memEntryRepo{s}, &entity.Order{ID: "ord0", TotalAmount: decimal.Zero}, clk.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "total cero no genera cuenta")

	ord := &entity.Order{ID: "ord1", TotalAmount: decimal.NewFromInt(100)}
	_, err = uc.PostReceivableInTx(&memEntryRepo{s}, ord, clk.Now())
	require.NoError(t, err)
	_, err = uc.PostReceivableInTx(&memEntryRepo{s}, ord, clk.Now())
	assert.ErrorIs(t, err, domain.ErrDuplicate, "exactamente una cuenta por orden")
}

func TestSettle_ParcialYLuegoPagada(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	e := seedEntry(s, entity.EntryPending, 100, 0, clk.Now())

	got, err := uc.Settle(context.Background(), e.ID, decimal.NewFromInt(40), entity.PaymentCash, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.EntryPartial, got.Status)
	assert.True(t, decimal.NewFromInt(40).Equal(got.PaidAmount))
	assert.Nil(t, got.PaidAt)

	// El excedente no se abona: de 100 solo quedaban 60.
	got, err = uc.Settle(context.Background(), e.ID, decimal.NewFromInt(100), entity.PaymentCash, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.EntryPaid, got.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(got.PaidAmount))
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(clk.Now()))

	// Cada liquidación dejó su movimiento de caja por el monto efectivo.
	require.Len(t, s.cash, 2)
	assert.Equal(t, entity.CashIncome, s.cash[0].Type)
	assert.Equal(t, "sale", s.cash[0].Category)
	assert.Equal(t, e.ID, s.cash[0].AccountEntryID)
	assert.True(t, decimal.NewFromInt(40).Equal(s.cash[0].Amount))
	assert.True(t, decimal.NewFromInt(60).Equal(s.cash[1].Amount))
}

func TestSettle_Rechazos(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	paid := seedEntry(s, entity.EntryPaid, 100, 100, clk.Now())
	cancelled := seedEntry(s, entity.EntryCancelled, 50, 0, clk.Now())

	_, err := uc.Settle(context.Background(), paid.ID, decimal.NewFromInt(10), entity.PaymentCash, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.Settle(context.Background(), cancelled.ID, decimal.NewFromInt(10), entity.PaymentCash, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.Settle(context.Background(), paid.ID, decimal.Zero, entity.PaymentCash, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Settle(context.Background(), "nope", decimal.NewFromInt(10), entity.PaymentCash, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, s.cash, "ningún rechazo deja movimiento de caja")
}

func TestVoid(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	pending := seedEntry(s, entity.EntryPending, 100, 0, clk.Now())
	partial := seedEntry(s, entity.EntryPartial, 100, 40, clk.Now())
	paid := seedEntry(s, entity.EntryPaid, 100, 100, clk.Now())

	got, err := uc.Void(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EntryCancelled, got.Status)

	_, err = uc.Void(context.Background(), partial.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "cuenta con abonos no se anula en silencio")
	assert.Equal(t, entity.EntryPartial, s.entries[partial.ID].Status)

	_, err = uc.Void(context.Background(), paid.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Void(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoidByOrderInTx_OrdenSinCuenta(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	entry, err := uc.VoidByOrderInTx(&memEntryRepo{s}, "ord-sin-cuenta", clk.Now())
	require.NoError(t, err)
	assert.Nil(t, entry, "orden con total cero no tiene cuenta que anular")
}

func TestComputeOverdue(t *testing.T) {
	uc, _, clk := newPosterFixture(t)
	due := clk.Now().AddDate(0, 0, -5)
	entry := &entity.AccountEntry{
		Status:     entity.EntryPending,
		Amount:     decimal.NewFromInt(100),
		PaidAmount: decimal.Zero,
		DueDate:    due,
	}

	// 5 días de mora al 0.1% diario sobre 100 → 0.50.
	status, fee := uc.ComputeOverdue(entry, clk.Now())
	assert.Equal(t, entity.EntryOverdue, status)
	assert.True(t, decimal.RequireFromString("0.50").Equal(fee), "mora %s", fee)

	// 200 días: la mora se topa al 10% del saldo.
	status, fee = uc.ComputeOverdue(entry, clk.Now().AddDate(0, 0, 195))
	assert.Equal(t, entity.EntryOverdue, status)
	assert.True(t, decimal.NewFromInt(10).Equal(fee), "mora topada %s", fee)

	// Aún no vencida: sin cambios.
	entry.DueDate = clk.Now().AddDate(0, 0, 1)
	status, fee = uc.ComputeOverdue(entry, clk.Now())
	assert.Equal(t, entity.EntryPending, status)
	assert.True(t, fee.IsZero())

	// Pagada: nunca pasa a overdue.
	entry.Status = entity.EntryPaid
	entry.DueDate = due
	status, fee = uc.ComputeOverdue(entry, clk.Now())
	assert.Equal(t, entity.EntryPaid, status)
	assert.True(t, fee.IsZero())
}

func TestListEntries_DerivaOverdue(t *testing.T) {
	uc, s, clk := newPosterFixture(t)
	seedEntry(s, entity.EntryPending, 100, 0, clk.Now().AddDate(0, 0, -5))

	list, err := uc.ListEntries(context.Background(), entity.EntryReceivable, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.EntryOverdue, list[0].Status)
	assert.True(t, decimal.RequireFromString("0.50").Equal(list[0].LateFee))

	// El estado derivado no se persiste.
	for _, e := range s.entries {
		assert.Equal(t, entity.EntryPending, e.Status)
	}
}

func TestRegisterCashMovement(t *testing.T) {
	uc, s, clk := newPosterFixture(t)

	mov, err := uc.RegisterCashMovement(context.Background(), entity.CashExpense, "expense", "compra de insumos", entity.PaymentCash, "u1", decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, entity.CashExpense, mov.Type)
	assert.True(t, mov.CreatedAt.Equal(clk.Now()))
	require.Len(t, s.cash, 1)

	_, err = uc.RegisterCashMovement(context.Background(), "bogus", "", "", "", "u1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterCashMovement(context.Background(), entity.CashIncome, "", "", "", "u1", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
