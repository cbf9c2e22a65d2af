package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/stock"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/clock"
)

// memStore simula la BD en memoria; el runner de transacciones restaura un
// snapshot ante error para reproducir el rollback.
type memStore struct {
	movements []*entity.StockMovement
	stocks    map[string]*entity.Stock
	products  map[string]*entity.Product

	failProductUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		stocks:   make(map[string]*entity.Stock),
		products: make(map[string]*entity.Product),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for _, m := range s.movements {
		mc := *m
		c.movements = append(c.movements, &mc)
	}
	for k, v := range s.stocks {
		vc := *v
		c.stocks[k] = &vc
	}
	for k, v := range s.products {
		vc := *v
		c.products[k] = &vc
	}
	c.failProductUpdate = s.failProductUpdate
	return c
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	mc := *m
	r.s.movements = append(r.s.movements, &mc)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			mc := *m
			return &mc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		mc := *m
		out = append(out, &mc)
	}
	return out, nil
}

func (r *memMovementRepo) ListByReference(referenceID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ReferenceID == referenceID {
			mc := *m
			out = append(out, &mc)
		}
	}
	return out, nil
}

func (r *memMovementRepo) HasReversalFor(referenceID string) (bool, error) {
	for _, m := range r.s.movements {
		if m.ReferenceID == referenceID && m.ReversalOf != "" {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMovementRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(productID string) (*entity.Stock, error) {
	if st, ok := r.s.stocks[productID]; ok {
		sc := *st
		return &sc, nil
	}
	return &entity.Stock{ProductID: productID, Quantity: decimal.Zero}, nil
}

func (r *memStockRepo) GetForUpdate(productID string) (*entity.Stock, error) {
	if _, ok := r.s.stocks[productID]; !ok {
		r.s.stocks[productID] = &entity.Stock{ProductID: productID, Quantity: decimal.Zero}
	}
	sc := *r.s.stocks[productID]
	return &sc, nil
}

func (r *memStockRepo) Upsert(st *entity.Stock) error {
	sc := *st
	r.s.stocks[st.ProductID] = &sc
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	pc := *p
	r.s.products[p.ID] = &pc
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		pc := *p
		return &pc, nil
	}
	return nil, nil
}

func (r *memProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Code == code {
			pc := *p
			return &pc, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	if r.s.failProductUpdate != nil {
		return r.s.failProductUpdate
	}
	pc := *p
	r.s.products[p.ID] = &pc
	return nil
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		pc := *p
		out = append(out, &pc)
	}
	return out, nil
}

func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	snapshot := r.s.clone()
	if err := fn(&memMovementRepo{r.s}, &memStockRepo{r.s}, &memProductRepo{r.s}); err != nil {
		*r.s = *snapshot
		return err
	}
	return nil
}

func newLedgerFixture(t *testing.T) (*stock.LedgerUseCase, *memStore, *clock.Fixed) {
	t.Helper()
	s := newMemStore()
	s.products["p1"] = &entity.Product{
		ID:        "p1",
		Code:      "OIL001",
		Name:      "Aceite 10W40",
		UnitPrice: decimal.NewFromInt(25),
		CostPrice: decimal.NewFromInt(5),
	}
	clk := clock.NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	uc := stock.NewLedgerUseCase(&memTxRunner{s}, &memProductRepo{s}, &memMovementRepo{s}, clk)
	return uc, s, clk
}

func registerEntry(t *testing.T, uc *stock.LedgerUseCase, qty, cost string) {
	t.Helper()
	err := uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		UserID:    "u1",
		ProductID: "p1",
		Kind:      entity.MovementKindEntry,
		Quantity:  decimal.RequireFromString(qty),
		UnitCost:  decimal.RequireFromString(cost),
	})
	require.NoError(t, err)
}

func TestRegisterMovement_Entrada(t *testing.T) {
	uc, s, _ := newLedgerFixture(t)

	registerEntry(t, uc, "10", "0")

	require.Len(t, s.movements, 1)
	mov := s.movements[0]
	assert.Equal(t, entity.MovementKindEntry, mov.Kind)
	assert.Equal(t, entity.ReferenceManual, mov.ReferenceType)
	assert.True(t, decimal.NewFromInt(10).Equal(mov.ResultingStock))
	assert.Equal(t, "u1", mov.CreatedBy)
	assert.True(t, decimal.NewFromInt(10).Equal(s.stocks["p1"].Quantity))

	qty, err := uc.CurrentStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(qty))
}

func TestRegisterMovement_ValidacionDeSigno(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	cases := []struct {
		name string
		in   stock.MovementInputDTO
	}{
		{"entrada negativa", stock.MovementInputDTO{ProductID: "p1", Kind: entity.MovementKindEntry, Quantity: decimal.NewFromInt(-1)}},
		{"entrada cero", stock.MovementInputDTO{ProductID: "p1", Kind: entity.MovementKindEntry, Quantity: decimal.Zero}},
		{"salida positiva", stock.MovementInputDTO{ProductID: "p1", Kind: entity.MovementKindExit, Quantity: decimal.NewFromInt(1)}},
		{"ajuste cero", stock.MovementInputDTO{ProductID: "p1", Kind: entity.MovementKindAdjustment, Quantity: decimal.Zero}},
		{"clase desconocida", stock.MovementInputDTO{ProductID: "p1", Kind: "bogus", Quantity: decimal.NewFromInt(1)}},
		{"sin producto", stock.MovementInputDTO{Kind: entity.MovementKindEntry, Quantity: decimal.NewFromInt(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := uc.RegisterMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegisterMovement_ProductoInexistente(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	err := uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		ProductID: "nope",
		Kind:      entity.MovementKindEntry,
		Quantity:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_SaldoInsuficiente(t *testing.T) {
	uc, s, _ := newLedgerFixture(t)
	registerEntry(t, uc, "5", "0")

	err := uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		ProductID: "p1",
		Kind:      entity.MovementKindExit,
		Quantity:  decimal.NewFromInt(-8),
	})
	var shortfall *domain.StockShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, "OIL001", shortfall.ProductCode)
	assert.True(t, decimal.NewFromInt(8).Equal(shortfall.Requested))
	assert.True(t, decimal.NewFromInt(5).Equal(shortfall.Available))

	// El libro queda intacto: ni el movimiento ni el saldo cambiaron.
	assert.Len(t, s.movements, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(s.stocks["p1"].Quantity))
}

func TestRegisterMovement_AjusteNegativo(t *testing.T) {
	uc, s, _ := newLedgerFixture(t)

	err := uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		ProductID: "p1",
		Kind:      entity.MovementKindAdjustment,
		Quantity:  decimal.NewFromInt(-3),
	})
	var shortfall *domain.StockShortfallError
	assert.ErrorAs(t, err, &shortfall, "sin permiso explícito el ajuste no deja saldo negativo")

	err = uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		ProductID:     "p1",
		Kind:          entity.MovementKindAdjustment,
		Quantity:      decimal.NewFromInt(-3),
		AllowNegative: true,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-3).Equal(s.stocks["p1"].Quantity))
}

func TestRegisterMovement_CostoPromedioPonderado(t *testing.T) {
	uc, s, _ := newLedgerFixture(t)

	// 10 unidades a costo 5.00 ya en libro, entrada de 10 a 7.00 → 6.00.
	registerEntry(t, uc, "10", "0")
	registerEntry(t, uc, "10", "7.00")

	assert.True(t, decimal.NewFromInt(6).Equal(s.products["p1"].CostPrice),
		"costo %s", s.products["p1"].CostPrice)
}

func TestRegisterMovement_FalloEnTx_NoDejaMovimiento(t *testing.T) {
	uc, s, _ := newLedgerFixture(t)
	registerEntry(t, uc, "10", "0")
	s.failProductUpdate = assert.AnError

	err := uc.RegisterMovement(context.Background(), stock.MovementInputDTO{
		ProductID: "p1",
		Kind:      entity.MovementKindEntry,
		Quantity:  decimal.NewFromInt(5),
		UnitCost:  decimal.NewFromInt(9),
	})
	require.Error(t, err)

	// Rollback total: el movimiento agregado antes del fallo no sobrevive.
	assert.Len(t, s.movements, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(s.stocks["p1"].Quantity))
	assert.True(t, decimal.NewFromInt(5).Equal(s.products["p1"].CostPrice))
}

func TestApplyExitInTx_Snapshots(t *testing.T) {
	uc, s, clk := newLedgerFixture(t)
	registerEntry(t, uc, "10", "0")

	movRepo := &memMovementRepo{s}
	stockRepo := &memStockRepo{s}
	product := s.products["p1"]

	require.NoError(t, uc.ApplyExitInTx(movRepo, stockRepo, product, decimal.NewFromInt(3), entity.ReferenceSale, "ord1", "u1", clk.Now()))
	require.NoError(t, uc.ApplyExitInTx(movRepo, stockRepo, product, decimal.NewFromInt(2), entity.ReferenceSale, "ord1", "u1", clk.Now()))

	require.Len(t, s.movements, 3)
	assert.True(t, decimal.NewFromInt(7).Equal(s.movements[1].ResultingStock))
	assert.True(t, decimal.NewFromInt(5).Equal(s.movements[2].ResultingStock))
	assert.True(t, decimal.NewFromInt(-3).Equal(s.movements[1].Quantity), "la salida se guarda con signo negativo")

	err := uc.ApplyExitInTx(movRepo, stockRepo, product, decimal.NewFromInt(-1), entity.ReferenceSale, "ord1", "u1", clk.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReverseByReferenceInTx(t *testing.T) {
	uc, s, clk := newLedgerFixture(t)
	registerEntry(t, uc, "10", "0")

	movRepo := &memMovementRepo{s}
	stockRepo := &memStockRepo{s}
	product := s.products["p1"]
	require.NoError(t, uc.ApplyExitInTx(movRepo, stockRepo, product, decimal.NewFromInt(3), entity.ReferenceSale, "ord1", "u1", clk.Now()))
	require.NoError(t, uc.ApplyExitInTx(movRepo, stockRepo, product, decimal.NewFromInt(2), entity.ReferenceSale, "ord1", "u1", clk.Now()))

	require.NoError(t, uc.ReverseByReferenceInTx(movRepo, stockRepo, "ord1", "u2", clk.Now()))

	// Dos compensaciones exactas con signo invertido; el saldo vuelve a 10.
	require.Len(t, s.movements, 5)
	assert.Equal(t, s.movements[1].ID, s.movements[3].ReversalOf)
	assert.Equal(t, s.movements[2].ID, s.movements[4].ReversalOf)
	assert.True(t, decimal.NewFromInt(3).Equal(s.movements[3].Quantity))
	assert.True(t, decimal.NewFromInt(10).Equal(s.stocks["p1"].Quantity))

	// Reversa repetida: no-op.
	require.NoError(t, uc.ReverseByReferenceInTx(movRepo, stockRepo, "ord1", "u2", clk.Now()))
	assert.Len(t, s.movements, 5)
}

func TestListMovements_FiltroPorFechas(t *testing.T) {
	uc, _, clk := newLedgerFixture(t)
	registerEntry(t, uc, "10", "0")
	clk.Advance(48 * time.Hour)
	registerEntry(t, uc, "4", "0")

	cut := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	list, err := uc.ListMovements(context.Background(), "p1", &cut, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(list[0].Quantity))
}
