package orders_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/orders"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// faults inyecta errores en los repos en memoria; vive fuera del snapshot para
// que el rollback simulado no deshaga el consumo de un error ya inyectado.
type faults struct {
	orderUpdateErrs []error
	cashCreateErr   error
}

func (f *faults) popOrderUpdateErr() error {
	if len(f.orderUpdateErrs) == 0 {
		return nil
	}
	err := f.orderUpdateErrs[0]
	f.orderUpdateErrs = f.orderUpdateErrs[1:]
	return err
}

// memStore simula la BD para el ciclo de vida de órdenes; el runner restaura un
// snapshot ante error para reproducir el rollback de la transacción.
type memStore struct {
	orders      map[string]*entity.Order
	transitions map[string]bool // orderID|toStatus
	counters    map[string]int
	movements   []*entity.StockMovement
	stocks      map[string]*entity.Stock
	products    map[string]*entity.Product
	customers   map[string]*entity.Customer
	vehicles    map[string]*entity.Vehicle
	entries     map[string]*entity.AccountEntry
	cash        []*entity.CashMovement

	faults *faults
}

func newMemStore() *memStore {
	return &memStore{
		orders:      make(map[string]*entity.Order),
		transitions: make(map[string]bool),
		counters:    make(map[string]int),
		stocks:      make(map[string]*entity.Stock),
		products:    make(map[string]*entity.Product),
		customers:   make(map[string]*entity.Customer),
		vehicles:    make(map[string]*entity.Vehicle),
		entries:     make(map[string]*entity.AccountEntry),
		faults:      &faults{},
	}
}

func copyOrder(o *entity.Order) *entity.Order {
	oc := *o
	oc.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &oc
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.transitions {
		c.transitions[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
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
	for k, v := range s.customers {
		vc := *v
		c.customers[k] = &vc
	}
	for k, v := range s.vehicles {
		vc := *v
		c.vehicles[k] = &vc
	}
	for k, v := range s.entries {
		vc := *v
		c.entries[k] = &vc
	}
	for _, m := range s.cash {
		mc := *m
		c.cash = append(c.cash, &mc)
	}
	c.faults = s.faults
	return c
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(o *entity.Order) error {
	r.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	if o, ok := r.s.orders[id]; ok {
		return copyOrder(o), nil
	}
	return nil, nil
}

func (r *memOrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *memOrderRepo) Update(o *entity.Order) error {
	if err := r.s.faults.popOrderUpdateErr(); err != nil {
		return err
	}
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != o.Version {
		return domain.ErrConcurrencyConflict
	}
	oc := copyOrder(o)
	oc.Lines = stored.Lines // Update no persiste líneas
	oc.Version++
	r.s.orders[o.ID] = oc
	o.Version++
	return nil
}

func (r *memOrderRepo) ReplaceLines(orderID string, lines []entity.OrderLine) error {
	stored, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Lines = append([]entity.OrderLine(nil), lines...)
	return nil
}

func (r *memOrderRepo) List(kind, status string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if kind != "" && o.Kind != kind {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (r *memOrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *memOrderRepo) NextNumber(kind string) (int, error) {
	r.s.counters[kind]++
	return r.s.counters[kind], nil
}

func (r *memOrderRepo) RegisterTransition(orderID, toStatus, actorID string) (bool, error) {
	key := orderID + "|" + toStatus
	if r.s.transitions[key] {
		return false, nil
	}
	r.s.transitions[key] = true
	return true, nil
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
		if m.ProductID == productID {
			mc := *m
			out = append(out, &mc)
		}
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
	return r.GetForUpdate(productID)
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

type memEntryRepo struct{ s *memStore }

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

type memCashRepo struct{ s *memStore }

func (r *memCashRepo) Create(m *entity.CashMovement) error {
	if r.s.faults.cashCreateErr != nil {
		return r.s.faults.cashCreateErr
	}
	mc := *m
	r.s.cash = append(r.s.cash, &mc)
	return nil
}

func (r *memCashRepo) List(movType, category string, from, to *time.Time, limit, offset int) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	for _, m := range r.s.cash {
		mc := *m
		out = append(out, &mc)
	}
	return out, nil
}

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) Create(c *entity.Customer) error {
	cc := *c
	r.s.customers[c.ID] = &cc
	return nil
}

func (r *memCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.s.customers[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, nil
}

func (r *memCustomerRepo) GetByDocument(document string) (*entity.Customer, error) {
	for _, c := range r.s.customers {
		if c.Document == document {
			cc := *c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *memCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.s.customers {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func (r *memCustomerRepo) Update(c *entity.Customer) error {
	cc := *c
	r.s.customers[c.ID] = &cc
	return nil
}

func (r *memCustomerRepo) Delete(id string) error {
	delete(r.s.customers, id)
	return nil
}

type memVehicleRepo struct{ s *memStore }

func (r *memVehicleRepo) Create(v *entity.Vehicle) error {
	vc := *v
	r.s.vehicles[v.ID] = &vc
	return nil
}

func (r *memVehicleRepo) GetByID(id string) (*entity.Vehicle, error) {
	if v, ok := r.s.vehicles[id]; ok {
		vc := *v
		return &vc, nil
	}
	return nil, nil
}

func (r *memVehicleRepo) GetByPlate(plate string) (*entity.Vehicle, error) {
	for _, v := range r.s.vehicles {
		if v.Plate == plate {
			vc := *v
			return &vc, nil
		}
	}
	return nil, nil
}

func (r *memVehicleRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Vehicle, error) {
	var out []*entity.Vehicle
	for _, v := range r.s.vehicles {
		if v.CustomerID == customerID {
			vc := *v
			out = append(out, &vc)
		}
	}
	return out, nil
}

func (r *memVehicleRepo) Update(v *entity.Vehicle) error {
	vc := *v
	r.s.vehicles[v.ID] = &vc
	return nil
}

func (r *memVehicleRepo) Delete(id string) error {
	delete(r.s.vehicles, id)
	return nil
}

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) RunLifecycle(ctx context.Context, fn func(repos orders.LifecycleRepos) error) error {
	snapshot := r.s.clone()
	err := fn(orders.LifecycleRepos{
		Orders:    &memOrderRepo{r.s},
		Movements: &memMovementRepo{r.s},
		Stock:     &memStockRepo{r.s},
		Products:  &memProductRepo{r.s},
		Entries:   &memEntryRepo{r.s},
		Cash:      &memCashRepo{r.s},
	})
	if err != nil {
		*r.s = *snapshot
		return err
	}
	return nil
}

// Run y RunFinance comparten el mismo snapshot: los casos de uso de stock y
// finanzas construidos sobre este store también son transaccionales.
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

func (r *memTxRunner) RunFinance(ctx context.Context, fn func(
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
