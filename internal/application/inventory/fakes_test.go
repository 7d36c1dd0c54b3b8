package inventory_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comanda-api/internal/application/inventory"
	"github.com/jhoicas/Comanda-api/internal/domain"
	"github.com/jhoicas/Comanda-api/internal/domain/entity"
	"github.com/jhoicas/Comanda-api/internal/domain/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria: registros + libro, con semántica transaccional
// ──────────────────────────────────────────────────────────────────────────────

// memStore guarda registros de stock y movimientos en memoria. El mutex
// serializa las transacciones, igual que los locks de fila en Postgres.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*entity.StockRecord
	movements []*entity.StockMovement

	// appendErr, si no es nil, hace fallar Append después de appendOK asientos
	// exitosos. Simula un fallo de escritura en mitad de una transacción.
	appendErr error
	appendOK  int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*entity.StockRecord)}
}

func recordKey(productID, locationID string) string {
	return productID + "|" + locationID
}

// seed crea un registro inicial sin pasar por el motor.
func (s *memStore) seed(productID, locationID string, qty, avgCost decimal.Decimal) {
	s.records[recordKey(productID, locationID)] = &entity.StockRecord{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		AvgCost:    avgCost,
	}
}

func (s *memStore) record(productID, locationID string) *entity.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordKey(productID, locationID)]
	if !ok {
		return &entity.StockRecord{ProductID: productID, LocationID: locationID,
			Quantity: decimal.Zero, AvgCost: decimal.Zero}
	}
	cp := *r
	return &cp
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) movementsByType(movType string) []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range s.movements {
		if m.Type == movType {
			out = append(out, m)
		}
	}
	return out
}

// memTxRunner ejecuta la función sobre repos atados al almacén. Si la función
// falla, restaura el estado previo: registro y asiento se escriben juntos o
// ninguno, como la transacción real.
type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := make(map[string]*entity.StockRecord, len(r.store.records))
	for k, v := range r.store.records {
		cp := *v
		snapshot[k] = &cp
	}
	movLen := len(r.store.movements)

	err := fn(&memRecordRepo{store: r.store}, &memMovementRepo{store: r.store})
	if err != nil {
		r.store.records = snapshot
		r.store.movements = r.store.movements[:movLen]
		return err
	}
	return nil
}

// conflictTxRunner falla con ErrTxConflict las primeras failures veces y
// delega al almacén después. Sirve para probar el reintento de mutaciones.
type conflictTxRunner struct {
	inner    memTxRunner
	failures int
	attempts int
}

func (r *conflictTxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	r.attempts++
	if r.attempts <= r.failures {
		return domain.ErrTxConflict
	}
	return r.inner.Run(ctx, fn)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memRecordRepo struct {
	store *memStore
}

func (r *memRecordRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	rec, ok := r.store.records[recordKey(productID, locationID)]
	if !ok {
		return &entity.StockRecord{ProductID: productID, LocationID: locationID,
			Quantity: decimal.Zero, AvgCost: decimal.Zero}, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memRecordRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	k := recordKey(productID, locationID)
	rec, ok := r.store.records[k]
	if !ok {
		rec = &entity.StockRecord{ProductID: productID, LocationID: locationID,
			Quantity: decimal.Zero, AvgCost: decimal.Zero}
		r.store.records[k] = rec
	}
	cp := *rec
	return &cp, nil
}

func (r *memRecordRepo) Save(ctx context.Context, record *entity.StockRecord) error {
	cp := *record
	r.store.records[recordKey(record.ProductID, record.LocationID)] = &cp
	return nil
}

func (r *memRecordRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.store.records {
		if rec.LocationID == locationID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMovementRepo struct {
	store *memStore
}

func (r *memMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if r.store.appendErr != nil {
		if r.store.appendOK <= 0 {
			return r.store.appendErr
		}
		r.store.appendOK--
	}
	cp := *movement
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByRecord(ctx context.Context, productID, locationID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.ProductID == productID && m.LocationID == locationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.ReferenceID == referenceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.LocationID != locationID {
			continue
		}
		if from != nil && m.Timestamp.Before(*from) {
			continue
		}
		if to != nil && m.Timestamp.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	products map[string]*entity.Product
}

func newMemProductRepo(ids ...string) *memProductRepo {
	m := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		m[id] = &entity.Product{ID: id, SKU: "SKU-" + id, Name: id, Kind: entity.ProductKindRaw, UnitMeasure: "und"}
	}
	return &memProductRepo{products: m}
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *memProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

type memLocationRepo struct {
	locations map[string]*entity.Location
}

func newMemLocationRepo(ids ...string) *memLocationRepo {
	m := make(map[string]*entity.Location, len(ids))
	for _, id := range ids {
		m[id] = &entity.Location{ID: id, Code: id, Name: id}
	}
	return &memLocationRepo{locations: m}
}

func (r *memLocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.locations[id], nil
}

func (r *memLocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	for _, l := range r.locations {
		if l.Code == code {
			return l, nil
		}
	}
	return nil, nil
}

func (r *memLocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	out := make([]*entity.Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l)
	}
	return out, nil
}

// failResolver simula la base de recetas caída. Si only no está vacío, solo
// falla para ese plato (por ID o nombre) y delega el resto en inner.
type failResolver struct {
	inner inventory.RecipeResolver
	only  string
	err   error
}

func (r *failResolver) ResolveByID(ctx context.Context, menuProductID string) (*entity.Recipe, error) {
	if r.only == "" || r.only == menuProductID {
		return nil, r.err
	}
	return r.inner.ResolveByID(ctx, menuProductID)
}

func (r *failResolver) ResolveByName(ctx context.Context, rawName string) (*entity.Recipe, error) {
	if r.only == "" || r.only == rawName {
		return nil, r.err
	}
	return r.inner.ResolveByName(ctx, rawName)
}

type memRecipeRepo struct {
	recipes []*entity.Recipe
}

func (r *memRecipeRepo) GetByMenuProduct(ctx context.Context, menuProductID string) (*entity.Recipe, error) {
	for _, rec := range r.recipes {
		if rec.MenuProductID == menuProductID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRecipeRepo) ListAll(ctx context.Context) ([]*entity.Recipe, error) {
	return r.recipes, nil
}
