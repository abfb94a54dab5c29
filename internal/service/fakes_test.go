package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"balloon-studio/internal/domain"
	"balloon-studio/internal/models"
)

// In-memory fakes for the store and cache ports. Semantics mirror the SQL
// implementations: consume is guarded, batch consume is all-or-nothing,
// replenish upserts.

type fakeStockStore struct {
	mu      sync.Mutex
	records map[string]*models.StockRecord
	nextID  int64
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{records: make(map[string]*models.StockRecord)}
}

func (f *fakeStockStore) key(color, size string) string {
	return strings.ToLower(color) + "|" + size
}

func (f *fakeStockStore) seed(color, size string, quantity, threshold int) *models.StockRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(color, size, quantity, threshold)
}

func (f *fakeStockStore) put(color, size string, quantity, threshold int) *models.StockRecord {
	f.nextID++
	rec := &models.StockRecord{
		ID:        f.nextID,
		Color:     strings.ToLower(color),
		Size:      size,
		Quantity:  quantity,
		Threshold: threshold,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.records[f.key(color, size)] = rec
	return rec
}

func clone(rec *models.StockRecord) *models.StockRecord {
	cp := *rec
	return &cp
}

func (f *fakeStockStore) ListStock(ctx context.Context) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.StockRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Color != out[j].Color {
			return out[i].Color < out[j].Color
		}
		return out[i].Size < out[j].Size
	})
	return out, nil
}

func (f *fakeStockStore) GetStockByID(ctx context.Context, id int64) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			return clone(rec), nil
		}
	}
	return nil, fmt.Errorf("stock record %d: %w", id, domain.ErrNotFound)
}

func (f *fakeStockStore) GetStockByColor(ctx context.Context, color string) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StockRecord
	for _, rec := range f.records {
		if rec.Color == strings.ToLower(color) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out, nil
}

func (f *fakeStockStore) GetStockByColorSize(ctx context.Context, color, size string) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[f.key(color, size)]; ok {
		return clone(rec), nil
	}
	return nil, fmt.Errorf("stock for %s %s: %w", color, size, domain.ErrNotFound)
}

func (f *fakeStockStore) CreateStock(ctx context.Context, record *models.StockRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.put(record.Color, record.Size, record.Quantity, record.Threshold)
	*record = *rec
	return nil
}

func (f *fakeStockStore) UpdateStock(ctx context.Context, id int64, quantity, threshold int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			rec.Quantity = quantity
			rec.Threshold = threshold
			rec.UpdatedAt = time.Now()
			return clone(rec), nil
		}
	}
	return nil, fmt.Errorf("stock record %d: %w", id, domain.ErrNotFound)
}

func (f *fakeStockStore) consumeLocked(color, size string, quantity int) (*models.StockRecord, error) {
	rec, ok := f.records[f.key(color, size)]
	if !ok {
		return nil, fmt.Errorf("stock for %s %s: %w", color, size, domain.ErrNotFound)
	}
	if rec.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			Color:     rec.Color,
			Size:      rec.Size,
			Requested: quantity,
			Available: rec.Quantity,
		}
	}
	rec.Quantity -= quantity
	rec.UpdatedAt = time.Now()
	return clone(rec), nil
}

func (f *fakeStockStore) ConsumeStock(ctx context.Context, color, size string, quantity int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.consumeLocked(color, size, quantity)
}

func (f *fakeStockStore) ConsumeStockBatch(ctx context.Context, lines []models.StockDelta) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Stage on copies so a failing line rolls the whole batch back.
	staged := make(map[string]*models.StockRecord, len(f.records))
	for k, rec := range f.records {
		staged[k] = clone(rec)
	}

	out := make([]models.StockRecord, 0, len(lines))
	for _, line := range lines {
		rec, ok := staged[f.key(line.Color, line.Size)]
		if !ok {
			return nil, fmt.Errorf("stock for %s %s: %w", line.Color, line.Size, domain.ErrNotFound)
		}
		if rec.Quantity < line.Quantity {
			return nil, &domain.InsufficientStockError{
				Color:     rec.Color,
				Size:      rec.Size,
				Requested: line.Quantity,
				Available: rec.Quantity,
			}
		}
		rec.Quantity -= line.Quantity
		out = append(out, *rec)
	}

	f.records = staged
	return out, nil
}

func (f *fakeStockStore) ReplenishStock(ctx context.Context, color, size string, quantity, defaultThreshold int) (*models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[f.key(color, size)]; ok {
		rec.Quantity += quantity
		rec.UpdatedAt = time.Now()
		return clone(rec), nil
	}
	return clone(f.put(color, size, quantity, defaultThreshold)), nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	items  map[int64][]models.OrderItem
	nextID int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]models.OrderItem),
	}
}

func (f *fakeOrderStore) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	cp := *order
	f.orders[order.ID] = &cp
	for i := range items {
		items[i].OrderID = order.ID
		items[i].ID = int64(i + 1)
	}
	f.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		cp := *order
		return &cp, nil
	}
	return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
}

func (f *fakeOrderStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.IdempotencyKey == key {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0, len(f.orders))
	for _, order := range f.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeOrderStore) TransitionOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %d no longer in status %s: %w", orderID, from, domain.ErrConflict)
	}
	order.Status = to
	if notes != "" {
		order.Notes = notes
	}
	order.UpdatedAt = time.Now()
	cp := *order
	return &cp, nil
}

func (f *fakeOrderStore) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

type fakeDesignStore struct {
	mu      sync.Mutex
	designs map[int64]*models.Design
	nextID  int64
}

func newFakeDesignStore() *fakeDesignStore {
	return &fakeDesignStore{designs: make(map[int64]*models.Design)}
}

func (f *fakeDesignStore) CreateDesign(ctx context.Context, design *models.Design) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	design.ID = f.nextID
	design.CreatedAt = time.Now()
	design.UpdatedAt = time.Now()
	cp := *design
	f.designs[design.ID] = &cp
	return nil
}

func (f *fakeDesignStore) GetDesignByID(ctx context.Context, id int64) (*models.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if design, ok := f.designs[id]; ok {
		cp := *design
		return &cp, nil
	}
	return nil, fmt.Errorf("design %d: %w", id, domain.ErrNotFound)
}

func (f *fakeDesignStore) GetDesignsByUserID(ctx context.Context, userID int64) ([]models.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Design
	for _, design := range f.designs {
		if design.UserID == userID {
			out = append(out, *design)
		}
	}
	return out, nil
}

func (f *fakeDesignStore) UpdateDesignRequirements(ctx context.Context, id int64, req models.Requirements) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	design, ok := f.designs[id]
	if !ok {
		return fmt.Errorf("design %d: %w", id, domain.ErrNotFound)
	}
	design.MaterialRequirements = req
	design.UpdatedAt = time.Now()
	return nil
}

// fakeCache satisfies StockCache and IdemCache.
type fakeCache struct {
	mu       sync.Mutex
	snapshot map[string]models.StockRecord
	keys     map[string]struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		snapshot: make(map[string]models.StockRecord),
		keys:     make(map[string]struct{}),
	}
}

func (f *fakeCache) GetStockSnapshot(ctx context.Context) ([]models.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StockRecord, 0, len(f.snapshot))
	for _, rec := range f.snapshot {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeCache) SyncStockSnapshot(ctx context.Context, records []models.StockRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = make(map[string]models.StockRecord, len(records))
	for _, rec := range records {
		f.snapshot[strings.ToLower(rec.Color)+"|"+rec.Size] = rec
	}
	return nil
}

func (f *fakeCache) PutStockRecord(ctx context.Context, record *models.StockRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot[strings.ToLower(record.Color)+"|"+record.Size] = *record
	return nil
}

func (f *fakeCache) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = struct{}{}
	return nil
}

func (f *fakeCache) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok, nil
}

// capturingEvents satisfies StockEventSink and OrderEventSink, recording
// everything published.
type capturingEvents struct {
	mu            sync.Mutex
	consumed      []*models.StockConsumedEvent
	replenished   []*models.StockReplenishedEvent
	lowStock      []*models.LowStockEvent
	placed        []*models.OrderPlacedEvent
	statusChanged []*models.OrderStatusChangedEvent
}

func (e *capturingEvents) PublishStockConsumed(ctx context.Context, event *models.StockConsumedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consumed = append(e.consumed, event)
	return nil
}

func (e *capturingEvents) PublishStockReplenished(ctx context.Context, event *models.StockReplenishedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replenished = append(e.replenished, event)
	return nil
}

func (e *capturingEvents) PublishLowStock(ctx context.Context, event *models.LowStockEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lowStock = append(e.lowStock, event)
	return nil
}

func (e *capturingEvents) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.placed = append(e.placed, event)
	return nil
}

func (e *capturingEvents) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusChanged = append(e.statusChanged, event)
	return nil
}

// memIntentStore satisfies IntentStore.
type memIntentStore struct {
	mu      sync.Mutex
	intents map[string]models.PaymentIntent
}

func newMemIntentStore() *memIntentStore {
	return &memIntentStore{intents: make(map[string]models.PaymentIntent)}
}

func (m *memIntentStore) PutIntent(ctx context.Context, intent *models.PaymentIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[intent.ID] = *intent
	return nil
}

func (m *memIntentStore) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if intent, ok := m.intents[id]; ok {
		return &intent, nil
	}
	return nil, nil
}

func (m *memIntentStore) ListIntents(ctx context.Context) ([]models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PaymentIntent, 0, len(m.intents))
	for _, intent := range m.intents {
		out = append(out, intent)
	}
	return out, nil
}
