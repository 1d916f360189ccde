package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeReplayer records replay calls and fails on command.
type fakeReplayer struct {
	entityType string
	err        error
	mu         sync.Mutex
	replayed   []int64
}

func (f *fakeReplayer) EntityType() string { return f.entityType }

func (f *fakeReplayer) Replay(_ context.Context, item store.SyncItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.replayed = append(f.replayed, item.ID)
	return nil
}

func TestDrainClearsQueueInOrder(t *testing.T) {
	db := testDB(t)
	id1, _ := db.EnqueueSync(service.EntityOrder, "ord_1", store.OpCreate, nil, model.Now())
	id2, _ := db.EnqueueSync(service.EntityOrder, "ord_1", store.OpUpdate, nil, model.Now())
	id3, _ := db.EnqueueSync(service.EntityOrder, "ord_2", store.OpCreate, nil, model.Now())

	orders := &fakeReplayer{entityType: service.EntityOrder}
	s := New(db, 0, 0, nil, orders)

	rep, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if rep.Replayed != 3 || rep.Failed != 0 {
		t.Errorf("report = %+v", rep)
	}
	want := []int64{id1, id2, id3}
	for i, id := range orders.replayed {
		if id != want[i] {
			t.Errorf("replay order = %v, want %v", orders.replayed, want)
			break
		}
	}
	items, _ := db.ListPendingSync(service.EntityOrder, 10)
	if len(items) != 0 {
		t.Errorf("queue not empty after drain: %v", items)
	}
}

func TestDrainEntityTypeOrder(t *testing.T) {
	db := testDB(t)
	// Enqueue the order before the customer it references; the drain
	// order still replays customers first.
	db.EnqueueSync(service.EntityOrder, "ord_1", store.OpCreate, nil, model.Now())
	db.EnqueueSync(service.EntityCustomer, "cus_1", store.OpCreate, nil, model.Now())

	var seq []string
	var mu sync.Mutex
	record := func(entityType string) *recordingReplayer {
		return &recordingReplayer{entityType: entityType, record: func() {
			mu.Lock()
			seq = append(seq, entityType)
			mu.Unlock()
		}}
	}

	s := New(db, 0, 0, nil, record(service.EntityOrder), record(service.EntityCustomer))
	if _, err := s.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(seq) != 2 || seq[0] != service.EntityCustomer || seq[1] != service.EntityOrder {
		t.Errorf("replay sequence = %v", seq)
	}
}

type recordingReplayer struct {
	entityType string
	record     func()
}

func (r *recordingReplayer) EntityType() string { return r.entityType }
func (r *recordingReplayer) Replay(context.Context, store.SyncItem) error {
	r.record()
	return nil
}

func TestDrainPartialFailureIsolation(t *testing.T) {
	db := testDB(t)
	db.EnqueueSync(service.EntityCustomer, "cus_1", store.OpCreate, nil, model.Now())
	db.EnqueueSync(service.EntityOrder, "ord_1", store.OpCreate, nil, model.Now())
	db.EnqueueSync(service.EntityInventory, "inv_1", store.OpUpdate, nil, model.Now())

	s := New(db, 0, 0, nil,
		&fakeReplayer{entityType: service.EntityCustomer},
		&fakeReplayer{entityType: service.EntityOrder},
		&fakeReplayer{entityType: service.EntityInventory, err: errors.New("connection reset")},
	)

	rep, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if rep.Replayed != 2 || rep.Failed != 1 {
		t.Errorf("report = %+v", rep)
	}
	if rep.ByType[service.EntityCustomer] != 1 || rep.ByType[service.EntityOrder] != 1 {
		t.Errorf("by type = %v", rep.ByType)
	}

	// Orders and customers cleared even though inventory failed.
	for _, et := range []string{service.EntityCustomer, service.EntityOrder} {
		if items, _ := db.ListPendingSync(et, 10); len(items) != 0 {
			t.Errorf("%s queue not cleared", et)
		}
	}
	items, _ := db.ListPendingSync(service.EntityInventory, 10)
	if len(items) != 1 {
		t.Fatal("failed inventory row should stay pending")
	}
	if items[0].AttemptCount != 1 || items[0].LastError == "" {
		t.Errorf("diagnostics = %d %q", items[0].AttemptCount, items[0].LastError)
	}
}

func TestDrainSkipsLaterRowsForFailedEntity(t *testing.T) {
	db := testDB(t)
	db.EnqueueSync(service.EntityOrder, "ord_1", store.OpCreate, nil, model.Now())
	db.EnqueueSync(service.EntityOrder, "ord_1", store.OpUpdate, nil, model.Now())
	db.EnqueueSync(service.EntityOrder, "ord_2", store.OpCreate, nil, model.Now())

	failFirst := &selectiveReplayer{failEntity: "ord_1"}
	s := New(db, 0, 0, nil, failFirst)

	rep, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	// ord_1's create failed, its update must not run ahead of it, but
	// ord_2 still replays.
	if rep.Replayed != 1 || rep.Failed != 1 {
		t.Errorf("report = %+v", rep)
	}
	items, _ := db.ListPendingSync(service.EntityOrder, 10)
	if len(items) != 2 {
		t.Errorf("pending = %v", items)
	}
	for _, it := range items {
		if it.EntityID != "ord_1" {
			t.Errorf("wrong row left pending: %+v", it)
		}
	}
}

type selectiveReplayer struct {
	failEntity string
}

func (r *selectiveReplayer) EntityType() string { return service.EntityOrder }
func (r *selectiveReplayer) Replay(_ context.Context, item store.SyncItem) error {
	if item.EntityID == r.failEntity {
		return errors.New("timeout")
	}
	return nil
}

func TestDrainQuarantinesPermanentRejections(t *testing.T) {
	db := testDB(t)
	db.EnqueueSync(service.EntityOrder, "ord_1", store.OpCreate, nil, model.Now())
	db.EnqueueSync(service.EntityOrder, "ord_2", store.OpCreate, nil, model.Now())

	rejected := &fakeReplayer{
		entityType: service.EntityOrder,
		err:        &remote.Error{Status: 422, Message: "quantity out of range"},
	}
	s := New(db, 0, 0, nil, rejected)

	rep, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if rep.Quarantined != 2 || rep.Failed != 0 {
		t.Errorf("report = %+v", rep)
	}
	if items, _ := db.ListPendingSync(service.EntityOrder, 10); len(items) != 0 {
		t.Error("quarantined rows still pending")
	}
	failed, _ := db.ListFailedSync(10)
	if len(failed) != 2 {
		t.Errorf("failed rows = %d, want 2", len(failed))
	}

	// Quarantined rows never come back.
	rep, _ = s.Drain(context.Background())
	if rep.Replayed != 0 || rep.Quarantined != 0 {
		t.Errorf("second drain touched quarantined rows: %+v", rep)
	}
}

// Offline order create, network restored, drain: queue empties and the
// cached entity flips to synced.
func TestOfflineCreateThenDrain(t *testing.T) {
	db := testDB(t)
	api := &switchableClient{offline: true}
	orders := service.NewOrderService(db, api, nil)

	created, err := orders.Create(context.Background(), model.Order{
		BoxType: "rigid", Quantity: 100,
		Dimensions: model.Dimensions{Length: 10, Width: 10, Height: 5, Unit: "cm"},
	})
	if err != nil {
		t.Fatalf("offline create: %v", err)
	}
	if items, _ := db.ListPendingSync(service.EntityOrder, 10); len(items) != 1 {
		t.Fatal("expected one queued create")
	}

	api.setOffline(false)
	s := New(db, 0, 0, nil, orders)
	rep, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if rep.Replayed != 1 {
		t.Errorf("report = %+v", rep)
	}
	if items, _ := db.ListPendingSync(service.EntityOrder, 10); len(items) != 0 {
		t.Error("queue not empty after drain")
	}

	// Read from the cache to observe the stored sync flag.
	api.setOffline(true)
	got, origin, err := orders.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if origin != service.OriginCached {
		t.Errorf("origin = %v, want cached", origin)
	}
	if !got.IsSynced {
		t.Error("drained entity should be synced")
	}
}

// switchableClient echoes request bodies while online and fails with a
// transport error while offline.
type switchableClient struct {
	mu      sync.Mutex
	offline bool
}

func (c *switchableClient) Request(_ context.Context, method, path string, body any) (*remote.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offline {
		return nil, errors.New("dial tcp: connection refused")
	}
	data, _ := json.Marshal(body)
	return &remote.Envelope{Success: true, Data: data}, nil
}

func (c *switchableClient) setOffline(offline bool) {
	c.mu.Lock()
	c.offline = offline
	c.mu.Unlock()
}
