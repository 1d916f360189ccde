package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/store"
	"github.com/nekkaida/Cardose-sub003/workflow"
)

func newOrder() model.Order {
	return model.Order{
		CustomerID: "cus_1",
		BoxType:    "rigid",
		Quantity:   200,
		Dimensions: model.Dimensions{Length: 25, Width: 15, Height: 8, Unit: "cm"},
		Materials:  []string{"greyboard"},
	}
}

func TestCreateOnline(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{
		respond: func(_, _ string, body any) (*remote.Envelope, error) {
			// Server enriches: accepts the entity and stamps notes.
			o := *(body.(*model.Order))
			o.Notes = "server says hi"
			data, _ := json.Marshal(o)
			return &remote.Envelope{Success: true, Data: data}, nil
		},
	}
	svc := NewOrderService(db, api, nil)

	created, err := svc.Create(context.Background(), newOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsSynced {
		t.Error("online create should be synced")
	}
	if created.Notes != "server says hi" {
		t.Error("server-enriched field not returned")
	}
	if !model.HasPrefix(created.ID, model.PrefixOrder) {
		t.Errorf("id = %q", created.ID)
	}
	if created.Status != workflow.StatusPending {
		t.Errorf("default status = %q", created.Status)
	}

	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 0 {
		t.Errorf("online create left %d queue rows", len(items))
	}
}

func TestCreateOfflineReadYourWrites(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewOrderService(db, api, nil)

	created, err := svc.Create(context.Background(), newOrder())
	if err != nil {
		t.Fatalf("offline create should not fail: %v", err)
	}
	if created.IsSynced {
		t.Error("offline create should not be synced")
	}

	// Read-your-writes: an immediate get returns the written value
	// from the cache, not an error.
	got, origin, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if origin != OriginCached {
		t.Errorf("origin = %v, want cached", origin)
	}
	if got.BoxType != "rigid" || got.Quantity != 200 {
		t.Errorf("got %+v", got)
	}

	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 1 || items[0].Operation != store.OpCreate {
		t.Fatalf("queue = %v", items)
	}
	var queued model.Order
	if err := json.Unmarshal(items[0].Payload, &queued); err != nil {
		t.Fatalf("queued payload: %v", err)
	}
	if queued.ID != created.ID {
		t.Errorf("queued id = %q, want %q", queued.ID, created.ID)
	}
}

func TestCreateValidationNoSideEffects(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{}
	svc := NewOrderService(db, api, nil)

	o := newOrder()
	o.Quantity = 0
	_, err := svc.Create(context.Background(), o)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if api.callCount() != 0 {
		t.Error("validation failure must not reach the network")
	}
	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 0 {
		t.Error("validation failure must not queue")
	}
}

func TestUpdateOfflineQueuesPatch(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())

	api.setOffline(true)
	notes := "rush job"
	updated, err := svc.Update(context.Background(), created.ID, model.OrderPatch{Notes: &notes})
	if err != nil {
		t.Fatalf("offline update: %v", err)
	}
	if updated.Notes != "rush job" || updated.IsSynced {
		t.Errorf("updated = %+v", updated)
	}

	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 1 || items[0].Operation != store.OpUpdate {
		t.Fatalf("queue = %v", items)
	}
	// The queued payload is the patch, not the whole entity.
	var patch map[string]any
	json.Unmarshal(items[0].Payload, &patch)
	if _, hasQuantity := patch["quantity"]; hasQuantity {
		t.Errorf("patch payload carries untouched fields: %v", patch)
	}
	if patch["notes"] != "rush job" {
		t.Errorf("patch = %v", patch)
	}
}

func TestUpdateRejectsStatusPatch(t *testing.T) {
	db := testDB(t)
	svc := NewOrderService(db, &fakeClient{}, nil)

	created, _ := svc.Create(context.Background(), newOrder())

	status := workflow.StatusDesigning
	_, err := svc.Update(context.Background(), created.ID, model.OrderPatch{Status: &status})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("err = %v, want status validation error", err)
	}
}

func TestDeleteSupersedesPendingCreate(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())
	calls := api.callCount()

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The pending create was purged and the server never saw this
	// order, so no delete is attempted or queued.
	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 0 {
		t.Errorf("queue = %v, want empty", items)
	}
	if api.callCount() != calls {
		t.Error("no remote call expected for a never-synced entity")
	}
	if _, err := db.GetOrder(created.ID); err == nil {
		t.Error("local row should be gone")
	}
}

func TestDeleteOfflineQueuesDelete(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder()) // synced

	api.setOffline(true)
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 1 || items[0].Operation != store.OpDelete {
		t.Fatalf("queue = %v, want one delete row", items)
	}
	if len(items[0].Payload) != 0 {
		t.Error("delete row carries no payload")
	}
}

func TestGetAllOfflineFallsBackToCache(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())

	orders, origin, err := svc.GetAll(context.Background(), store.OrderFilter{Status: workflow.StatusPending})
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if origin != OriginCached {
		t.Errorf("origin = %v, want cached", origin)
	}
	if len(orders) != 1 || orders[0].ID != created.ID {
		t.Errorf("orders = %v", orders)
	}
}

func TestUpdateStatusWalkAndTerminal(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())
	ctx := context.Background()

	steps := []string{
		workflow.StatusDesigning,
		workflow.StatusApproved,
		workflow.StatusProduction,
		workflow.StatusQualityControl,
		workflow.StatusCompleted,
	}
	for _, next := range steps {
		if _, err := svc.UpdateStatus(ctx, created.ID, next, ""); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	history, err := svc.History(created.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != len(steps) {
		t.Fatalf("history rows = %d, want %d", len(history), len(steps))
	}
	for i, h := range history {
		if h.NewStatus != steps[i] {
			t.Errorf("history[%d] = %s, want %s", i, h.NewStatus, steps[i])
		}
	}

	got, _ := db.GetOrder(created.ID)
	if got.Workflow.ActualCompletion == "" {
		t.Error("completion timestamp not stamped")
	}

	// Completed is terminal: the revival attempt fails and appends
	// no history row.
	_, err = svc.UpdateStatus(ctx, created.ID, workflow.StatusPending, "")
	var te *workflow.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want transition error", err)
	}
	history, _ = svc.History(created.ID)
	if len(history) != len(steps) {
		t.Errorf("rejected transition appended history: %d rows", len(history))
	}
}

func TestUpdateStatusOfflineQueues(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())

	api.setOffline(true)
	updated, err := svc.UpdateStatus(context.Background(), created.ID, workflow.StatusDesigning, "starting design")
	if err != nil {
		t.Fatalf("offline transition: %v", err)
	}
	if updated.Status != workflow.StatusDesigning || updated.IsSynced {
		t.Errorf("updated = %+v", updated)
	}

	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 1 || items[0].Operation != store.OpUpdate {
		t.Fatalf("queue = %v", items)
	}
}

func TestReplayRefreshSkippedWithLaterPending(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewOrderService(db, api, nil)

	created, _ := svc.Create(context.Background(), newOrder())
	notes := "second edit"
	svc.Update(context.Background(), created.ID, model.OrderPatch{Notes: &notes})

	items, _ := db.ListPendingSync(EntityOrder, 10)
	if len(items) != 2 {
		t.Fatalf("queue = %d rows", len(items))
	}

	// Replay only the create; the server's echo of the original
	// entity must not clobber the newer offline edit.
	api.setOffline(false)
	if err := svc.Replay(context.Background(), items[0]); err != nil {
		t.Fatalf("replay: %v", err)
	}
	got, _ := db.GetOrder(created.ID)
	if got.Notes != "second edit" {
		t.Errorf("notes = %q, later offline edit was clobbered", got.Notes)
	}
	if got.IsSynced {
		t.Error("entity with pending rows must stay unsynced")
	}

	// After the last row replays, the cache takes the server truth.
	db.DeleteSyncItem(items[0].ID)
	if err := svc.Replay(context.Background(), items[1]); err != nil {
		t.Fatalf("replay update: %v", err)
	}
	got, _ = db.GetOrder(created.ID)
	if !got.IsSynced {
		t.Error("fully replayed entity should be synced")
	}
}

func TestInventoryAdjustQuantity(t *testing.T) {
	db := testDB(t)
	api := &fakeClient{offline: true}
	svc := NewInventoryService(db, api)

	item, err := svc.Create(context.Background(), model.InventoryItem{
		Name: "Greyboard 2mm", Material: "greyboard", Quantity: 10, Unit: "sheet",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AdjustQuantity(context.Background(), item.ID, -4)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Quantity != 6 {
		t.Errorf("quantity = %v, want 6", updated.Quantity)
	}

	_, err = svc.AdjustQuantity(context.Background(), item.ID, -100)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want validation error for negative stock", err)
	}
}
