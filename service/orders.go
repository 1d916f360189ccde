package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/store"
	"github.com/nekkaida/Cardose-sub003/workflow"
)

// OrderService manages customer orders, gating status changes through
// the order workflow state machine.
type OrderService struct {
	db      *store.DB
	api     remote.Client
	emitter Emitter
}

func NewOrderService(db *store.DB, api remote.Client, emitter Emitter) *OrderService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &OrderService{db: db, api: api, emitter: emitter}
}

func (s *OrderService) EntityType() string { return EntityOrder }

func validateOrder(o *model.Order) error {
	if o.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if o.Dimensions.Length < 0 || o.Dimensions.Width < 0 || o.Dimensions.Height < 0 {
		return &ValidationError{Field: "dimensions", Reason: "must be non-negative"}
	}
	if o.CustomerID != "" && !model.HasPrefix(o.CustomerID, model.PrefixCustomer) {
		return &ValidationError{Field: "customer_id", Reason: "malformed identifier"}
	}
	if o.Status != "" && !workflow.IsValidStatus(o.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status " + o.Status}
	}
	return nil
}

// Create assigns a local identifier and timestamps, then attempts the
// remote create. Offline or rejected, the caller still gets a usable
// entity committed to the local store.
func (s *OrderService) Create(ctx context.Context, o model.Order) (*model.Order, error) {
	if err := validateOrder(&o); err != nil {
		return nil, err
	}
	if o.ID == "" {
		o.ID = model.NewID(model.PrefixOrder)
	} else if !model.HasPrefix(o.ID, model.PrefixOrder) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	if o.Status == "" {
		o.Status = workflow.StatusPending
	}
	now := model.Now()
	o.CreatedAt, o.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/orders", &o)
	if err == nil {
		srv := o
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode order: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertOrder(&srv); err != nil {
			return nil, fmt.Errorf("cache order %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityOrder, store.OpCreate, o.ID, err)
	o.IsSynced = false
	if err := s.db.UpsertOrder(&o); err != nil {
		return nil, fmt.Errorf("store order %s: %w", o.ID, err)
	}
	payload, _ := json.Marshal(&o)
	if err := enqueue(s.db, EntityOrder, o.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update merges a partial patch into the order. Status is deliberately
// not patchable here; use UpdateStatus so transitions stay validated.
func (s *OrderService) Update(ctx context.Context, id string, patch model.OrderPatch) (*model.Order, error) {
	if patch.Status != nil {
		return nil, &ValidationError{Field: "status", Reason: "use the status transition operation"}
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	o, err := s.db.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	patch.Apply(o)
	o.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/orders/"+id, &patch)
	if reqErr == nil {
		srv := *o
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode order: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertOrder(&srv); err != nil {
			return nil, fmt.Errorf("cache order %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityOrder, store.OpUpdate, id, reqErr)
	o.IsSynced = false
	if err := s.db.UpsertOrder(o); err != nil {
		return nil, fmt.Errorf("store order %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityOrder, id, store.OpUpdate, payload, o.UpdatedAt); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes the order. Pending queue rows for the same id are
// superseded: if an unsent create is among them, the server never saw
// this order and no delete needs to be replayed at all.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityOrder, "/orders/", id, s.db.DeleteOrder)
}

// GetAll fetches orders read-through: remote first, refilling the cache
// on success, falling back to the local store on any remote error.
func (s *OrderService) GetAll(ctx context.Context, f store.OrderFilter) ([]model.Order, Origin, error) {
	path := "/orders" + encodeFilter(map[string]string{
		"status":      f.Status,
		"customer_id": f.CustomerID,
		"box_type":    f.BoxType,
	})
	env, err := s.api.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		var orders []model.Order
		if decodeErr := json.Unmarshal(env.Data, &orders); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode orders: %w", decodeErr)
		}
		for i := range orders {
			orders[i].IsSynced = true
			if err := s.db.UpsertOrder(&orders[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache order %s: %w", orders[i].ID, err)
			}
		}
		return orders, OriginRemote, nil
	}

	orders, lerr := s.db.ListOrders(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list orders: %w", lerr)
	}
	return orders, OriginCached, nil
}

// GetByID fetches one order read-through.
func (s *OrderService) GetByID(ctx context.Context, id string) (*model.Order, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/orders/"+id, nil)
	if err == nil {
		o := &model.Order{}
		if decodeErr := json.Unmarshal(env.Data, o); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode order: %w", decodeErr)
		}
		o.IsSynced = true
		if err := s.db.UpsertOrder(o); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache order %s: %w", id, err)
		}
		return o, OriginRemote, nil
	}

	o, lerr := s.db.GetOrder(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get order %s: %w", id, lerr)
	}
	return o, OriginCached, nil
}

// UpdateStatus runs one workflow transition. Illegal transitions are
// rejected locally before any network attempt and append no history.
func (s *OrderService) UpdateStatus(ctx context.Context, id, newStatus, notes string) (*model.Order, error) {
	o, err := s.db.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if err := workflow.Validate(o.Status, newStatus); err != nil {
		return nil, err
	}

	oldStatus := o.Status
	now := model.Now()
	o.Status = newStatus
	o.UpdatedAt = now
	if newStatus == workflow.StatusCompleted {
		o.Workflow.ActualCompletion = now
	}

	patch := model.OrderPatch{Status: &o.Status, Workflow: &o.Workflow}
	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/orders/"+id+"/status", map[string]string{
		"status": newStatus,
		"notes":  notes,
	})
	if reqErr == nil {
		srv := *o
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode order: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertOrder(&srv); err != nil {
			return nil, fmt.Errorf("cache order %s: %w", id, err)
		}
		o = &srv
	} else {
		logOffline(EntityOrder, store.OpUpdate, id, reqErr)
		o.IsSynced = false
		if err := s.db.UpsertOrder(o); err != nil {
			return nil, fmt.Errorf("store order %s: %w", id, err)
		}
		payload, _ := json.Marshal(&patch)
		if err := enqueue(s.db, EntityOrder, id, store.OpUpdate, payload, now); err != nil {
			return nil, err
		}
	}

	if err := s.db.InsertStatusHistory(&model.StatusHistory{
		OrderID:   id,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Notes:     notes,
		CreatedAt: now,
	}); err != nil {
		log.Printf("insert status history %s: %v", id, err)
	}

	s.emitter.Publish("order_status_changed", map[string]string{
		"order_id":   id,
		"old_status": oldStatus,
		"new_status": newStatus,
	})
	if workflow.IsTerminal(newStatus) {
		s.emitter.Publish("order_completed", map[string]string{"order_id": id})
	}
	return o, nil
}

// History returns the order's status transitions, oldest first.
func (s *OrderService) History(orderID string) ([]model.StatusHistory, error) {
	return s.db.ListStatusHistory(orderID)
}

// Replay re-applies one queued mutation against the remote API. Called
// by the synchronizer in queue-id order.
func (s *OrderService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var o model.Order
		if err := json.Unmarshal(item.Payload, &o); err != nil {
			return fmt.Errorf("decode queued order %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/orders", &o)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		var patch json.RawMessage = item.Payload
		env, err := s.api.Request(ctx, http.MethodPatch, "/orders/"+item.EntityID, patch)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/orders/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

// refreshAfterReplay writes the server's representation back to the
// cache, but only once no later pending rows exist for the entity —
// otherwise the local row still reflects newer offline edits.
func (s *OrderService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityOrder, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	o, err := s.db.GetOrder(item.EntityID)
	if err != nil {
		return fmt.Errorf("get order %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, o); err != nil {
			return fmt.Errorf("decode order: %w", err)
		}
	}
	o.IsSynced = true
	return s.db.UpsertOrder(o)
}
