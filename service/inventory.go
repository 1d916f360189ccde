package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/store"
)

// InventoryService manages stock items.
type InventoryService struct {
	db  *store.DB
	api remote.Client
}

func NewInventoryService(db *store.DB, api remote.Client) *InventoryService {
	return &InventoryService{db: db, api: api}
}

func (s *InventoryService) EntityType() string { return EntityInventory }

func validateInventoryItem(it *model.InventoryItem) error {
	if it.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if it.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if it.UnitCost < 0 {
		return &ValidationError{Field: "unit_cost", Reason: "must not be negative"}
	}
	return nil
}

func (s *InventoryService) Create(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error) {
	if err := validateInventoryItem(&it); err != nil {
		return nil, err
	}
	if it.ID == "" {
		it.ID = model.NewID(model.PrefixInventory)
	} else if !model.HasPrefix(it.ID, model.PrefixInventory) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	now := model.Now()
	it.CreatedAt, it.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/inventory", &it)
	if err == nil {
		srv := it
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode inventory item: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertInventoryItem(&srv); err != nil {
			return nil, fmt.Errorf("cache inventory item %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityInventory, store.OpCreate, it.ID, err)
	it.IsSynced = false
	if err := s.db.UpsertInventoryItem(&it); err != nil {
		return nil, fmt.Errorf("store inventory item %s: %w", it.ID, err)
	}
	payload, _ := json.Marshal(&it)
	if err := enqueue(s.db, EntityInventory, it.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *InventoryService) Update(ctx context.Context, id string, patch model.InventoryPatch) (*model.InventoryItem, error) {
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	it, err := s.db.GetInventoryItem(id)
	if err != nil {
		return nil, fmt.Errorf("get inventory item %s: %w", id, err)
	}
	patch.Apply(it)
	it.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/inventory/"+id, &patch)
	if reqErr == nil {
		srv := *it
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode inventory item: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertInventoryItem(&srv); err != nil {
			return nil, fmt.Errorf("cache inventory item %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityInventory, store.OpUpdate, id, reqErr)
	it.IsSynced = false
	if err := s.db.UpsertInventoryItem(it); err != nil {
		return nil, fmt.Errorf("store inventory item %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityInventory, id, store.OpUpdate, payload, it.UpdatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

// AdjustQuantity applies a relative stock correction. A negative result
// is rejected locally before any network attempt.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id string, delta float64) (*model.InventoryItem, error) {
	it, err := s.db.GetInventoryItem(id)
	if err != nil {
		return nil, fmt.Errorf("get inventory item %s: %w", id, err)
	}
	next := it.Quantity + delta
	if next < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "adjustment would go negative"}
	}
	return s.Update(ctx, id, model.InventoryPatch{Quantity: &next})
}

func (s *InventoryService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityInventory, "/inventory/", id, s.db.DeleteInventoryItem)
}

func (s *InventoryService) GetAll(ctx context.Context, f store.InventoryFilter) ([]model.InventoryItem, Origin, error) {
	params := map[string]string{"material": f.Material}
	if f.BelowReorder {
		params["below_reorder"] = "true"
	}
	env, err := s.api.Request(ctx, http.MethodGet, "/inventory"+encodeFilter(params), nil)
	if err == nil {
		var items []model.InventoryItem
		if decodeErr := json.Unmarshal(env.Data, &items); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode inventory: %w", decodeErr)
		}
		for i := range items {
			items[i].IsSynced = true
			if err := s.db.UpsertInventoryItem(&items[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache inventory item %s: %w", items[i].ID, err)
			}
		}
		return items, OriginRemote, nil
	}

	items, lerr := s.db.ListInventory(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list inventory: %w", lerr)
	}
	return items, OriginCached, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id string) (*model.InventoryItem, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/inventory/"+id, nil)
	if err == nil {
		it := &model.InventoryItem{}
		if decodeErr := json.Unmarshal(env.Data, it); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode inventory item: %w", decodeErr)
		}
		it.IsSynced = true
		if err := s.db.UpsertInventoryItem(it); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache inventory item %s: %w", id, err)
		}
		return it, OriginRemote, nil
	}

	it, lerr := s.db.GetInventoryItem(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get inventory item %s: %w", id, lerr)
	}
	return it, OriginCached, nil
}

func (s *InventoryService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var it model.InventoryItem
		if err := json.Unmarshal(item.Payload, &it); err != nil {
			return fmt.Errorf("decode queued inventory item %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/inventory", &it)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		env, err := s.api.Request(ctx, http.MethodPatch, "/inventory/"+item.EntityID, json.RawMessage(item.Payload))
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/inventory/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func (s *InventoryService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityInventory, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	it, err := s.db.GetInventoryItem(item.EntityID)
	if err != nil {
		return fmt.Errorf("get inventory item %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, it); err != nil {
			return fmt.Errorf("decode inventory item: %w", err)
		}
	}
	it.IsSynced = true
	return s.db.UpsertInventoryItem(it)
}
