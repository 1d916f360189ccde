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

// CustomerService manages workshop customers.
type CustomerService struct {
	db  *store.DB
	api remote.Client
}

func NewCustomerService(db *store.DB, api remote.Client) *CustomerService {
	return &CustomerService{db: db, api: api}
}

func (s *CustomerService) EntityType() string { return EntityCustomer }

func validateCustomer(c *model.Customer) error {
	if len(c.Name) < 2 {
		return &ValidationError{Field: "name", Reason: "must be at least 2 characters"}
	}
	if len(c.Name) > 120 {
		return &ValidationError{Field: "name", Reason: "must be at most 120 characters"}
	}
	return nil
}

func (s *CustomerService) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	if err := validateCustomer(&c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = model.NewID(model.PrefixCustomer)
	} else if !model.HasPrefix(c.ID, model.PrefixCustomer) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	now := model.Now()
	c.CreatedAt, c.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/customers", &c)
	if err == nil {
		srv := c
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode customer: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertCustomer(&srv); err != nil {
			return nil, fmt.Errorf("cache customer %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityCustomer, store.OpCreate, c.ID, err)
	c.IsSynced = false
	if err := s.db.UpsertCustomer(&c); err != nil {
		return nil, fmt.Errorf("store customer %s: %w", c.ID, err)
	}
	payload, _ := json.Marshal(&c)
	if err := enqueue(s.db, EntityCustomer, c.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, patch model.CustomerPatch) (*model.Customer, error) {
	if patch.Name != nil && len(*patch.Name) < 2 {
		return nil, &ValidationError{Field: "name", Reason: "must be at least 2 characters"}
	}
	c, err := s.db.GetCustomer(id)
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	patch.Apply(c)
	c.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/customers/"+id, &patch)
	if reqErr == nil {
		srv := *c
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode customer: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertCustomer(&srv); err != nil {
			return nil, fmt.Errorf("cache customer %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityCustomer, store.OpUpdate, id, reqErr)
	c.IsSynced = false
	if err := s.db.UpsertCustomer(c); err != nil {
		return nil, fmt.Errorf("store customer %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityCustomer, id, store.OpUpdate, payload, c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityCustomer, "/customers/", id, s.db.DeleteCustomer)
}

func (s *CustomerService) GetAll(ctx context.Context, f store.CustomerFilter) ([]model.Customer, Origin, error) {
	path := "/customers" + encodeFilter(map[string]string{"name": f.Name})
	env, err := s.api.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		var customers []model.Customer
		if decodeErr := json.Unmarshal(env.Data, &customers); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode customers: %w", decodeErr)
		}
		for i := range customers {
			customers[i].IsSynced = true
			if err := s.db.UpsertCustomer(&customers[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache customer %s: %w", customers[i].ID, err)
			}
		}
		return customers, OriginRemote, nil
	}

	customers, lerr := s.db.ListCustomers(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list customers: %w", lerr)
	}
	return customers, OriginCached, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*model.Customer, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/customers/"+id, nil)
	if err == nil {
		c := &model.Customer{}
		if decodeErr := json.Unmarshal(env.Data, c); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode customer: %w", decodeErr)
		}
		c.IsSynced = true
		if err := s.db.UpsertCustomer(c); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache customer %s: %w", id, err)
		}
		return c, OriginRemote, nil
	}

	c, lerr := s.db.GetCustomer(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get customer %s: %w", id, lerr)
	}
	return c, OriginCached, nil
}

func (s *CustomerService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var c model.Customer
		if err := json.Unmarshal(item.Payload, &c); err != nil {
			return fmt.Errorf("decode queued customer %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/customers", &c)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		env, err := s.api.Request(ctx, http.MethodPatch, "/customers/"+item.EntityID, json.RawMessage(item.Payload))
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/customers/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func (s *CustomerService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityCustomer, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	c, err := s.db.GetCustomer(item.EntityID)
	if err != nil {
		return fmt.Errorf("get customer %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("decode customer: %w", err)
		}
	}
	c.IsSynced = true
	return s.db.UpsertCustomer(c)
}
