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

// InvoiceService manages invoices (the "financial" entity type).
type InvoiceService struct {
	db  *store.DB
	api remote.Client
}

func NewInvoiceService(db *store.DB, api remote.Client) *InvoiceService {
	return &InvoiceService{db: db, api: api}
}

func (s *InvoiceService) EntityType() string { return EntityFinancial }

func validateInvoice(inv *model.Invoice) error {
	if inv.OrderID == "" {
		return &ValidationError{Field: "order_id", Reason: "required"}
	}
	if inv.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Reason: "required"}
	}
	if inv.Pricing.Total < 0 {
		return &ValidationError{Field: "pricing.total", Reason: "must not be negative"}
	}
	return nil
}

func (s *InvoiceService) Create(ctx context.Context, inv model.Invoice) (*model.Invoice, error) {
	if err := validateInvoice(&inv); err != nil {
		return nil, err
	}
	if inv.ID == "" {
		inv.ID = model.NewID(model.PrefixInvoice)
	} else if !model.HasPrefix(inv.ID, model.PrefixInvoice) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	if inv.Status == "" {
		inv.Status = model.InvoiceDraft
	}
	now := model.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/invoices", &inv)
	if err == nil {
		srv := inv
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode invoice: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertInvoice(&srv); err != nil {
			return nil, fmt.Errorf("cache invoice %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityFinancial, store.OpCreate, inv.ID, err)
	inv.IsSynced = false
	if err := s.db.UpsertInvoice(&inv); err != nil {
		return nil, fmt.Errorf("store invoice %s: %w", inv.ID, err)
	}
	payload, _ := json.Marshal(&inv)
	if err := enqueue(s.db, EntityFinancial, inv.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) Update(ctx context.Context, id string, patch model.InvoicePatch) (*model.Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	patch.Apply(inv)
	inv.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/invoices/"+id, &patch)
	if reqErr == nil {
		srv := *inv
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode invoice: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertInvoice(&srv); err != nil {
			return nil, fmt.Errorf("cache invoice %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityFinancial, store.OpUpdate, id, reqErr)
	inv.IsSynced = false
	if err := s.db.UpsertInvoice(inv); err != nil {
		return nil, fmt.Errorf("store invoice %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityFinancial, id, store.OpUpdate, payload, inv.UpdatedAt); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityFinancial, "/invoices/", id, s.db.DeleteInvoice)
}

func (s *InvoiceService) GetAll(ctx context.Context, f store.InvoiceFilter) ([]model.Invoice, Origin, error) {
	path := "/invoices" + encodeFilter(map[string]string{
		"order_id":    f.OrderID,
		"customer_id": f.CustomerID,
		"status":      f.Status,
	})
	env, err := s.api.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		var invoices []model.Invoice
		if decodeErr := json.Unmarshal(env.Data, &invoices); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode invoices: %w", decodeErr)
		}
		for i := range invoices {
			invoices[i].IsSynced = true
			if err := s.db.UpsertInvoice(&invoices[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache invoice %s: %w", invoices[i].ID, err)
			}
		}
		return invoices, OriginRemote, nil
	}

	invoices, lerr := s.db.ListInvoices(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list invoices: %w", lerr)
	}
	return invoices, OriginCached, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id string) (*model.Invoice, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/invoices/"+id, nil)
	if err == nil {
		inv := &model.Invoice{}
		if decodeErr := json.Unmarshal(env.Data, inv); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode invoice: %w", decodeErr)
		}
		inv.IsSynced = true
		if err := s.db.UpsertInvoice(inv); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache invoice %s: %w", id, err)
		}
		return inv, OriginRemote, nil
	}

	inv, lerr := s.db.GetInvoice(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get invoice %s: %w", id, lerr)
	}
	return inv, OriginCached, nil
}

func (s *InvoiceService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var inv model.Invoice
		if err := json.Unmarshal(item.Payload, &inv); err != nil {
			return fmt.Errorf("decode queued invoice %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/invoices", &inv)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		env, err := s.api.Request(ctx, http.MethodPatch, "/invoices/"+item.EntityID, json.RawMessage(item.Payload))
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/invoices/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func (s *InvoiceService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityFinancial, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	inv, err := s.db.GetInvoice(item.EntityID)
	if err != nil {
		return fmt.Errorf("get invoice %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, inv); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
	}
	inv.IsSynced = true
	return s.db.UpsertInvoice(inv)
}
