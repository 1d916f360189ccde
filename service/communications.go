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

// CommunicationService logs customer messages. The actual channel
// delivery (WhatsApp, email, SMS) happens server-side; this service only
// records the request and mirrors the server's delivery status.
type CommunicationService struct {
	db  *store.DB
	api remote.Client
}

func NewCommunicationService(db *store.DB, api remote.Client) *CommunicationService {
	return &CommunicationService{db: db, api: api}
}

func (s *CommunicationService) EntityType() string { return EntityCommunication }

func validateCommunication(c *model.Communication) error {
	if c.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Reason: "required"}
	}
	if !model.ValidChannel(c.Channel) {
		return &ValidationError{Field: "channel", Reason: "unknown channel " + c.Channel}
	}
	if c.Body == "" {
		return &ValidationError{Field: "body", Reason: "required"}
	}
	return nil
}

func (s *CommunicationService) Create(ctx context.Context, c model.Communication) (*model.Communication, error) {
	if err := validateCommunication(&c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = model.NewID(model.PrefixCommunication)
	} else if !model.HasPrefix(c.ID, model.PrefixCommunication) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	if c.Direction == "" {
		c.Direction = "outbound"
	}
	if c.Status == "" {
		c.Status = "sent"
	}
	now := model.Now()
	c.CreatedAt, c.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/communications", &c)
	if err == nil {
		srv := c
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode communication: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertCommunication(&srv); err != nil {
			return nil, fmt.Errorf("cache communication %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityCommunication, store.OpCreate, c.ID, err)
	c.IsSynced = false
	if err := s.db.UpsertCommunication(&c); err != nil {
		return nil, fmt.Errorf("store communication %s: %w", c.ID, err)
	}
	payload, _ := json.Marshal(&c)
	if err := enqueue(s.db, EntityCommunication, c.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommunicationService) Update(ctx context.Context, id string, patch model.CommunicationPatch) (*model.Communication, error) {
	c, err := s.db.GetCommunication(id)
	if err != nil {
		return nil, fmt.Errorf("get communication %s: %w", id, err)
	}
	patch.Apply(c)
	c.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/communications/"+id, &patch)
	if reqErr == nil {
		srv := *c
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode communication: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertCommunication(&srv); err != nil {
			return nil, fmt.Errorf("cache communication %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityCommunication, store.OpUpdate, id, reqErr)
	c.IsSynced = false
	if err := s.db.UpsertCommunication(c); err != nil {
		return nil, fmt.Errorf("store communication %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityCommunication, id, store.OpUpdate, payload, c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommunicationService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityCommunication, "/communications/", id, s.db.DeleteCommunication)
}

func (s *CommunicationService) GetAll(ctx context.Context, f store.CommunicationFilter) ([]model.Communication, Origin, error) {
	path := "/communications" + encodeFilter(map[string]string{
		"customer_id": f.CustomerID,
		"order_id":    f.OrderID,
		"channel":     f.Channel,
	})
	env, err := s.api.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		var comms []model.Communication
		if decodeErr := json.Unmarshal(env.Data, &comms); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode communications: %w", decodeErr)
		}
		for i := range comms {
			comms[i].IsSynced = true
			if err := s.db.UpsertCommunication(&comms[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache communication %s: %w", comms[i].ID, err)
			}
		}
		return comms, OriginRemote, nil
	}

	comms, lerr := s.db.ListCommunications(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list communications: %w", lerr)
	}
	return comms, OriginCached, nil
}

func (s *CommunicationService) GetByID(ctx context.Context, id string) (*model.Communication, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/communications/"+id, nil)
	if err == nil {
		c := &model.Communication{}
		if decodeErr := json.Unmarshal(env.Data, c); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode communication: %w", decodeErr)
		}
		c.IsSynced = true
		if err := s.db.UpsertCommunication(c); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache communication %s: %w", id, err)
		}
		return c, OriginRemote, nil
	}

	c, lerr := s.db.GetCommunication(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get communication %s: %w", id, lerr)
	}
	return c, OriginCached, nil
}

func (s *CommunicationService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var c model.Communication
		if err := json.Unmarshal(item.Payload, &c); err != nil {
			return fmt.Errorf("decode queued communication %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/communications", &c)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		env, err := s.api.Request(ctx, http.MethodPatch, "/communications/"+item.EntityID, json.RawMessage(item.Payload))
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/communications/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func (s *CommunicationService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityCommunication, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	c, err := s.db.GetCommunication(item.EntityID)
	if err != nil {
		return fmt.Errorf("get communication %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("decode communication: %w", err)
		}
	}
	c.IsSynced = true
	return s.db.UpsertCommunication(c)
}
