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

// ProductionService manages production tasks.
type ProductionService struct {
	db      *store.DB
	api     remote.Client
	emitter Emitter
}

func NewProductionService(db *store.DB, api remote.Client, emitter Emitter) *ProductionService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &ProductionService{db: db, api: api, emitter: emitter}
}

func (s *ProductionService) EntityType() string { return EntityProduction }

func validateProductionTask(t *model.ProductionTask) error {
	if t.OrderID == "" {
		return &ValidationError{Field: "order_id", Reason: "required"}
	}
	if !model.HasPrefix(t.OrderID, model.PrefixOrder) {
		return &ValidationError{Field: "order_id", Reason: "malformed identifier"}
	}
	if t.Stage == "" {
		return &ValidationError{Field: "stage", Reason: "required"}
	}
	return nil
}

func (s *ProductionService) Create(ctx context.Context, t model.ProductionTask) (*model.ProductionTask, error) {
	if err := validateProductionTask(&t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = model.NewID(model.PrefixProduction)
	} else if !model.HasPrefix(t.ID, model.PrefixProduction) {
		return nil, &ValidationError{Field: "id", Reason: "malformed identifier"}
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNormal
	}
	now := model.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	env, err := s.api.Request(ctx, http.MethodPost, "/production", &t)
	if err == nil {
		srv := t
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode production task: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertProductionTask(&srv); err != nil {
			return nil, fmt.Errorf("cache production task %s: %w", srv.ID, err)
		}
		return &srv, nil
	}

	logOffline(EntityProduction, store.OpCreate, t.ID, err)
	t.IsSynced = false
	if err := s.db.UpsertProductionTask(&t); err != nil {
		return nil, fmt.Errorf("store production task %s: %w", t.ID, err)
	}
	payload, _ := json.Marshal(&t)
	if err := enqueue(s.db, EntityProduction, t.ID, store.OpCreate, payload, now); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ProductionService) Update(ctx context.Context, id string, patch model.ProductionPatch) (*model.ProductionTask, error) {
	t, err := s.db.GetProductionTask(id)
	if err != nil {
		return nil, fmt.Errorf("get production task %s: %w", id, err)
	}
	patch.Apply(t)
	t.UpdatedAt = model.Now()

	env, reqErr := s.api.Request(ctx, http.MethodPatch, "/production/"+id, &patch)
	if reqErr == nil {
		srv := *t
		if decodeErr := json.Unmarshal(env.Data, &srv); decodeErr != nil {
			return nil, fmt.Errorf("decode production task: %w", decodeErr)
		}
		srv.IsSynced = true
		if err := s.db.UpsertProductionTask(&srv); err != nil {
			return nil, fmt.Errorf("cache production task %s: %w", id, err)
		}
		return &srv, nil
	}

	logOffline(EntityProduction, store.OpUpdate, id, reqErr)
	t.IsSynced = false
	if err := s.db.UpsertProductionTask(t); err != nil {
		return nil, fmt.Errorf("store production task %s: %w", id, err)
	}
	payload, _ := json.Marshal(&patch)
	if err := enqueue(s.db, EntityProduction, id, store.OpUpdate, payload, t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteTask marks a task completed, unblocking dependents whose
// dependencies are now all done.
func (s *ProductionService) CompleteTask(ctx context.Context, id string) (*model.ProductionTask, error) {
	status := model.TaskCompleted
	t, err := s.Update(ctx, id, model.ProductionPatch{Status: &status})
	if err != nil {
		return nil, err
	}
	s.emitter.Publish("task_completed", map[string]string{
		"task_id":  t.ID,
		"order_id": t.OrderID,
		"stage":    t.Stage,
	})
	return t, nil
}

func (s *ProductionService) Delete(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.db, s.api, EntityProduction, "/production/", id, s.db.DeleteProductionTask)
}

func (s *ProductionService) GetAll(ctx context.Context, f store.ProductionFilter) ([]model.ProductionTask, Origin, error) {
	path := "/production" + encodeFilter(map[string]string{
		"order_id": f.OrderID,
		"status":   f.Status,
		"stage":    f.Stage,
	})
	env, err := s.api.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		var tasks []model.ProductionTask
		if decodeErr := json.Unmarshal(env.Data, &tasks); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode production tasks: %w", decodeErr)
		}
		for i := range tasks {
			tasks[i].IsSynced = true
			if err := s.db.UpsertProductionTask(&tasks[i]); err != nil {
				return nil, OriginRemote, fmt.Errorf("cache production task %s: %w", tasks[i].ID, err)
			}
		}
		return tasks, OriginRemote, nil
	}

	tasks, lerr := s.db.ListProductionTasks(f)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("list production tasks: %w", lerr)
	}
	return tasks, OriginCached, nil
}

func (s *ProductionService) GetByID(ctx context.Context, id string) (*model.ProductionTask, Origin, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/production/"+id, nil)
	if err == nil {
		t := &model.ProductionTask{}
		if decodeErr := json.Unmarshal(env.Data, t); decodeErr != nil {
			return nil, OriginRemote, fmt.Errorf("decode production task: %w", decodeErr)
		}
		t.IsSynced = true
		if err := s.db.UpsertProductionTask(t); err != nil {
			return nil, OriginRemote, fmt.Errorf("cache production task %s: %w", id, err)
		}
		return t, OriginRemote, nil
	}

	t, lerr := s.db.GetProductionTask(id)
	if lerr != nil {
		return nil, OriginCached, fmt.Errorf("get production task %s: %w", id, lerr)
	}
	return t, OriginCached, nil
}

func (s *ProductionService) Replay(ctx context.Context, item store.SyncItem) error {
	switch item.Operation {
	case store.OpCreate:
		var t model.ProductionTask
		if err := json.Unmarshal(item.Payload, &t); err != nil {
			return fmt.Errorf("decode queued production task %s: %w", item.EntityID, err)
		}
		env, err := s.api.Request(ctx, http.MethodPost, "/production", &t)
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpUpdate:
		env, err := s.api.Request(ctx, http.MethodPatch, "/production/"+item.EntityID, json.RawMessage(item.Payload))
		if err != nil {
			return err
		}
		return s.refreshAfterReplay(item, env.Data)
	case store.OpDelete:
		_, err := s.api.Request(ctx, http.MethodDelete, "/production/"+item.EntityID, nil)
		return err
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func (s *ProductionService) refreshAfterReplay(item store.SyncItem, data json.RawMessage) error {
	later, err := s.db.HasPendingSyncAfter(EntityProduction, item.EntityID, item.ID)
	if err != nil || later {
		return err
	}
	t, err := s.db.GetProductionTask(item.EntityID)
	if err != nil {
		return fmt.Errorf("get production task %s: %w", item.EntityID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, t); err != nil {
			return fmt.Errorf("decode production task: %w", err)
		}
	}
	t.IsSynced = true
	return s.db.UpsertProductionTask(t)
}
