package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/store"
)

// encodeFilter builds a query string from non-empty filter values.
func encodeFilter(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// deleteEntity is the shared delete path. Pending queue rows for the id
// are purged first: a delete supersedes earlier queued mutations. If one
// of the purged rows was the create, the server never saw this entity
// and no remote delete is queued or attempted.
func deleteEntity(ctx context.Context, db *store.DB, api remote.Client,
	entityType, pathPrefix, id string, deleteLocal func(string) error) error {

	purged, err := db.PurgePendingSync(entityType, id)
	if err != nil {
		return fmt.Errorf("purge queue %s %s: %w", entityType, id, err)
	}
	hadCreate := false
	for _, it := range purged {
		if it.Operation == store.OpCreate {
			hadCreate = true
		}
	}

	if err := deleteLocal(id); err != nil {
		return fmt.Errorf("delete %s %s: %w", entityType, id, err)
	}
	if hadCreate {
		return nil
	}

	if _, err := api.Request(ctx, http.MethodDelete, pathPrefix+id, nil); err != nil {
		logOffline(entityType, store.OpDelete, id, err)
		return enqueue(db, entityType, id, store.OpDelete, nil, model.Now())
	}
	return nil
}
