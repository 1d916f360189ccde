package store

// Sync queue operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Sync queue row states. Rows are pending until replayed successfully
// (then deleted) or rejected permanently (then failed, kept for display).
const (
	SyncPending = "pending"
	SyncFailed  = "failed"
)

// SyncItem is a queued mutation awaiting replay against the server.
type SyncItem struct {
	ID           int64  `json:"id"`
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Operation    string `json:"operation"`
	Payload      []byte `json:"payload,omitempty"`
	Status       string `json:"status"`
	AttemptCount int    `json:"attempt_count"`
	LastError    string `json:"last_error,omitempty"`
	CreatedAt    string `json:"created_at"`
}

const syncCols = `id, entity_type, entity_id, operation, payload, status, attempt_count, last_error, created_at`

// EnqueueSync appends a mutation to the queue. The auto-increment id is
// the sole replay-ordering authority.
func (db *DB) EnqueueSync(entityType, entityID, operation string, payload []byte, createdAt string) (int64, error) {
	res, err := db.Exec(`INSERT INTO sync_queue (entity_type, entity_id, operation, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entityType, entityID, operation, payload, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanSyncItems(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]SyncItem, error) {
	var items []SyncItem
	for rows.Next() {
		var it SyncItem
		if err := rows.Scan(&it.ID, &it.EntityType, &it.EntityID, &it.Operation,
			&it.Payload, &it.Status, &it.AttemptCount, &it.LastError, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListPendingSync returns pending rows for one entity type in id
// order. An empty entityType returns pending rows across all types.
func (db *DB) ListPendingSync(entityType string, limit int) ([]SyncItem, error) {
	query := `SELECT ` + syncCols + ` FROM sync_queue WHERE status = ?`
	args := []any{SyncPending}
	if entityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, entityType)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSyncItems(rows)
}

// ListFailedSync returns quarantined rows across all entity types.
func (db *DB) ListFailedSync(limit int) ([]SyncItem, error) {
	rows, err := db.Query(`SELECT `+syncCols+` FROM sync_queue
		WHERE status = ? ORDER BY id LIMIT ?`, SyncFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSyncItems(rows)
}

// DeleteSyncItem removes a successfully replayed row.
func (db *DB) DeleteSyncItem(id int64) error {
	_, err := db.Exec(`DELETE FROM sync_queue WHERE id = ?`, id)
	return err
}

// RecordSyncFailure bumps the attempt counter after a transient failure.
// The row stays pending and is retried on the next drain.
func (db *DB) RecordSyncFailure(id int64, errMsg string) error {
	_, err := db.Exec(`UPDATE sync_queue SET attempt_count = attempt_count + 1, last_error = ? WHERE id = ?`,
		errMsg, id)
	return err
}

// QuarantineSyncItem moves a permanently rejected row to the failed state
// so it is never retried. Failed rows stay visible for diagnostics.
func (db *DB) QuarantineSyncItem(id int64, errMsg string) error {
	_, err := db.Exec(`UPDATE sync_queue SET status = ?, attempt_count = attempt_count + 1, last_error = ? WHERE id = ?`,
		SyncFailed, errMsg, id)
	return err
}

// PurgePendingSync deletes all pending rows for one entity and returns
// what was removed. A delete supersedes earlier queued mutations for the
// same identifier.
func (db *DB) PurgePendingSync(entityType, entityID string) ([]SyncItem, error) {
	rows, err := db.Query(`SELECT `+syncCols+` FROM sync_queue
		WHERE entity_type = ? AND entity_id = ? AND status = ? ORDER BY id`,
		entityType, entityID, SyncPending)
	if err != nil {
		return nil, err
	}
	purged, err := scanSyncItems(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(purged) == 0 {
		return nil, nil
	}
	_, err = db.Exec(`DELETE FROM sync_queue WHERE entity_type = ? AND entity_id = ? AND status = ?`,
		entityType, entityID, SyncPending)
	return purged, err
}

// HasPendingSyncAfter reports whether an entity has pending rows with a
// higher queue id. Used during drain to decide whether the server's
// response is the latest version for the entity.
func (db *DB) HasPendingSyncAfter(entityType, entityID string, afterID int64) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sync_queue
		WHERE entity_type = ? AND entity_id = ? AND status = ? AND id > ?`,
		entityType, entityID, SyncPending, afterID).Scan(&count)
	return count > 0, err
}

// CountSyncByType returns row counts per entity type for the given status.
func (db *DB) CountSyncByType(status string) (map[string]int, error) {
	rows, err := db.Query(`SELECT entity_type, COUNT(*) FROM sync_queue WHERE status = ? GROUP BY entity_type`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var et string
		var n int
		if err := rows.Scan(&et, &n); err != nil {
			return nil, err
		}
		counts[et] = n
	}
	return counts, rows.Err()
}
