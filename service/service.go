// Package service implements the per-entity access pattern: remote-first
// with write-through cache refresh on success, local commit plus a sync
// queue row on failure. Callers never see "server unreachable" as an
// error; they see it as a cached result or an optimistic local commit.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/nekkaida/Cardose-sub003/store"
)

// Entity type names. These are the sync queue discriminators and the
// fixed drain order is defined over them in the syncer package.
const (
	EntityCustomer      = "customers"
	EntityOrder         = "orders"
	EntityInventory     = "inventory"
	EntityFinancial     = "financial"
	EntityProduction    = "production"
	EntityCommunication = "communications"
)

// Origin reports which branch served a read.
type Origin int

const (
	OriginRemote Origin = iota
	OriginCached
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "cached"
}

// ValidationError is a synchronous local rejection, raised before any
// network or store I/O and never queued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// Replayer is the synchronizer's view of an entity service: replay one
// queued mutation against the remote API.
type Replayer interface {
	EntityType() string
	Replay(ctx context.Context, item store.SyncItem) error
}

// Emitter publishes domain events for shop-floor displays. Implementations
// must be loss-tolerant; services fire and forget.
type Emitter interface {
	Publish(event string, payload any)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Publish(string, any) {}

// enqueue appends a sync queue row. A failure here is a store I/O error
// and is propagated; the local entity write has already committed.
func enqueue(db *store.DB, entityType, entityID, op string, payload []byte, createdAt string) error {
	if _, err := db.EnqueueSync(entityType, entityID, op, payload, createdAt); err != nil {
		return fmt.Errorf("enqueue %s %s %s: %w", entityType, op, entityID, err)
	}
	return nil
}

// logOffline notes that a mutation took the offline path.
func logOffline(entityType, op, id string, err error) {
	log.Printf("%s %s %s: remote unavailable, queued for sync: %v", entityType, op, id, err)
}
