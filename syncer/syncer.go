package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nekkaida/Cardose-sub003/remote"
	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/store"
)

// drainOrder fixes the entity replay sequence. Customers go first so
// that orders replayed later never reference a customer the server has
// not seen yet.
var drainOrder = []string{
	service.EntityCustomer,
	service.EntityOrder,
	service.EntityInventory,
	service.EntityFinancial,
	service.EntityProduction,
	service.EntityCommunication,
}

// Report is the outcome of one drain pass.
type Report struct {
	Replayed    int            `json:"replayed"`
	Failed      int            `json:"failed"`
	Quarantined int            `json:"quarantined"`
	ByType      map[string]int `json:"by_type"`
}

// Synchronizer drains the sync queue against the remote API on a
// ticker. It owns no entity writes; each queued row is handed to the
// service that produced it.
type Synchronizer struct {
	db        *store.DB
	replayers map[string]service.Replayer
	interval  time.Duration
	batchSize int
	emitter   service.Emitter

	stopChan chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	draining bool
	lastRun  time.Time
	lastRep  Report
}

func New(db *store.DB, interval time.Duration, batchSize int, emitter service.Emitter, replayers ...service.Replayer) *Synchronizer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	m := make(map[string]service.Replayer, len(replayers))
	for _, r := range replayers {
		m[r.EntityType()] = r
	}
	return &Synchronizer{
		db:        db,
		replayers: m,
		interval:  interval,
		batchSize: batchSize,
		emitter:   emitter,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the periodic drain loop.
func (s *Synchronizer) Start() {
	s.wg.Add(1)
	go s.drainLoop()
}

// Stop stops the drain loop and waits for an in-flight pass to finish.
func (s *Synchronizer) Stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
}

func (s *Synchronizer) drainLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			if _, err := s.Drain(ctx); err != nil {
				log.Printf("sync drain: %v", err)
			}
			cancel()
		}
	}
}

// Drain replays all pending queue rows, entity type by entity type in
// the fixed drain order, oldest row first. One bad row never blocks
// the rest of the queue: a transient failure leaves its row pending
// and only later rows for the same entity id are skipped this pass, so
// per-entity replay order is preserved. Rows the server permanently
// rejected are quarantined and never retried.
func (s *Synchronizer) Drain(ctx context.Context) (Report, error) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return Report{}, nil
	}
	s.draining = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	rep := Report{ByType: make(map[string]int)}
	for _, entityType := range drainOrder {
		replayer, ok := s.replayers[entityType]
		if !ok {
			continue
		}
		if err := s.drainType(ctx, entityType, replayer, &rep); err != nil {
			return rep, err
		}
	}

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.lastRep = rep
	s.mu.Unlock()

	if rep.Replayed > 0 || rep.Quarantined > 0 {
		s.emitter.Publish("sync.drained", rep)
	}
	return rep, nil
}

func (s *Synchronizer) drainType(ctx context.Context, entityType string, replayer service.Replayer, rep *Report) error {
	// Entities whose row failed this pass. Their later rows are left
	// pending so per-entity id order survives.
	skip := make(map[string]bool)
	for {
		items, err := s.db.ListPendingSync(entityType, s.batchSize)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		clean := true
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if skip[item.EntityID] {
				clean = false
				continue
			}
			err := replayer.Replay(ctx, item)
			if err == nil {
				if err := s.db.DeleteSyncItem(item.ID); err != nil {
					return err
				}
				rep.Replayed++
				rep.ByType[entityType]++
				continue
			}
			if remote.IsPermanent(err) {
				log.Printf("sync: quarantine %s %s #%d: %v", entityType, item.Operation, item.ID, err)
				if qErr := s.db.QuarantineSyncItem(item.ID, err.Error()); qErr != nil {
					return qErr
				}
				rep.Quarantined++
				continue
			}
			log.Printf("sync: %s %s #%d failed, will retry: %v", entityType, item.Operation, item.ID, err)
			if rErr := s.db.RecordSyncFailure(item.ID, err.Error()); rErr != nil {
				return rErr
			}
			rep.Failed++
			skip[item.EntityID] = true
			clean = false
		}
		// Re-list only when every row in a full batch cleared,
		// otherwise the failed rows would come straight back.
		if !clean || len(items) < s.batchSize {
			return nil
		}
	}
}

// Status describes the synchronizer for the web API.
type Status struct {
	Draining   bool           `json:"draining"`
	LastRun    string         `json:"last_run,omitempty"`
	LastReport Report         `json:"last_report"`
	Pending    map[string]int `json:"pending"`
	Failed     map[string]int `json:"failed"`
}

// Status reports drain state plus pending and quarantined row counts
// by entity type.
func (s *Synchronizer) Status() (Status, error) {
	pending, err := s.db.CountSyncByType(store.SyncPending)
	if err != nil {
		return Status{}, err
	}
	failed, err := s.db.CountSyncByType(store.SyncFailed)
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	st := Status{
		Draining:   s.draining,
		LastReport: s.lastRep,
		Pending:    pending,
		Failed:     failed,
	}
	if !s.lastRun.IsZero() {
		st.LastRun = s.lastRun.Format(time.RFC3339)
	}
	s.mu.Unlock()
	return st, nil
}
