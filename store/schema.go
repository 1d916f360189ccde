package store

import "fmt"

// schemaVersion is bumped whenever a migration is appended to migrations.
// The applied version is tracked in the metadata table so upgrades are
// additive and re-runnable.
const schemaVersion = 2

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS customers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    is_synced  INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL DEFAULT '',
    box_type    TEXT NOT NULL DEFAULT 'custom',
    status      TEXT NOT NULL DEFAULT 'pending',
    quantity    INTEGER NOT NULL DEFAULT 0,
    dimensions  TEXT NOT NULL DEFAULT '{}',
    materials   TEXT NOT NULL DEFAULT '[]',
    pricing     TEXT NOT NULL DEFAULT '{}',
    workflow    TEXT NOT NULL DEFAULT '{}',
    notes       TEXT NOT NULL DEFAULT '',
    is_synced   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);

CREATE TABLE IF NOT EXISTS status_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   TEXT NOT NULL,
    old_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    notes      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_status_history_order ON status_history(order_id);

CREATE TABLE IF NOT EXISTS inventory_items (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    material      TEXT NOT NULL DEFAULT '',
    quantity      REAL NOT NULL DEFAULT 0,
    unit          TEXT NOT NULL DEFAULT 'ea',
    unit_cost     REAL NOT NULL DEFAULT 0,
    reorder_level REAL NOT NULL DEFAULT 0,
    location      TEXT NOT NULL DEFAULT '',
    is_synced     INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_material ON inventory_items(material);

CREATE TABLE IF NOT EXISTS production_tasks (
    id              TEXT PRIMARY KEY,
    order_id        TEXT NOT NULL,
    stage           TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'pending',
    priority        TEXT NOT NULL DEFAULT 'normal',
    assigned_to     TEXT NOT NULL DEFAULT '',
    estimated_hours REAL NOT NULL DEFAULT 0,
    due_date        TEXT NOT NULL DEFAULT '',
    depends_on      TEXT NOT NULL DEFAULT '[]',
    quality_checks  TEXT NOT NULL DEFAULT '[]',
    materials       TEXT NOT NULL DEFAULT '[]',
    is_synced       INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_production_order ON production_tasks(order_id);
CREATE INDEX IF NOT EXISTS idx_production_status ON production_tasks(status);

CREATE TABLE IF NOT EXISTS communications (
    id          TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    order_id    TEXT NOT NULL DEFAULT '',
    channel     TEXT NOT NULL,
    direction   TEXT NOT NULL DEFAULT 'outbound',
    subject     TEXT NOT NULL DEFAULT '',
    body        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'sent',
    external_id TEXT NOT NULL DEFAULT '',
    is_synced   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_communications_customer ON communications(customer_id);

CREATE TABLE IF NOT EXISTS invoices (
    id          TEXT PRIMARY KEY,
    order_id    TEXT NOT NULL,
    customer_id TEXT NOT NULL,
    number      TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'draft',
    pricing     TEXT NOT NULL DEFAULT '{}',
    issued_at   TEXT NOT NULL DEFAULT '',
    due_date    TEXT NOT NULL DEFAULT '',
    paid_at     TEXT NOT NULL DEFAULT '',
    is_synced   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invoices_order ON invoices(order_id);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);

CREATE TABLE IF NOT EXISTS sync_queue (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type   TEXT NOT NULL,
    entity_id     TEXT NOT NULL,
    operation     TEXT NOT NULL,
    payload       TEXT,
    status        TEXT NOT NULL DEFAULT 'pending',
    attempt_count INTEGER NOT NULL DEFAULT 0,
    last_error    TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sync_queue_pending ON sync_queue(entity_type, id) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_sync_queue_entity ON sync_queue(entity_type, entity_id);
`

// migrations holds additive upgrades for databases created at an earlier
// schema version. Index i upgrades from version i+1 to i+2.
var migrations = []string{
	// v1 -> v2: quarantine state for permanently rejected queue rows.
	`ALTER TABLE sync_queue ADD COLUMN status TEXT NOT NULL DEFAULT 'pending'`,
}

func (db *DB) migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if current == 0 {
		// Fresh database: schema above is already at the latest version.
		return db.SetSchemaVersion(schemaVersion)
	}
	for v := current; v < schemaVersion; v++ {
		// Migrations are additive; a failure here means the column already
		// exists from the base schema, which is fine.
		db.Exec(migrations[v-1])
		if err := db.SetSchemaVersion(v + 1); err != nil {
			return fmt.Errorf("set schema version %d: %w", v+1, err)
		}
	}
	return nil
}
