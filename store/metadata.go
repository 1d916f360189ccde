package store

import (
	"database/sql"
	"errors"
	"strconv"
)

const metaSchemaVersion = "schema_version"

// GetMeta returns the value for a metadata key, or "" if unset.
func (db *DB) GetMeta(key string) (string, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetMeta stores a metadata key/value pair.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.Exec(`INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	return err
}

// SchemaVersion returns the applied schema version, 0 for a fresh database.
func (db *DB) SchemaVersion() (int, error) {
	v, err := db.GetMeta(metaSchemaVersion)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// SetSchemaVersion records the applied schema version.
func (db *DB) SetSchemaVersion(v int) error {
	return db.SetMeta(metaSchemaVersion, strconv.Itoa(v))
}
