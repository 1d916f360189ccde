package store

import "github.com/nekkaida/Cardose-sub003/model"

const communicationCols = `id, customer_id, order_id, channel, direction, subject,
	body, status, external_id, is_synced, created_at, updated_at`

// CommunicationFilter narrows ListCommunications.
type CommunicationFilter struct {
	CustomerID string
	OrderID    string
	Channel    string
}

func scanCommunication(row interface{ Scan(...any) error }) (*model.Communication, error) {
	c := &model.Communication{}
	if err := row.Scan(&c.ID, &c.CustomerID, &c.OrderID, &c.Channel, &c.Direction,
		&c.Subject, &c.Body, &c.Status, &c.ExternalID,
		&c.IsSynced, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (db *DB) UpsertCommunication(c *model.Communication) error {
	_, err := db.Exec(`INSERT INTO communications (`+communicationCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			order_id    = excluded.order_id,
			channel     = excluded.channel,
			direction   = excluded.direction,
			subject     = excluded.subject,
			body        = excluded.body,
			status      = excluded.status,
			external_id = excluded.external_id,
			is_synced   = excluded.is_synced,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`,
		c.ID, c.CustomerID, c.OrderID, c.Channel, c.Direction, c.Subject,
		c.Body, c.Status, c.ExternalID, c.IsSynced, c.CreatedAt, c.UpdatedAt)
	return err
}

func (db *DB) GetCommunication(id string) (*model.Communication, error) {
	return scanCommunication(db.QueryRow(`SELECT `+communicationCols+` FROM communications WHERE id = ?`, id))
}

func (db *DB) ListCommunications(f CommunicationFilter) ([]model.Communication, error) {
	query := `SELECT ` + communicationCols + ` FROM communications WHERE 1=1`
	var args []any
	if f.CustomerID != "" {
		query += ` AND customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.OrderID != "" {
		query += ` AND order_id = ?`
		args = append(args, f.OrderID)
	}
	if f.Channel != "" {
		query += ` AND channel = ?`
		args = append(args, f.Channel)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comms []model.Communication
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		comms = append(comms, *c)
	}
	return comms, rows.Err()
}

func (db *DB) DeleteCommunication(id string) error {
	_, err := db.Exec(`DELETE FROM communications WHERE id = ?`, id)
	return err
}
