package store

import "github.com/nekkaida/Cardose-sub003/model"

// InsertStatusHistory appends a status transition record for an order.
func (db *DB) InsertStatusHistory(h *model.StatusHistory) error {
	res, err := db.Exec(`INSERT INTO status_history (order_id, old_status, new_status, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		h.OrderID, h.OldStatus, h.NewStatus, h.Notes, h.CreatedAt)
	if err != nil {
		return err
	}
	h.ID, _ = res.LastInsertId()
	return nil
}

// ListStatusHistory returns an order's transitions, oldest first.
func (db *DB) ListStatusHistory(orderID string) ([]model.StatusHistory, error) {
	rows, err := db.Query(`SELECT id, order_id, old_status, new_status, notes, created_at
		FROM status_history WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []model.StatusHistory
	for rows.Next() {
		var h model.StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
