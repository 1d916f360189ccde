package store

import "github.com/nekkaida/Cardose-sub003/model"

const orderCols = `id, customer_id, box_type, status, quantity, dimensions,
	materials, pricing, workflow, notes, is_synced, created_at, updated_at`

// OrderFilter narrows ListOrders. Zero values match everything.
type OrderFilter struct {
	Status     string
	CustomerID string
	BoxType    string
}

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	o := &model.Order{}
	var dims, materials, pricing, workflow string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.BoxType, &o.Status, &o.Quantity,
		&dims, &materials, &pricing, &workflow, &o.Notes,
		&o.IsSynced, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	decodeJSON(dims, &o.Dimensions)
	decodeJSON(materials, &o.Materials)
	decodeJSON(pricing, &o.Pricing)
	decodeJSON(workflow, &o.Workflow)
	return o, nil
}

// UpsertOrder writes an order row, replacing any previous version.
func (db *DB) UpsertOrder(o *model.Order) error {
	_, err := db.Exec(`INSERT INTO orders (`+orderCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			box_type    = excluded.box_type,
			status      = excluded.status,
			quantity    = excluded.quantity,
			dimensions  = excluded.dimensions,
			materials   = excluded.materials,
			pricing     = excluded.pricing,
			workflow    = excluded.workflow,
			notes       = excluded.notes,
			is_synced   = excluded.is_synced,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`,
		o.ID, o.CustomerID, o.BoxType, o.Status, o.Quantity,
		encodeJSON(o.Dimensions), encodeJSON(o.Materials),
		encodeJSON(o.Pricing), encodeJSON(o.Workflow),
		o.Notes, o.IsSynced, o.CreatedAt, o.UpdatedAt)
	return err
}

func (db *DB) GetOrder(id string) (*model.Order, error) {
	return scanOrder(db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id))
}

func (db *DB) ListOrders(f OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders WHERE 1=1`
	var args []any
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.CustomerID != "" {
		query += ` AND customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.BoxType != "" {
		query += ` AND box_type = ?`
		args = append(args, f.BoxType)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (db *DB) DeleteOrder(id string) error {
	_, err := db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	return err
}
