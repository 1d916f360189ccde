package store

import "github.com/nekkaida/Cardose-sub003/model"

const inventoryCols = `id, name, material, quantity, unit, unit_cost, reorder_level,
	location, is_synced, created_at, updated_at`

// InventoryFilter narrows ListInventory.
type InventoryFilter struct {
	Material     string
	BelowReorder bool
}

func scanInventoryItem(row interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	it := &model.InventoryItem{}
	if err := row.Scan(&it.ID, &it.Name, &it.Material, &it.Quantity, &it.Unit,
		&it.UnitCost, &it.ReorderLevel, &it.Location,
		&it.IsSynced, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return it, nil
}

func (db *DB) UpsertInventoryItem(it *model.InventoryItem) error {
	_, err := db.Exec(`INSERT INTO inventory_items (`+inventoryCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name          = excluded.name,
			material      = excluded.material,
			quantity      = excluded.quantity,
			unit          = excluded.unit,
			unit_cost     = excluded.unit_cost,
			reorder_level = excluded.reorder_level,
			location      = excluded.location,
			is_synced     = excluded.is_synced,
			created_at    = excluded.created_at,
			updated_at    = excluded.updated_at`,
		it.ID, it.Name, it.Material, it.Quantity, it.Unit, it.UnitCost,
		it.ReorderLevel, it.Location, it.IsSynced, it.CreatedAt, it.UpdatedAt)
	return err
}

func (db *DB) GetInventoryItem(id string) (*model.InventoryItem, error) {
	return scanInventoryItem(db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id))
}

func (db *DB) ListInventory(f InventoryFilter) ([]model.InventoryItem, error) {
	query := `SELECT ` + inventoryCols + ` FROM inventory_items WHERE 1=1`
	var args []any
	if f.Material != "" {
		query += ` AND material = ?`
		args = append(args, f.Material)
	}
	if f.BelowReorder {
		query += ` AND quantity <= reorder_level`
	}
	query += ` ORDER BY name`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (db *DB) DeleteInventoryItem(id string) error {
	_, err := db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	return err
}
