package store

import "github.com/nekkaida/Cardose-sub003/model"

const customerCols = `id, name, phone, email, address, notes, is_synced, created_at, updated_at`

// CustomerFilter narrows ListCustomers.
type CustomerFilter struct {
	Name string // substring match
}

func scanCustomer(row interface{ Scan(...any) error }) (*model.Customer, error) {
	c := &model.Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.IsSynced, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (db *DB) UpsertCustomer(c *model.Customer) error {
	_, err := db.Exec(`INSERT INTO customers (`+customerCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			phone      = excluded.phone,
			email      = excluded.email,
			address    = excluded.address,
			notes      = excluded.notes,
			is_synced  = excluded.is_synced,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Notes,
		c.IsSynced, c.CreatedAt, c.UpdatedAt)
	return err
}

func (db *DB) GetCustomer(id string) (*model.Customer, error) {
	return scanCustomer(db.QueryRow(`SELECT `+customerCols+` FROM customers WHERE id = ?`, id))
}

func (db *DB) ListCustomers(f CustomerFilter) ([]model.Customer, error) {
	query := `SELECT ` + customerCols + ` FROM customers`
	var args []any
	if f.Name != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+f.Name+"%")
	}
	query += ` ORDER BY name`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (db *DB) DeleteCustomer(id string) error {
	_, err := db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	return err
}
