package store

import "github.com/nekkaida/Cardose-sub003/model"

const invoiceCols = `id, order_id, customer_id, number, status, pricing,
	issued_at, due_date, paid_at, is_synced, created_at, updated_at`

// InvoiceFilter narrows ListInvoices.
type InvoiceFilter struct {
	OrderID    string
	CustomerID string
	Status     string
}

func scanInvoice(row interface{ Scan(...any) error }) (*model.Invoice, error) {
	inv := &model.Invoice{}
	var pricing string
	if err := row.Scan(&inv.ID, &inv.OrderID, &inv.CustomerID, &inv.Number,
		&inv.Status, &pricing, &inv.IssuedAt, &inv.DueDate, &inv.PaidAt,
		&inv.IsSynced, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	decodeJSON(pricing, &inv.Pricing)
	return inv, nil
}

func (db *DB) UpsertInvoice(inv *model.Invoice) error {
	_, err := db.Exec(`INSERT INTO invoices (`+invoiceCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_id    = excluded.order_id,
			customer_id = excluded.customer_id,
			number      = excluded.number,
			status      = excluded.status,
			pricing     = excluded.pricing,
			issued_at   = excluded.issued_at,
			due_date    = excluded.due_date,
			paid_at     = excluded.paid_at,
			is_synced   = excluded.is_synced,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`,
		inv.ID, inv.OrderID, inv.CustomerID, inv.Number, inv.Status,
		encodeJSON(inv.Pricing), inv.IssuedAt, inv.DueDate, inv.PaidAt,
		inv.IsSynced, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (db *DB) GetInvoice(id string) (*model.Invoice, error) {
	return scanInvoice(db.QueryRow(`SELECT `+invoiceCols+` FROM invoices WHERE id = ?`, id))
}

func (db *DB) ListInvoices(f InvoiceFilter) ([]model.Invoice, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE 1=1`
	var args []any
	if f.OrderID != "" {
		query += ` AND order_id = ?`
		args = append(args, f.OrderID)
	}
	if f.CustomerID != "" {
		query += ` AND customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (db *DB) DeleteInvoice(id string) error {
	_, err := db.Exec(`DELETE FROM invoices WHERE id = ?`, id)
	return err
}
