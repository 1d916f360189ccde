package store

import "github.com/nekkaida/Cardose-sub003/model"

const productionCols = `id, order_id, stage, status, priority, assigned_to,
	estimated_hours, due_date, depends_on, quality_checks, materials,
	is_synced, created_at, updated_at`

// ProductionFilter narrows ListProductionTasks.
type ProductionFilter struct {
	OrderID string
	Status  string
	Stage   string
}

func scanProductionTask(row interface{ Scan(...any) error }) (*model.ProductionTask, error) {
	t := &model.ProductionTask{}
	var dependsOn, checks, materials string
	if err := row.Scan(&t.ID, &t.OrderID, &t.Stage, &t.Status, &t.Priority,
		&t.AssignedTo, &t.EstimatedHours, &t.DueDate,
		&dependsOn, &checks, &materials,
		&t.IsSynced, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	decodeJSON(dependsOn, &t.DependsOn)
	decodeJSON(checks, &t.QualityChecks)
	decodeJSON(materials, &t.Materials)
	return t, nil
}

func (db *DB) UpsertProductionTask(t *model.ProductionTask) error {
	_, err := db.Exec(`INSERT INTO production_tasks (`+productionCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_id        = excluded.order_id,
			stage           = excluded.stage,
			status          = excluded.status,
			priority        = excluded.priority,
			assigned_to     = excluded.assigned_to,
			estimated_hours = excluded.estimated_hours,
			due_date        = excluded.due_date,
			depends_on      = excluded.depends_on,
			quality_checks  = excluded.quality_checks,
			materials       = excluded.materials,
			is_synced       = excluded.is_synced,
			created_at      = excluded.created_at,
			updated_at      = excluded.updated_at`,
		t.ID, t.OrderID, t.Stage, t.Status, t.Priority, t.AssignedTo,
		t.EstimatedHours, t.DueDate, encodeJSON(t.DependsOn),
		encodeJSON(t.QualityChecks), encodeJSON(t.Materials),
		t.IsSynced, t.CreatedAt, t.UpdatedAt)
	return err
}

func (db *DB) GetProductionTask(id string) (*model.ProductionTask, error) {
	return scanProductionTask(db.QueryRow(`SELECT `+productionCols+` FROM production_tasks WHERE id = ?`, id))
}

func (db *DB) ListProductionTasks(f ProductionFilter) ([]model.ProductionTask, error) {
	query := `SELECT ` + productionCols + ` FROM production_tasks WHERE 1=1`
	var args []any
	if f.OrderID != "" {
		query += ` AND order_id = ?`
		args = append(args, f.OrderID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Stage != "" {
		query += ` AND stage = ?`
		args = append(args, f.Stage)
	}
	query += ` ORDER BY due_date, id`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.ProductionTask
	for rows.Next() {
		t, err := scanProductionTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (db *DB) DeleteProductionTask(id string) error {
	_, err := db.Exec(`DELETE FROM production_tasks WHERE id = ?`, id)
	return err
}
