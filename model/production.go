package model

// Production task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskBlocked    = "blocked"
)

// Production task priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// QualityCheck is one check result on a production task.
type QualityCheck struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	Notes     string `json:"notes,omitempty"`
	CheckedAt string `json:"checked_at,omitempty"`
}

// RequiredMaterial links a task to an inventory item it consumes.
type RequiredMaterial struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// ProductionTask is one stage of an order's production run.
type ProductionTask struct {
	ID             string             `json:"id"`
	OrderID        string             `json:"order_id"`
	Stage          string             `json:"stage"`
	Status         string             `json:"status"`
	Priority       string             `json:"priority"`
	AssignedTo     string             `json:"assigned_to,omitempty"`
	EstimatedHours float64            `json:"estimated_hours"`
	DueDate        string             `json:"due_date,omitempty"`
	DependsOn      []string           `json:"depends_on"`
	QualityChecks  []QualityCheck     `json:"quality_checks"`
	Materials      []RequiredMaterial `json:"materials"`
	IsSynced       bool               `json:"is_synced"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// ProductionPatch is a partial production task update.
type ProductionPatch struct {
	Status        *string         `json:"status,omitempty"`
	Priority      *string         `json:"priority,omitempty"`
	AssignedTo    *string         `json:"assigned_to,omitempty"`
	DueDate       *string         `json:"due_date,omitempty"`
	QualityChecks *[]QualityCheck `json:"quality_checks,omitempty"`
}

// Apply merges the patch into the task.
func (p *ProductionPatch) Apply(t *ProductionTask) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.QualityChecks != nil {
		t.QualityChecks = *p.QualityChecks
	}
}
