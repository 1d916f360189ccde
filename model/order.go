package model

// Dimensions is the physical size of the ordered box.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Pricing is the denormalized price breakdown for an order.
type Pricing struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// OrderWorkflow carries the production schedule for an order.
type OrderWorkflow struct {
	PlannedStart     string `json:"planned_start,omitempty"`
	Deadline         string `json:"deadline,omitempty"`
	ActualCompletion string `json:"actual_completion,omitempty"`
}

// Order is a customer order for a custom box run.
type Order struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	BoxType    string        `json:"box_type"`
	Status     string        `json:"status"`
	Quantity   int           `json:"quantity"`
	Dimensions Dimensions    `json:"dimensions"`
	Materials  []string      `json:"materials"`
	Pricing    Pricing       `json:"pricing"`
	Workflow   OrderWorkflow `json:"workflow"`
	Notes      string        `json:"notes,omitempty"`
	IsSynced   bool          `json:"is_synced"`
	CreatedAt  string        `json:"created_at"`
	UpdatedAt  string        `json:"updated_at"`
}

// OrderPatch is a partial order update. Nil fields are left untouched.
type OrderPatch struct {
	CustomerID *string        `json:"customer_id,omitempty"`
	BoxType    *string        `json:"box_type,omitempty"`
	Status     *string        `json:"status,omitempty"`
	Quantity   *int           `json:"quantity,omitempty"`
	Dimensions *Dimensions    `json:"dimensions,omitempty"`
	Materials  *[]string      `json:"materials,omitempty"`
	Pricing    *Pricing       `json:"pricing,omitempty"`
	Workflow   *OrderWorkflow `json:"workflow,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
}

// Apply merges the patch into the order.
func (p *OrderPatch) Apply(o *Order) {
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
	if p.BoxType != nil {
		o.BoxType = *p.BoxType
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.Dimensions != nil {
		o.Dimensions = *p.Dimensions
	}
	if p.Materials != nil {
		o.Materials = *p.Materials
	}
	if p.Pricing != nil {
		o.Pricing = *p.Pricing
	}
	if p.Workflow != nil {
		o.Workflow = *p.Workflow
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
}

// StatusHistory records one accepted order status transition.
type StatusHistory struct {
	ID        int64  `json:"id"`
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}
