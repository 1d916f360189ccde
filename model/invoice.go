package model

// Invoice statuses.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
	InvoiceVoid  = "void"
)

// Invoice bills a customer for a completed order.
type Invoice struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	CustomerID string  `json:"customer_id"`
	Number     string  `json:"number"`
	Status     string  `json:"status"`
	Pricing    Pricing `json:"pricing"`
	IssuedAt   string  `json:"issued_at,omitempty"`
	DueDate    string  `json:"due_date,omitempty"`
	PaidAt     string  `json:"paid_at,omitempty"`
	IsSynced   bool    `json:"is_synced"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// InvoicePatch is a partial invoice update.
type InvoicePatch struct {
	Status  *string  `json:"status,omitempty"`
	Pricing *Pricing `json:"pricing,omitempty"`
	DueDate *string  `json:"due_date,omitempty"`
	PaidAt  *string  `json:"paid_at,omitempty"`
}

// Apply merges the patch into the invoice.
func (p *InvoicePatch) Apply(inv *Invoice) {
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Pricing != nil {
		inv.Pricing = *p.Pricing
	}
	if p.DueDate != nil {
		inv.DueDate = *p.DueDate
	}
	if p.PaidAt != nil {
		inv.PaidAt = *p.PaidAt
	}
}
