package model

// Communication channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
)

// Communication is a logged customer message sent through one of the
// external channel adapters.
type Communication struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	OrderID    string `json:"order_id,omitempty"`
	Channel    string `json:"channel"`
	Direction  string `json:"direction"` // outbound or inbound
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
	Status     string `json:"status"` // sent, delivered, failed
	ExternalID string `json:"external_id,omitempty"`
	IsSynced   bool   `json:"is_synced"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CommunicationPatch is a partial communication update.
type CommunicationPatch struct {
	Status     *string `json:"status,omitempty"`
	ExternalID *string `json:"external_id,omitempty"`
	Body       *string `json:"body,omitempty"`
}

// Apply merges the patch into the communication.
func (p *CommunicationPatch) Apply(c *Communication) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.ExternalID != nil {
		c.ExternalID = *p.ExternalID
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
}

// ValidChannel reports whether ch is a known channel.
func ValidChannel(ch string) bool {
	switch ch {
	case ChannelWhatsApp, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}
