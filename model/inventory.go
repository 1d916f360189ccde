package model

// InventoryItem is a stock item (sheet board, ink, glue, etc).
type InventoryItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Material     string  `json:"material"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost"`
	ReorderLevel float64 `json:"reorder_level"`
	Location     string  `json:"location,omitempty"`
	IsSynced     bool    `json:"is_synced"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// InventoryPatch is a partial inventory update.
type InventoryPatch struct {
	Name         *string  `json:"name,omitempty"`
	Material     *string  `json:"material,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	UnitCost     *float64 `json:"unit_cost,omitempty"`
	ReorderLevel *float64 `json:"reorder_level,omitempty"`
	Location     *string  `json:"location,omitempty"`
}

// Apply merges the patch into the item.
func (p *InventoryPatch) Apply(it *InventoryItem) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Material != nil {
		it.Material = *p.Material
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.UnitCost != nil {
		it.UnitCost = *p.UnitCost
	}
	if p.ReorderLevel != nil {
		it.ReorderLevel = *p.ReorderLevel
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
}
