package models

// InventoryRecord is one product listing at a point in time, as extracted
// from the search results page. Never mutated after construction.
type InventoryRecord struct {
	Name         string
	Code         string
	Size         string
	Price        string
	Availability string
	Locations    []string
}

type InventoryRecords []InventoryRecord

// ChangeDecision is the diff engine's verdict for a single record.
type ChangeDecision struct {
	Notify  bool
	Reasons []string
}

// ItemChange pairs a record with the reasons it should be notified about.
type ItemChange struct {
	Record  InventoryRecord
	Reasons []string
}
