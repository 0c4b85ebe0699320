package models

import (
	"time"
)

// ItemSnapshot is the last observed state of one product for one
// (subscriber, keyword) pair. Identity is (subscriber, keyword, product
// name, product code-or-empty); a new poll replaces the previous row.
type ItemSnapshot struct {
	ID           uint   `gorm:"primarykey"`
	SubscriberID uint   `gorm:"uniqueIndex:idx_snapshot_identity"`
	Keyword      string `gorm:"uniqueIndex:idx_snapshot_identity"`
	ProductName  string `gorm:"uniqueIndex:idx_snapshot_identity"`
	ProductCode  string `gorm:"uniqueIndex:idx_snapshot_identity"`

	Price          string
	Availability   string
	TotalStock     int
	StoreLocations []string `gorm:"serializer:json"`
	CapturedAt     time.Time
}

type ItemSnapshots []ItemSnapshot
