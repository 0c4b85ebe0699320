package models

import (
	"time"
)

// NotificationRecord is an append-only audit row of one delivered item.
// The diff engine never consults it; decisions are snapshot-driven.
type NotificationRecord struct {
	ID           uint `gorm:"primarykey"`
	SubscriberID uint `gorm:"index"`
	Keyword      string
	ProductName  string
	ProductCode  string
	SentAt       time.Time
}

type NotificationRecords []NotificationRecord
