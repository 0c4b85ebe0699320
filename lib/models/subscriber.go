package models

import (
	"gorm.io/gorm"
)

// Subscriber is someone receiving inventory notifications. PlatformIdentifier
// is the delivery address on their platform (Telegram chat id, email address).
type Subscriber struct {
	gorm.Model
	Platform           string `gorm:"index:idx_platform_identifier"`
	PlatformIdentifier string `gorm:"index:idx_platform_identifier"`
	Username           string
	FirstName          string
	LastName           string
	Active             bool `gorm:"default:true"`

	Watchlist []WatchlistEntry
}

type Subscribers []Subscriber
