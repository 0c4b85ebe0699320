package models

import (
	"strings"

	"gorm.io/gorm"
)

type WatchlistEntry struct {
	gorm.Model
	SubscriberID uint   `gorm:"index:idx_subscriber_keyword"`
	Keyword      string `gorm:"index:idx_subscriber_keyword"`
	Active       bool   `gorm:"default:true"`
}

type WatchlistEntries []WatchlistEntry

// WatchPair is one (subscriber, keyword) row of the active watchlist.
type WatchPair struct {
	SubscriberID uint
	Keyword      string
}

// NormalizeKeyword canonicalizes a keyword at registration time so the
// monitor can group subscribers watching the same term.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
