package app

import (
	"github.com/wakewatch/wakewatch/lib"
	"github.com/wakewatch/wakewatch/lib/models"
)

type SubscriberView struct {
	ID         uint   `json:"id"`
	Platform   string `json:"platform"`
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Active     bool   `json:"active"`
}

func (view SubscriberView) From(entity *models.Subscriber) SubscriberView {
	return SubscriberView{
		ID:         entity.ID,
		Platform:   entity.Platform,
		Identifier: entity.PlatformIdentifier,
		Username:   entity.Username,
		Active:     entity.Active,
	}
}

type WatchlistView struct {
	Keywords []string `json:"keywords"`
}

type StatusView struct {
	MonitorRunning    bool     `json:"monitor_running"`
	CheckIntervalMins int      `json:"check_interval_minutes"`
	WatchedEntries    int64    `json:"watched_entries"`
	Keywords          []string `json:"keywords"`
	Subscribers       int64    `json:"subscribers"`
}

func (view StatusView) From(status *lib.Status) StatusView {
	return StatusView{
		MonitorRunning:    status.MonitorRunning,
		CheckIntervalMins: int(status.CheckInterval.Minutes()),
		WatchedEntries:    status.WatchedEntries,
		Keywords:          status.Keywords,
		Subscribers:       status.Subscribers,
	}
}
