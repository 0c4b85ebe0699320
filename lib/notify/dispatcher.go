package notify

import (
	"context"
	"fmt"

	"github.com/wakewatch/wakewatch/lib/models"
	"github.com/wakewatch/wakewatch/lib/store"
	"github.com/wakewatch/wakewatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Dispatcher renders change notifications and hands them to the
// subscriber's delivery platform. A failure is returned to the caller,
// which isolates it to that subscriber and moves on.
type Dispatcher struct {
	log     *zap.Logger
	store   *store.Store
	senders senders.Registry
	format  *Formatter
}

func NewDispatcher(lc fx.Lifecycle, log *zap.Logger, store *store.Store, senders senders.Registry, format *Formatter) *Dispatcher {
	return &Dispatcher{log, store, senders, format}
}

// Dispatch sends one message per subscriber per keyword per cycle,
// covering every changed item, then appends one audit record per item.
func (d *Dispatcher) Dispatch(ctx context.Context, subscriberID uint, keyword string, items []models.ItemChange) error {
	if len(items) == 0 {
		return nil
	}

	sub, sender, err := d.resolve(ctx, subscriberID)
	if err != nil {
		return err
	}

	text := d.format.ChangeMessage(ctx, keyword, items)
	id, err := sender.Send(ctx, sub.PlatformIdentifier, text)
	if err != nil {
		return err
	}
	d.log.Sugar().Infow("Sent notification",
		"subscriber", sub.ID, "keyword", keyword, "items", len(items), "message_id", id)

	for _, item := range items {
		if err := d.store.AddNotification(ctx, sub.ID, keyword, item.Record.Name, item.Record.Code); err != nil {
			d.log.Sugar().Warnw("Failed to record notification", "subscriber", sub.ID, "err", err)
		}
	}
	return nil
}

// SendTest delivers a canned notification so a subscriber can verify
// their delivery channel works.
func (d *Dispatcher) SendTest(ctx context.Context, subscriberID uint) error {
	sub, sender, err := d.resolve(ctx, subscriberID)
	if err != nil {
		return err
	}

	_, err = sender.Send(ctx, sub.PlatformIdentifier, d.format.TestMessage(ctx))
	if err == nil {
		d.log.Sugar().Infof("Sent test notification to subscriber %v", sub.ID)
	}
	return err
}

func (d *Dispatcher) resolve(ctx context.Context, subscriberID uint) (*models.Subscriber, senders.Sender, error) {
	sub, err := d.store.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading subscriber %d: %w", subscriberID, err)
	}

	sender, ok := d.senders[sub.Platform]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported notifier platform: %s", sub.Platform)
	}
	return sub, sender, nil
}
