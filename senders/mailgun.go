package senders

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

const emailSubject = "Wakewatch: inventory update"

type mailgunSender struct {
	base
}

func (e *mailgunSender) Send(ctx context.Context, recipient, text string) (string, error) {
	mg := mailgun.NewMailgun(e.cfg.Mailgun.Domain, e.cfg.Mailgun.APIKey)
	mg.Client().Transport = e.transport

	message := mg.NewMessage(e.cfg.Mailgun.SenderFrom, emailSubject, text, recipient)

	timeout := time.Duration(e.cfg.Mailgun.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, id, err := mg.Send(ctx, message)
	return id, err
}
