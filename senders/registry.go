package senders

import (
	"context"
	"net/http"

	"github.com/wakewatch/wakewatch/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Sender interface {
	// Send delivers text to the platform-specific recipient and returns
	// the provider's message id.
	Send(ctx context.Context, recipient, text string) (string, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	return map[string]Sender{
		"telegram": &telegramSender{base},
		"email":    &mailgunSender{base},
	}
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
