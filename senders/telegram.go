package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/carlmjohnson/requests"
)

const telegramAPIHost = "https://api.telegram.org"

type telegramSender struct {
	base
}

type telegramResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

func (t *telegramSender) Send(ctx context.Context, recipient, text string) (string, error) {
	timeout := time.Duration(t.cfg.Telegram.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var resp telegramResponse
	err := requests.
		URL(telegramAPIHost).
		Pathf("/bot%s/sendMessage", t.cfg.Telegram.BotToken).
		Transport(t.transport).
		BodyForm(map[string][]string{
			"chat_id":    {recipient},
			"text":       {text},
			"parse_mode": {"MarkdownV2"},
		}).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("telegram send failed: %s", resp.Description)
	}
	return fmt.Sprint(resp.Result.MessageID), nil
}
