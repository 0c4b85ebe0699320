package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env            string `env:"ENVIRONMENT"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"wakewatch.sqlite"`
	ServerPort     int    `env:"SERVER_PORT" envDefault:"8080"`
	BasicAuthCreds string `env:"BASIC_AUTH_CREDS"`

	SearchURL       string `env:"WAKE_ABC_SEARCH_URL" envDefault:"https://wakeabc.com/search-results"`
	StoreLocatorURL string `env:"WAKE_ABC_STORE_LOCATOR_URL" envDefault:"https://wakeabc.com/wp-admin/admin-ajax.php?action=store_search&lat=35.7795897&lng=-78.6381787&max_results=1000&search_radius=200"`

	CheckIntervalMinutes int `env:"CHECK_INTERVAL_MINUTES" envDefault:"30"`
	PolitenessDelaySecs  int `env:"POLITENESS_DELAY_SECS" envDefault:"2"`
	FetchTimeoutSecs     int `env:"FETCH_TIMEOUT_SECS" envDefault:"30"`
	MaxSearchResults     int `env:"MAX_SEARCH_RESULTS" envDefault:"20"`

	Telegram struct {
		BotToken    string `env:"TELEGRAM_BOT_TOKEN"`
		TimeoutSecs int    `env:"TELEGRAM_TIMEOUT_SECS" envDefault:"10"`
	}
	Mailgun struct {
		Domain      string `env:"MAILGUN_DOMAIN"`
		APIKey      string `env:"MAILGUN_API_KEY"`
		SenderFrom  string `env:"MAILGUN_SENDER_FROM"`
		TimeoutSecs int    `env:"MAILGUN_TIMEOUT_SECS" envDefault:"10"`
	}

	log   *zap.Logger
	creds map[string]string
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) *Config {
	cfg := &Config{log: log}
	env.Parse(cfg)

	creds, err := cfg.parseCreds()
	if err != nil {
		cfg.log.Sugar().Panic(err)
	}
	cfg.creds = creds

	return cfg
}

func (cfg *Config) CheckInterval() time.Duration {
	return time.Duration(cfg.CheckIntervalMinutes) * time.Minute
}

func (cfg *Config) PolitenessDelay() time.Duration {
	return time.Duration(cfg.PolitenessDelaySecs) * time.Second
}

func (cfg *Config) FetchTimeout() time.Duration {
	return time.Duration(cfg.FetchTimeoutSecs) * time.Second
}

func (cfg *Config) GetCreds() map[string]string {
	return cfg.creds
}

func (cfg *Config) parseCreds() (map[string]string, error) {
	if cfg.BasicAuthCreds == "" {
		// Auth is optional; the API logs a warning and serves unauthenticated.
		return nil, nil
	}

	creds := strings.Split(cfg.BasicAuthCreds, ",")
	if len(creds) == 0 {
		return nil, errors.New("BASIC_AUTH_CREDS envvar should be filled with comma-separated values -- user1:pass1,user2:pass2")
	}

	result := make(map[string]string)
	for _, cred := range creds {
		userPass := strings.Split(cred, ":")
		if len(userPass) != 2 {
			return nil, fmt.Errorf("failed to parse '%s', each credential should be delimited by a colon -- user1:pass1,user2:pass2", cred)
		}

		user, pass := userPass[0], userPass[1]
		result[strings.Trim(user, " ")] = strings.Trim(pass, " ")
	}

	return result, nil
}
