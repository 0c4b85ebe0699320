package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/wakewatch/wakewatch/app"
	"github.com/wakewatch/wakewatch/config"
	"github.com/wakewatch/wakewatch/lib"
	"github.com/wakewatch/wakewatch/lib/inventory"
	"github.com/wakewatch/wakewatch/lib/location"
	"github.com/wakewatch/wakewatch/lib/monitor"
	"github.com/wakewatch/wakewatch/lib/notify"
	"github.com/wakewatch/wakewatch/lib/store"
	"github.com/wakewatch/wakewatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func main() {
	godotenv.Load()

	fx.New(
		fx.Provide(config.NewConfig),
		fx.Provide(NewLogger),

		fx.Provide(senders.NewSenderRegistry),

		fx.Provide(app.NewDatabase),
		fx.Provide(app.NewTransport),
		fx.Provide(store.NewStore),
		fx.Provide(location.NewCityCache),
		fx.Provide(inventory.NewExtractor),
		fx.Provide(notify.NewFormatter),
		fx.Provide(notify.NewDispatcher),
		fx.Provide(monitor.NewMonitor),
		fx.Provide(lib.NewService),
		fx.Provide(app.NewAPI),

		fx.Invoke(func(*monitor.Monitor) {}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}
