package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wakewatch/wakewatch/config"
	"github.com/wakewatch/wakewatch/lib"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service) http.Handler {
	ctrl := &controller{log, svc}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if creds := cfg.GetCreds(); len(creds) > 0 {
			r.Use(middleware.BasicAuth("wakewatch", creds))
		} else {
			log.Sugar().Info("Auth is disabled since no credentials are defined")
		}

		r.Route("/subscribers", func(r chi.Router) {
			r.Post("/", ctrl.registerSubscriber)
			r.Post("/{subscriber_id}/watchlist", ctrl.addKeyword)
			r.Get("/{subscriber_id}/watchlist", ctrl.viewWatchlist)
			r.Delete("/{subscriber_id}/watchlist/{keyword}", ctrl.removeKeyword)
			r.Delete("/{subscriber_id}/watchlist", ctrl.clearWatchlist)
			r.Post("/{subscriber_id}/test-notification", ctrl.sendTestNotification)
		})
		r.Get("/status", ctrl.viewStatus)
	})

	return r
}

type controller struct {
	log *zap.Logger
	svc *lib.Service
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Error("Request failed", "error", err)
		return
	} else {
		w.WriteHeader(status)
		if b != nil {
			w.Write(b)
		}
	}
}

func (ctrl *controller) registerSubscriber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platform := r.FormValue("platform")
	identifier := r.FormValue("identifier")

	if platform == "" {
		ctrl.reject(w, 400, errors.New("Platform is required"))
		return
	}
	if identifier == "" {
		ctrl.reject(w, 400, errors.New("Identifier is required"))
		return
	}

	sub, err := ctrl.svc.RegisterSubscriber(
		ctx, platform, identifier,
		r.FormValue("username"), r.FormValue("first_name"), r.FormValue("last_name"),
	)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusAccepted, SubscriberView{}.From(sub))
}

func (ctrl *controller) addKeyword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriber_id")
	keyword := r.FormValue("keyword")

	added, err := ctrl.svc.AddKeyword(ctx, parseInt(subscriberID), keyword)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	if !added {
		ctrl.resolve(w, http.StatusOK, map[string]any{"added": false})
		return
	}
	ctrl.resolve(w, http.StatusCreated, map[string]any{"added": true})
}

func (ctrl *controller) viewWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriber_id")

	keywords, err := ctrl.svc.Watchlist(ctx, parseInt(subscriberID))
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, 200, WatchlistView{Keywords: keywords})
}

func (ctrl *controller) removeKeyword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriber_id")
	keyword := chi.URLParam(r, "keyword")

	removed, err := ctrl.svc.RemoveKeyword(ctx, parseInt(subscriberID), keyword)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	if !removed {
		ctrl.reject(w, http.StatusNotFound, errors.New("Keyword is not on the watchlist"))
		return
	}
	ctrl.resolve(w, 200, map[string]any{"removed": true})
}

func (ctrl *controller) clearWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriber_id")

	cleared, err := ctrl.svc.ClearWatchlist(ctx, parseInt(subscriberID))
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, 200, map[string]any{"cleared": cleared})
}

func (ctrl *controller) sendTestNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := chi.URLParam(r, "subscriber_id")

	if err := ctrl.svc.SendTestNotification(ctx, parseInt(subscriberID)); err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"sent": true})
}

func (ctrl *controller) viewStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := ctrl.svc.Status(ctx)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, 200, StatusView{}.From(status))
}

func parseInt(s string) uint {
	u, _ := strconv.ParseUint(s, 10, 64)
	return uint(u)
}
