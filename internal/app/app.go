package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NasaVasa/coinalert/internal/config"
	"github.com/NasaVasa/coinalert/internal/delivery/telegram"
	"github.com/NasaVasa/coinalert/internal/infra/alertapi"
	"github.com/NasaVasa/coinalert/internal/infra/log"
	"github.com/NasaVasa/coinalert/internal/infra/metrics"
	"github.com/NasaVasa/coinalert/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type App struct {
	bot           *telegram.Bot
	sessions      *usecase.SessionManager
	metricsServer *http.Server
	logger        *zap.Logger
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)

	client := alertapi.NewClient(cfg.AlertAPIURL, cfg.AlertAPITimeout, logger)
	executor := usecase.NewExecutor(client, client, recorder, logger)
	identity := usecase.NewIdentityUsecase(cfg.AlertUserIDs, cfg.AlertDefaultUserID)
	sessions := usecase.NewSessionManager(identity, executor, recorder, logger)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.TelegramSendRate), cfg.TelegramSendBurst)
	handlers := telegram.NewHandlers(sessions, limiter, cfg.CatalogMenuSize, logger)
	bot := telegram.NewBot(api, handlers, sessions, cfg.TelegramPollTimeout)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return &App{bot: bot, sessions: sessions, metricsServer: metricsServer, logger: logger}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("coinalert service starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return a.bot.Start(groupCtx)
	})

	if a.metricsServer != nil {
		group.Go(func() error {
			a.logger.Info("metrics server listening", zap.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.metricsServer.Shutdown(shutdownCtx)
		})
	}

	a.logger.Info("coinalert service started")
	return group.Wait()
}

func (a *App) Shutdown() {
	a.logger.Info("coinalert service shutting down")
	a.sessions.StopAll()
	_ = a.logger.Sync()
}
