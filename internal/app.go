package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"updatescan/internal/alarm"
	"updatescan/internal/autoscan"
	"updatescan/internal/controllers"
	"updatescan/internal/notify"
	"updatescan/internal/providers"
	"updatescan/internal/store"
	"updatescan/internal/structures"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler autoscan.SchedulerInterface
	alarms    alarm.ServiceInterface
	store     store.PageStoreInterface
	notifier  notify.NotifierInterface
}

// notificationDrainTimeout bounds how long shutdown waits for webhook retries.
const notificationDrainTimeout = 30 * time.Second

func NewApp(healthController *controllers.HealthController, scheduler autoscan.SchedulerInterface, alarms alarm.ServiceInterface, pageStore store.PageStoreInterface, notifier notify.NotifierInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	router.Mount(apiMux)

	// Wrap API routes with logging and metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, providers.LoggingMiddleware(logger, apiMux))

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
		alarms:    alarms,
		store:     pageStore,
		notifier:  notifier,
	}
}

// Run serves the API and autoscans until SIGINT or SIGTERM.
func (a *App) Run() error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)

	ctx := context.Background()
	a.scheduler.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", a.conf.WebServer.Host, a.conf.WebServer.Port)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop(ctx)
	a.alarms.StopAll()
	a.drainNotifications(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.WebServer.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if err := a.Close(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		a.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	return runErr
}

// ScanOnce runs a single autoscan cycle without the HTTP server or alarm.
func (a *App) ScanOnce(ctx context.Context) (int, error) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Errorf(providers.TypeApp, "Closing store: %s", err)
		}
	}()
	n, err := a.scheduler.RunCycle(ctx)
	a.drainNotifications(context.WithoutCancel(ctx))
	return n, err
}

func (a *App) drainNotifications(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, notificationDrainTimeout)
	defer cancel()
	if err := a.notifier.Wait(ctx); err != nil {
		a.logger.Warnf(providers.TypeApp, "Pending notifications were not delivered: %s", err)
	}
}

func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
