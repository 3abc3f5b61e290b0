// cmd/platform-gateway/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/api"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/browse"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/catalog"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/config"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/database"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/contacts"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/exchange"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/notify"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/otp"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/preset"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/student"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting platform gateway", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	pg, err := connectPostgres(cfg, log)
	if err != nil {
		log.Error("postgres unavailable, exiting", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	rdb, err := connectRedis(cfg, log)
	if err != nil {
		log.Error("redis unavailable, exiting", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer rdb.Close()

	presetStore, err := preset.NewPostgresStore(pg.GetDB())
	if err != nil {
		log.Error("preset store init failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	presetMgr := preset.NewManager(presetStore, log)

	catalogClient := catalog.NewClient(
		cfg.Services.Catalog.BaseURL,
		config.GetDuration(cfg.Services.Catalog.Timeout),
		log,
	)
	contactsClient := contacts.NewClient(
		cfg.Services.Contacts.BaseURL,
		config.GetDuration(cfg.Services.Contacts.Timeout),
		log,
	)
	studentClient := student.NewClient(
		cfg.Services.Student.BaseURL,
		config.GetDuration(cfg.Services.Student.Timeout),
		log,
	)
	exchangeClient := exchange.NewClient(
		cfg.Services.Exchange.BaseURL,
		config.GetDuration(cfg.Services.Exchange.Timeout),
		log,
	)

	gupshup := otp.NewGupshupProvider(
		cfg.Services.Gupshup.BaseURL,
		cfg.Services.Gupshup.APIKey,
		config.GetDuration(cfg.Services.Gupshup.Timeout),
		log,
	)
	otpService := otp.NewService(
		otp.NewRedisStore(rdb.GetClient()),
		gupshup,
		otp.ServiceConfig{
			CodeTTL:            config.GetSeconds(cfg.OTP.CodeTTL),
			ResendCooldown:     config.GetSeconds(cfg.OTP.ResendCooldown),
			FailOpen:           cfg.OTP.FailOpen,
			DefaultCountryCode: cfg.Services.Gupshup.DefaultCountryCode,
		},
		log,
	)
	if cfg.OTP.SMSFallback {
		snsProvider, err := otp.NewSNSProvider(context.Background(), cfg.Notifications.AWS.Region, log)
		if err != nil {
			log.Warn("sms fallback channel unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			otpService.WithFallback(snsProvider)
		}
	}

	browseOpts := browse.Options{
		PageSize:    cfg.Catalog.DefaultPageSize,
		MaxPageSize: cfg.Catalog.MaxPageSize,
		SortKey:     cfg.Catalog.DefaultSortKey,
		SortDir:     cfg.Catalog.DefaultSortDir,
	}
	registry := api.NewSessionRegistry(
		config.GetSeconds(cfg.Sessions.TTL),
		func() *browse.Session { return browse.NewSession(catalogClient, browseOpts, log) },
		func() *otp.Flow { return otp.NewFlow(otpService) },
		func() *wizard.Orchestrator { return wizard.NewOrchestrator(log) },
		log,
	)

	stop := make(chan struct{})
	registry.StartJanitor(config.GetSeconds(cfg.Sessions.SweepInterval), stop)

	server := api.NewServer(registry, presetMgr, catalogClient, contactsClient, studentClient, exchangeClient, log)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifier, err := notify.New(
			context.Background(), cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail, log)
		if err != nil {
			log.Warn("notifier unavailable, status updates will not be sent", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			server.WithNotifier(notifier)
		}
	}
	router := api.NewRouter(server, log)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		log.Info("metrics server listening", map[string]interface{}{
			"address": cfg.HTTP.MetricsAddress,
		})
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.HTTP.MetricsAddress, metricsMux); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("shutdown complete", nil)
}

// connectPostgres dials Postgres with a short retry loop so a gateway
// restarting alongside its database does not flap.
func connectPostgres(cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	var client *database.PostgresClient
	err := retryWithBackoff(5, 2*time.Second, func() error {
		var err error
		client, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return client.Ping(ctx)
	}, log, "postgres")
	return client, err
}

func connectRedis(cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	var client *database.RedisClient
	err := retryWithBackoff(5, 2*time.Second, func() error {
		var err error
		client, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return client.Ping(ctx)
	}, log, "redis")
	return client, err
}

func retryWithBackoff(attempts int, delay time.Duration, fn func() error, log logger.Logger, name string) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("connection attempt failed", map[string]interface{}{
			"target":  name,
			"attempt": i,
			"error":   err.Error(),
		})
		if i < attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
