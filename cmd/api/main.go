package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rabbitt-learning/certgen/internal/api/router"
	"github.com/rabbitt-learning/certgen/internal/awsconfig"
	"github.com/rabbitt-learning/certgen/internal/certificate"
	appconfig "github.com/rabbitt-learning/certgen/internal/config"
	"github.com/rabbitt-learning/certgen/internal/export"
	"github.com/rabbitt-learning/certgen/internal/generate"
	"github.com/rabbitt-learning/certgen/internal/notify"
	"github.com/rabbitt-learning/certgen/internal/observability/metrics"
	"github.com/rabbitt-learning/certgen/internal/storage"
	"github.com/rabbitt-learning/certgen/pkg/logging"
)

func main() {
	// Load .env in development; a missing file is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting certgen API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"mail_provider", cfg.MailProvider,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.Load(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	store := storage.NewStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicBaseURL, logger)

	renderCfg := certificate.DefaultConfig()
	renderCfg.Width = cfg.CanvasWidth
	renderCfg.Height = cfg.CanvasHeight
	renderCfg.NameFontSize = cfg.NameFontSize
	renderCfg.CaptionFontSize = cfg.CaptionFontSize
	renderCfg.IDFontSize = cfg.IDFontSize
	renderCfg.QREnabled = cfg.QREnabled
	renderCfg.QRSize = cfg.QRSize
	renderCfg.VerificationBaseURL = cfg.VerificationBaseURL
	renderCfg.BackgroundImagePath = cfg.BackgroundImagePath
	renderCfg.NameFontPath = cfg.NameFontPath
	renderCfg.CaptionFontPath = cfg.CaptionFontPath

	assets, err := certificate.LoadAssets(renderCfg)
	if err != nil {
		logger.Error("failed to load render assets", "error", err)
		os.Exit(1)
	}
	renderer := certificate.NewRenderer(renderCfg, assets, store, logger)

	sender := buildSender(cfg, awsCfg, logger)
	if sender == nil {
		logger.Error("mail provider could not be initialized", "provider", cfg.MailProvider)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	certMetrics := metrics.NewCertificateMetrics(registry)

	svc := generate.NewService(renderer, sender, certMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		GenerateHandler:    generate.NewHandler(svc, logger),
		ExportHandler:      export.NewHandler(export.NewArchiver(nil, logger), logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildSender picks the delivery backend from configuration. Validate has
// already checked the provider's credentials, so a nil here means a wiring
// bug, not missing config.
func buildSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.MailProvider {
	case "sendgrid":
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "ses":
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	default:
		return notify.NewStubEmailSender(logger)
	}
}
