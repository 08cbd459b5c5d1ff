package main

import (
	"context"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/riekert7/whapi-bridge/internal/channels"
	appConfig "github.com/riekert7/whapi-bridge/internal/config"
	configHandler "github.com/riekert7/whapi-bridge/internal/config/handler"
	"github.com/riekert7/whapi-bridge/internal/eventlog"
	"github.com/riekert7/whapi-bridge/internal/gateway"
	channelsHandler "github.com/riekert7/whapi-bridge/internal/http-server/handlers/channels"
	messagesHandler "github.com/riekert7/whapi-bridge/internal/http-server/handlers/messages"
	webhookHandler "github.com/riekert7/whapi-bridge/internal/http-server/handlers/webhook"
	"github.com/riekert7/whapi-bridge/internal/http-server/middleware/apikey"
	mwLogger "github.com/riekert7/whapi-bridge/internal/http-server/middleware/logger"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/handlers/slogpretty"
	"github.com/riekert7/whapi-bridge/internal/lib/logger/sl"
	"github.com/riekert7/whapi-bridge/internal/media"
	"github.com/riekert7/whapi-bridge/internal/messages"
	"github.com/riekert7/whapi-bridge/internal/notifier"
	"github.com/riekert7/whapi-bridge/internal/storage/postgres"
	"github.com/riekert7/whapi-bridge/internal/storage/sqlite"
	"github.com/riekert7/whapi-bridge/internal/webhook"
	wsHandler "github.com/riekert7/whapi-bridge/internal/ws/handler"
	"github.com/riekert7/whapi-bridge/internal/ws/hub"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

type storage interface {
	Channels() channels.Repo
	Messages() messages.Repo
	Events() eventlog.Repo
	Close() error
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		stdlog.Println("No .env file found, skipping...")
	}

	cfg := appConfig.MustLoad()

	log := setupLogger(cfg.Env)
	log.Info("starting whapi-bridge", slog.String("env", cfg.Env))

	ctx := context.Background()

	store := mustSetupStorage(ctx, cfg, log)
	defer store.Close()

	mediaStore, filesDir := mustSetupMediaStore(ctx, cfg, log)

	gw := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)
	notify := notifier.New(gw, cfg.App.BaseURL, log)

	h := hub.NewHub()
	go h.Run()

	webhookSvc := webhook.New(
		store.Channels(),
		store.Messages(),
		store.Events(),
		gw,
		mediaStore,
		h,
		log,
	)

	chh := channelsHandler.New(store.Channels(), log)
	mh := messagesHandler.New(
		store.Messages(),
		store.Channels(),
		notify,
		cfg.App.DefaultCountryCode,
		log,
	)
	cfgH := configHandler.New(*cfg, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// Guest-accessible: the gateway authenticates only through channel_id.
	router.HandleFunc("/webhook", webhookHandler.Handle(webhookSvc, log))

	router.Get("/ws", wsHandler.WSHandler(h, log))

	if filesDir != "" {
		router.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(filesDir))))
	}

	router.Group(func(r chi.Router) {
		r.Use(apikey.Require(cfg.App.APIKey))

		r.Post("/channels", chh.CreateChannel())
		r.Get("/channels", chh.ListChannels())

		r.Post("/messages", mh.SendMessage())
		r.Get("/chats/{chatId}/messages", mh.GetMessages())

		r.Get("/config", cfgH.GetConfig())
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Error("failed to start server", sl.Err(err))
	}

	log.Error("server stopped")
}

func mustSetupStorage(ctx context.Context, cfg *appConfig.Config, log *slog.Logger) storage {
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			log.Error("failed to init postgres storage", sl.Err(err))
			os.Exit(1)
		}
		return store

	default:
		store, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			log.Error("failed to init sqlite storage", sl.Err(err))
			os.Exit(1)
		}
		return store
	}
}

// mustSetupMediaStore returns the media backend and, for the disk backend,
// the directory to serve under /files/.
func mustSetupMediaStore(ctx context.Context, cfg *appConfig.Config, log *slog.Logger) (media.Store, string) {
	if cfg.Media.Backend == "s3" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Media.S3.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.Media.S3.AccessKey, cfg.Media.S3.SecretKey, ""),
			),
		)
		if err != nil {
			log.Error("failed to load aws config", sl.Err(err))
			os.Exit(1)
		}

		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Media.S3.Endpoint)
			o.UsePathStyle = true
		})

		return media.NewS3Store(cfg.Media.S3.Bucket, cfg.Media.S3.BaseURL, s3Client), ""
	}

	store, err := media.NewDiskStore(cfg.Media.Dir)
	if err != nil {
		log.Error("failed to init media dir", sl.Err(err))
		os.Exit(1)
	}

	return store, store.Dir()
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return setupPrettySlog()
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
