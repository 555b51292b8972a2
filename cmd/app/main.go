package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"lastmile/api"
	"lastmile/cmd"
	httpin "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/in/ws"
	"lastmile/internal/adapters/out/evidence"
	storage "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/pushrepo"
	"lastmile/internal/adapters/out/push"
	"lastmile/internal/adapters/out/realtime"
	"lastmile/internal/adapters/out/realtime/pgbus"
	"lastmile/internal/adapters/out/realtime/redisbus"
	"lastmile/internal/adapters/out/telegram"
	"lastmile/internal/core/application/notify"
	"lastmile/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs := getConfigs()
	logger := newLogger(configs.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configs, logger); err != nil {
		logger.Error("Application stopped", "error", err)
		os.Exit(1)
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	return cmd.Config{
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lastmile"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RealtimeBus:   getEnv("REALTIME_BUS", cmd.BusMemory),

		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		TelegramBotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramStaffChatID:     int64(getIntEnv("TELEGRAM_STAFF_CHAT_ID", 0)),

		EvidenceDir:   getEnv("EVIDENCE_DIR", "./evidence"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DefaultShippingCost:     getEnv("DEFAULT_SHIPPING_COST", "60"),
		LinkExpirationHours:     getIntEnv("LINK_EXPIRATION_HOURS", 72),
		PushSubscriptionTTLDays: getIntEnv("PUSH_SUBSCRIPTION_TTL_DAYS", 60),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	policy, err := configs.OrderPolicy()
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err = db.AutoMigrate(storage.Models()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	bus, err := newBus(configs, db, logger)
	if err != nil {
		return err
	}
	hub := realtime.NewHub(logger)
	go func() {
		if runErr := hub.Run(ctx, bus); runErr != nil {
			logger.ErrorContext(ctx, "Realtime bus stopped", "error", runErr)
		}
	}()

	subscriptions := pushrepo.NewGormPushSubscriptionRepository(db)
	opts, err := notifyOptions(ctx, configs, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(realtime.NewPublisher(bus), subscriptions, logger, opts...)

	store, err := evidence.NewFileSystemStore(configs.EvidenceDir, configs.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("preparing evidence directory: %w", err)
	}

	app := cmd.NewCompositionRoot(db, subscriptions, dispatcher, store, policy)

	jobManager := jobs.NewJobManager(
		app.CreatePrunePushSubscriptionsCommandHandler(),
		configs.PushSubscriptionTTL(),
		hub,
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e, err := newWebServer(&app, hub, store, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", configs.HTTPPort)
		serverErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	dispatcher.Wait()
	hub.Close()
	return nil
}

func newBus(configs cmd.Config, db *gorm.DB, logger *slog.Logger) (realtime.Bus, error) {
	switch configs.RealtimeBus {
	case cmd.BusMemory:
		return realtime.NewMemoryBus(), nil
	case cmd.BusRedis:
		client := redisbus.NewClient(configs.RedisAddr, configs.RedisPassword, configs.RedisDB)
		return redisbus.New(client, redisbus.DefaultChannel), nil
	case cmd.BusPostgres:
		return pgbus.New(db, configs.DSN(), pgbus.DefaultChannel, logger), nil
	default:
		return nil, fmt.Errorf("REALTIME_BUS must be one of memory, redis or postgres, got %q", configs.RealtimeBus)
	}
}

// notifyOptions enables the push and staff channels that are configured.
func notifyOptions(ctx context.Context, configs cmd.Config, logger *slog.Logger) ([]notify.Option, error) {
	var opts []notify.Option

	if configs.FirebaseCredentialsFile != "" {
		sender, err := push.NewFCMSender(ctx, configs.FirebaseCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("initializing FCM: %w", err)
		}
		opts = append(opts, notify.WithPush(sender), notify.WithPublicBaseURL(configs.PublicBaseURL))
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
	}

	if configs.TelegramBotToken != "" {
		staff, err := telegram.NewStaffNotifier(configs.TelegramBotToken, configs.TelegramStaffChatID)
		if err != nil {
			return nil, fmt.Errorf("initializing telegram: %w", err)
		}
		opts = append(opts, notify.WithStaffNotifier(staff))
	}

	return opts, nil
}

func newWebServer(
	app *cmd.CompositionRoot,
	hub *realtime.Hub,
	store *evidence.FileSystemStore,
	logger *slog.Logger,
) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.WARN)
	e.HTTPErrorHandler = httpin.ErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "Request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	doc, err := api.Load()
	if err != nil {
		return nil, err
	}
	validator, err := httpin.OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}
	e.Use(validator)
	if err = httpin.RegisterDocs(e, doc); err != nil {
		return nil, err
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.Static(evidence.PathPrefix, store.Dir())
	ws.NewHandler(hub).Register(e)

	httpin.RegisterHandlers(e, httpin.NewServer(app.HTTPHandlers(), logger))
	return e, nil
}
