package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gateworks-backend/cart"
	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/storage"
	"gateworks-backend/utils"
)

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	location  *time.Location
	store     storage.ObjectStore
	localRoot string
	images    *services.ImagePipeline
	reminders *services.ReminderService
	carts     *cart.Service
	redis     *redis.Client
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Cron.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Cron.Timezone, err)
	}

	if err := config.ConnectDB(cfg.DB); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, location: loc}
	if err := a.initStorage(); err != nil {
		return nil, err
	}
	if err := a.initCart(); err != nil {
		return nil, err
	}

	retry := utils.NoRetry()
	if cfg.External.RetryMaxAttempts > 1 {
		retry = utils.ExponentialRetry(cfg.External.RetryMaxAttempts, cfg.External.InitialBackoff())
	}

	a.images = services.NewImagePipeline(a.store, cfg.Storage.Bucket, cfg.Images, cfg.External.Timeout(), retry)

	dispatcher := services.NewDispatcher(
		services.NewSMTPMailer(cfg.SMTP),
		services.NewTwilioSender(cfg.Twilio),
		cfg.External.Timeout(),
		retry,
	)
	if !dispatcher.SMSEnabled() {
		logger.Info("twilio not configured, SMS reminders disabled")
	}
	a.reminders = services.NewReminderService(config.DB, dispatcher, loc)

	return a, nil
}

func (a *app) initStorage() error {
	sc := a.cfg.Storage
	switch sc.Driver {
	case "s3":
		store, err := storage.NewS3Store(sc.S3Endpoint, sc.S3AccessKey, sc.S3SecretKey, sc.S3UseSSL, sc.Bucket, sc.PublicBaseURL)
		if err != nil {
			return err
		}
		a.store = store
	case "local", "":
		root, err := filepath.Abs(sc.LocalDir)
		if err != nil {
			return fmt.Errorf("invalid storage directory: %w", err)
		}
		a.store = storage.NewLocalStore(root, sc.Bucket, sc.PublicBaseURL)
		a.localRoot = root
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", sc.Driver)
	}
	return nil
}

// initCart uses Redis when REDIS_URL is set and memory otherwise.
func (a *app) initCart() error {
	if a.cfg.Redis.URL == "" {
		a.logger.Warn("REDIS_URL not set, carts are kept in memory")
		a.carts = cart.NewService(cart.NewMemoryStore())
		return nil
	}

	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	a.redis = redis.NewClient(opts)
	ttl := time.Duration(a.cfg.Redis.CartTTL) * time.Hour
	a.carts = cart.NewService(cart.NewRedisStore(a.redis, ttl))
	return nil
}

func (a *app) migrate() error {
	if err := config.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := config.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
