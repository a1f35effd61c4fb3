package app

import (
	"net/http"
	"time"

	"autotelex-sync/internal/attachments"
	"autotelex-sync/internal/config"
	"autotelex-sync/internal/database"
	"autotelex-sync/internal/health"
	"autotelex-sync/internal/listings"
	"autotelex-sync/internal/manage"
	"autotelex-sync/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all middleware and route registration.
// Dependencies are constructed here once and handed to the handlers; there is
// no ambient plugin singleton.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Redis is optional; without it the attachment URL cache is a no-op and
	// every lookup hits the database index.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	if db != nil {
		resolver := &attachments.Resolver{
			DB:        db,
			Cache:     &attachments.URLCache{Rdb: rdb},
			Client:    &http.Client{Timeout: 30 * time.Second},
			UploadDir: cfg.UploadDir,
		}
		syncService := &listings.Service{
			DB:             db,
			Resolver:       resolver,
			SiteURL:        cfg.SiteURL,
			RemoveOnDelete: cfg.RemoveListingsOnDelete,
		}
		manageHandlers := &manage.Handlers{Service: syncService}
		app.Post("/autotelex-automotive/v1/manage",
			middleware.BasicAuth(cfg.FeedUsername, cfg.FeedPassword),
			manageHandlers.ManageStock)
	}

	return app, db, rdb, nil
}
