package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"blogdesk/docs"
	"blogdesk/internal/auth"
	"blogdesk/internal/cache"
	"blogdesk/internal/config"
	"blogdesk/internal/db"
	"blogdesk/internal/events"
	"blogdesk/internal/handler"
	"blogdesk/internal/logger"
	"blogdesk/internal/repository"
	"blogdesk/internal/router"
	"blogdesk/internal/service"
)

// stores bundles the repositories of the selected backend.
type stores struct {
	users  repository.UserRepository
	blogs  repository.BlogRepository
	images repository.ImageRepository
	ping   handler.PingFunc
	close  func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, lg *log.Logger) stores {
	if cfg.StoreDriver == config.DriverMongo {
		mongo := db.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
		mongo.OnConnect(repository.CreateMongoIndexes)
		// Connecting is lazy; a store that is down at boot is retried by later requests.
		if err := mongo.Ping(ctx); err != nil {
			lg.Warnj(log.JSON{"action": "mongo_unavailable", "error": err.Error()})
		}
		return stores{
			users:  repository.NewMongoUserRepository(mongo),
			blogs:  repository.NewMongoBlogRepository(mongo),
			images: repository.NewMongoImageRepository(mongo),
			ping:   mongo.Ping,
			close:  mongo.Close,
		}
	}

	gormDB, err := db.NewSQL(cfg.StoreDriver, cfg.SQLDSN)
	if err != nil {
		lg.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		lg.Fatalf("database migrate: %v", err)
	}
	return stores{
		users:  repository.NewUserRepository(gormDB),
		blogs:  repository.NewBlogRepository(gormDB),
		images: repository.NewImageRepository(gormDB),
		ping:   func(ctx context.Context) error { return db.PingSQL(ctx, gormDB) },
		close: func(context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func openEvents(cfg *config.Config, lg *log.Logger) (events.Publisher, func()) {
	if cfg.NATSURL == "" {
		return events.Noop{}, func() {}
	}
	publisher, err := events.NewNATS(cfg.NATSURL, lg)
	if err != nil {
		lg.Warnj(log.JSON{"action": "nats_unavailable", "error": err.Error()})
		return events.Noop{}, func() {}
	}
	return publisher, func() { _ = publisher.Close() }
}

// @title Blogdesk API
// @version 1.0
// @description Blogging platform API with public reading, JWT sessions and an admin back-office for blogs, images and user roles.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	lg := logger.New("blogdesk", cfg.LogLevel)

	if cfg.SessionSecret == "change-me" {
		lg.Warnj(log.JSON{"action": "insecure_session_secret", "message": "SESSION_SECRET is the default value"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStores(ctx, cfg, lg)
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	publisher, closeEvents := openEvents(cfg, lg)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SessionSecret, cfg.SessionTTL)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(st.users, hasher, jwtService, publisher, lg)
	blogService := service.NewBlogService(st.blogs, cacheClient, cfg.CacheTTL, publisher, lg)
	imageService := service.NewImageService(st.images, st.users, publisher, lg)
	userService := service.NewUserService(st.users, publisher, lg)
	statsService := service.NewStatsService(st.blogs, st.users, st.images)

	e := echo.New()
	e.HideBanner = true
	e.Logger = lg

	router.Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(authService, handler.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}),
		handler.NewBlogHandler(blogService),
		handler.NewImageHandler(imageService),
		handler.NewUserHandler(userService),
		handler.NewStatsHandler(statsService),
		handler.NewHealthHandler(st.ping),
	)

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
		if strings.HasPrefix(cfg.SwaggerHost, "https://") {
			docs.SwaggerInfo.Schemes = []string{"https"}
		}
	}
	lg.Infoj(log.JSON{"action": "swagger", "url": "http://" + docs.SwaggerInfo.Host + "/swagger/index.html"})

	go func() {
		addr := ":" + cfg.ServerPort
		lg.Infoj(log.JSON{"action": "server_start", "addr": addr, "store": cfg.StoreDriver})
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			lg.Errorj(log.JSON{"action": "server_start_failed", "error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	lg.Infoj(log.JSON{"action": "server_shutdown"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Errorj(log.JSON{"action": "server_shutdown_failed", "error": err.Error()})
	}
	closeEvents()
	_ = cacheClient.Close()
	if err := st.close(shutdownCtx); err != nil {
		lg.Warnj(log.JSON{"action": "store_close_failed", "error": err.Error()})
	}
}
