package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/mabarin/mabarin-web/internal/booking"
	"github.com/mabarin/mabarin-web/internal/config"
	"github.com/mabarin/mabarin-web/internal/database"
	"github.com/mabarin/mabarin-web/internal/explore"
	"github.com/mabarin/mabarin-web/internal/handler"
	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/middleware"
	"github.com/mabarin/mabarin-web/internal/obs"
	"github.com/mabarin/mabarin-web/internal/queue"
	"github.com/mabarin/mabarin-web/internal/repository"
	"github.com/mabarin/mabarin-web/internal/router"
	"github.com/mabarin/mabarin-web/internal/session"
	"github.com/mabarin/mabarin-web/internal/web"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	lg := newLogger(cfg.LogLevel)

	up, err := config.LoadUpstream()
	if err != nil {
		lg.Fatalf("upstream config: %v", err)
	}
	keys, err := config.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		lg.Fatalf("session keys: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, config.LoadTracingConfig(cfg.Env))
	if err != nil {
		lg.Fatalf("tracing: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warn("redis unavailable: cache and rate limit disabled, dialogs kept in memory")
	}

	// Audit trail: MySQL when configured, a log file otherwise.
	auditCfg := config.LoadAuditConfig()
	var (
		sink  queue.Sink = queue.NewFileSink(auditCfg.LogPath)
		audit handler.AuditReader
	)
	if auditCfg.Enabled() {
		db, err := database.OpenMigrated(auditCfg.User, auditCfg.Pass, auditCfg.Host, auditCfg.Port, auditCfg.Name)
		if err != nil {
			lg.Errorf("audit db: %v; falling back to %s", err, auditCfg.LogPath)
		} else {
			defer db.Close()
			repo := repository.NewAuditRepo(db)
			sink, audit = repo, repo
		}
	}

	broker := config.BrokerURL()
	events := queue.NewPublisher(broker, lg)
	go func() {
		if err := queue.NewConsumer(broker, sink, lg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Errorf("audit consumer: %v", err)
		}
	}()

	api := mabarin.NewClient(up.APIBase(), up.Timeout)
	sessions := session.NewManager(keys, cfg.SessionTTL(), cfg.SecureCookies())

	exploreCfg := config.LoadExploreConfig()
	live := explore.NewRegistry(explore.LiveDeps{
		Directory:    api,
		Activities:   api,
		Strategy:     explore.ParseStrategy(exploreCfg.Strategy),
		Debounce:     exploreCfg.Debounce,
		FetchTimeout: up.Timeout,
		Location:     cfg.Location,
		Log:          lg,
	}, exploreCfg.IdleTTL, exploreCfg.MaxSessions)
	go live.Run(ctx)

	dialogs := booking.NewService(api, dialogStore(rdb, config.LoadBookingConfig()), events, lg)

	renderer, err := web.NewRenderer()
	if err != nil {
		lg.Fatalf("templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = lg
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.Secure())
	e.Use(requestLogger(lg))
	e.Use(obs.Middleware())
	e.Use(middleware.LoadSession(sessions))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	base := handler.Base{API: api, Sessions: sessions, Log: lg}
	activity := handler.NewActivityHandler(base, dialogs, cfg.Location)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(base))
	router.RegisterPublic(e, handler.NewExploreHandler(base, live, exploreCfg, cfg.Location), activity)
	router.RegisterAccount(e, handler.NewProfileHandler(base), handler.NewTransactionHandler(base, events, audit), sessions)
	router.RegisterAPI(e, handler.NewLiveHandler(live, exploreCfg), handler.NewDirectoryHandler(api), activity,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		lg.Infof("listening on %s (env=%s, upstream=%s)", addr, cfg.Env, up.APIBase())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal(err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("http shutdown: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		lg.Errorf("tracer shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

func newLogger(level string) *log.Logger {
	lg := log.New("mabarin-web")
	lg.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`)
	switch strings.ToLower(level) {
	case "debug":
		lg.SetLevel(log.DEBUG)
	case "warn":
		lg.SetLevel(log.WARN)
	case "error":
		lg.SetLevel(log.ERROR)
	default:
		lg.SetLevel(log.INFO)
	}
	return lg
}

func requestLogger(lg *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			j := log.JSON{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				j["error"] = v.Error.Error()
			}
			lg.Infoj(j)
			return nil
		},
	})
}

// dialogStore keeps booking dialogs in Redis so they survive a restart and
// are shared between instances.
func dialogStore(rdb *redis.Client, cfg config.BookingConfig) booking.Store {
	if rdb == nil {
		return booking.NewMemoryStore(cfg.DialogTTL)
	}
	return booking.NewRedisStore(rdb, cfg.Prefix, cfg.DialogTTL)
}
