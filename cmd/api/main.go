package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/campusgeo/attendance-backend-go/internal/config"
	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/campusgeo/attendance-backend-go/internal/fixtures"
	appHTTP "github.com/campusgeo/attendance-backend-go/internal/handler/http"
	"github.com/campusgeo/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/clock"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/cron"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/database"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	pkgRedis "github.com/campusgeo/attendance-backend-go/internal/pkg/redis"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/sse"
	"github.com/campusgeo/attendance-backend-go/internal/repository/cache"
	"github.com/campusgeo/attendance-backend-go/internal/repository/memory"
	"github.com/campusgeo/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/campusgeo/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/campusgeo/attendance-backend-go/internal/service/auth"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := cfg.Attendance.Policy()
	if err != nil {
		return err
	}
	clk := clock.New()
	checks := map[string]appHTTP.HealthCheck{}

	var (
		store        attendance.AttendanceStore
		subjectRepo  subject.SubjectRepository
		locationRepo location.LocationRepository
	)

	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		slog.Warn("Using in-memory store; data is lost on restart")
		subjectRepo = memory.NewSubjectRepository()
		locationRepo = memory.NewLocationRepository()
		store = memory.NewAttendanceStore(subjectRepo)

	default:
		dsn := cfg.DatabaseURL()
		if err := database.Migrate(dsn); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
			MaxConns:    cfg.Database.MaxConns,
			PingTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		subjectRepo = postgresql.NewSubjectRepository(db)
		locationRepo = postgresql.NewLocationRepository(db)
		store = postgresql.NewAttendanceStore(db, cfg.Attendance.LockTimeout)
		checks["database"] = db.Ping
	}

	if cfg.Attendance.SeedDefaultLocations {
		if _, err := fixtures.SeedLocations(ctx, locationRepo, fixtures.DefaultLocations(cfg.Attendance.DefaultRadius)); err != nil {
			return err
		}
	}

	var locationCache *cache.LocationCache
	if cfg.Redis.Addr != "" {
		rdb, err := pkgRedis.NewRedisClient(ctx, pkgRedis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		locationCache = cache.NewLocationCache(locationRepo, rdb, cfg.Redis.LocationTTL)
		locationRepo = locationCache
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(
		store,
		subjectRepo,
		locationRepo,
		clk,
		sse.NewAttendancePublisher(hub),
		attendanceService.Options{
			Policy:           policy,
			LockTimeout:      cfg.Attendance.LockTimeout,
			GeofenceEnforced: cfg.Attendance.GeofenceEnforced,
		},
	)
	authSvc := serviceAuth.NewAuthService(subjectRepo, JWTService)

	var toggleLimiter *middleware.KeyedRateLimiter
	if cfg.RateLimit.TogglesPerSecond > 0 {
		toggleLimiter = middleware.NewKeyedRateLimiter(rate.Limit(cfg.RateLimit.TogglesPerSecond), cfg.RateLimit.Burst)
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			ToggleLimiter:  toggleLimiter,
		},
		JWTService,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(authSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Faculty:    appHTTP.NewFacultyHandler(attendanceSvc, authSvc, JWTService, hub),
			Health:     appHTTP.NewHealthHandler(checks),
		},
	)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(ctx)
		var refresher cron.LocationRefresher
		if locationCache != nil {
			refresher = locationCache
		}
		cron.NewAttendanceJobs(store, refresher, policy, clk, cfg.Cron.LocationRefresh, cfg.Cron.OpenSessionsInterval).
			RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Database.Driver, "geofence_enforced", cfg.Attendance.GeofenceEnforced)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
