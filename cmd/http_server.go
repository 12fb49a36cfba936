package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/approval"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-management/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-management/internal/auth"
	bonusPostgres "github.com/frahmantamala/attendance-management/internal/bonus/postgres"
	"github.com/frahmantamala/attendance-management/internal/calendar"
	calendarPostgres "github.com/frahmantamala/attendance-management/internal/calendar/postgres"
	"github.com/frahmantamala/attendance-management/internal/classifier"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/keylock"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/frahmantamala/attendance-management/internal/messaging"
	"github.com/frahmantamala/attendance-management/internal/payroll"
	"github.com/frahmantamala/attendance-management/internal/report"
	"github.com/frahmantamala/attendance-management/internal/router"
	"github.com/frahmantamala/attendance-management/internal/staff"
	staffPostgres "github.com/frahmantamala/attendance-management/internal/staff/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/internal/transport/rest"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that receives chat webhooks and serves the admin API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	WebhookHandler *messaging.WebhookHandler
	AuthHandler    *auth.Handler
	ReportHandler  *report.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.WebhookHandler, deps.AuthHandler, deps.ReportHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Env)
	lg := logger.LoggerWrapper()

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	locker, err := initLocker(config.Locking, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize locker: %w", err)
	}

	loc := config.Payroll.Location()
	bus := events.NewEventBus(lg)

	staffRepo := staffPostgres.NewStaffRepository(gormDB)
	attendanceRepo := attendancePostgres.NewAttendanceRepository(gormDB)
	bonusRepo := bonusPostgres.NewBonusRepository(gormDB)
	holidayRepo := calendarPostgres.NewHolidayRepository(gormDB)

	holidaySource := calendar.NewHTTPSource(config.Holidays.SourceURL, config.Holidays.RequestTimeout, lg)
	calendarService := calendar.NewService(holidayRepo, holidaySource, config.Holidays.RefreshInterval, lg)

	staffService := staff.NewService(staffRepo, lg)
	attendanceService := attendance.NewService(attendanceRepo, calendarService, locker, loc, lg)
	leaveService := leave.NewService(attendanceRepo, calendarService, staffService, locker, bus, lg)
	approvalService := approval.NewService(staffService, attendanceRepo, bonusRepo, locker, bus, lg)
	payrollCalculator := payroll.NewCalculator(staffService, attendanceRepo, bonusRepo, config.Payroll, lg)
	reportService := report.NewService(attendanceRepo, payrollCalculator, lg)

	intentClassifier := classifier.NewClient(classifier.Config{
		APIURL:         config.Classifier.APIURL,
		APIKey:         config.Classifier.APIKey,
		Model:          config.Classifier.Model,
		RequestTimeout: config.Classifier.RequestTimeout,
	}, lg)

	messenger := messaging.NewClient(messaging.Config{
		APIURL:         config.Messaging.APIURL,
		ChannelToken:   config.Messaging.ChannelToken,
		RequestTimeout: config.Messaging.RequestTimeout,
	}, lg)

	messaging.RegisterNotificationHandlers(bus, messenger, lg)

	dispatcher := router.New(staffService, attendanceService, leaveService, approvalService, payrollCalculator, reportService, intentClassifier, lg)

	baseHandler := transport.NewBaseHandler(lg)
	webhookHandler := messaging.NewWebhookHandler(baseHandler, config.Messaging.ChannelSecret, dispatcher, messenger, calendarService, lg)

	authService := auth.NewService(config.Security, lg)
	authHandler := auth.NewHandler(baseHandler, authService)
	reportHandler := report.NewHandler(baseHandler, reportService)

	return &Dependencies{
		Config:         config,
		DB:             db,
		Gorm:           gormDB,
		Router:         chi.NewRouter(),
		Logger:         lg,
		WebhookHandler: webhookHandler,
		AuthHandler:    authHandler,
		ReportHandler:  reportHandler,
	}, nil
}

// initDB opens one connection pool and hands it to both sqlx (health check,
// raw queries) and gorm (repositories). The sqlite driver exists for local
// development.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		gormDB, err := gorm.Open(gormSqlite.Open(cfg.Source), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return sqlx.NewDb(sqlDB, "sqlite"), gormDB, nil
	}

	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over pgx pool: %w", err)
	}

	return dbConn, gormDB, nil
}

func initLocker(cfg internal.LockingConfig, lg *slog.Logger) (keylock.Locker, error) {
	switch cfg.Mode {
	case "", "inprocess":
		return keylock.NewInProcess(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return keylock.NewRedis(client, cfg.LockTTL, lg), nil
	default:
		return nil, fmt.Errorf("unsupported locking mode %q", cfg.Mode)
	}
}
