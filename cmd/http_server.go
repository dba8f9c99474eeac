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
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/auth"
	authpg "github.com/tenangdev/leave-management/internal/auth/postgres"
	"github.com/tenangdev/leave-management/internal/authorization"
	"github.com/tenangdev/leave-management/internal/core/events"
	"github.com/tenangdev/leave-management/internal/delegation"
	delegationpg "github.com/tenangdev/leave-management/internal/delegation/postgres"
	employeepg "github.com/tenangdev/leave-management/internal/employee/postgres"
	"github.com/tenangdev/leave-management/internal/hierarchy"
	hierarchypg "github.com/tenangdev/leave-management/internal/hierarchy/postgres"
	"github.com/tenangdev/leave-management/internal/leave"
	leavepg "github.com/tenangdev/leave-management/internal/leave/postgres"
	"github.com/tenangdev/leave-management/internal/notification"
	"github.com/tenangdev/leave-management/internal/permission"
	permissionpg "github.com/tenangdev/leave-management/internal/permission/postgres"
	"github.com/tenangdev/leave-management/internal/transport/rest"
	"github.com/tenangdev/leave-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config            *internal.Config
	DB                *sqlx.DB
	Router            *chi.Mux
	Logger            *slog.Logger
	AuthHandler       *auth.Handler
	LeaveHandler      *leave.Handler
	DelegationHandler *delegation.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config.Server.AllowedOrigins,
		deps.AuthHandler, deps.LeaveHandler, deps.DelegationHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
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

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM shares the pgx connection pool opened by sqlx.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	employeeRepo := employeepg.NewEmployeeRepository(gormDB)
	permissionStore := permissionpg.NewPermissionStore(gormDB)
	delegationRepo := delegationpg.NewDelegationRepository(gormDB)
	leaveRepo := leavepg.NewLeaveRepository(gormDB)
	edgeStore := hierarchypg.NewEdgeStore(db)

	scopeResolver := permission.NewResolver(permissionStore, lg)
	hierarchyResolver := hierarchy.NewResolver(edgeStore, lg)

	eventBus := events.NewEventBus(lg)
	notification.NewListener(lg).RegisterEventHandlers(eventBus)

	delegationService := delegation.NewService(delegationRepo, scopeResolver, employeeRepo, eventBus, lg)
	authzResolver := authorization.NewResolver(scopeResolver, hierarchyResolver, delegationService, employeeRepo, lg)
	leaveService := leave.NewService(leaveRepo, authzResolver, eventBus, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)

	return &Dependencies{
		Config:            config,
		Logger:            lg,
		DB:                db,
		Router:            chi.NewRouter(),
		AuthHandler:       auth.NewHandler(authService),
		LeaveHandler:      leave.NewHandler(leaveService),
		DelegationHandler: delegation.NewHandler(delegationService),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
