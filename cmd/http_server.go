package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/pass-management/api"
	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/auth"
	authRepo "github.com/frahmantamala/pass-management/internal/auth/postgres"
	"github.com/frahmantamala/pass-management/internal/core/events"
	"github.com/frahmantamala/pass-management/internal/pass"
	passRepo "github.com/frahmantamala/pass-management/internal/pass/postgres"
	"github.com/frahmantamala/pass-management/internal/transport/middleware"
	"github.com/frahmantamala/pass-management/internal/transport/rest"
	"github.com/frahmantamala/pass-management/internal/user"
	userRepo "github.com/frahmantamala/pass-management/internal/user/postgres"
	"github.com/frahmantamala/pass-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies are the process-wide resources the services are built from.
// DB and Gorm share one connection pool.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Logger *slog.Logger
}

type Services struct {
	Auth    *auth.Service
	User    *user.Service
	Pass    *pass.Service
	Checker *auth.RoleChecker
	Events  *events.EventBus
}

func startHTTPServer() {
	ctx := context.Background()

	deps, err := initializeDependencies(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router, err := BuildRouter(ctx, deps)
	if err != nil {
		deps.Logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

// NewServices wires repositories, the event bus and the domain services.
// One-shot commands pass events.Sync so audit entries are written before the
// process exits.
func NewServices(deps *Dependencies, delivery events.Delivery) *Services {
	cfg := deps.Config

	bus := events.NewEventBus(deps.Logger, delivery)
	events.RegisterAuditLog(bus, deps.Logger)

	checker := auth.NewPermissionChecker()
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.TokenDuration)

	return &Services{
		Auth: auth.NewService(authRepo.NewRepository(deps.Gorm), tokens, cfg.Security.BCryptCost, deps.Logger),
		User: user.NewService(userRepo.NewRepository(deps.DB), deps.Logger),
		Pass: pass.NewService(passRepo.NewPassRepository(deps.Gorm), checker, deps.Logger,
			pass.WithPublisher(bus),
			pass.WithRejectionReasonMaxLength(cfg.Pass.RejectionReasonMaxLength)),
		Checker: checker,
		Events:  bus,
	}
}

// BuildRouter assembles the HTTP handler tree.
func BuildRouter(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	svcs := NewServices(deps, events.Async)

	validator, err := middleware.NewRequestValidator(ctx, api.OpenAPISpec)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:   auth.NewHandler(svcs.Auth),
		User:   user.NewHandler(svcs.User),
		Pass:   pass.NewHandler(svcs.Pass),
		RBAC:   auth.NewRBACAuthorization(svcs.Checker, deps.Logger),
		Health: rest.NewHealthHandler(deps.DB),
	}, rest.Options{
		Logger:         deps.Logger,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		MaxBodyBytes:   deps.Config.Server.MaxBodyBytes,
		Validator:      validator,
		Spec:           api.OpenAPISpec,
	})
	return router, nil
}

func initializeDependencies(path string) (*Dependencies, error) {
	config, err := loadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Logger: lg,
	}, nil
}

// initDB opens the pgx-backed connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initGorm layers gorm over the existing pool instead of opening a second one.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
