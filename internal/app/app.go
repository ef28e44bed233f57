// Package app wires the campaign engine's components together and owns the
// HTTP server lifecycle.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Notifuse/notifuse/config"
	"github.com/Notifuse/notifuse/internal/database"
	"github.com/Notifuse/notifuse/internal/domain"
	httpHandler "github.com/Notifuse/notifuse/internal/http"
	"github.com/Notifuse/notifuse/internal/provider"
	"github.com/Notifuse/notifuse/internal/repository"
	"github.com/Notifuse/notifuse/internal/service/campaign"
	"github.com/Notifuse/notifuse/internal/service/reconciler"
	"github.com/Notifuse/notifuse/internal/service/scheduler"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/Notifuse/notifuse/pkg/ratelimiter"
)

// AppInterface defines the application lifecycle, exercised directly by
// cmd/api and swappable in tests.
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetHandler() http.Handler
	GetDB() *sql.DB

	GetUserRepository() domain.UserRepository
	GetTemplateRepository() domain.TemplateRepository
	GetSegmentRepository() domain.SegmentRepository
	GetCampaignRepository() domain.CampaignRepository
	GetMessageRepository() domain.MessageRepository
	GetInboundEventRepository() domain.InboundEventRepository
	GetDeliveryReceiptRepository() domain.DeliveryReceiptRepository

	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	InitDB() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application's dependencies and configuration.
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	// Repositories
	userRepo      domain.UserRepository
	templateRepo  domain.TemplateRepository
	segmentRepo   domain.SegmentRepository
	evaluator     domain.SegmentEvaluator
	campaignRepo  domain.CampaignRepository
	messageRepo   domain.MessageRepository
	inboundRepo   domain.InboundEventRepository
	receiptRepo   domain.DeliveryReceiptRepository
	webhookCommit domain.WebhookCommitter

	// Services
	adapter     provider.Adapter
	rateLimiter ratelimiter.Limiter
	redisClient *redis.Client
	factory     *campaign.Factory
	scheduler   *scheduler.Scheduler
	reconciler  *reconciler.Reconciler

	// HTTP
	handler http.Handler
	server  *http.Server

	serverMu      sync.RWMutex
	serverStarted chan struct{}

	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64
	requestWg       sync.WaitGroup
	shutdownTimeout time.Duration
}

// AppOption configures an App at construction time.
type AppOption func(*App)

// WithMockDB injects a pre-opened database connection, for tests.
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) AppOption {
	return func(a *App) {
		a.logger = log
	}
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	a := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// InitDB opens the shared database connection and applies the schema.
func (a *App) InitDB() error {
	if a.db != nil {
		return nil
	}

	db, err := database.Connect(&a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.db = db
	return nil
}

// InitRepositories wires every Postgres-backed repository.
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	a.userRepo = repository.NewUserRepository(a.db)
	a.templateRepo = repository.NewTemplateRepository(a.db)
	a.segmentRepo = repository.NewSegmentRepository(a.db)
	a.evaluator = repository.NewSegmentEvaluator(a.db)
	a.campaignRepo = repository.NewCampaignRepository(a.db)
	a.messageRepo = repository.NewMessageRepository(a.db)
	a.inboundRepo = repository.NewInboundEventRepository(a.db)
	a.receiptRepo = repository.NewDeliveryReceiptRepository(a.db)
	a.webhookCommit = repository.NewWebhookCommitter(a.db)

	return nil
}

// InitServices wires the provider adapter, rate limiter, campaign
// orchestrator factory, scheduler, and reconciler.
func (a *App) InitServices() error {
	a.adapter = provider.NewTwilioAdapter(provider.TwilioConfig{
		AccountSID:     a.config.Provider.AccountSID,
		AuthToken:      a.config.Provider.AuthToken,
		FromNumber:     a.config.Provider.FromNumber,
		RequestTimeout: a.config.Provider.RequestTimeout,
		BaseURL:        a.config.Provider.BaseURL,
	}, a.logger)

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})
	a.rateLimiter = ratelimiter.NewDistributedLimiter(a.redisClient)

	campaignConfig := &campaign.Config{
		MaxProcessTime:          a.config.Campaign.MaxProcessTime,
		BatchSize:               a.config.Campaign.BatchSize,
		ProgressLogInterval:     a.config.Campaign.ProgressLogInterval,
		EnableCircuitBreaker:    a.config.Campaign.EnableCircuitBreaker,
		CircuitBreakerThreshold: a.config.Campaign.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  a.config.Campaign.CircuitBreakerCooldown,
		DefaultTimezone:         a.config.Campaign.DefaultTimezone,
	}
	a.factory = campaign.NewFactory(
		a.campaignRepo,
		a.segmentRepo,
		a.evaluator,
		a.templateRepo,
		a.messageRepo,
		a.adapter,
		a.rateLimiter,
		a.logger,
		campaignConfig,
	)

	a.scheduler = scheduler.New(
		a.campaignRepo,
		a.factory.CreateOrchestrator(),
		a.logger,
		&scheduler.Config{
			PollInterval:  a.config.Scheduler.PollInterval,
			BatchSize:     a.config.Scheduler.BatchSize,
			MaxConcurrent: a.config.Scheduler.MaxConcurrent,
		},
	)

	a.reconciler = reconciler.New(
		a.messageRepo,
		a.receiptRepo,
		a.logger,
		&reconciler.Config{
			PollInterval: a.config.Reconciler.PollInterval,
			BatchSize:    a.config.Reconciler.BatchSize,
		},
	)

	return nil
}

// InitHandlers assembles the chi router: webhook ingestion, the manual
// Trigger API, and the 501 stub covering the rest of the CRUD surface.
func (a *App) InitHandlers() error {
	webhookHandler := httpHandler.NewWebhookHandler(
		a.webhookCommit,
		a.userRepo,
		a.receiptRepo,
		a.reconciler,
		a.logger,
	)
	triggerHandler := httpHandler.NewTriggerHandler(
		a.campaignRepo,
		a.factory.CreateOrchestrator(),
		a.logger,
	)
	adminStub := httpHandler.NewAdminStub()

	a.handler = a.gracefulShutdownMiddleware(httpHandler.NewRouter(webhookHandler, triggerHandler, adminStub))

	return nil
}

// Initialize runs every initialization step in order.
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("starting campaign engine")

	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitRepositories(); err != nil {
		return err
	}
	if err := a.InitServices(); err != nil {
		return err
	}
	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("application successfully initialized")
	return nil
}

// Start starts the HTTP server and the scheduler/reconciler background
// loops. It blocks until the server stops.
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).Info("server starting")

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.handler,
	}
	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	a.scheduler.Start(a.shutdownCtx)
	a.reconciler.Start(a.shutdownCtx)

	return a.server.ListenAndServe()
}

// Shutdown gracefully drains active requests, stops the background loops,
// and closes the database connection.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("starting graceful shutdown")
	a.shutdownCancel()

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.reconciler != nil {
		a.reconciler.Stop()
	}

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		return a.cleanupResources()
	}

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("all requests completed")
	case <-shutdownCtx.Done():
		activeCount := atomic.LoadInt64(&a.activeRequests)
		a.logger.WithField("active_requests", activeCount).Warn("shutdown timeout reached, forcing shutdown")
	}

	shutdownErr := server.Shutdown(shutdownCtx)

	if cleanupErr := a.cleanupResources(); cleanupErr != nil && shutdownErr == nil {
		shutdownErr = cleanupErr
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("graceful shutdown completed with errors")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	return shutdownErr
}

func (a *App) cleanupResources() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("error closing redis client")
		}
	}

	if a.db != nil {
		a.logger.Info("closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("error closing database connection")
			return err
		}
	}

	return nil
}

// IsServerCreated reports whether the HTTP server has been constructed.
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart blocks until the server is created or ctx expires.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

func (a *App) GetConfig() *config.Config { return a.config }
func (a *App) GetLogger() logger.Logger  { return a.logger }
func (a *App) GetHandler() http.Handler  { return a.handler }
func (a *App) GetDB() *sql.DB            { return a.db }

func (a *App) GetUserRepository() domain.UserRepository                     { return a.userRepo }
func (a *App) GetTemplateRepository() domain.TemplateRepository             { return a.templateRepo }
func (a *App) GetSegmentRepository() domain.SegmentRepository               { return a.segmentRepo }
func (a *App) GetCampaignRepository() domain.CampaignRepository             { return a.campaignRepo }
func (a *App) GetMessageRepository() domain.MessageRepository               { return a.messageRepo }
func (a *App) GetInboundEventRepository() domain.InboundEventRepository     { return a.inboundRepo }
func (a *App) GetDeliveryReceiptRepository() domain.DeliveryReceiptRepository {
	return a.receiptRepo
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

// GetActiveRequestCount returns the current number of in-flight requests.
func (a *App) GetActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// SetShutdownTimeout overrides the default graceful shutdown timeout.
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

// GetShutdownContext returns the context canceled when shutdown begins.
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware rejects new requests with 503 once shutdown has
// begun and tracks in-flight requests so Shutdown can wait for them to drain.
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

var _ AppInterface = (*App)(nil)
