// Package server wires the Sloth.app backend: PostgreSQL, the session
// store, object storage and the completion clients, then runs the JSON API
// and the gRPC health endpoint until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/slothapp/internal/cryptox"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/chatproxy"
	"github.com/dmitrijs2005/slothapp/internal/server/completion"
	"github.com/dmitrijs2005/slothapp/internal/server/config"
	"github.com/dmitrijs2005/slothapp/internal/server/httpapi"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slothapp/internal/server/services"
	"github.com/dmitrijs2005/slothapp/internal/server/session"
	"github.com/dmitrijs2005/slothapp/internal/server/storage"
	"github.com/dmitrijs2005/slothapp/internal/server/store"

	gs "github.com/dmitrijs2005/slothapp/internal/server/grpc"
)

type sessionBackend interface {
	session.Store
	session.NonceStore
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions sessionBackend
	http     *httpapi.Server
	health   *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	cipher, err := cryptox.NewSecretBox(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	db, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if c.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, c.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.sessions = rs
	} else {
		logger.Warn(ctx, "redis is not configured, sessions are kept in memory")
		app.sessions = session.NewMemoryStore()
	}

	objects, err := storage.NewS3Store(ctx, storage.S3Config{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("object storage: %w", err)
	}

	clients, err := completion.NewRegistry(c.CompletionCacheSize, func(apiKey string) completion.Client {
		return completion.NewHTTPClient(c.ChatAPIURL, apiKey, nil)
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	authSvc := services.NewAuthService(db, rm, app.sessions, app.sessions, services.AuthConfig{
		SessionSecret:   []byte(c.SessionSecret),
		SessionValidity: c.SessionValidity,
		NonceValidity:   c.NonceValidity,
	}, logger)
	keySvc := services.NewAPIKeyService(db, rm, cipher, logger)
	projectSvc := services.NewProjectService(db, rm, logger)

	deps := httpapi.Deps{
		Auth:        authSvc,
		APIKeys:     keySvc,
		Projects:    projectSvc,
		Invitations: services.NewInvitationService(db, rm, c.InvitationValidity, logger),
		WorkItems:   services.NewWorkItemService(db, rm, projectSvc, logger),
		Documents:   services.NewDocumentService(db, rm, projectSvc, objects, c.DocumentURLValidity, logger),
		AI:          services.NewAIService(db, rm, projectSvc, keySvc, clients, c.ChatModel, logger),
	}
	if c.ChatAPIKey != "" {
		deps.ChatProxy = chatproxy.New(c.ChatAPIURL, c.ChatAPIKey, c.ChatModel, nil, logger)
	}

	app.http = httpapi.NewServer(c.HTTPAddr, httpapi.NewRouter(deps, c.CORSOrigin, logger), logger)
	app.health = gs.NewHealthServer(c.GRPCAddr, logger, db, 0)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// start runs r and cancels the whole app if it fails.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc", app.config.GRPCAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.http)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", app.health)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database pool and the session store connection.
func (app *App) Close() {
	if c, ok := app.sessions.(io.Closer); ok {
		c.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}
