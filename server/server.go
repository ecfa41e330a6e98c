package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/config"
	"github.com/Digital-Creators-Team/slot-machine-core/engine"
	"github.com/Digital-Creators-Team/slot-machine-core/middleware"
	"github.com/Digital-Creators-Team/slot-machine-core/store"
)

// feedBuffer is the per-subscriber event buffer for the stream feed
const feedBuffer = 64

// StorageInspector reports the persisted snapshot for the settings panel.
// Only the file store implements it; other backends leave it nil.
type StorageInspector interface {
	Status() store.Status
}

// App is the HTTP facade over the game engine
type App struct {
	engine  *gin.Engine
	config  *config.Config
	logger  zerolog.Logger
	game    *engine.Engine
	spinner *engine.AutoSpinner

	feed          *Feed
	ticker        *BonusTicker
	gameHandler   *GameHandler
	streamHandler *StreamHandler
	storage       StorageInspector

	httpServer *http.Server
	onShutdown []func()
}

// Options holds server construction options
type Options struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Game    *engine.Engine
	Spinner *engine.AutoSpinner
	// Storage is optional; nil hides the storage status endpoint data
	Storage StorageInspector
}

// New creates the application and wires the engine event feed
func New(opts Options) *App {
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	spinner := opts.Spinner
	if spinner == nil {
		spinner = engine.NewAutoSpinner(opts.Game, opts.Logger)
	}

	feed := NewFeed(feedBuffer, opts.Logger)
	opts.Game.Subscribe(feed.Listener())

	app := &App{
		engine:        gin.New(),
		config:        opts.Config,
		logger:        opts.Logger,
		game:          opts.Game,
		spinner:       spinner,
		feed:          feed,
		ticker:        NewBonusTicker(opts.Game, feed, opts.Logger),
		gameHandler:   NewGameHandler(opts.Game, spinner, opts.Logger),
		streamHandler: NewStreamHandler(feed, opts.Logger),
		storage:       opts.Storage,
	}
	return app
}

// Feed returns the event feed, for attaching extra listeners
func (a *App) Feed() *Feed {
	return a.feed
}

// UseCommonMiddlewares adds recovery, tracing, logging and CORS
func (a *App) UseCommonMiddlewares() {
	a.engine.Use(middleware.Recovery(a.logger))
	a.engine.Use(middleware.TraceID())
	a.engine.Use(middleware.Logging(a.logger))
	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// UseMiddleware adds a custom middleware
func (a *App) UseMiddleware(m gin.HandlerFunc) {
	a.engine.Use(m)
}

// RegisterRoutes registers the API surface:
//
//	GET  /health
//	GET  /api/v1/state
//	GET  /api/v1/stats
//	GET  /api/v1/symbols
//	GET  /api/v1/achievements
//	POST /api/v1/spin            full spin
//	POST /api/v1/spin/begin      debit and draw
//	POST /api/v1/spin/settle     resolve in-flight spin
//	POST /api/v1/bet             set wager
//	POST /api/v1/bet/increase
//	POST /api/v1/bet/decrease
//	POST /api/v1/bet/quick       clamped wager
//	POST /api/v1/transfer
//	GET  /api/v1/bonus
//	POST /api/v1/bonus/claim
//	GET  /api/v1/autospin
//	POST /api/v1/autospin/start
//	POST /api/v1/autospin/stop
//	GET  /api/v1/backup          download backup document
//	POST /api/v1/backup          restore from backup document
//	POST /api/v1/reset
//	GET  /api/v1/storage
//	GET  /api/v1/events          SSE stream
//	GET  /api/v1/events/ws       WebSocket stream
func (a *App) RegisterRoutes() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)

	api := a.engine.Group("/api/v1")
	{
		api.GET("/state", a.gameHandler.GetState)
		api.GET("/stats", a.gameHandler.GetStats)
		api.GET("/symbols", a.gameHandler.GetSymbols)
		api.GET("/achievements", a.gameHandler.GetAchievements)

		api.POST("/spin", a.gameHandler.Spin)
		api.POST("/spin/begin", a.gameHandler.BeginSpin)
		api.POST("/spin/settle", a.gameHandler.SettleSpin)

		api.POST("/bet", a.gameHandler.SetBet)
		api.POST("/bet/increase", a.gameHandler.IncreaseBet)
		api.POST("/bet/decrease", a.gameHandler.DecreaseBet)
		api.POST("/bet/quick", a.gameHandler.QuickBet)

		api.POST("/transfer", a.gameHandler.Transfer)

		api.GET("/bonus", a.gameHandler.GetBonuses)
		api.POST("/bonus/claim", a.gameHandler.ClaimBonus)

		api.GET("/autospin", a.gameHandler.GetAutoSpin)
		api.POST("/autospin/start", a.gameHandler.StartAutoSpin)
		api.POST("/autospin/stop", a.gameHandler.StopAutoSpin)

		api.GET("/backup", a.gameHandler.ExportBackup)
		api.POST("/backup", a.gameHandler.ImportBackup)

		api.POST("/reset", a.gameHandler.Reset)

		api.GET("/storage", a.storageStatus)

		api.GET("/events", a.streamHandler.StreamSSE)
		api.GET("/events/ws", a.streamHandler.StreamWebSocket)
	}

	a.logger.Info().Msg("API routes registered under /api/v1")
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now(),
		"environment": a.config.Environment,
		"phase":       a.game.Phase(),
	})
}

func (a *App) storageStatus(c *gin.Context) {
	if a.storage == nil {
		OK(c, gin.H{"backend": a.config.Storage.Backend})
		return
	}
	OK(c, gin.H{
		"backend": a.config.Storage.Backend,
		"status":  a.storage.Status(),
	})
}

// Router returns the gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the HTTP server and the bonus readiness tick, then blocks
// until an interrupt arrives
func (a *App) Run() error {
	if err := a.start(); err != nil {
		return err
	}
	return a.waitForShutdown()
}

// RunWithContext starts the HTTP server and shuts down when ctx is done
func (a *App) RunWithContext(ctx context.Context) error {
	errChan := make(chan error, 1)
	if err := a.startWith(errChan); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) start() error {
	return a.startWith(nil)
}

func (a *App) startWith(errChan chan error) error {
	if err := a.ticker.Start(); err != nil {
		return fmt.Errorf("failed to start bonus ticker: %w", err)
	}

	addr := fmt.Sprintf(":%d", a.config.Server.Port)
	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if errChan != nil {
				errChan <- err
				return
			}
			a.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	return nil
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.spinner.Stop()
	a.ticker.Stop()

	for _, fn := range a.onShutdown {
		fn()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}
