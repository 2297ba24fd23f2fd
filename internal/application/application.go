package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/relay-service/internal/api"
	"github.com/eugenenazirov/relay-service/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg     *config.Config
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application from the resolved configuration. Extra
// router options are applied after the ones derived from cfg.
func New(cfg *config.Config, logger *zap.Logger, extra ...api.RouterOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}

	handler := api.NewHandler(cfg)
	opts := []api.RouterOption{
		api.WithLogging(true),
		api.WithCORS(cfg.Web.EnableCORS),
		api.WithTrustProxy(cfg.Server.TrustProxy),
		api.WithConfigEndpoint(cfg.Development.Debug),
	}
	router := api.NewRouter(handler, logger, append(opts, extra...)...)

	server, err := NewServer(cfg, router)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  server,
	}, nil
}

// NewServer creates an HTTP server listening on server.host:server.port.
func NewServer(cfg *config.Config, handler http.Handler) (*http.Server, error) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       idleTimeout,
	}, nil
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	a.logger.Info("configuration resolved",
		zap.String("node_env", a.cfg.Server.NodeEnv),
		zap.Bool("bedrock", a.cfg.Bedrock.Enabled),
		zap.Bool("ldap", a.cfg.LDAP.Enabled),
		zap.Bool("webhook", a.cfg.Webhook.Enabled),
		zap.Int("overload_minutes", a.cfg.Claude.OverloadHandling.Minutes),
		zap.Float64("cost_multiplier", a.cfg.Billing.CostMultiplier),
		zap.String("log_dir", a.cfg.Logging.Dirname),
		zap.String("log_max_size", a.cfg.Logging.MaxSize),
		zap.Int("log_max_files", a.cfg.Logging.MaxFiles),
	)

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Config returns the record the application was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}
