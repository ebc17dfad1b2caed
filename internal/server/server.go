package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/internal/metrics"
	"github.com/gravitas-games/minesweeper/internal/minefield"
)

// Server represents the game server
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	validator *JWTValidator
	redis     *redis.Client

	// newPlacer picks the mine placer for each new session
	newPlacer func(config.GameConfig) minefield.Placer

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	logger.Info("Initializing server")

	ctx, cancel := context.WithCancel(context.Background())
	registry := prometheus.NewRegistry()

	srv := &Server{
		config:      cfg,
		logger:      logger,
		registry:    registry,
		metrics:     metrics.New(registry),
		newPlacer:   NewPlacer,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to configured origins once the web client has a fixed host
				return true
			},
		},
	}

	if cfg.Auth.Enabled {
		if cfg.Redis.Address != "" {
			srv.redis = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := srv.redis.Ping(ctx).Err(); err != nil {
				cancel()
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			logger.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))
		}

		validator, err := NewJWTValidator(cfg, srv.redis, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
		}
		srv.validator = validator
	}

	logger.Info("Server initialized successfully")
	return srv, nil
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting WebSocket server",
		zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
		zap.String("health", fmt.Sprintf("http://%s/health", addr)))

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server")

	// Cancel context to stop write pumps
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
	}

	// Closing the socket unblocks each read pump, which then cleans up
	s.connMu.RLock()
	for conn := range s.connections {
		conn.ws.Close()
	}
	s.connMu.RUnlock()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("Redis close error", zap.Error(err))
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// ConnectionCount returns the number of live websocket connections
func (s *Server) ConnectionCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// handleWebSocket authenticates, upgrades and serves one player
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	player, err := s.authenticate(r)
	if err != nil {
		s.logger.Info("Rejected WebSocket connection",
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))
		http.Error(w, fmt.Sprintf("Unauthorized: %v", err), http.StatusUnauthorized)
		return
	}

	session, err := NewSession(player, s.config, s.newPlacer(s.config.Game), s.metrics, s.logger)
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	player.Connected = true
	player.ConnectedAt = time.Now()
	conn := NewConnection(ws, s, session)

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()
	s.metrics.ActiveSessions.Inc()

	s.logger.Info("WebSocket connection established",
		zap.String("player", player.Username),
		zap.String("remote", r.RemoteAddr))

	// Handle connection (blocking)
	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()
	s.metrics.ActiveSessions.Dec()
	player.Connected = false

	s.logger.Info("WebSocket connection closed",
		zap.String("player", player.Username),
		zap.String("remote", r.RemoteAddr))
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","connections":%d}`, s.ConnectionCount())
}
