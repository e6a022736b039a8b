package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	clientapi "github.com/iudanet/syncmesh/internal/client/api"
	clientstorage "github.com/iudanet/syncmesh/internal/client/storage"
	"github.com/iudanet/syncmesh/internal/client/storage/boltdb"
	"github.com/iudanet/syncmesh/internal/crdt"
	"github.com/iudanet/syncmesh/internal/crypto"
	"github.com/iudanet/syncmesh/internal/models"
	"github.com/iudanet/syncmesh/internal/server/handlers"
	"github.com/iudanet/syncmesh/internal/server/middleware"
	"github.com/iudanet/syncmesh/internal/server/storage"
	"github.com/iudanet/syncmesh/internal/server/storage/sqlite"
	syncengine "github.com/iudanet/syncmesh/internal/sync"
	"github.com/iudanet/syncmesh/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	shutdownTimeout = 10 * time.Second

	// Токен обновляется заранее, чтобы фоновые запросы не ловили 401
	tokenRefreshMargin = 60 * time.Second
)

type config struct {
	addr              string
	dbPath            string
	queuePath         string
	nodeName          string
	advertise         string
	joinURL           string
	clusterSecret     string
	jwtSecret         string
	capabilities      []string
	logLevel          string
	syncInterval      time.Duration
	drainInterval     time.Duration
	heartbeatInterval time.Duration
	staleAfter        time.Duration
	cleanupInterval   time.Duration
	accessTokenTTL    time.Duration
	refreshTokenTTL   time.Duration
	maxAttempts       int
	showVersion       bool
}

func main() {
	cfg := parseConfig()

	if cfg.showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "syncmesh-server: %v\n", err)
		os.Exit(1)
	}
}

func parseConfig() config {
	var cfg config
	var capabilities string

	flag.StringVar(&cfg.addr, "addr", envOr("SYNCMESH_ADDR", ":8080"), "listen address")
	flag.StringVar(&cfg.dbPath, "db", envOr("SYNCMESH_DB", "syncmesh.db"), "path to event ledger database")
	flag.StringVar(&cfg.queuePath, "queue-db", envOr("SYNCMESH_QUEUE_DB", "syncmesh-queue.db"), "path to offline queue database")
	flag.StringVar(&cfg.nodeName, "node-name", envOr("SYNCMESH_NODE_NAME", ""), "unique node name in the mesh")
	flag.StringVar(&cfg.advertise, "advertise", envOr("SYNCMESH_ADVERTISE", ""), "address peers use to reach this node")
	flag.StringVar(&cfg.joinURL, "join", envOr("SYNCMESH_JOIN", ""), "peer URL to join the mesh through")
	flag.StringVar(&capabilities, "capabilities", envOr("SYNCMESH_CAPABILITIES", ""), "comma-separated node capabilities")
	flag.StringVar(&cfg.logLevel, "log-level", envOr("SYNCMESH_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.DurationVar(&cfg.syncInterval, "sync-interval", envDurOr("SYNCMESH_SYNC_INTERVAL", 30*time.Second), "interval between sync sessions")
	flag.DurationVar(&cfg.drainInterval, "drain-interval", envDurOr("SYNCMESH_DRAIN_INTERVAL", 5*time.Second), "interval between queue drains")
	flag.DurationVar(&cfg.heartbeatInterval, "heartbeat-interval", envDurOr("SYNCMESH_HEARTBEAT_INTERVAL", 15*time.Second), "interval between heartbeats to the join peer")
	flag.DurationVar(&cfg.staleAfter, "stale-after", envDurOr("SYNCMESH_STALE_AFTER", 5*time.Minute), "deactivate nodes silent for longer than this")
	flag.DurationVar(&cfg.cleanupInterval, "cleanup-interval", envDurOr("SYNCMESH_CLEANUP_INTERVAL", 10*time.Minute), "interval between maintenance passes")
	flag.DurationVar(&cfg.accessTokenTTL, "access-ttl", envDurOr("SYNCMESH_ACCESS_TTL", time.Hour), "access token lifetime")
	flag.DurationVar(&cfg.refreshTokenTTL, "refresh-ttl", envDurOr("SYNCMESH_REFRESH_TTL", 30*24*time.Hour), "refresh token lifetime")
	flag.IntVar(&cfg.maxAttempts, "max-attempts", 5, "delivery attempts before a mutation is abandoned")
	flag.BoolVar(&cfg.showVersion, "version", false, "show version information")
	flag.Parse()

	cfg.clusterSecret = os.Getenv("SYNCMESH_CLUSTER_SECRET")
	cfg.jwtSecret = os.Getenv("SYNCMESH_JWT_SECRET")

	for _, c := range strings.Split(capabilities, ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			cfg.capabilities = append(cfg.capabilities, trimmed)
		}
	}

	if cfg.nodeName == "" {
		if hostname, err := os.Hostname(); err == nil {
			cfg.nodeName = hostname
		}
	}

	return cfg
}

func run(cfg config) error {
	if cfg.jwtSecret == "" {
		return fmt.Errorf("SYNCMESH_JWT_SECRET is required")
	}
	if cfg.joinURL != "" && cfg.clusterSecret == "" {
		return fmt.Errorf("SYNCMESH_CLUSTER_SECRET is required to join a mesh")
	}

	logger := newLogger(cfg.logLevel)
	logger.Info("starting syncmesh node",
		"version", Version,
		"node_name", cfg.nodeName,
		"addr", cfg.addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := sqlite.New(ctx, cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open event ledger: %w", err)
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			logger.Error("failed to close event ledger", "error", closeErr)
		}
	}()

	local, err := boltdb.New(ctx, cfg.queuePath)
	if err != nil {
		return fmt.Errorf("failed to open offline queue: %w", err)
	}
	defer func() {
		if closeErr := local.Close(); closeErr != nil {
			logger.Error("failed to close offline queue", "error", closeErr)
		}
	}()

	nodeID, err := establishIdentity(ctx, logger, cfg, local)
	if err != nil {
		return err
	}

	clock := crdt.NewLamportClock(nodeID)
	counter, err := local.GetClockState(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore clock state: %w", err)
	}
	clock.Restore(counter)

	logger.Info("node identity established",
		"node_id", clock.NodeID(),
		"clock_counter", clock.Current())

	resolver := syncengine.NewResolver(logger, ledger, ledger, clock)

	svc := syncengine.NewService(syncengine.Config{
		Logger:    logger,
		Clock:     clock,
		Resolver:  resolver,
		Events:    ledger,
		Sessions:  ledger,
		Conflicts: ledger,
		Nodes:     ledger,
		Queue:     local,
		Cursors:   local,
		Metadata:  local,
		Auth:      local,
		NewPeerClient: func(baseURL string) clientapi.ClientAPI {
			return clientapi.NewClient(baseURL)
		},
		MaxAttempts: cfg.maxAttempts,
	})

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(cfg.jwtSecret),
		AccessTokenTTL:  cfg.accessTokenTTL,
		RefreshTokenTTL: cfg.refreshTokenTTL,
	}

	handler := newRouter(logger, ledger, resolver, svc, jwtConfig)

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		drainLoop(ctx, logger, svc, cfg.drainInterval)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		syncLoop(ctx, logger, svc, cfg.syncInterval)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		maintenanceLoop(ctx, logger, ledger, ledger, cfg.cleanupInterval, cfg.staleAfter)
	}()
	if cfg.joinURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			heartbeatLoop(ctx, logger, cfg, local, ledger, clock.NodeID())
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-errCh:
		stop()
		wg.Wait()
		return fmt.Errorf("http server failed: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	wg.Wait()

	// Счетчик часов сохраняется на выходе, чтобы после рестарта
	// timestamps продолжились без отката
	saveCtx, saveCancel := context.WithTimeout(context.Background(), time.Second)
	defer saveCancel()
	if err := local.SaveClockState(saveCtx, clock.Current()); err != nil {
		logger.Error("failed to persist clock state", "error", err)
	}

	logger.Info("syncmesh node stopped")
	return nil
}

// newRouter собирает маршруты и middleware-цепочку узла
func newRouter(
	logger *slog.Logger,
	ledger *sqlite.Storage,
	resolver *syncengine.Resolver,
	svc syncengine.Service,
	jwtConfig handlers.JWTConfig,
) http.Handler {
	healthHandler := handlers.NewHealthHandler(logger, ledger, Version)
	authHandler := handlers.NewAuthHandler(logger, ledger, ledger, jwtConfig)
	syncHandler := handlers.NewSyncHandler(logger, ledger, resolver)
	nodesHandler := handlers.NewNodesHandler(logger, ledger)
	captureHandler := handlers.NewCaptureHandler(logger, svc)
	adminHandler := handlers.NewAdminHandler(logger, ledger, ledger, ledger, ledger, svc)

	requireAuth := middleware.AuthMiddleware(logger, jwtConfig)
	rateLimited := middleware.RateLimitMiddleware(10, time.Minute, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	// Auth endpoints до логина ограничены по частоте
	mux.Handle("POST /api/v1/auth/register", rateLimited(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", rateLimited(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /api/v1/auth/salt/{node_name}", authHandler.GetSalt)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /api/v1/auth/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("/api/v1/sync", requireAuth(http.HandlerFunc(syncHandler.HandleSync)))
	mux.Handle("POST /api/v1/capture", requireAuth(http.HandlerFunc(captureHandler.Capture)))

	mux.Handle("POST /api/v1/nodes/heartbeat", requireAuth(http.HandlerFunc(nodesHandler.Heartbeat)))
	mux.Handle("GET /api/v1/nodes", requireAuth(http.HandlerFunc(nodesHandler.List)))
	mux.Handle("DELETE /api/v1/nodes/{node_id}", requireAuth(http.HandlerFunc(nodesHandler.Deregister)))

	mux.Handle("GET /api/v1/admin/sync/stats", requireAuth(http.HandlerFunc(adminHandler.Stats)))
	mux.Handle("POST /api/v1/admin/sync/initiate-recovery", requireAuth(http.HandlerFunc(adminHandler.InitiateRecovery)))
	mux.Handle("GET /api/v1/admin/sync/conflicts", requireAuth(http.HandlerFunc(adminHandler.Conflicts)))
	mux.Handle("POST /api/v1/admin/sync/conflicts/{id}/review", requireAuth(http.HandlerFunc(adminHandler.ReviewConflict)))

	chain := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{"/health", "/ready"})(mux))

	return chain
}

// establishIdentity возвращает постоянный NodeID узла: сохраненный,
// полученный при входе в mesh через join peer, либо новый для
// standalone-узла
func establishIdentity(ctx context.Context, logger *slog.Logger, cfg config, local *boltdb.Storage) (string, error) {
	auth, err := local.GetAuth(ctx)
	if err != nil && !errors.Is(err, clientstorage.ErrAuthNotFound) {
		return "", fmt.Errorf("failed to load node identity: %w", err)
	}
	if err == nil && auth.NodeID != "" {
		return auth.NodeID, nil
	}

	if cfg.joinURL != "" {
		nodeID, joinErr := joinMesh(ctx, logger, cfg, local)
		if joinErr != nil {
			return "", fmt.Errorf("failed to join mesh via %s: %w", cfg.joinURL, joinErr)
		}
		return nodeID, nil
	}

	// Standalone-узел: идентичность генерируется и сохраняется локально
	nodeID := uuid.New().String()
	if err := local.SaveAuth(ctx, &clientstorage.AuthData{
		NodeName: cfg.nodeName,
		NodeID:   nodeID,
	}); err != nil {
		return "", fmt.Errorf("failed to persist node identity: %w", err)
	}

	logger.Info("standalone node identity generated", "node_id", nodeID)
	return nodeID, nil
}

// joinMesh регистрирует узел на join peer (если имя еще не занято),
// выполняет логин и сохраняет токены для фоновых peer-запросов
func joinMesh(ctx context.Context, logger *slog.Logger, cfg config, local *boltdb.Storage) (string, error) {
	client := clientapi.NewClient(cfg.joinURL)

	var publicSalt string
	saltResp, err := client.GetSalt(ctx, cfg.nodeName)
	if err == nil {
		publicSalt = saltResp.PublicSalt
	} else {
		// Узел еще не известен peer: регистрируемся с новым salt
		publicSalt, err = crypto.GenerateSaltBase64()
		if err != nil {
			return "", fmt.Errorf("failed to generate salt: %w", err)
		}

		keys, deriveErr := crypto.DeriveNodeKeysFromBase64Salt(cfg.clusterSecret, cfg.nodeName, publicSalt)
		if deriveErr != nil {
			return "", fmt.Errorf("failed to derive keys: %w", deriveErr)
		}
		authKeyHash, hashErr := crypto.HashAuthKey(keys.AuthKey)
		if hashErr != nil {
			return "", fmt.Errorf("failed to hash auth key: %w", hashErr)
		}

		resp, regErr := client.Register(ctx, api.RegisterRequest{
			NodeName:     cfg.nodeName,
			AuthKeyHash:  authKeyHash,
			PublicSalt:   publicSalt,
			Address:      cfg.advertise,
			Capabilities: cfg.capabilities,
		})
		if regErr != nil {
			return "", fmt.Errorf("registration failed: %w", regErr)
		}

		logger.Info("node registered in mesh", "node_id", resp.NodeID, "peer", cfg.joinURL)
	}

	keys, err := crypto.DeriveNodeKeysFromBase64Salt(cfg.clusterSecret, cfg.nodeName, publicSalt)
	if err != nil {
		return "", fmt.Errorf("failed to derive keys: %w", err)
	}
	authKeyHash, err := crypto.HashAuthKey(keys.AuthKey)
	if err != nil {
		return "", fmt.Errorf("failed to hash auth key: %w", err)
	}

	tokens, err := client.Login(ctx, api.LoginRequest{
		NodeName:    cfg.nodeName,
		AuthKeyHash: authKeyHash,
	})
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	nodeID, err := lookupNodeID(ctx, client, tokens.AccessToken, cfg.nodeName)
	if err != nil {
		return "", err
	}

	if err := local.SaveAuth(ctx, &clientstorage.AuthData{
		NodeName:     cfg.nodeName,
		NodeID:       nodeID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		PublicSalt:   publicSalt,
		ExpiresAt:    time.Now().Unix() + tokens.ExpiresIn,
	}); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}

	logger.Info("joined mesh", "node_id", nodeID, "peer", cfg.joinURL)
	return nodeID, nil
}

// lookupNodeID находит собственный NodeID в реестре join peer
func lookupNodeID(ctx context.Context, client clientapi.ClientAPI, accessToken, nodeName string) (string, error) {
	nodes, err := client.Nodes(ctx, accessToken, false)
	if err != nil {
		return "", fmt.Errorf("failed to query node registry: %w", err)
	}
	for _, node := range nodes.Nodes {
		if node.Name == nodeName {
			return node.NodeID, nil
		}
	}
	return "", fmt.Errorf("node %s is not present in peer registry", nodeName)
}

// peerToken возвращает действующий access token для фоновых запросов,
// обновляя пару токенов незадолго до истечения
func peerToken(ctx context.Context, client clientapi.ClientAPI, local clientstorage.AuthStorage) (string, error) {
	auth, err := local.GetAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}

	if time.Now().Add(tokenRefreshMargin).Unix() < auth.ExpiresAt {
		return auth.AccessToken, nil
	}

	tokens, err := client.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	auth.AccessToken = tokens.AccessToken
	auth.RefreshToken = tokens.RefreshToken
	auth.ExpiresAt = time.Now().Unix() + tokens.ExpiresIn

	if err := local.SaveAuth(ctx, auth); err != nil {
		return "", fmt.Errorf("failed to save rotated tokens: %w", err)
	}

	return auth.AccessToken, nil
}

// drainLoop переносит накопленные мутации из offline-очереди в леджер
func drainLoop(ctx context.Context, logger *slog.Logger, svc syncengine.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drained, err := svc.DrainQueue(ctx)
			if err != nil {
				logger.Error("queue drain failed", "error", err)
				continue
			}
			if drained > 0 {
				logger.Debug("queue drained", "mutations", drained)
			}
		}
	}
}

// syncLoop периодически открывает sync-сессию со всеми активными peer-узлами
func syncLoop(ctx context.Context, logger *slog.Logger, svc syncengine.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := svc.SyncAll(ctx)
			if err != nil {
				logger.Warn("sync session finished with errors", "error", err)
			}
			for _, result := range results {
				logger.Debug("peer exchange",
					"peer_id", result.PeerID,
					"pushed", result.Pushed,
					"pulled", result.Pulled,
					"conflicts", result.Conflicts)
			}
		}
	}
}

// heartbeatLoop поддерживает liveness узла на join peer и зеркалирует
// его реестр в локальный, чтобы sync-циклу было с кем обмениваться
func heartbeatLoop(
	ctx context.Context,
	logger *slog.Logger,
	cfg config,
	local clientstorage.AuthStorage,
	nodes storage.NodeStorage,
	selfID string,
) {
	client := clientapi.NewClient(cfg.joinURL)
	ticker := time.NewTicker(cfg.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			token, err := peerToken(ctx, client, local)
			if err != nil {
				logger.Warn("heartbeat skipped", "error", err)
				continue
			}

			if _, err := client.Heartbeat(ctx, token, api.HeartbeatRequest{
				Address:      cfg.advertise,
				Capabilities: cfg.capabilities,
			}); err != nil {
				logger.Warn("heartbeat failed", "error", err, "peer", cfg.joinURL)
				continue
			}

			if err := mirrorRegistry(ctx, client, token, nodes, selfID); err != nil {
				logger.Warn("registry mirror failed", "error", err)
			}
		}
	}
}

// mirrorRegistry переносит реестр узлов join peer в локальный реестр
func mirrorRegistry(
	ctx context.Context,
	client clientapi.ClientAPI,
	token string,
	nodes storage.NodeStorage,
	selfID string,
) error {
	resp, err := client.Nodes(ctx, token, true)
	if err != nil {
		return fmt.Errorf("failed to fetch peer registry: %w", err)
	}

	for _, info := range resp.Nodes {
		if info.NodeID == selfID {
			continue
		}

		_, err := nodes.GetNodeByID(ctx, info.NodeID)
		switch {
		case err == nil:
			if err := nodes.UpdateHeartbeat(ctx, info.NodeID, info.LastSeen, info.Address, info.Capabilities); err != nil {
				return fmt.Errorf("failed to refresh node %s: %w", info.NodeID, err)
			}
		case errors.Is(err, storage.ErrNodeNotFound):
			if err := nodes.CreateNode(ctx, &models.SyncNode{
				NodeID:       info.NodeID,
				Name:         info.Name,
				Address:      info.Address,
				Capabilities: info.Capabilities,
				IsActive:     info.IsActive,
				LastSeen:     info.LastSeen,
				RegisteredAt: info.RegisteredAt,
			}); err != nil && !errors.Is(err, storage.ErrNodeAlreadyExists) {
				return fmt.Errorf("failed to mirror node %s: %w", info.NodeID, err)
			}
		default:
			return fmt.Errorf("failed to look up node %s: %w", info.NodeID, err)
		}
	}

	return nil
}

// maintenanceLoop чистит просроченные refresh tokens и деактивирует
// замолчавшие узлы
func maintenanceLoop(
	ctx context.Context,
	logger *slog.Logger,
	tokens storage.TokenStorage,
	nodes storage.NodeStorage,
	interval, staleAfter time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tokens.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("token cleanup failed", "error", err)
			} else if deleted > 0 {
				logger.Info("expired tokens deleted", "count", deleted)
			}

			stale, err := nodes.MarkStale(ctx, time.Now().Add(-staleAfter))
			if err != nil {
				logger.Error("stale node sweep failed", "error", err)
			} else if stale > 0 {
				logger.Info("stale nodes deactivated", "count", stale)
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
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

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDurOr(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func printVersion() {
	fmt.Printf("syncmesh-server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
