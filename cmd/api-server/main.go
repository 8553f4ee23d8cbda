package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mangashelf/internal/importer"
	"mangashelf/internal/manga"
	"mangashelf/internal/metadata"
	"mangashelf/internal/scanner"
	synchub "mangashelf/internal/sync"
	"mangashelf/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api server stopped", zap.Error(err))
	}
}

func run(cfg *utils.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := manga.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	resolver := metadata.NewResolver(logger,
		metadata.NewGoogleBooks(cfg.Metadata.GoogleBooksURL, cfg.Metadata.Timeout),
		metadata.NewOpenLibrary(cfg.Metadata.OpenLibraryURL, cfg.Metadata.Timeout),
	)
	switch cfg.Metadata.Cache {
	case "memory":
		resolver.WithCache(metadata.NewMemoryCache(), cfg.Metadata.CacheTTL)
	case "redis":
		rc := metadata.NewRedisCache(&redis.Options{
			Addr:     cfg.Metadata.RedisAddr,
			Password: cfg.Metadata.RedisPassword,
			DB:       cfg.Metadata.RedisDB,
		})
		defer func() { _ = rc.Close() }()
		resolver.WithCache(rc, cfg.Metadata.CacheTTL)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), utils.GinLogger(logger))
	_ = router.SetTrustedProxies(cfg.Server.TrustedProxies)

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub, logger))
	tcpSrv := synchub.NewServer(cfg.Server.SyncAddr, hub, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Backend})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"store_error": err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"store":       "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"store":       cfg.Store.Backend,
			"cache":       cfg.Metadata.Cache,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	api := router.Group("/manga")
	manga.NewHandler(store, hub, logger).RegisterRoutes(api)
	importer.NewHandler(importer.New(store, logger), hub, logger, cfg.Import.MaxUploadBytes).RegisterRoutes(api)
	metadata.NewHandler(resolver, logger).RegisterRoutes(api)
	scanner.NewHandler(scanner.ZXingDecoder{}, resolver, logger).RegisterRoutes(api)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tcpSrv.Run()
	})

	g.Go(func() error {
		logger.Info("http api listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		if err := tcpSrv.Close(); err != nil {
			logger.Warn("tcp shutdown", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	logger.Info("servers stopped")
	return err
}
