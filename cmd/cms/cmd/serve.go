package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cms-maintenance/internal/config"
	"cms-maintenance/internal/media"
	"cms-maintenance/middleware/guard"
	"cms-maintenance/middleware/guard/application"
	"cms-maintenance/middleware/guard/domain"
	"cms-maintenance/middleware/guard/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the media image route behind the lock and rate-limit guards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

type server struct {
	handler http.Handler
	limiter *infra.Store
	rdb     *redis.Client
}

func (s *server) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (a *app) serve(ctx context.Context) error {
	srv, err := a.buildServer(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	cfg := a.cfg
	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a request pode esperar pelo lock/token; o limite de escrita acompanha
		WriteTimeout: cfg.Server.MaxExecutionTime + 30*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	log := a.log.WithComponent("serve")
	log.WithField("addr", cfg.Server.ListenAddr).Info("listening")
	log.WithFields(map[string]any{
		"enabled":         cfg.Lock.Enabled,
		"slots":           cfg.Lock.Slots,
		"store":           cfg.Lock.Store,
		"ttl":             application.LockTTL(cfg.Server.MaxExecutionTime).String(),
		"acquire_timeout": cfg.Lock.AcquireTimeout.String(),
	}).Info("lock guard")
	log.WithFields(map[string]any{
		"enabled":  cfg.RateLimit.Enabled,
		"limit":    cfg.RateLimit.Limit,
		"interval": cfg.RateLimit.Interval.String(),
		"wait":     cfg.RateLimit.Wait,
		"key":      cfg.RateLimit.Key,
	}).Info("rate limit guard")

	g, gctx := errgroup.WithContext(ctx)
	srv.limiter.StartJanitor(gctx)

	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// buildServer monta o mux da mídia com os guards, /metrics e /healthz.
func (a *app) buildServer(ctx context.Context) (*server, error) {
	cfg := a.cfg
	log := a.log.WithComponent("serve")
	srv := &server{}

	if cfg.NeedsRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		srv.rdb = rdb
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mediaHandler, err := media.NewHandler(cfg.Server.MediaDir, cfg.Server.MediaUpstreamURL, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	routes := media.Register(mux, mediaHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	stats, err := guardStats(cfg.GuardStats, srv.rdb, reg)
	if err != nil {
		return nil, err
	}
	if mem, ok := stats.(*infra.MemoryStatsStore); ok {
		mux.HandleFunc("GET /guard/stats", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total":    mem.Total(),
				"by_guard": mem.ByGuard(),
			})
		})
	}

	var factory domain.LockFactory = infra.NewMemoryLockFactory()
	if cfg.Lock.Store == config.LockStoreRedis {
		factory = infra.NewRedisLockFactory(srv.rdb, infra.WithLockPrefix(cfg.Lock.Prefix))
	}

	srv.limiter = infra.NewIntervalStore(cfg.RateLimit.Limit, cfg.RateLimit.Interval)
	keyFn := guard.RouteKeyFunc
	if cfg.RateLimit.Key == config.RateKeyClient {
		keyFn = guard.ClientKeyFunc(cfg.RateLimit.KeyHeader, cfg.RateLimit.TrustXFF)
	}
	routeFn := guard.MuxRoutes(mux, routes)

	var h http.Handler = mux
	h = guard.LockMiddleware(guard.LockOptions{
		Enabled:        cfg.Lock.Enabled,
		Route:          media.RouteName,
		RouteFn:        routeFn,
		Factory:        factory,
		Slots:          cfg.Lock.Slots,
		TTL:            application.LockTTL(cfg.Server.MaxExecutionTime),
		AcquireTimeout: cfg.Lock.AcquireTimeout,
		Stats:          stats,
		Logger:         log,
	})(h)
	h = guard.RateLimitMiddleware(guard.RateLimitOptions{
		Enabled:             cfg.RateLimit.Enabled,
		Route:               media.RouteName,
		RouteFn:             routeFn,
		Store:               srv.limiter,
		Stats:               stats,
		KeyFn:               keyFn,
		Wait:                cfg.RateLimit.Wait,
		MaxWait:             cfg.RateLimit.MaxWait,
		RetryAfter:          cfg.RateLimit.RetryAfter,
		AddRateLimitHeaders: cfg.RateLimit.AddHeaders,
		Logger:              log,
	})(h)

	srv.handler = h
	return srv, nil
}

func guardStats(cfg config.GuardStatsConfig, rdb *redis.Client, reg prometheus.Registerer) (domain.StatsStore, error) {
	switch cfg.Backend {
	case config.StatsMemory:
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.TrackKeys)), nil
	case config.StatsRedis:
		return infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Prefix),
			infra.WithStatsTTL(cfg.TTL),
			infra.WithStatsBucket(cfg.Bucket),
			infra.WithStatsTrackKeys(cfg.TrackKeys),
		), nil
	case config.StatsPrometheus:
		return infra.NewPrometheusStatsStore(reg)
	default:
		return nil, nil
	}
}
