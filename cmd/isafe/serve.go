package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"isafeDashboard/internal/config"
	"isafeDashboard/internal/query"
	"isafeDashboard/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("redis-url", "", "Redis URL for the shared query cache (memory when empty)")
	cmd.Flags().String("redis-prefix", "isafe:query:", "Redis key prefix")
	cmd.Flags().Duration("cache-ttl", 10*time.Minute, "Redis entry expiry")
	cmd.Flags().Duration("stale-time", time.Second, "how long a fetched entry is served without refetching")
	cmd.Flags().Duration("fetch-timeout", 30*time.Second, "upstream fetch timeout")
	cmd.Flags().Duration("refresh-interval", 15*time.Second, "live refresh interval for open dashboards (0 disables)")
	cmd.Flags().StringSlice("allow-origin", nil, "allowed CORS and websocket origins (comma-separated)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	upstreams, err := newClients(ctx, cfg.Common, true, logger)
	if err != nil {
		return err
	}
	defer upstreams.Close()

	checks := map[string]server.HealthCheck{
		"chain": func(ctx context.Context) error {
			_, err := upstreams.chain.ChainIdentifier(ctx)
			return err
		},
	}
	if upstreams.tx != nil {
		checks["txService"] = upstreams.tx.Health
	}

	var store query.Store = query.NewMemoryStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		store = query.NewRedisStore(client, cfg.RedisPrefix, cfg.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	cache := query.New(store, query.Options{
		StaleTime:    cfg.StaleTime,
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger,
	})

	srv, err := server.New(server.Config{
		Network:         string(cfg.Profile.Network),
		RefreshInterval: cfg.RefreshInterval,
		AllowOrigins:    cfg.AllowOrigins,
		HealthChecks:    checks,
	}, upstreams.hooks(cache), logger)
	if err != nil {
		return err
	}

	logger.Info("dashboard start",
		zap.String("addr", cfg.Addr),
		zap.String("network", string(cfg.Profile.Network)),
		zap.String("indexer", cfg.Profile.IndexerURL),
		zap.String("tx_service", cfg.Profile.TxServiceURL),
		zap.String("rpc", cfg.Profile.RPCEndpoint()),
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Duration("stale_time", cfg.StaleTime),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
	)

	return srv.Run(ctx, cfg.Addr)
}
