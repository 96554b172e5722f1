package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"isafeDashboard/internal/chain"
	"isafeDashboard/internal/config"
	"isafeDashboard/internal/indexer"
	"isafeDashboard/internal/query"
	"isafeDashboard/internal/txservice"
)

func main() {
	root := &cobra.Command{
		Use:          "isafe",
		Short:        "iSafe weighted multisig dashboard",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().String("profiles", "", "network profiles YAML file")
	root.PersistentFlags().String("network", "testnet", "network profile name")
	root.PersistentFlags().String("indexer-url", "", "iSafe indexer base URL (overrides the profile)")
	root.PersistentFlags().String("tx-service-url", "", "tx service base URL (overrides the profile)")
	root.PersistentFlags().String("rpc-url", "", "IOTA JSON-RPC URL (overrides the profile)")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "HTTP client timeout")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newSnapshotCmd())
	root.AddCommand(newInspectCmds()...)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func configFile(cmd *cobra.Command) string {
	cfgFile, _ := cmd.Flags().GetString("config")
	return cfgFile
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// clients are the upstreams every command reads from. tx and chain are nil
// when their endpoint is not configured.
type clients struct {
	indexer *indexer.Client
	tx      *txservice.Client
	chain   *chain.Client
}

func newClients(ctx context.Context, common config.Common, withChain bool, logger *zap.Logger) (*clients, error) {
	httpClient := &http.Client{Timeout: common.Timeout}
	c := &clients{indexer: indexer.NewClient(common.Profile.IndexerURL, httpClient, logger)}
	if common.Profile.TxServiceURL != "" {
		c.tx = txservice.NewClient(common.Profile.TxServiceURL, httpClient)
	}
	if withChain {
		chainClient, err := chain.NewClient(ctx, common.Profile.RPCEndpoint())
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		c.chain = chainClient
	}
	return c, nil
}

// hooks wires the clients to cache. Nil clients are passed as nil interfaces
// so the hooks that need them report disabled.
func (c *clients) hooks(cache *query.Cache) *query.Hooks {
	var tx query.TxServiceAPI
	if c.tx != nil {
		tx = c.tx
	}
	var balances query.BalanceAPI
	if c.chain != nil {
		balances = c.chain
	}
	return query.NewHooks(cache, c.indexer, tx, balances)
}

func (c *clients) Close() {
	if c.chain != nil {
		c.chain.Close()
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
