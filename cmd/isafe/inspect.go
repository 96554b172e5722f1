package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"isafeDashboard/internal/config"
	"isafeDashboard/internal/indexer"
	"isafeDashboard/internal/model"
	"isafeDashboard/internal/query"
	"isafeDashboard/internal/render"
	"isafeDashboard/internal/ui"
)

type inspectFunc func(ctx context.Context, hooks *query.Hooks, out *render.Renderer, address string) error

func newInspectCmds() []*cobra.Command {
	cmds := []*cobra.Command{
		inspectCmd("events <address>", "List the decoded event history of an account", inspectEvents),
		inspectCmd("accounts <address>", "List the multisig accounts an address belongs to", inspectAccounts),
		inspectCmd("transactions <account>", "List the proposed transactions of an account", inspectTransactions),
		inspectCmd("members <account>", "Show the current members, weights and threshold of an account", inspectMembers),
	}
	for _, cmd := range cmds {
		cmd.Flags().String("format", "table", "output format (table, json)")
		cmd.Flags().Bool("no-color", false, "disable colored output")
	}
	return cmds
}

func inspectCmd(use, short string, fn inspectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], fn)
		},
	}
}

func runInspect(cmd *cobra.Command, arg string, fn inspectFunc) error {
	cfg, err := config.LoadInspect(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	address, err := indexer.NormalizeAddress(arg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	upstreams, err := newClients(ctx, cfg.Common, false, logger)
	if err != nil {
		return err
	}
	defer upstreams.Close()

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := render.New(os.Stdout, cfg.Format, !noColor && !color.NoColor)
	hooks := upstreams.hooks(query.New(query.NewMemoryStore(), query.Options{Logger: logger}))

	logger.Debug("inspect",
		zap.String("command", cmd.Name()),
		zap.String("address", address),
		zap.String("indexer", cfg.Profile.IndexerURL),
	)
	return fn(ctx, hooks, out, address)
}

// result turns a hook state into its data or error.
func result[T any](st query.State[T], noun string) (T, error) {
	if st.Status == query.StatusError {
		return st.Data, fmt.Errorf("load %s: %w", noun, st.Err)
	}
	return st.Data, nil
}

func inspectEvents(ctx context.Context, hooks *query.Hooks, out *render.Renderer, address string) error {
	evs, err := result(hooks.Events(ctx, address), "events")
	if err != nil {
		return err
	}
	return out.Events(evs)
}

func inspectAccounts(ctx context.Context, hooks *query.Hooks, out *render.Renderer, address string) error {
	accounts, err := result(hooks.Accounts(ctx, address), "accounts")
	if err != nil {
		return err
	}
	return out.Accounts(address, accounts)
}

func inspectTransactions(ctx context.Context, hooks *query.Hooks, out *render.Renderer, address string) error {
	txs, err := result(hooks.Transactions(ctx, address), "transactions")
	if err != nil {
		return err
	}
	digests := ui.Digests(txs)
	details, err := result(hooks.TransactionDetails(ctx, digests), "transaction details")
	if err != nil {
		return err
	}
	var byDigest map[string]model.TransactionDetails
	if details != nil {
		byDigest = make(map[string]model.TransactionDetails, len(digests))
		for i, digest := range digests {
			byDigest[digest] = details[i]
		}
	}
	return out.Transactions(txs, byDigest)
}

func inspectMembers(ctx context.Context, hooks *query.Hooks, out *render.Renderer, address string) error {
	st, err := result(hooks.Account(ctx, address), "account")
	if err != nil {
		return err
	}
	return out.Members(st)
}
