package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"isafeDashboard/internal/account"
	"isafeDashboard/internal/indexer"
	"isafeDashboard/internal/model"
	"isafeDashboard/internal/storage"
)

// EventSource pages through the event history of an account.
type EventSource interface {
	GetAccountEventsPage(ctx context.Context, address string, req indexer.PageRequest) (indexer.EventsPage, error)
}

// RunConfig holds runtime settings for a snapshot.
type RunConfig struct {
	Account  string
	PageSize int
	// MaxPages stops the run early; zero means until the history is exhausted.
	MaxPages int
}

// Result summarizes one run.
type Result struct {
	Pages    int
	Events   int
	Resumed  bool
	Snapshot model.AccountSnapshot
}

// Runner exports an account's decoded events and replayed member set.
type Runner struct {
	cfg        RunConfig
	source     EventSource
	storage    storage.Storage
	checkpoint CheckpointStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner builds a Runner with its dependencies. A nil checkpoint store
// starts every run from the oldest event.
func NewRunner(cfg RunConfig, source EventSource, sink storage.Storage, checkpoint CheckpointStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkpoint == nil {
		checkpoint = &FileCheckpointStore{}
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		storage:    sink,
		checkpoint: checkpoint,
		logger:     logger,
		now:        time.Now,
	}
}

// Run pages through new events, storing each page and checkpointing after it.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	if r.source == nil {
		return res, fmt.Errorf("event source is nil")
	}
	if r.storage == nil {
		return res, fmt.Errorf("storage is nil")
	}
	if r.cfg.PageSize <= 0 {
		return res, fmt.Errorf("page size must be greater than zero")
	}
	acct, err := indexer.NormalizeAddress(r.cfg.Account)
	if err != nil {
		return res, fmt.Errorf("account: %w", err)
	}

	cp, ok, err := r.checkpoint.Load(ctx)
	if err != nil {
		return res, err
	}
	if ok {
		if cp.Account != acct {
			return res, fmt.Errorf("checkpoint belongs to account %s, not %s", cp.Account, acct)
		}
		res.Resumed = true
		r.logger.Info("resume from checkpoint", zap.String("cursor", cp.Cursor), zap.Int64("seq", cp.Seq))
	} else {
		cp = Checkpoint{Account: acct}
	}

	for r.cfg.MaxPages == 0 || res.Pages < r.cfg.MaxPages {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		page, err := r.source.GetAccountEventsPage(ctx, acct, indexer.PageRequest{Cursor: cp.Cursor, Limit: r.cfg.PageSize})
		if err != nil {
			return res, fmt.Errorf("fetch events after %q: %w", cp.Cursor, err)
		}
		res.Pages++

		if len(page.Events) > 0 {
			state, err := account.Apply(cp.State, page.Events)
			if err != nil {
				return res, fmt.Errorf("replay page after %q: %w", cp.Cursor, err)
			}

			ingestedAt := r.now().UTC()
			records := buildEventRecords(acct, cp.Seq, page.Events, ingestedAt)
			if err := r.storage.PutEvents(ctx, records); err != nil {
				return res, fmt.Errorf("store events: %w", err)
			}

			cp.State = state
			cp.Seq += int64(len(page.Events))
			cp.Cursor = page.LastCursor
			cp.UpdatedAt = ingestedAt.Format(time.RFC3339Nano)
			if err := r.checkpoint.Save(ctx, cp); err != nil {
				return res, err
			}
			res.Events += len(page.Events)
			r.logger.Info("page complete", zap.Int("events", len(page.Events)), zap.Int64("seq", cp.Seq), zap.String("cursor", cp.Cursor))
		}

		if page.NextCursor == "" || len(page.Events) == 0 {
			break
		}
	}

	res.Snapshot = buildAccountSnapshot(cp, r.now().UTC())
	if err := r.storage.PutAccount(ctx, res.Snapshot); err != nil {
		return res, fmt.Errorf("store account: %w", err)
	}
	return res, nil
}
