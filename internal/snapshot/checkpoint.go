package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"isafeDashboard/internal/account"
)

// Checkpoint is where a snapshot run stopped: the indexer cursor after the
// last stored event, how many events were stored and the state they replay to.
type Checkpoint struct {
	Account   string        `json:"account"`
	Cursor    string        `json:"cursor"`
	Seq       int64         `json:"seq"`
	State     account.State `json:"state"`
	UpdatedAt string        `json:"updated_at"`
}

// CheckpointStore persists checkpoints between runs.
type CheckpointStore interface {
	Load(ctx context.Context) (Checkpoint, bool, error)
	Save(ctx context.Context, cp Checkpoint) error
}

// FileCheckpointStore keeps the checkpoint in a local JSON file. The zero
// path disables it.
type FileCheckpointStore struct {
	Path string
}

func (c *FileCheckpointStore) Load(_ context.Context) (Checkpoint, bool, error) {
	if c == nil || c.Path == "" {
		return Checkpoint{}, false, nil
	}

	stat, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, true, nil
}

func (c *FileCheckpointStore) Save(_ context.Context, cp Checkpoint) error {
	if c == nil || c.Path == "" {
		return nil
	}

	dir := filepath.Dir(c.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.Path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// StateBackend is the state table of a database store.
type StateBackend interface {
	LoadState(ctx context.Context, name string, v any) (bool, error)
	SaveState(ctx context.Context, name string, v any) error
}

// DBCheckpointStore keeps the checkpoint in a database state row.
type DBCheckpointStore struct {
	Store StateBackend
	Name  string
}

func (s *DBCheckpointStore) Load(ctx context.Context) (Checkpoint, bool, error) {
	if s == nil || s.Store == nil {
		return Checkpoint{}, false, nil
	}
	var cp Checkpoint
	ok, err := s.Store.LoadState(ctx, s.Name, &cp)
	if err != nil || !ok {
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (s *DBCheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, cp)
}
