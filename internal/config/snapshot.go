package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"isafeDashboard/internal/bcs"
)

// SnapshotConfig holds configuration for the snapshot export.
type SnapshotConfig struct {
	Common
	Account           string
	PageSize          int
	MaxPages          int
	Out               string
	AccountsOut       string
	Checkpoint        string
	CheckpointEnabled bool
	PGDSN             string
	StateName         string
}

// LoadSnapshot merges .env, config file, environment variables, and flags
// into SnapshotConfig. Account is returned in its full 0x-prefixed form.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"page-size":          100,
		"out":                "./data/events.jsonl",
		"accounts-out":       "./data/accounts.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
	})
	if err != nil {
		return SnapshotConfig{}, err
	}
	common, err := loadCommon(v)
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		Common:            common,
		Account:           v.GetString("account"),
		PageSize:          v.GetInt("page-size"),
		MaxPages:          v.GetInt("max-pages"),
		Out:               v.GetString("out"),
		AccountsOut:       v.GetString("accounts-out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		PGDSN:             v.GetString("pg-dsn"),
		StateName:         v.GetString("state-name"),
	}
	if cfg.Account == "" {
		return SnapshotConfig{}, fmt.Errorf("account is required")
	}
	acct, err := bcs.ParseAddress(cfg.Account)
	if err != nil {
		return SnapshotConfig{}, fmt.Errorf("account: %w", err)
	}
	cfg.Account = acct.Hex()
	if cfg.Out == "" && cfg.PGDSN == "" {
		return SnapshotConfig{}, fmt.Errorf("nothing to write: set --out or --pg-dsn")
	}
	if cfg.StateName == "" {
		cfg.StateName = "snapshot:" + cfg.Account
	}
	return cfg, nil
}
