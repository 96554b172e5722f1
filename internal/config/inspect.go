package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// InspectConfig holds configuration for the one-shot read commands.
type InspectConfig struct {
	Common
	Format string
}

// LoadInspect merges .env, config file, environment variables, and flags into
// InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{"format": "table"})
	if err != nil {
		return InspectConfig{}, err
	}
	common, err := loadCommon(v)
	if err != nil {
		return InspectConfig{}, err
	}
	cfg := InspectConfig{Common: common, Format: v.GetString("format")}
	if cfg.Format != "table" && cfg.Format != "json" {
		return InspectConfig{}, fmt.Errorf("format %q must be table or json", cfg.Format)
	}
	return cfg, nil
}
