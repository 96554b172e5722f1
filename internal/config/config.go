package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ISAFE"

// Common holds the settings every command shares.
type Common struct {
	Profile  NetworkProfile
	LogLevel string
	Timeout  time.Duration
}

// ServeConfig holds configuration for the dashboard server.
type ServeConfig struct {
	Common
	Addr            string
	RedisURL        string
	RedisPrefix     string
	CacheTTL        time.Duration
	StaleTime       time.Duration
	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	AllowOrigins    []string
}

// Load merges .env, config file, environment variables, and flags into
// ServeConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"addr":             ":8080",
		"redis-prefix":     "isafe:query:",
		"cache-ttl":        10 * time.Minute,
		"stale-time":       time.Second,
		"fetch-timeout":    30 * time.Second,
		"refresh-interval": 15 * time.Second,
	})
	if err != nil {
		return ServeConfig{}, err
	}
	common, err := loadCommon(v)
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Common:          common,
		Addr:            v.GetString("addr"),
		RedisURL:        v.GetString("redis-url"),
		RedisPrefix:     v.GetString("redis-prefix"),
		CacheTTL:        v.GetDuration("cache-ttl"),
		StaleTime:       v.GetDuration("stale-time"),
		FetchTimeout:    v.GetDuration("fetch-timeout"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		AllowOrigins:    getStringSlice(v, "allow-origin"),
	}
	if cfg.StaleTime <= 0 {
		return ServeConfig{}, fmt.Errorf("stale-time must be greater than zero")
	}
	return cfg, nil
}

// newViper layers defaults, an optional config file, ISAFE_* environment
// variables and flags, with later sources winning.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("network", string(Testnet))
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("env-file", ".env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := loadDotEnv(v.GetString("env-file")); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// loadDotEnv exports variables from path without overriding the real
// environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// loadCommon resolves the network profile: the named entry of the profiles
// file, overridden by explicit URL settings.
func loadCommon(v *viper.Viper) (Common, error) {
	profile := NetworkProfile{Network: Network(v.GetString("network"))}
	if path := v.GetString("profiles"); path != "" {
		profiles, err := LoadProfiles(path)
		if err != nil {
			return Common{}, err
		}
		if profile, err = profiles.Select(v.GetString("network")); err != nil {
			return Common{}, err
		}
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{"indexer-url", &profile.IndexerURL},
		{"tx-service-url", &profile.TxServiceURL},
		{"rpc-url", &profile.RPCURL},
		{"base-url", &profile.BaseURL},
	}
	for _, o := range overrides {
		if value := v.GetString(o.key); value != "" {
			*o.target = value
		}
	}

	if !profile.Network.Valid() {
		return Common{}, fmt.Errorf("network %q must be one of localnet, devnet, testnet, mainnet", profile.Network)
	}
	if profile.IndexerURL == "" {
		return Common{}, fmt.Errorf("indexer url is required (set a profile or --indexer-url)")
	}
	if err := validateURL(profile.IndexerURL); err != nil {
		return Common{}, fmt.Errorf("indexer url: %w", err)
	}

	return Common{
		Profile:  profile,
		LogLevel: v.GetString("log-level"),
		Timeout:  v.GetDuration("timeout"),
	}, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
