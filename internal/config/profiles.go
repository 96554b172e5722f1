package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Network is an IOTA network name.
type Network string

const (
	Localnet Network = "localnet"
	Devnet   Network = "devnet"
	Testnet  Network = "testnet"
	Mainnet  Network = "mainnet"
)

func (n Network) Valid() bool {
	switch n {
	case Localnet, Devnet, Testnet, Mainnet:
		return true
	default:
		return false
	}
}

// NetworkProfile is the set of endpoints and package ids of one deployment.
type NetworkProfile struct {
	Network           Network `yaml:"network"`
	BaseURL           string  `yaml:"baseUrl"`
	IndexerURL        string  `yaml:"isafeIndexerUrl"`
	TxServiceURL      string  `yaml:"txServiceUrl"`
	PackageID         string  `yaml:"packageId"`
	PackageMetadataID string  `yaml:"packageMetadataId"`
	RPCURL            string  `yaml:"rpcUrl,omitempty"`
}

// RPCEndpoint returns the configured RPC URL or the public node of the network.
func (p NetworkProfile) RPCEndpoint() string {
	if p.RPCURL != "" {
		return p.RPCURL
	}
	if p.Network == Localnet {
		return "http://127.0.0.1:9000"
	}
	return fmt.Sprintf("https://api.%s.iota.cafe", p.Network)
}

// Validate checks the profile. txServiceUrl and rpcUrl may be empty; an empty
// tx service disables transaction details.
func (p NetworkProfile) Validate() error {
	if !p.Network.Valid() {
		return fmt.Errorf("network %q must be one of localnet, devnet, testnet, mainnet", p.Network)
	}
	required := []struct {
		name  string
		value string
		url   bool
	}{
		{"baseUrl", p.BaseURL, true},
		{"isafeIndexerUrl", p.IndexerURL, true},
		{"packageId", p.PackageID, false},
		{"packageMetadataId", p.PackageMetadataID, false},
	}
	var errs []error
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
			continue
		}
		if field.url {
			if err := validateURL(field.value); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
			}
		}
	}
	optional := []struct {
		name  string
		value string
	}{
		{"txServiceUrl", p.TxServiceURL},
		{"rpcUrl", p.RPCURL},
	}
	for _, field := range optional {
		if field.value == "" {
			continue
		}
		if err := validateURL(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// Profiles maps a profile name to its network settings.
type Profiles map[string]NetworkProfile

// ParseProfiles decodes a YAML profile file. Unknown fields are rejected.
func ParseProfiles(r io.Reader) (Profiles, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var profiles Profiles
	if err := dec.Decode(&profiles); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("profile file is empty")
		}
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := profiles[name].Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return profiles, nil
}

func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return ParseProfiles(bytes.NewReader(data))
}

// Select returns the named profile.
func (p Profiles) Select(name string) (NetworkProfile, error) {
	profile, ok := p[name]
	if !ok {
		return NetworkProfile{}, fmt.Errorf("unknown network profile %q", name)
	}
	return profile, nil
}
