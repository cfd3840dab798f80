// Package config loads the on-disk YAML configuration for a goldrelay
// node, mirroring the shape the teacher's own config package uses
// (top-level Config split into a protocol section and an application
// section) while naming the fields this node's peer session engine
// actually consumes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// Config is the top-level node configuration.
type Config struct {
	Protocol    ProtocolConfig    `yaml:"protocol"`
	Application ApplicationConfig `yaml:"application"`
}

// ProtocolConfig describes the network this node participates in —
// values that must match across every honest peer.
type ProtocolConfig struct {
	// Magic selects the network (mainnet/testnet/regtest).
	Magic protocol.Magic `yaml:"magic"`
	// AuxPowEnabled turns on the merge-mined auxiliary proof-of-work
	// trailer on block and header headers.
	AuxPowEnabled bool `yaml:"auxPowEnabled"`
	// SeedList is the bootstrap peer set ("host:port") dialed at
	// startup; its hosts are also accepted inbound when the node is
	// already at MaxPeers.
	SeedList []string `yaml:"seedList"`
	// GenesisHash is the reversed-hex display hash of block 0, used by
	// get_genesis_block to bootstrap an empty chain (spec.md §4.4).
	GenesisHash string `yaml:"genesisHash"`
}

// ApplicationConfig describes how this particular node runs.
type ApplicationConfig struct {
	LogPath  string        `yaml:"logPath"`
	LogLevel string        `yaml:"logLevel"`
	DBPath   string        `yaml:"dbPath"`

	ListenAddress string `yaml:"listenAddress"`

	DialTimeout  time.Duration `yaml:"dialTimeout"`
	PingInterval time.Duration `yaml:"pingInterval"`
	StallTimeout time.Duration `yaml:"stallTimeout"`

	MaxPeers         int `yaml:"maxPeers"`
	MinPeers         int `yaml:"minPeers"`
	AttemptConnPeers int `yaml:"attemptConnPeers"`

	InvQueueSize       int `yaml:"invQueueSize"`
	IngestionQueueSize int `yaml:"ingestionQueueSize"`
	RelayCacheSize     int `yaml:"relayCacheSize"`

	// Relay controls whether inbound tx/block announcements are
	// forwarded to other peers.
	Relay bool `yaml:"relay"`
	// Announce controls whether this node pushes its own Addr record
	// on connect and in reply to getaddr (spec.md §6, `announce`).
	Announce bool `yaml:"announce"`

	Prometheus MetricsConfig `yaml:"prometheus"`
}

// MetricsConfig toggles the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns the baseline configuration new installs start from,
// tuned for the embedded regtest network.
func Default() Config {
	return Config{
		Protocol: ProtocolConfig{
			Magic:         protocol.RegTest,
			AuxPowEnabled: true,
			GenesisHash:   "0000000000000000000000000000000000000000000000000000000000000000",
		},
		Application: ApplicationConfig{
			LogPath:            "goldrelayd.log",
			LogLevel:           "info",
			DBPath:             "goldrelay.bolt",
			ListenAddress:      ":9999",
			DialTimeout:        10 * time.Second,
			PingInterval:       2 * time.Minute,
			StallTimeout:       30 * time.Second,
			MaxPeers:           125,
			MinPeers:           8,
			AttemptConnPeers:   8,
			InvQueueSize:       5000,
			IngestionQueueSize: 2000,
			RelayCacheSize:     5000,
			Relay:              true,
			Announce:           true,
		},
	}
}

// Load reads and parses a YAML config file at path, applying it on top
// of Default() so a partial file still produces a usable config.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEmbeddedDefault parses the embedded default configuration
// shipped with the binary, for first-run bootstrap when no config
// file exists yet.
func LoadEmbeddedDefault() (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(DefaultYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse embedded default: %w", err)
	}
	return cfg, nil
}
