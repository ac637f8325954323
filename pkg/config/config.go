// Package config holds the splitter's build-time tunables as a plain
// JSON-tagged struct, loaded and saved with encoding/json.
package config

import (
	"encoding/json"
	"os"

	"github.com/cyw0ng95/netcas-splitter/pkg/mode"
	"github.com/cyw0ng95/netcas-splitter/pkg/splitter"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = "netcas.json"

// Config collects every splitter tunable: window sizes, scale,
// thresholds, and the bandwidth-table path. It has no fields for the
// cache/backend stub store paths.
type Config struct {
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	Mode      ModeConfig      `json:"mode,omitempty"`
	Dispatch  DispatchConfig  `json:"dispatch,omitempty"`
	Oracle    OracleConfig    `json:"oracle,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty"`
}

// TelemetryConfig tunes the sampling windows.
type TelemetryConfig struct {
	WindowSize            uint64 `json:"window_size,omitempty"`             // default 16
	StabilizationSamples  uint64 `json:"stabilization_samples,omitempty"`   // default 40
	MonitorIntervalMillis uint64 `json:"monitor_interval_millis,omitempty"` // default 100
	LogIntervalMillis     uint64 `json:"log_interval_millis,omitempty"`     // default 1000
}

// ModeConfig tunes the controller thresholds. The two latency thresholds
// are per-mille; RDMAThreshold is in throughput units and IOPSThreshold
// in IOPS.
type ModeConfig struct {
	RDMAThreshold        uint64 `json:"rdma_threshold,omitempty"`
	IOPSThreshold        uint64 `json:"iops_threshold,omitempty"`
	LatencyCongestPermil uint64 `json:"latency_congest_permil,omitempty"`
	LatencyRecoverPermil uint64 `json:"latency_recover_permil,omitempty"`
}

// DispatchConfig tunes the dispatcher's pattern construction.
type DispatchConfig struct {
	Window     uint64 `json:"window,omitempty"`      // default 100
	MaxPattern uint64 `json:"max_pattern,omitempty"` // default 10
	SplitScale uint64 `json:"split_scale,omitempty"` // default 10000
}

// OracleConfig points the HTML-table oracle loader at its data source.
type OracleConfig struct {
	TablePath string `json:"table_path,omitempty"`
}

// LoggingConfig tunes the leveled logger.
type LoggingConfig struct {
	Level string `json:"level,omitempty"`
	Dir   string `json:"dir,omitempty"`
}

// Defaults returns the reference constants.
func Defaults() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			WindowSize:            16,
			StabilizationSamples:  40,
			MonitorIntervalMillis: 100,
			LogIntervalMillis:     1000,
		},
		Mode: ModeConfig{
			RDMAThreshold:        100,
			IOPSThreshold:        1000,
			LatencyCongestPermil: 700,
			LatencyRecoverPermil: 500,
		},
		Dispatch: DispatchConfig{
			Window:     100,
			MaxPattern: 10,
			SplitScale: 10000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads a Config from filename, filling unset fields with the
// reference defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToParams translates cfg into the splitter.Params a Splitter is
// constructed with, leaving IODepth, NumJobs, and PinCPU at the
// splitter's own reference defaults since the config file does not
// carry a notion of either.
func (c *Config) ToParams() splitter.Params {
	p := splitter.DefaultParams()
	p.RingCapacity = int(c.Telemetry.WindowSize)
	p.StabilizationSamples = c.Telemetry.StabilizationSamples
	p.MonitorIntervalMS = c.Telemetry.MonitorIntervalMillis
	p.LogIntervalMS = c.Telemetry.LogIntervalMillis
	p.Window = c.Dispatch.Window
	p.MaxPattern = c.Dispatch.MaxPattern
	p.Scale = c.Dispatch.SplitScale
	p.Thresholds = mode.Thresholds{
		RDMAThreshold:        c.Mode.RDMAThreshold,
		IOPSThreshold:        c.Mode.IOPSThreshold,
		LatencyCongestPermil: c.Mode.LatencyCongestPermil,
		LatencyRecoverPermil: c.Mode.LatencyRecoverPermil,
	}
	return p
}

// SaveConfig writes cfg to filename as indented JSON.
func SaveConfig(cfg *Config, filename string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
