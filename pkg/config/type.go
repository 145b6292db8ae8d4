package config

import "github.com/NotCoffee418/sss_trace_analyzer/pkg/logging"

type AnalyzerConfig struct {
	Decoder DecoderConfig  `toml:"decoder"`
	Serial  SerialConfig   `toml:"serial"`
	Logging logging.Config `toml:"logging"`
	Archive ArchiveConfig  `toml:"archive"`
	Metrics MetricsConfig  `toml:"metrics"`
}

type DecoderConfig struct {
	// Edge tolerance in bit periods
	Epsilon        float64 `toml:"epsilon"`
	DumpCharacters bool    `toml:"dump_characters"`
}

// SerialConfig is the line configuration both captures start with.
type SerialConfig struct {
	BaudRate float64 `toml:"baud_rate"`
	DataBits int     `toml:"data_bits"`
	Parity   string  `toml:"parity"`
	StopBits float64 `toml:"stop_bits"`
}

type ArchiveConfig struct {
	Enabled bool `toml:"enabled"`
	// Empty means the default data directory
	Path string `toml:"path"`
}

type MetricsConfig struct {
	// Prometheus textfile written after each run, empty to disable
	Textfile string `toml:"textfile"`
}
