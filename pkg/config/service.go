package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/analyzer"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/logging"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/pathing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/uart"
)

var ActiveAnalyzerConfig *AnalyzerConfig

func Default() *AnalyzerConfig {
	return &AnalyzerConfig{
		Decoder: DecoderConfig{Epsilon: uart.DefaultEpsilon},
		Serial: SerialConfig{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   "N",
			StopBits: 1,
		},
		Logging: logging.DefaultConfig(),
	}
}

// LoadAnalyzerConfig loads path into ActiveAnalyzerConfig. An empty path
// means the default location, where a default file is written on first use.
func LoadAnalyzerConfig(path string) error {
	create := false
	if path == "" {
		path = pathing.GetConfigPath()
		create = true
	}
	cfg, err := Load(path, create)
	if err != nil {
		return err
	}
	ActiveAnalyzerConfig = cfg
	return nil
}

// Load reads the file at path over the defaults. A missing file is an
// error unless createDefault is set, in which case the defaults are
// written there and returned.
func Load(path string, createDefault bool) (*AnalyzerConfig, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !createDefault {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *AnalyzerConfig) error {
	if err := pathing.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c *AnalyzerConfig) Validate() error {
	if c.Decoder.Epsilon <= 0 || c.Decoder.Epsilon >= 0.5 {
		return fmt.Errorf("decoder.epsilon must be in (0, 0.5), got %v", c.Decoder.Epsilon)
	}
	if _, err := c.LineConfig(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// LineConfig converts the [serial] section.
func (c *AnalyzerConfig) LineConfig() (serialcfg.Config, error) {
	parity, err := serialcfg.ParseParity(c.Serial.Parity)
	if err != nil {
		return serialcfg.Config{}, fmt.Errorf("serial.parity: %w", err)
	}
	stop, err := serialcfg.ParseStopBits(c.Serial.StopBits)
	if err != nil {
		return serialcfg.Config{}, fmt.Errorf("serial.stop_bits: %w", err)
	}
	line := serialcfg.Config{
		BaudRate: c.Serial.BaudRate,
		DataBits: c.Serial.DataBits,
		Parity:   parity,
		StopBits: stop,
	}
	if err := line.Validate(); err != nil {
		return serialcfg.Config{}, fmt.Errorf("serial: %w", err)
	}
	return line, nil
}

func (c *AnalyzerConfig) AnalyzerOptions() (analyzer.Options, error) {
	line, err := c.LineConfig()
	if err != nil {
		return analyzer.Options{}, err
	}
	return analyzer.Options{
		Epsilon:        c.Decoder.Epsilon,
		Initial:        line,
		DumpCharacters: c.Decoder.DumpCharacters,
	}, nil
}

// ArchivePath is where the packet archive lives when enabled.
func (c *AnalyzerConfig) ArchivePath() string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	return pathing.GetArchiveDbPath()
}
