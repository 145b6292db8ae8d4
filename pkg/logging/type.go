package logging

// Config is the [logging] section of the analyzer configuration.
type Config struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
	// Format is console or json.
	Format string `toml:"format"`
	// Output is stdout, stderr or a file path rotated by size.
	Output string `toml:"output"`
	// Rotation limits in MB, files and days
	MaxSize    int  `toml:"max_size"`
	MaxBackups int  `toml:"max_backups"`
	MaxAge     int  `toml:"max_age"`
	Compress   bool `toml:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}
