package sibyl

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the file-level tracing configuration, typically read from a
// sibyl.yaml. Zero values leave the corresponding option untouched.
type Config struct {
	OutputDir  string `yaml:"output_dir"`
	FilePrefix string `yaml:"file_prefix"`
	BufferSize int    `yaml:"buffer_size"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sibyl: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sibyl: parse config: %w", err)
	}
	if cfg.BufferSize < 0 {
		return Config{}, fmt.Errorf("sibyl: buffer_size must not be negative: %w", ErrInvalidArgument)
	}
	return cfg, nil
}

// Apply pushes the configured values onto the scoped option registry
// and returns a restore function undoing them in one call.
func (c Config) Apply() (restore func()) {
	var restores []func()
	if c.OutputDir != "" {
		restores = append(restores, SetOption(OptionOutputDir, c.OutputDir))
	}
	if c.FilePrefix != "" {
		restores = append(restores, SetOption(OptionFilePrefix, c.FilePrefix))
	}
	if c.BufferSize > 0 {
		restores = append(restores, SetOption(OptionBufferSize, strconv.Itoa(c.BufferSize)))
	}
	return func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
}
