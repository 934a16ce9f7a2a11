package ndimg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of a configuration file.  TOML is the default
// format; files ending in .yaml or .yml are parsed as YAML.
//
//	[logging]
//	logfile = "/tmp/ndimg.log"
//	max_log_size = 500 # MB
//	max_log_age = 30   # days
//	level = "info"
//
//	[storage]
//	factory = "cell"
//	optimized = true
//
//	[storage.params]
//	cell_size = [64, 64, 16]
//	max_resident_cells = 256
//	spill = "badger"
//	spill_path = "spill"
//	compression = "zstd"
//
//	[threads]
//	count = 8
type Config struct {
	Logging LogConfig     `toml:"logging" yaml:"logging"`
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Threads ThreadConfig  `toml:"threads" yaml:"threads"`

	location string
}

// StorageConfig selects the container factory and its backend-specific parameters.
type StorageConfig struct {
	Factory   string                 `toml:"factory" yaml:"factory"`
	Optimized bool                   `toml:"optimized" yaml:"optimized"`
	Params    map[string]interface{} `toml:"params" yaml:"params"`
}

// ThreadConfig sizes worker pools.  A non-positive count uses all available CPUs.
type ThreadConfig struct {
	Count int `toml:"count" yaml:"count"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Factory: "array", Optimized: true},
	}
}

// LoadConfig parses a TOML or YAML configuration file.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no configuration file provided")
	}
	c := DefaultConfig()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("could not decode YAML config %q: %v", filename, err)
		}
	default:
		md, err := toml.DecodeFile(filename, c)
		if err != nil {
			return nil, fmt.Errorf("could not decode TOML config %q: %v", filename, err)
		}
		for _, key := range md.Undecoded() {
			Warningf("ignoring unknown configuration key %q in %s\n", key.String(), filename)
		}
	}
	c.location = filename
	if err := c.convertPathsToAbsolute(); err != nil {
		return nil, err
	}
	Debugf("configuration loaded from %s: %+v\n", filename, *c)
	return c, nil
}

// Location returns the file the configuration was loaded from, if any.
func (c *Config) Location() string {
	return c.location
}

// convertPathsToAbsolute resolves relative file paths against the directory of
// the configuration file.
func (c *Config) convertPathsToAbsolute() error {
	dir := filepath.Dir(c.location)
	if c.Logging.Logfile != "" && !filepath.IsAbs(c.Logging.Logfile) {
		c.Logging.Logfile = filepath.Join(dir, c.Logging.Logfile)
	}
	if p, ok := c.Storage.Params["spill_path"].(string); ok && p != "" && !filepath.IsAbs(p) {
		abs, err := filepath.Abs(filepath.Join(dir, p))
		if err != nil {
			return fmt.Errorf("bad spill_path %q: %v", p, err)
		}
		c.Storage.Params["spill_path"] = abs
	}
	return nil
}
