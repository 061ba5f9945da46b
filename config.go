package albumsearch

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/albumsearch/ai"
	"github.com/poiesic/albumsearch/search"
)

// Config is the on-disk configuration of a database.
//
//	db = "/var/lib/albumsearch"
//
//	[ai]
//	kind = "local"
//	embedding_host = "http://localhost:11434"
//	embedding_model = "all-minilm"
//
//	[search]
//	use_llm_rerank = true
//	capability_timeout = "5s"
type Config struct {
	DB     string       `toml:"db"`
	AI     ai.Config    `toml:"ai"`
	Search SearchConfig `toml:"search"`
}

// SearchConfig is search.Config as written in a config file. Durations are
// strings in time.ParseDuration form.
type SearchConfig struct {
	search.Config
	CapabilityTimeout string `toml:"capability_timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		AI:     *ai.DefaultConfig(),
		Search: SearchConfig{Config: *search.DefaultConfig()},
	}
}

// LoadConfigFile reads a TOML config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML config data and validates both sections.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}

	if s := strings.TrimSpace(cfg.Search.CapabilityTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: capability_timeout: %w", ErrInvalidConfigFile, err)
		}
		cfg.Search.Config.CapabilityTimeout = d
	}

	if err := cfg.AI.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	if err := cfg.Search.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return cfg, nil
}

// SearchSettings returns the search section as a search.Config.
func (c *Config) SearchSettings() *search.Config {
	settings := c.Search.Config
	return &settings
}
