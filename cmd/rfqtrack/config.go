package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
	"github.com/fwojciec/rfqtrack/lru"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds the program configuration.
type Config struct {
	Crawl CrawlConfig `toml:"crawl"`
	Store StoreConfig `toml:"store"`
	HTTP  HTTPConfig  `toml:"http"`
}

// CrawlConfig configures the crawler.
type CrawlConfig struct {
	RootPath          string        `toml:"root_path"`
	FolderExcludeTags []string      `toml:"folder_exclude_tags"`
	FileExcludeTags   []string      `toml:"file_exclude_tags"`
	ProjectPattern    string        `toml:"project_pattern"`
	Concurrency       int           `toml:"concurrency"`
	IORate            float64       `toml:"io_rate"`
	Timeout           time.Duration `toml:"timeout"`
}

// StoreConfig locates the SQLite database. DSN is either a database file,
// ":memory:" or a directory holding <database>.db.
type StoreConfig struct {
	DSN      string `toml:"dsn"`
	Database string `toml:"database"`
}

// HTTPConfig configures the dashboard API.
type HTTPConfig struct {
	Addr        string        `toml:"addr"`
	CORSOrigins []string      `toml:"cors_origins"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
	CacheSize   int           `toml:"cache_size"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			FolderExcludeTags: []string{"Template", "archive"},
			FileExcludeTags:   []string{".db"},
			ProjectPattern:    crawl.DefaultProjectPattern,
			Concurrency:       crawl.DefaultConcurrency,
			Timeout:           crawl.DefaultTimeout,
		},
		Store: StoreConfig{
			DSN:      filepath.Join("~", ".rfqtrack"),
			Database: "rfq_tracker",
		},
		HTTP: HTTPConfig{
			Addr:      ":8080",
			CacheTTL:  lru.DefaultTTL,
			CacheSize: lru.DefaultSize,
		},
	}
}

// DefaultConfigPath returns ~/.rfqtrack/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".rfqtrack", "config.toml")
}

// LoadConfig reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. Variables from a
// .env file in the working directory are loaded first and never override
// the real environment.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(expandPath(path), cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, rfqtrack.Errorf(rfqtrack.EINVALID, "invalid config file %s: %s", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Crawl.RootPath = expandPath(cfg.Crawl.RootPath)
	cfg.Store.DSN = expandPath(cfg.Store.DSN)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("RFQ_ROOT_PATH"); ok {
		c.Crawl.RootPath = v
	}
	if v, ok := lookup("RFQ_STORE_DSN"); ok {
		c.Store.DSN = v
	}
	if v, ok := lookup("RFQ_STORE_DB"); ok {
		c.Store.Database = v
	}
	if v, ok := lookup("RFQ_HTTP_ADDR"); ok {
		c.HTTP.Addr = v
	}
	if v, ok := lookup("RFQ_FOLDER_EXCLUDE_TAGS"); ok {
		c.Crawl.FolderExcludeTags = splitList(v)
	}
	if v, ok := lookup("RFQ_FILE_EXCLUDE_TAGS"); ok {
		c.Crawl.FileExcludeTags = splitList(v)
	}
	if v, ok := lookup("RFQ_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rfqtrack.Errorf(rfqtrack.EINVALID, "invalid RFQ_CONCURRENCY %q", v)
		}
		c.Crawl.Concurrency = n
	}
	return nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(&c.Crawl,
		validation.Field(&c.Crawl.Concurrency, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Crawl.ProjectPattern, validation.Required, validation.By(isRegexp)),
		validation.Field(&c.Crawl.IORate, validation.Min(0.0)),
	)
	if err == nil {
		err = validation.ValidateStruct(&c.Store,
			validation.Field(&c.Store.DSN, validation.Required),
			validation.Field(&c.Store.Database, validation.Required),
		)
	}
	if err == nil {
		err = validation.ValidateStruct(&c.HTTP,
			validation.Field(&c.HTTP.CacheSize, validation.Min(0)),
		)
	}
	if err != nil {
		return rfqtrack.Errorf(rfqtrack.EINVALID, "invalid config: %s", err)
	}
	return nil
}

// ValidateCrawl additionally requires a crawl root.
func (c *Config) ValidateCrawl() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c.Crawl.RootPath, validation.Required); err != nil {
		return rfqtrack.Errorf(rfqtrack.EINVALID, "invalid config: root_path: %s", err)
	}
	return nil
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	dsn := c.Store.DSN
	switch {
	case dsn == ":memory:", strings.HasPrefix(dsn, "file:"):
		return dsn
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return dsn
	}
	return filepath.Join(dsn, c.Store.Database+".db")
}

// Filter returns the crawl exclusion filter.
func (c *Config) Filter() rfqtrack.Filter {
	return rfqtrack.Filter{
		FolderTags: c.Crawl.FolderExcludeTags,
		FileTags:   c.Crawl.FileExcludeTags,
	}
}

func isRegexp(value any) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
