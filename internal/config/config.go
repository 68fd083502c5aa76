// Package config loads the TOML configuration of the vecdb server.
//
//	[server]
//	addr = ":8080"
//	rate_limit = 200.0
//
//	[log]
//	level = "info"
//	format = "json"
//
//	[index]
//	type = "hnsw"
//	m = 16
//
//	[snapshot]
//	backend = "local"
//	path = "/var/lib/vecdb"
//	compression = "zstd"
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/vecdb/codec"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/index/flat"
	"github.com/hupe1980/vecdb/index/hnsw"
	"github.com/hupe1980/vecdb/snapshot"
)

// Config is the server configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`
	Index    Index    `toml:"index"`
	Snapshot Snapshot `toml:"snapshot"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr string `toml:"addr"`

	// RateLimit is the sustained request rate per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	// Metrics exposes /metrics when true.
	Metrics bool `toml:"metrics"`

	// ShutdownTimeout bounds graceful shutdown, e.g. "10s".
	ShutdownTimeout string `toml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Log configures logging.
type Log struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

// Index configures the index strategy.
type Index struct {
	Type                string `toml:"type"` // hnsw, flat
	M                   int    `toml:"m"`
	EFConstruction      int    `toml:"ef_construction"`
	EFSearch            int    `toml:"ef_search"`
	Heuristic           bool   `toml:"heuristic"`
	Seed                int64  `toml:"seed"`
	MaxConcurrentBuilds int    `toml:"max_concurrent_builds"`
}

// Snapshot configures where the server persists its state.
type Snapshot struct {
	// Backend is one of "" (disabled), "local", "s3", "minio".
	Backend string `toml:"backend"`

	// Name is the blob name of the snapshot.
	Name string `toml:"name"`

	// Path is the directory of the local backend.
	Path string `toml:"path"`

	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	Secure       bool   `toml:"secure"`
	UsePathStyle bool   `toml:"use_path_style"`

	Codec       string `toml:"codec"`
	Compression string `toml:"compression"`

	// IOLimit throttles snapshot IO in bytes per second. Zero disables it.
	IOLimit int64 `toml:"io_limit"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			RateBurst:       100,
			Metrics:         true,
			ShutdownTimeout: "10s",
			MaxBodyBytes:    32 << 20,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Index: Index{
			Type:                "hnsw",
			M:                   hnsw.DefaultOptions.M,
			EFConstruction:      hnsw.DefaultOptions.EFConstruction,
			EFSearch:            hnsw.DefaultOptions.EFSearch,
			Heuristic:           hnsw.DefaultOptions.Heuristic,
			Seed:                hnsw.DefaultOptions.Seed,
			MaxConcurrentBuilds: 1,
		},
		Snapshot: Snapshot{
			Name:        "vecdb.snap",
			Codec:       codec.Default.Name(),
			Compression: "zstd",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes cfg as TOML to path.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be positive when rate limiting"))
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	switch c.Index.Type {
	case "hnsw":
		if c.Index.M < 2 {
			errs = append(errs, errors.New("index.m must be at least 2"))
		}
		if c.Index.EFConstruction < c.Index.M {
			errs = append(errs, errors.New("index.ef_construction must be at least index.m"))
		}
		if c.Index.EFSearch < 1 {
			errs = append(errs, errors.New("index.ef_search must be positive"))
		}
	case "flat":
	default:
		errs = append(errs, fmt.Errorf("index.type: unknown type %q", c.Index.Type))
	}
	if c.Index.MaxConcurrentBuilds < 1 {
		errs = append(errs, errors.New("index.max_concurrent_builds must be positive"))
	}

	switch c.Snapshot.Backend {
	case "":
	case "local":
		if c.Snapshot.Path == "" {
			errs = append(errs, errors.New("snapshot.path is required for the local backend"))
		}
	case "s3", "minio":
		if c.Snapshot.Bucket == "" {
			errs = append(errs, fmt.Errorf("snapshot.bucket is required for the %s backend", c.Snapshot.Backend))
		}
		if c.Snapshot.Backend == "minio" && c.Snapshot.Endpoint == "" {
			errs = append(errs, errors.New("snapshot.endpoint is required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.backend: unknown backend %q", c.Snapshot.Backend))
	}
	if c.Snapshot.Backend != "" && c.Snapshot.Name == "" {
		errs = append(errs, errors.New("snapshot.name must not be empty"))
	}
	if _, ok := codec.ByName(c.Snapshot.Codec); !ok {
		errs = append(errs, fmt.Errorf("snapshot.codec: unknown codec %q", c.Snapshot.Codec))
	}
	if _, err := snapshot.ParseCompression(c.Snapshot.Compression); err != nil {
		errs = append(errs, err)
	}
	if c.Snapshot.IOLimit < 0 {
		errs = append(errs, errors.New("snapshot.io_limit must not be negative"))
	}

	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LogLevel returns the configured slog level. Call Validate first.
func (c Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// ShutdownTimeout returns the parsed shutdown timeout. Call Validate first.
func (c Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// Builder returns the configured index strategy.
func (c Index) Builder() index.Builder {
	if c.Type == "flat" {
		return flat.Builder{}
	}

	return hnsw.NewBuilder(func(o *hnsw.Options) {
		o.M = c.M
		o.EFConstruction = c.EFConstruction
		o.EFSearch = c.EFSearch
		o.Heuristic = c.Heuristic
		o.Seed = c.Seed
	})
}

// CodecAndCompression returns the snapshot codec and compression. Call Validate first.
func (c Snapshot) CodecAndCompression() (codec.Codec, snapshot.Compression) {
	cc, ok := codec.ByName(c.Codec)
	if !ok {
		cc = codec.Default
	}
	comp, _ := snapshot.ParseCompression(c.Compression)
	return cc, comp
}
