// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and RANKSUM_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/ranksum/internal/domain/metric"
)

// Source drivers.
const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxLeaderboardLimit caps the limit and top query parameters.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// WorkerCount sets the number of batch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue.
	QueueSize int `koanf:"queue_size"`

	// QueryTimeoutMS bounds each athlete query; 0 disables the bound.
	QueryTimeoutMS int `koanf:"query_timeout_ms"`

	// SourceDriver is one of memory, mysql, postgres, sqlite.
	SourceDriver string `koanf:"source_driver"`

	DBHost     string `koanf:"db_host"`
	DBPort     int    `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	// DBName is the database name, or the file path for sqlite.
	DBName    string `koanf:"db_name"`
	DBCharset string `koanf:"db_charset"`

	// Table layout.
	AthleteTable   string `koanf:"athlete_table"`
	IDColumn       string `koanf:"id_column"`
	DivisionColumn string `koanf:"division_column"`
	RegionColumn   string `koanf:"region_column"`

	// MetricKinds maps column names to kind names (elapsed_time,
	// weight_lifted, repetition_count), overriding suffix inference.
	MetricKinds map[string]string `koanf:"metric_kinds"`

	// SeedAthletes fills the memory source with generated athletes.
	SeedAthletes int `koanf:"seed_athletes"`
	// SeedDNFRate is the share of generated metric values set to DNF.
	SeedDNFRate float64 `koanf:"seed_dnf_rate"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxLeaderboardLimit: 1000,
		WorkerCount:         runtime.NumCPU() * 2,
		QueueSize:           256,
		QueryTimeoutMS:      5000,
		SourceDriver:        DriverMemory,
		DBHost:              "localhost",
		DBPort:              3306,
		DBName:              "games",
		DBCharset:           "utf8mb4",
		AthleteTable:        "athlete",
		IDColumn:            "id",
		DivisionColumn:      "division_id",
		RegionColumn:        "region_id",
		MetricKinds:         map[string]string{},
		SeedAthletes:        500,
		SeedDNFRate:         0.05,
	}
}

// QueryTimeout returns QueryTimeoutMS as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMS) * time.Millisecond
}

// Kinds parses MetricKinds.
func (c *Config) Kinds() (map[string]metric.Kind, error) {
	out := make(map[string]metric.Kind, len(c.MetricKinds))
	for col, name := range c.MetricKinds {
		k, err := metric.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: metric_kinds.%s: %w", ErrInvalidConfig, col, err)
		}
		out[col] = k
	}
	return out, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.QueryTimeoutMS < 0:
		return fmt.Errorf("%w: query_timeout_ms must not be negative", ErrInvalidConfig)
	case c.SeedAthletes < 0:
		return fmt.Errorf("%w: seed_athletes must not be negative", ErrInvalidConfig)
	case c.SeedDNFRate < 0 || c.SeedDNFRate > 1:
		return fmt.Errorf("%w: seed_dnf_rate must be within [0,1]", ErrInvalidConfig)
	}

	switch c.SourceDriver {
	case DriverMemory, DriverSQLite:
	case DriverMySQL, DriverPostgres:
		if c.DBHost == "" || c.DBPort <= 0 {
			return fmt.Errorf("%w: db_host and db_port are required for %s", ErrInvalidConfig, c.SourceDriver)
		}
	default:
		return fmt.Errorf("%w: unknown source_driver %q", ErrInvalidConfig, c.SourceDriver)
	}
	if c.SourceDriver == DriverSQLite && c.DBName == "" {
		return fmt.Errorf("%w: db_name is required for sqlite", ErrInvalidConfig)
	}

	if _, err := c.Kinds(); err != nil {
		return err
	}
	return nil
}

// parseKindList reads "col:kind,col:kind" as used in RANKSUM_METRIC_KINDS.
func parseKindList(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		col, kind, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("%w: metric_kinds entry %q must be column:kind", ErrInvalidConfig, pair)
		}
		out[strings.TrimSpace(col)] = strings.TrimSpace(kind)
	}
	return out, nil
}
