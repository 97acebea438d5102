// Command seed generates synthetic athletes and loads them into the
// configured SQL source, or prints them as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	repository "github.com/okian/ranksum/internal/adapters/repository"
	"github.com/okian/ranksum/internal/config"
	"github.com/okian/ranksum/internal/testathletes"
	"github.com/okian/ranksum/pkg/logger"
)

const defaultSeedTimeout = 5 * time.Minute

func main() {
	defaults := testathletes.DefaultConfig()
	var (
		count     = flag.Int("count", defaults.Count, "Number of athletes to generate")
		seed      = flag.Uint64("seed", defaults.Seed, "Generator seed")
		dnfRate   = flag.Float64("dnf-rate", defaults.DNFRate, "Share of metric values set to DNF (-1)")
		divisions = flag.Int("divisions", defaults.Divisions, "Number of divisions")
		regions   = flag.Int("regions", defaults.Regions, "Number of regions")
		printJSON = flag.Bool("json", false, "Print athletes as JSON instead of loading the database")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	gen := testathletes.Config{Count: *count, Seed: *seed, DNFRate: *dnfRate, Divisions: *divisions, Regions: *regions}
	if err := run(ctx, cfg, gen, *printJSON, os.Stdout); err != nil {
		os.Stderr.WriteString("seed failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run generates athletes and writes them to out as JSON or loads them into
// the SQL source configured by cfg.
func run(ctx context.Context, cfg *config.Config, gen testathletes.Config, printJSON bool, out io.Writer) error {
	rows, err := testathletes.Generate(gen)
	if err != nil {
		return err
	}

	if printJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if cfg.SourceDriver == config.DriverMemory {
		return fmt.Errorf("source_driver %q has nothing to load; use -json or a SQL driver", cfg.SourceDriver)
	}
	dialect, err := repository.DialectFor(cfg.SourceDriver)
	if err != nil {
		return err
	}
	dsn := dialect.DSN(repository.DSNConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Charset:  cfg.DBCharset,
	})

	src, err := repository.Open(ctx, dialect, dsn,
		repository.WithTable(cfg.AthleteTable),
		repository.WithIDColumn(cfg.IDColumn),
		repository.WithDivisionColumn(cfg.DivisionColumn),
		repository.WithRegionColumn(cfg.RegionColumn),
	)
	if err != nil {
		return err
	}
	defer src.Close()

	return src.Load(ctx, testathletes.Columns(), rows)
}
