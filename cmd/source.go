package main

import (
	"context"
	"fmt"

	repository "github.com/okian/ranksum/internal/adapters/repository"
	"github.com/okian/ranksum/internal/config"
	"github.com/okian/ranksum/internal/testathletes"
	"github.com/okian/ranksum/pkg/logger"
)

// seedValue keeps generated athletes stable across restarts.
const seedValue = 1

// openSource builds the athlete source selected by cfg.SourceDriver.
func openSource(ctx context.Context, cfg *config.Config) (repository.Source, error) {
	opts := []repository.Option{
		repository.WithTable(cfg.AthleteTable),
		repository.WithIDColumn(cfg.IDColumn),
		repository.WithDivisionColumn(cfg.DivisionColumn),
		repository.WithRegionColumn(cfg.RegionColumn),
		repository.WithLogger(logger.Get().Named("source")),
	}

	if cfg.SourceDriver == config.DriverMemory {
		gen := testathletes.DefaultConfig()
		gen.Count = cfg.SeedAthletes
		gen.Seed = seedValue
		gen.DNFRate = cfg.SeedDNFRate
		rows, err := testathletes.Generate(gen)
		if err != nil {
			return nil, fmt.Errorf("seed memory source: %w", err)
		}
		return repository.NewMemorySource(rows, opts...), nil
	}

	dialect, err := repository.DialectFor(cfg.SourceDriver)
	if err != nil {
		return nil, err
	}
	dsn := dialect.DSN(dsnConfig(cfg))
	return repository.Open(ctx, dialect, dsn, opts...)
}

func dsnConfig(cfg *config.Config) repository.DSNConfig {
	return repository.DSNConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Charset:  cfg.DBCharset,
	}
}
