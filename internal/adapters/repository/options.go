package repository

import (
	"time"

	"github.com/okian/ranksum/pkg/logger"
)

// Default table layout.
const (
	DefaultTable          = "athlete"
	DefaultDivisionColumn = "division_id"
	DefaultRegionColumn   = "region_id"
)

// settings are shared by every Source implementation.
type settings struct {
	table          string
	idColumn       string
	divisionColumn string
	regionColumn   string
	timeout        time.Duration
	logger         logger.Logger
}

func defaultSettings() settings {
	return settings{
		table:          DefaultTable,
		idColumn:       "id",
		divisionColumn: DefaultDivisionColumn,
		regionColumn:   DefaultRegionColumn,
	}
}

// Option applies a configuration option to a Source.
type Option func(*settings)

// WithTable sets the athlete table name.
func WithTable(table string) Option {
	return func(s *settings) {
		if table != "" {
			s.table = table
		}
	}
}

// WithIDColumn sets the athlete identifier column.
func WithIDColumn(column string) Option {
	return func(s *settings) {
		if column != "" {
			s.idColumn = column
		}
	}
}

// WithDivisionColumn sets the column filtered by Query.Division.
func WithDivisionColumn(column string) Option {
	return func(s *settings) {
		if column != "" {
			s.divisionColumn = column
		}
	}
}

// WithRegionColumn sets the column filtered by Query.Region.
func WithRegionColumn(column string) Option {
	return func(s *settings) {
		if column != "" {
			s.regionColumn = column
		}
	}
}

// WithTimeout bounds every query. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the source.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
