// Package testathletes generates synthetic athlete rows for tests and for
// seeding a local database.
package testathletes

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/ranksum/internal/domain/model"
)

// Column names produced by the generator.
const (
	ColumnID       = "id"
	ColumnName     = "name"
	ColumnDivision = "division_id"
	ColumnRegion   = "region_id"
	ColumnAge      = "age"
)

// MetricColumns are the scoring columns produced by the generator, in table order.
var MetricColumns = []string{
	"back_squat_lbs",
	"deadlift_lbs",
	"fran_time_secs",
	"grace_time_secs",
	"max_pull_ups",
	"open_18_1_reps",
}

// Value ranges per metric. Ranges are narrow enough that ties are common.
var metricRanges = map[string][2]int{
	"back_squat_lbs":  {135, 405},
	"deadlift_lbs":    {185, 545},
	"fran_time_secs":  {120, 600},
	"grace_time_secs": {60, 420},
	"max_pull_ups":    {0, 80},
	"open_18_1_reps":  {60, 300},
}

var firstNames = []string{"Ana", "Ben", "Chloe", "Dev", "Eli", "Fay", "Gus", "Hana", "Ivo", "Jade", "Kai", "Lena"}
var lastNames = []string{"Alvarez", "Brooks", "Chen", "Diaz", "Evans", "Fischer", "Garcia", "Hughes", "Ito", "Jensen"}

// Config controls generation.
type Config struct {
	Count     int     // number of athletes
	Seed      uint64  // same seed, same rows
	DNFRate   float64 // probability in [0,1] that a metric value is -1
	Divisions int     // division ids are 1..Divisions
	Regions   int     // region ids are 1..Regions
}

// DefaultConfig returns a small reproducible configuration.
func DefaultConfig() Config {
	return Config{Count: 100, Seed: 1, DNFRate: 0.05, Divisions: 2, Regions: 3}
}

// Generate returns cfg.Count athlete rows with unique int64 identifiers
// starting at 1.
func Generate(cfg Config) ([]model.Row, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.DNFRate < 0 || cfg.DNFRate > 1 {
		return nil, fmt.Errorf("dnf rate must be within [0,1], got %v", cfg.DNFRate)
	}
	if cfg.Divisions < 1 {
		cfg.Divisions = 1
	}
	if cfg.Regions < 1 {
		cfg.Regions = 1
	}

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	rows := make([]model.Row, 0, cfg.Count)
	for i := range cfg.Count {
		row := model.Row{
			ColumnID:       int64(i + 1),
			ColumnName:     firstNames[r.IntN(len(firstNames))] + " " + lastNames[r.IntN(len(lastNames))],
			ColumnDivision: int64(1 + r.IntN(cfg.Divisions)),
			ColumnRegion:   int64(1 + r.IntN(cfg.Regions)),
			ColumnAge:      int64(18 + r.IntN(40)),
		}
		for _, col := range MetricColumns {
			if cfg.DNFRate > 0 && r.Float64() < cfg.DNFRate {
				row[col] = int64(model.DNF)
				continue
			}
			bounds := metricRanges[col]
			row[col] = int64(bounds[0] + r.IntN(bounds[1]-bounds[0]+1))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Columns returns every column the generator produces, descriptive first.
func Columns() []string {
	out := []string{ColumnID, ColumnName, ColumnDivision, ColumnRegion, ColumnAge}
	return append(out, MetricColumns...)
}
