// Package types contains common types used across the application
package types

import (
	"encoding/json"
	"maps"
)

// Field names Entry sets on every row. Descriptive columns may not reuse them.
const (
	PlaceField  = "place"
	PointsField = "points"
)

// Entry is one leaderboard row as returned to clients.
type Entry struct {
	Place  int            `json:"place"`
	Points int            `json:"points"`
	Fields map[string]any `json:"-"`
}

// MarshalJSON flattens the descriptive fields next to place and points.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+2)
	maps.Copy(out, e.Fields)
	out[PlaceField] = e.Place
	out[PointsField] = e.Points
	return json.Marshal(out)
}

// MetricInfo describes one scoring metric of a board.
type MetricInfo struct {
	Column    string `json:"column"`
	Kind      string `json:"kind"`
	Ascending bool   `json:"ascending"`
}

// Board is a computed leaderboard.
type Board struct {
	Division    int64        `json:"division"`
	Region      int64        `json:"region"`
	Metrics     []MetricInfo `json:"metrics"`
	Descriptive []string     `json:"descriptive"`
	Excluded    int          `json:"excluded_dnf"`
	Total       int          `json:"total"`
	Entries     []Entry      `json:"entries"`
}

// SummaryValue is one aggregated metric.
type SummaryValue struct {
	Label  string  `json:"label"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Summary aggregates metrics over the top of a leaderboard.
type Summary struct {
	Division int64          `json:"division"`
	Region   int64          `json:"region"`
	Func     string         `json:"func"`
	Top      int            `json:"top"`
	Values   []SummaryValue `json:"values"`
}

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Index int    `json:"index"`
	Board *Board `json:"board,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error is the JSON error body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
