package model

// BoardRequest asks for one leaderboard.
type BoardRequest struct {
	Division int64    `json:"division"`
	Region   int64    `json:"region"`
	Columns  []string `json:"columns"`
	// Limit keeps the best Limit entries; 0 keeps all.
	Limit int `json:"limit"`
}
