package models

import "time"

// ScanProgress is a snapshot of a running or finished scan. It is mutated
// only by the orchestrator and read under its lock.
type ScanProgress struct {
	TotalAssets     int           `json:"total_assets"`
	ProcessedAssets int           `json:"processed_assets"`
	IssuesFound     int           `json:"issues_found"`
	CurrentAsset    string        `json:"current_asset,omitempty"`
	Percentage      float64       `json:"percentage"`
	ETA             time.Duration `json:"eta"`
	StartTime       time.Time     `json:"start_time"`
	Completed       bool          `json:"completed"`
	Cancelled       bool          `json:"cancelled"`
}
