// internal/models/options.go
package models

// Options captures the per-session configuration supplied at session start.
type Options struct {
	// RoundTimeSec is how many seconds each turn lasts before the countdown
	// forces review. Typical values are 30, 45 or 60.
	RoundTimeSec int `json:"roundTimeSec"`

	// PenaltyEnabled deducts a point from the explainer for each word skipped
	// (and refunds it if the skip is reverted).
	PenaltyEnabled bool `json:"penaltyEnabled"`
}
