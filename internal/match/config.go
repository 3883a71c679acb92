// internal/match/config.go
package match

// EngineVersion is stamped on every decision record so historical
// decisions can be distinguished from results produced by a later rule
// revision.
const EngineVersion = "1.0.0"

// ScoreCaps are the per-axis point ceilings of the 0-100 fit score.
type ScoreCaps struct {
	Speed        int `json:"speed"`
	Leverage     int `json:"leverage"`
	Niche        int `json:"niche"`
	Compensation int `json:"compensation"`
	Operations   int `json:"operations"`
	RepeatBonus  int `json:"repeatBonus"`
}

// Config carries the engine tunables. The thresholds are configuration,
// not invariants: deployments may adjust them, the defaults below are the
// shipped behavior.
type Config struct {
	// StaleConfirmationDays is the age beyond which a lender's
	// accepting-new-brokers confirmation is flagged unverified.
	StaleConfirmationDays int `json:"staleConfirmationDays"`

	// LeverageWarningBand: an eligible scenario within this many LTV
	// points of the lender maximum gets a limited-buffer warning.
	LeverageWarningBand float64 `json:"leverageWarningBand"`

	// LoanSizeWarningRatio: loan amounts at or above this fraction of the
	// lender maximum get an approaching-limit warning.
	LoanSizeWarningRatio float64 `json:"loanSizeWarningRatio"`

	// MaxResultsPerSection caps the eligible list carried per tier.
	MaxResultsPerSection int `json:"maxResultsPerSection"`

	Caps ScoreCaps `json:"caps"`
}

// DefaultConfig returns the shipped tunables.
func DefaultConfig() Config {
	return Config{
		StaleConfirmationDays: 90,
		LeverageWarningBand:   2.0,
		LoanSizeWarningRatio:  0.95,
		MaxResultsPerSection:  10,
		Caps: ScoreCaps{
			Speed:        25,
			Leverage:     25,
			Niche:        20,
			Compensation: 18,
			Operations:   15,
			RepeatBonus:  5,
		},
	}
}
