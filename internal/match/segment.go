// internal/match/segment.go
package match

import (
	"sort"
	"time"
)

// Section is one tier's complete result set. Eligible entries are scored
// and ranked; ineligible entries keep their verdicts (reasons intact) in
// catalog order.
type Section struct {
	Pool          LenderType     `json:"pool"`
	Eligible      []ScoredResult `json:"eligible"`
	Ineligible    []Verdict      `json:"ineligible"`
	TotalEligible int            `json:"totalEligible"`

	// NoMatchMessage is set only when the pool produced zero eligible
	// lenders; it explains the empty section to the reader.
	NoMatchMessage string `json:"noMatchMessage,omitempty"`

	// OldestConfirmationDays is the age of the least recently confirmed
	// eligible lender, -1 when no eligible lender carries a confirmation
	// date. Feeds the decision-record confidence annotation.
	OldestConfirmationDays int `json:"-"`
}

// RunLenderMatch partitions the catalog by lender type and evaluates and
// scores each pool independently. It decides nothing about routing; the
// router consumes the returned counts.
func RunLenderMatch(s Scenario, catalog []LenderProfile, cfg Config, asOf time.Time) (agency, nonQM, hardMoney Section) {
	agency = runPool(s, catalog, LenderConventional, cfg, asOf)
	nonQM = runPool(s, catalog, LenderNonQM, cfg, asOf)
	hardMoney = runPool(s, catalog, LenderHardMoney, cfg, asOf)
	return agency, nonQM, hardMoney
}

func runPool(s Scenario, catalog []LenderProfile, pool LenderType, cfg Config, asOf time.Time) Section {
	sec := Section{
		Pool:                   pool,
		Eligible:               []ScoredResult{},
		Ineligible:             []Verdict{},
		OldestConfirmationDays: -1,
	}

	for _, p := range catalog {
		if p.Type != pool || !p.Active {
			continue
		}
		v := Evaluate(s, p, cfg, asOf)
		if !v.Eligible() {
			sec.Ineligible = append(sec.Ineligible, v)
			continue
		}
		sec.Eligible = append(sec.Eligible, Score(s, p, v, cfg))
		if age := p.ConfirmationAgeDays(asOf); age > sec.OldestConfirmationDays {
			sec.OldestConfirmationDays = age
		}
	}

	// Score descending, name ascending on ties. Stable ranking is part
	// of the contract: identical inputs always produce identical order.
	sort.SliceStable(sec.Eligible, func(i, j int) bool {
		a, b := sec.Eligible[i], sec.Eligible[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.LenderName < b.LenderName
	})

	sec.TotalEligible = len(sec.Eligible)
	if cfg.MaxResultsPerSection > 0 && len(sec.Eligible) > cfg.MaxResultsPerSection {
		sec.Eligible = sec.Eligible[:cfg.MaxResultsPerSection]
	}
	if sec.TotalEligible == 0 {
		sec.NoMatchMessage = noMatchMessage(pool, len(sec.Ineligible))
	}
	return sec
}

func noMatchMessage(pool LenderType, evaluated int) string {
	switch pool {
	case LenderConventional:
		if evaluated == 0 {
			return "No conventional lenders are configured for this catalog."
		}
		return "No conventional lenders matched this scenario. Review the ineligibility reasons or consider the Non-QM section."
	case LenderNonQM:
		if evaluated == 0 {
			return "No Non-QM lenders are configured for this catalog."
		}
		return "No Non-QM lenders matched this scenario. Review the ineligibility reasons or consider the last-resort section."
	default:
		if evaluated == 0 {
			return "No hard-money lenders are configured for this catalog."
		}
		return "No hard-money lenders matched this scenario."
	}
}
