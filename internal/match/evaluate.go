// internal/match/evaluate.go
package match

import (
	"fmt"
	"strconv"
	"time"
)

// Status of a (scenario, lender) pair.
type Status string

const (
	StatusEligible   Status = "eligible"
	StatusIneligible Status = "ineligible"
)

// Verdict is the full eligibility outcome for one lender. Reasons is
// empty iff the lender is eligible; Warnings never block.
type Verdict struct {
	LenderID   string     `json:"lenderId"`
	LenderName string     `json:"lenderName"`
	LenderType LenderType `json:"lenderType"`

	Status   Status   `json:"status"`
	Skipped  bool     `json:"skipped,omitempty"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}

// Eligible reports whether every qualification axis passed.
func (v Verdict) Eligible() bool {
	return v.Status == StatusEligible
}

// Evaluate gates one normalized scenario against one lender profile.
// Every axis is checked without short-circuiting so ineligible lenders
// carry the complete reason list. The result is deterministic for a given
// (scenario, profile, config, asOf) tuple and has no side effects.
func Evaluate(s Scenario, p LenderProfile, cfg Config, asOf time.Time) Verdict {
	v := Verdict{
		LenderID:   p.ID,
		LenderName: p.Name,
		LenderType: p.Type,
		Reasons:    []string{},
		Warnings:   []string{},
	}

	if p.Incomplete || !p.qualificationComplete() {
		v.Status = StatusIneligible
		v.Skipped = true
		v.Reasons = append(v.Reasons, "profile incomplete")
		return v
	}

	q := p.Qualification

	// Geography.
	if s.PropertyState != "" && !p.ActiveIn(s.PropertyState) {
		v.Reasons = append(v.Reasons, fmt.Sprintf("Not actively lending in %s", s.PropertyState))
	}

	// Broker acceptance is a hard gate, not a warning.
	if !p.AcceptingNewBrokers {
		v.Reasons = append(v.Reasons, "Not currently accepting new brokers")
	}

	// Loan size, inclusive bounds. A missing amount normalizes to 0 and
	// fails the minimum, so incomplete scenarios stay ineligible with a
	// stated reason.
	if s.LoanAmount < q.MinLoanAmount {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Loan amount %s below lender minimum %s",
			dollars(s.LoanAmount), dollars(q.MinLoanAmount)))
	}
	if s.LoanAmount > 0 && s.LoanAmount > q.MaxLoanAmount {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Loan amount %s exceeds lender max %s",
			dollars(s.LoanAmount), dollars(q.MaxLoanAmount)))
	}

	// Leverage. ARV-based when an ARV is present, purchase-based otherwise.
	// Equal to the maximum is eligible: thresholds are inclusive.
	if s.ARV > 0 && s.LoanAmount > 0 {
		if q.MaxLTVOnARV > 0 && s.LTVOnARV > q.MaxLTVOnARV {
			v.Reasons = append(v.Reasons, fmt.Sprintf(
				"LTV on ARV %.1f%% exceeds lender max %.1f%%",
				s.LTVOnARV, q.MaxLTVOnARV))
		}
	} else if s.PurchasePrice > 0 && s.LoanAmount > 0 {
		if q.MaxLTVOnPurchase > 0 && s.LTVOnPurchase > q.MaxLTVOnPurchase {
			v.Reasons = append(v.Reasons, fmt.Sprintf(
				"LTV on purchase %.1f%% exceeds lender max %.1f%%",
				s.LTVOnPurchase, q.MaxLTVOnPurchase))
		}
	}

	// Borrower experience ladder.
	if experienceRank[s.BorrowerExperience] < experienceRank[q.BorrowerExperienceRequired] {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Lender requires %s experience — borrower has %s",
			q.BorrowerExperienceRequired, s.BorrowerExperience))
	}

	// Entity, guarantee and cross-collateral policy.
	if q.EntityRequired == EntityPolicyLLCRequired && s.EntityType != EntityLLC {
		v.Reasons = append(v.Reasons, "LLC vesting required — borrower must hold title in an entity")
	}
	if q.PersonalGuaranteeRequired && !s.PersonalGuaranteeAccepted {
		v.Reasons = append(v.Reasons, "Personal guarantee required but not offered on this scenario")
	}
	if s.CrossCollateral && !q.CrossCollateralizationAllowed {
		v.Reasons = append(v.Reasons, "Cross-collateralization not permitted by this lender")
	}

	// Deal-type exclusions name the avoided type explicitly.
	for _, dt := range s.DealTypes {
		for _, avoided := range p.DealPreferences.DealTypesToAvoid {
			if string(dt) == avoided {
				v.Reasons = append(v.Reasons, fmt.Sprintf(
					"Deal type %q is on this lender's avoid list", avoided))
			}
		}
	}

	// Niche gates: deal shapes the lender simply does not write.
	if s.HasDealType(DealGroundUpConstruction) && !p.Niches.GroundUpConstruction {
		v.Reasons = append(v.Reasons, "Ground-up construction not offered")
	}
	if s.HasDealType(DealForeignNational) && !p.Niches.ForeignNational {
		v.Reasons = append(v.Reasons, "Foreign national program not available")
	}
	if s.HasDealType(DealLand) && !p.Niches.LandLoans {
		v.Reasons = append(v.Reasons, "Land loans not offered")
	}

	// Timing.
	if s.DaysToClose > 0 && s.DaysToClose <= 10 && !p.Terms.FastCloseCapable {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Fast close (%d days) required but not available", s.DaysToClose))
	}
	if s.DesiredTermMonths > 0 && len(p.Terms.AvailableMonths) > 0 {
		if !termAvailable(p.Terms.AvailableMonths, s.DesiredTermMonths) {
			v.Warnings = append(v.Warnings, fmt.Sprintf(
				"Desired term %dmo not offered — closest available: %dmo",
				s.DesiredTermMonths, closestTerm(p.Terms.AvailableMonths, s.DesiredTermMonths)))
		}
	}

	// Third-party processing policy.
	if s.UsingThirdPartyProcessor && p.Operations.ThirdPartyProcessingAllowed == "no" {
		v.Reasons = append(v.Reasons, "Third-party processing not permitted")
	}

	// Stale confirmation is surfaced on every verdict, never hidden.
	if p.StaleAsOf(asOf, cfg.StaleConfirmationDays) {
		if age := p.ConfirmationAgeDays(asOf); age >= 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf(
				"Stale broker confirmation (%d days old) — verify before submission", age))
		} else {
			v.Warnings = append(v.Warnings,
				"Stale broker confirmation (never confirmed) — verify before submission")
		}
	}

	if len(v.Reasons) == 0 {
		v.Status = StatusEligible
	} else {
		v.Status = StatusIneligible
	}
	return v
}

func termAvailable(available []int, want int) bool {
	for _, m := range available {
		if m == want {
			return true
		}
	}
	return false
}

func closestTerm(available []int, want int) int {
	best := available[0]
	for _, m := range available[1:] {
		if abs(m-want) < abs(best-want) {
			best = m
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// dollars formats an amount with thousands separators, e.g. $1,250,000.
func dollars(amount float64) string {
	n := int64(amount + 0.5)
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}
