// internal/match/score.go
package match

import "fmt"

// ScoredResult extends a verdict with the 0-100 match score and the
// display fields the presentation layer renders on a lender card.
type ScoredResult struct {
	Verdict

	Score        int      `json:"score"`
	MatchDetails []string `json:"matchDetails"`

	TotalBorrowerPoints  float64 `json:"totalBorrowerPoints"`
	MaxBrokerPoints      float64 `json:"maxBrokerPoints"`
	YSPAvailable         bool    `json:"yspAvailable"`
	EstimatedFundingDays int     `json:"estimatedFundingDays"`
}

// Score produces the weighted match score for an already-eligible lender.
// Axes: speed, leverage headroom, niche alignment, compensation,
// operational readiness, repeat-borrower bonus. Each axis is monotonic:
// improving a favorable attribute never lowers the total. Limit-proximity
// warnings are appended here so they travel with the scored card.
func Score(s Scenario, p LenderProfile, v Verdict, cfg Config) ScoredResult {
	r := ScoredResult{
		Verdict:              v,
		MatchDetails:         []string{},
		TotalBorrowerPoints:  p.Compensation.LenderOriginationPoints.Min + p.Compensation.LenderProcessingFee/1000,
		MaxBrokerPoints:      p.Compensation.MaxBrokerPointsAllowed,
		YSPAvailable:         p.Compensation.YSPAvailable,
		EstimatedFundingDays: p.Terms.TypicalFundingDays,
	}
	// Own copy: scorer warnings must not alias the verdict's slice.
	r.Warnings = append([]string(nil), v.Warnings...)

	score := 0

	// Speed.
	daysToClose := s.DaysToClose
	if daysToClose == 0 {
		daysToClose = 30
	}
	switch {
	case daysToClose <= 7 && p.Terms.FastCloseCapable:
		score += cfg.Caps.Speed
		r.MatchDetails = append(r.MatchDetails, "Fast close capable")
	case daysToClose <= 14 && p.Terms.TypicalFundingDays <= 10:
		score += 20
		r.MatchDetails = append(r.MatchDetails, "Meets close timeline")
	case p.Terms.TypicalFundingDays <= daysToClose:
		score += 15
		r.MatchDetails = append(r.MatchDetails, "Timeline achievable")
	}

	// Leverage headroom. More room below the lender's ceiling scores
	// higher; the warning band is independent of the tier cutoffs.
	if s.ARV > 0 && s.LoanAmount > 0 && p.Qualification.MaxLTVOnARV > 0 {
		headroom := p.Qualification.MaxLTVOnARV - s.LTVOnARV
		switch {
		case headroom >= 10:
			score += cfg.Caps.Leverage
			r.MatchDetails = append(r.MatchDetails,
				fmt.Sprintf("Strong ARV headroom (%.0f%% below max LTV)", headroom))
		case headroom >= 5:
			score += 15
			r.MatchDetails = append(r.MatchDetails, "Adequate ARV headroom")
		case headroom >= 0:
			score += 5
		}
		if headroom >= 0 && headroom < cfg.LeverageWarningBand {
			r.Warnings = append(r.Warnings, "Close to max ARV LTV — limited buffer")
		}
	}

	// Niche alignment.
	niche := 0
	if s.HasDealType(DealFixAndFlip) && p.Niches.FixAndFlipSpecialist {
		niche += 7
	}
	if s.HasDealType(DealGroundUpConstruction) && p.Niches.GroundUpConstruction {
		niche += 7
	}
	if s.ExitStrategy == "construction_perm" && p.Niches.BridgeToPermanent {
		niche += 5
	}
	if s.HasDealType(DealForeignNational) && p.Niches.ForeignNational {
		niche += 7
	}
	if s.HasDealType(DealNonWarrantableCondo) && p.Niches.NonWarrantableCondo {
		niche += 6
	}
	if s.HasDealType(DealLand) && p.Niches.LandLoans {
		niche += 7
	}
	if s.HasDealType(DealCommercialMixedUse) && p.Niches.CommercialMixedUse {
		niche += 6
	}
	if s.HasDealType(DealHighLeverageRehab) && p.Niches.HighLeverageRehab {
		niche += 5
	}
	if niche > cfg.Caps.Niche {
		niche = cfg.Caps.Niche
	}
	score += niche
	if niche > 0 {
		r.MatchDetails = append(r.MatchDetails, "Niche alignment confirmed")
	}

	// Compensation favorability: broker point ceiling plus YSP.
	maxBrokerPoints := p.Compensation.MaxBrokerPointsAllowed
	switch {
	case maxBrokerPoints >= 3:
		score += 15
		r.MatchDetails = append(r.MatchDetails,
			fmt.Sprintf("Up to %.0f broker points allowed", maxBrokerPoints))
	case maxBrokerPoints >= 2:
		score += 10
		r.MatchDetails = append(r.MatchDetails,
			fmt.Sprintf("Up to %.0f broker points allowed", maxBrokerPoints))
	case maxBrokerPoints >= 1:
		score += 5
	}
	if p.Compensation.YSPAvailable {
		score += 3
		r.MatchDetails = append(r.MatchDetails, "YSP available")
	}

	// Operational readiness.
	if p.Operations.ScenarioDeskAvailable {
		score += 5
		r.MatchDetails = append(r.MatchDetails, "Live scenario desk available")
	}
	if p.Operations.DedicatedAEAssigned {
		score += 5
		r.MatchDetails = append(r.MatchDetails, "Dedicated AE assigned")
	}
	if p.Qualification.SameDayTermSheet {
		score += 5
		r.MatchDetails = append(r.MatchDetails, "Same-day term sheet available")
	}

	// Repeat borrower bonus.
	if s.RepeatBorrower && p.Niches.PortfolioRepeatBorrower {
		score += cfg.Caps.RepeatBonus
		r.MatchDetails = append(r.MatchDetails, "Repeat borrower program available")
	}

	if score > 100 {
		score = 100
	}
	r.Score = score

	// Limit-proximity warnings.
	if s.LoanAmount > 0 && p.Qualification.MaxLoanAmount > 0 &&
		s.LoanAmount >= cfg.LoanSizeWarningRatio*p.Qualification.MaxLoanAmount {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Loan amount %s approaching lender maximum %s",
			dollars(s.LoanAmount), dollars(p.Qualification.MaxLoanAmount)))
	}
	if limit := p.Operations.OverlappingLoanCap; limit != nil && *limit > 0 &&
		p.Operations.ActiveLoanCount >= *limit-1 {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Lender at %d of %d overlapping-loan cap", p.Operations.ActiveLoanCount, *limit))
	}

	return r
}
