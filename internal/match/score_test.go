package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Scoring Tests
// ==========================

func scoreFor(t *testing.T, s Scenario, p LenderProfile, cfg Config) ScoredResult {
	t.Helper()
	v := Evaluate(s, p, cfg, testAsOf)
	require.True(t, v.Eligible(), "scorer is only defined for eligible lenders: %v", v.Reasons)
	return Score(s, p, v, cfg)
}

func TestScore_BrokerPointsMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	s := testScenarioTX()

	prev := -1
	for _, points := range []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 4} {
		p := testHardMoneyLender("hm-1", "Alpha Capital")
		p.Compensation.MaxBrokerPointsAllowed = points

		got := scoreFor(t, s, p, cfg).Score
		assert.GreaterOrEqual(t, got, prev, "raising broker points to %.1f lowered the score", points)
		prev = got
	}
}

func TestScore_SpeedTiers(t *testing.T) {
	cfg := DefaultConfig()

	base := testHardMoneyLender("hm-1", "Alpha Capital")
	base.Terms.FastCloseCapable = true
	base.Terms.TypicalFundingDays = 5

	slow := testHardMoneyLender("hm-2", "Bravo Lending")
	slow.Terms.FastCloseCapable = false
	slow.Terms.TypicalFundingDays = 45

	s := testScenarioTX()
	s.DaysToClose = 14

	fastScore := scoreFor(t, s, base, cfg).Score
	slowScore := scoreFor(t, s, slow, cfg).Score
	assert.Greater(t, fastScore, slowScore)
}

func TestScore_LeverageHeadroomTiers(t *testing.T) {
	cfg := DefaultConfig()
	s := testScenarioTX() // LTV on ARV approx 71.4

	strong := testHardMoneyLender("hm-1", "Alpha Capital")
	strong.Qualification.MaxLTVOnARV = 85 // headroom > 10

	tight := testHardMoneyLender("hm-2", "Bravo Lending")
	tight.Qualification.MaxLTVOnARV = 72 // headroom < 1

	strongRes := scoreFor(t, s, strong, cfg)
	tightRes := scoreFor(t, s, tight, cfg)

	assert.Greater(t, strongRes.Score, tightRes.Score)
	assert.Empty(t, strongRes.Warnings)
	require.Len(t, tightRes.Warnings, 1)
	assert.Contains(t, tightRes.Warnings[0], "Close to max ARV LTV")
}

func TestScore_NicheCap(t *testing.T) {
	cfg := DefaultConfig()

	p := testHardMoneyLender("hm-1", "Alpha Capital")
	p.Niches = NicheFlags{
		FixAndFlipSpecialist: true,
		GroundUpConstruction: true,
		ForeignNational:      true,
		LandLoans:            true,
		NonWarrantableCondo:  true,
		CommercialMixedUse:   true,
	}

	s := testScenarioTX()
	s.DealTypes = []DealType{
		DealFixAndFlip, DealGroundUpConstruction, DealForeignNational,
		DealLand, DealNonWarrantableCondo, DealCommercialMixedUse,
	}

	single := testScenarioTX()
	single.DealTypes = []DealType{DealFixAndFlip}

	all := scoreFor(t, s, p, cfg).Score
	one := scoreFor(t, single, p, cfg).Score

	// Six matching niches raw-sum past the cap; the capped contribution
	// can exceed a single 7-point match by at most Caps.Niche - 7.
	assert.LessOrEqual(t, all-one, cfg.Caps.Niche-7)
	assert.Greater(t, all, one)
}

func TestScore_OperationsAndRepeatBonus(t *testing.T) {
	cfg := DefaultConfig()
	s := testScenarioTX()
	s.RepeatBorrower = true

	p := testHardMoneyLender("hm-1", "Alpha Capital")
	bare := scoreFor(t, s, p, cfg).Score

	p.Operations.ScenarioDeskAvailable = true
	p.Operations.DedicatedAEAssigned = true
	p.Qualification.SameDayTermSheet = true
	p.Niches.PortfolioRepeatBorrower = true

	loaded := scoreFor(t, s, p, cfg)
	assert.Equal(t, bare+15+cfg.Caps.RepeatBonus, loaded.Score)
	assert.Contains(t, loaded.MatchDetails, "Repeat borrower program available")
}

func TestScore_CappedAt100(t *testing.T) {
	cfg := DefaultConfig()

	p := testHardMoneyLender("hm-1", "Alpha Capital")
	p.Terms.FastCloseCapable = true
	p.Terms.TypicalFundingDays = 5
	p.Qualification.MaxLTVOnARV = 95
	p.Qualification.SameDayTermSheet = true
	p.Compensation.MaxBrokerPointsAllowed = 3
	p.Compensation.YSPAvailable = true
	p.Operations.ScenarioDeskAvailable = true
	p.Operations.DedicatedAEAssigned = true
	p.Niches = NicheFlags{
		FixAndFlipSpecialist:    true,
		LandLoans:               true,
		ForeignNational:         true,
		PortfolioRepeatBorrower: true,
	}

	s := testScenarioTX()
	s.DaysToClose = 5
	s.RepeatBorrower = true
	s.DealTypes = []DealType{DealFixAndFlip, DealLand, DealForeignNational}

	got := scoreFor(t, s, p, cfg)
	assert.Equal(t, 100, got.Score)
}

func TestScore_LimitProximityWarnings(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("loan amount near lender maximum", func(t *testing.T) {
		p := testHardMoneyLender("hm-1", "Alpha Capital")
		p.Qualification.MaxLoanAmount = 510000 // 500k is over 95% of this

		got := scoreFor(t, testScenarioTX(), p, cfg)
		require.Len(t, got.Warnings, 1)
		assert.Contains(t, got.Warnings[0], "approaching lender maximum")
	})

	t.Run("overlapping loan cap proximity", func(t *testing.T) {
		p := testHardMoneyLender("hm-1", "Alpha Capital")
		limit := 5
		p.Operations.OverlappingLoanCap = &limit
		p.Operations.ActiveLoanCount = 4

		got := scoreFor(t, testScenarioTX(), p, cfg)
		require.Len(t, got.Warnings, 1)
		assert.Contains(t, got.Warnings[0], "overlapping-loan cap")
	})
}

func TestScore_DisplayFields(t *testing.T) {
	cfg := DefaultConfig()
	p := testHardMoneyLender("hm-1", "Alpha Capital")

	got := scoreFor(t, testScenarioTX(), p, cfg)
	assert.Equal(t, 12, got.EstimatedFundingDays)
	assert.Equal(t, 2.0, got.MaxBrokerPoints)
	assert.False(t, got.YSPAvailable)
	assert.InDelta(t, 1.5+995.0/1000, got.TotalBorrowerPoints, 0.001)
}
