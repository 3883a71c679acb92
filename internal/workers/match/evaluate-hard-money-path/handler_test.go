// internal/workers/match/evaluate-hard-money-path/handler_test.go
package evaluatehardmoneypath

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/match"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, logger.NewTestLogger(t))
}

func sectionWith(pool match.LenderType, eligible int) match.Section {
	sec := match.Section{
		Pool:          pool,
		Eligible:      []match.ScoredResult{},
		Ineligible:    []match.Verdict{},
		TotalEligible: eligible,
	}
	for i := 0; i < eligible; i++ {
		sec.Eligible = append(sec.Eligible, match.ScoredResult{
			Verdict: match.Verdict{LenderName: "Lender", Status: match.StatusEligible},
			Score:   50,
		})
	}
	return sec
}

// ==========================
// Routing Tests
// ==========================

func TestHandler_Execute_Routing(t *testing.T) {
	tests := []struct {
		name           string
		scenario       match.Scenario
		agencyEligible int
		nonQMEligible  int
		hmEligible     int
		expectedState  match.RoutingState
		expectedHero   bool
	}{
		{
			name:           "dormant when agency matches and nothing points to hard money",
			scenario:       match.Scenario{},
			agencyEligible: 2,
			nonQMEligible:  1,
			hmEligible:     0,
			expectedState:  match.RoutingDormant,
		},
		{
			name:           "tertiary when hard money merely also matches",
			scenario:       match.Scenario{},
			agencyEligible: 2,
			nonQMEligible:  0,
			hmEligible:     1,
			expectedState:  match.RoutingTertiary,
		},
		{
			name:           "triggered by explicit hard money intent",
			scenario:       match.Scenario{HardMoneyIntent: true},
			agencyEligible: 2,
			nonQMEligible:  0,
			hmEligible:     1,
			expectedState:  match.RoutingTriggered,
		},
		{
			name:           "hero when both upstream pools are empty",
			scenario:       match.Scenario{},
			agencyEligible: 0,
			nonQMEligible:  0,
			hmEligible:     1,
			expectedState:  match.RoutingHero,
			expectedHero:   true,
		},
		{
			name:           "hero even with zero hard money matches",
			scenario:       match.Scenario{},
			agencyEligible: 0,
			nonQMEligible:  0,
			hmEligible:     0,
			expectedState:  match.RoutingHero,
			expectedHero:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			input := &Input{
				Scenario:         tt.scenario,
				AgencySection:    sectionWith(match.LenderConventional, tt.agencyEligible),
				NonQMSection:     sectionWith(match.LenderNonQM, tt.nonQMEligible),
				HardMoneySection: sectionWith(match.LenderHardMoney, tt.hmEligible),
			}

			output, err := h.execute(context.Background(), input)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedState, output.RoutingState)
			assert.Equal(t, tt.expectedState, output.HardMoneyEvaluation.State)
			assert.Equal(t, tt.expectedHero, output.HeroMode)
			assert.Equal(t, tt.hmEligible, output.HardMoneyEvaluation.EligibleCount)
		})
	}
}

func TestHandler_Execute_HeroReasonFirst(t *testing.T) {
	h := newTestHandler(t)

	input := &Input{
		Scenario:         match.Scenario{HardMoneyIntent: true},
		AgencySection:    sectionWith(match.LenderConventional, 0),
		NonQMSection:     sectionWith(match.LenderNonQM, 0),
		HardMoneySection: sectionWith(match.LenderHardMoney, 1),
	}

	output, err := h.execute(context.Background(), input)

	require.NoError(t, err)
	require.NotEmpty(t, output.TriggerReasons)
	assert.Equal(t, "No conventional or Non-QM lenders matched this scenario.", output.TriggerReasons[0])
	assert.Contains(t, output.TriggerReasons, "Borrower explicitly requested a hard-money path")
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.execute(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, output)
}

func TestHandler_Execute_SectionPassedThrough(t *testing.T) {
	h := newTestHandler(t)

	hmSection := sectionWith(match.LenderHardMoney, 2)
	input := &Input{
		AgencySection:    sectionWith(match.LenderConventional, 1),
		HardMoneySection: hmSection,
	}

	output, err := h.execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, hmSection, output.HardMoneyEvaluation.Section)
}
