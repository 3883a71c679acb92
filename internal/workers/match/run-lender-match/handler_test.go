// internal/workers/match/run-lender-match/handler_test.go
package runlendermatch

import (
	"context"
	"errors"
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

var testAsOf = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	profiles []match.LenderProfile
	err      error
}

func (f *fakeCatalog) Snapshot(ctx context.Context) ([]match.LenderProfile, error) {
	return f.profiles, f.err
}

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Engine:  match.DefaultConfig(),
	}
}

func newTestHandler(t *testing.T, cat CatalogProvider) *Handler {
	h := NewHandler(createTestConfig(), cat, logger.NewTestLogger(t))
	h.now = func() time.Time { return testAsOf }
	return h
}

func testHardMoneyLender() match.LenderProfile {
	return match.LenderProfile{
		ID:                             "lender-hm-001",
		Name:                           "Ridgeline Capital",
		Type:                           match.LenderHardMoney,
		Active:                         true,
		AcceptingNewBrokers:            true,
		AcceptingNewBrokersConfirmedAt: testAsOf.AddDate(0, 0, -10),
		StatesActive:                   []string{"TX", "FL"},
		Qualification: match.Qualification{
			MaxLTVOnARV:      75,
			MaxLTVOnPurchase: 85,
			MinLoanAmount:                 100000,
			MaxLoanAmount:                 2000000,
			BorrowerExperienceRequired:    match.ExperienceNone,
			EntityRequired:                match.EntityPolicyPersonalOK,
			CrossCollateralizationAllowed: true,
		},
		Compensation: match.Compensation{
			LenderOriginationPoints: match.PointsRange{Min: 1.5, Max: 2.5},
			LenderProcessingFee:     995,
			MaxBrokerPointsAllowed:  2,
		},
		Terms: match.Terms{
			AvailableMonths:    []int{6, 12, 18},
			TypicalFundingDays: 12,
		},
		Operations: match.Operations{
			ThirdPartyProcessingAllowed: "yes",
		},
	}
}

func rawScenario() map[string]interface{} {
	return map[string]interface{}{
		"loanAmount":         500000.0,
		"arv":                700000.0,
		"purchasePrice":      550000.0,
		"propertyState":      "TX",
		"entityType":         "LLC",
		"borrowerExperience": "some",
		"intent":             "purchase",
		"exitStrategy":       "sale",
		"dealTypes":          []interface{}{"fix_and_flip"},
		"desiredTermMonths":  12.0,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	cat := &fakeCatalog{profiles: []match.LenderProfile{testHardMoneyLender()}}
	h := newTestHandler(t, cat)

	output, err := h.execute(context.Background(), &Input{Scenario: rawScenario()})

	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, "TX", output.Scenario.PropertyState)
	assert.InDelta(t, 71.4, output.Scenario.LTVOnARV, 0.05)

	assert.Equal(t, 0, output.AgencySection.TotalEligible)
	assert.Equal(t, 0, output.NonQMSection.TotalEligible)
	assert.Equal(t, 1, output.HardMoneySection.TotalEligible)
	assert.Equal(t, "Ridgeline Capital", output.HardMoneySection.Eligible[0].LenderName)

	// Empty pools explain themselves.
	assert.NotEmpty(t, output.AgencySection.NoMatchMessage)
	assert.NotEmpty(t, output.NonQMSection.NoMatchMessage)
	assert.Empty(t, output.HardMoneySection.NoMatchMessage)

	// Confirmation ages travel as explicit variables.
	assert.Equal(t, -1, output.AgencyOldestConfirmationDays)
	assert.Equal(t, -1, output.NonQMOldestConfirmationDays)
	assert.Equal(t, 10, output.HardMoneyOldestConfirmationDays)
}

func TestHandler_Execute_GarbageScenarioStillRuns(t *testing.T) {
	cat := &fakeCatalog{profiles: []match.LenderProfile{testHardMoneyLender()}}
	h := newTestHandler(t, cat)

	output, err := h.execute(context.Background(), &Input{
		Scenario: map[string]interface{}{
			"loanAmount": "not a number",
			"dealTypes":  42,
		},
	})

	// Normalization is total: junk degrades to defaults, never an error.
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Zero(t, output.Scenario.LoanAmount)
	assert.Equal(t, 0, output.HardMoneySection.TotalEligible)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name        string
		catalog     CatalogProvider
		input       *Input
		expectedErr error
	}{
		{
			name:        "nil input",
			catalog:     &fakeCatalog{},
			input:       nil,
			expectedErr: ErrScenarioMissing,
		},
		{
			name:        "missing scenario",
			catalog:     &fakeCatalog{},
			input:       &Input{},
			expectedErr: ErrScenarioMissing,
		},
		{
			name:        "catalog unavailable",
			catalog:     &fakeCatalog{err: errors.New("connection refused")},
			input:       &Input{Scenario: rawScenario()},
			expectedErr: ErrCatalogUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.catalog)
			output, err := h.execute(context.Background(), tt.input)

			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedErr))
			assert.Nil(t, output)
		})
	}
}

func TestHandler_Execute_EmptyCatalog(t *testing.T) {
	cat := &fakeCatalog{}
	h := newTestHandler(t, cat)

	output, err := h.execute(context.Background(), &Input{Scenario: rawScenario()})

	require.NoError(t, err)
	assert.Equal(t, 0, output.AgencySection.TotalEligible)
	assert.Equal(t, 0, output.NonQMSection.TotalEligible)
	assert.Equal(t, 0, output.HardMoneySection.TotalEligible)
	assert.Contains(t, output.HardMoneySection.NoMatchMessage, "configured")
}

func TestHandler_Execute_IncompleteProfileSkipped(t *testing.T) {
	incomplete := testHardMoneyLender()
	incomplete.ID = "lender-hm-002"
	incomplete.Name = "Half Filled Fund"
	incomplete.Incomplete = true

	cat := &fakeCatalog{profiles: []match.LenderProfile{testHardMoneyLender(), incomplete}}
	h := newTestHandler(t, cat)

	output, err := h.execute(context.Background(), &Input{Scenario: rawScenario()})

	require.NoError(t, err)
	assert.Equal(t, 1, output.HardMoneySection.TotalEligible)

	require.Len(t, output.HardMoneySection.Ineligible, 1)
	assert.True(t, output.HardMoneySection.Ineligible[0].Skipped)
	assert.Equal(t, "Half Filled Fund", output.HardMoneySection.Ineligible[0].LenderName)
}
