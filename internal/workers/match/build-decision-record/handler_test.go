// internal/workers/match/build-decision-record/handler_test.go
package builddecisionrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender-match-engine/internal/catalog"
	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/match"
)

// ==========================
// Test Helper Functions
// ==========================

var testBuiltAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeAudit struct {
	indexed []*match.DecisionRecord
	err     error
}

func (f *fakeAudit) IndexRecord(ctx context.Context, record *match.DecisionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, record)
	return nil
}

type fakeAeResolver struct {
	info *catalog.AeInfo
	err  error
}

func (f *fakeAeResolver) GetAeInfo(ctx context.Context, lenderName string, defaults match.Operations) (*catalog.AeInfo, error) {
	return f.info, f.err
}

type fakeEscalator struct {
	records []*match.DecisionRecord
	ae      []*catalog.AeInfo
	err     error
}

func (f *fakeEscalator) SendHeroEscalation(ctx context.Context, record *match.DecisionRecord, ae *catalog.AeInfo) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	f.ae = append(f.ae, ae)
	return nil
}

func newTestHandler(t *testing.T, audit AuditSink, aeLookup AeResolver, escalator Escalator) *Handler {
	h := NewHandler(&Config{Timeout: 5 * time.Second}, audit, aeLookup, escalator, logger.NewTestLogger(t))
	h.now = func() time.Time { return testBuiltAt }
	return h
}

func intPtr(v int) *int { return &v }

func tertiaryInput() *Input {
	return &Input{
		Scenario: match.Scenario{
			LoanAmount:    500000,
			PropertyState: "TX",
			Completeness:  1.0,
		},
		AgencySection: match.Section{Pool: match.LenderConventional, TotalEligible: 1},
		NonQMSection:  match.Section{Pool: match.LenderNonQM},
		HardMoneyEvaluation: match.HardMoneyEvaluation{
			State:          match.RoutingTertiary,
			TriggerReasons: []string{},
			Section:        match.Section{Pool: match.LenderHardMoney, TotalEligible: 1},
			EligibleCount:  1,
		},
		AgencyOldestConfirmationDays:    intPtr(10),
		NonQMOldestConfirmationDays:     intPtr(-1),
		HardMoneyOldestConfirmationDays: intPtr(25),
	}
}

func heroInput() *Input {
	in := tertiaryInput()
	in.AgencySection.TotalEligible = 0
	in.HardMoneyEvaluation = match.HardMoneyEvaluation{
		State:          match.RoutingHero,
		Triggered:      true,
		HeroMode:       true,
		TriggerReasons: []string{"No conventional or Non-QM lenders matched this scenario."},
		Section: match.Section{
			Pool: match.LenderHardMoney,
			Eligible: []match.ScoredResult{
				{
					Verdict: match.Verdict{LenderName: "Frontier Bridge", Status: match.StatusEligible},
					Score:   55,
				},
			},
			TotalEligible: 1,
		},
		EligibleCount: 1,
	}
	return in
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SealsRecord(t *testing.T) {
	audit := &fakeAudit{}
	h := newTestHandler(t, audit, nil, nil)

	output, err := h.execute(context.Background(), tertiaryInput())

	require.NoError(t, err)
	require.NotNil(t, output)

	assert.NotEmpty(t, output.RecordID)
	assert.Equal(t, output.RecordID, output.DecisionRecord.ID)
	assert.Equal(t, match.RoutingTertiary, output.RoutingState)
	assert.Equal(t, match.EngineVersion, output.DecisionRecord.EngineVersion)
	assert.Equal(t, testBuiltAt, output.DecisionRecord.BuiltAt)

	// Complete inputs with a 25-day-old confirmation stay HIGH.
	assert.Equal(t, match.ConfidenceHigh, output.Confidence.Level)

	require.Len(t, audit.indexed, 1)
	assert.Equal(t, output.RecordID, audit.indexed[0].ID)
}

func TestHandler_Execute_ConfidenceUsesOldestConfirmation(t *testing.T) {
	h := newTestHandler(t, nil, nil, nil)

	input := tertiaryInput()
	input.HardMoneyOldestConfirmationDays = intPtr(200)

	output, err := h.execute(context.Background(), input)

	require.NoError(t, err)
	// completeness 1.0, currency 0.55 -> 0.775 MODERATE
	assert.Equal(t, match.ConfidenceModerate, output.Confidence.Level)
	assert.InDelta(t, 0.78, output.Confidence.Score, 0.01)
}

func TestHandler_Execute_MissingAgesReadAsUnknown(t *testing.T) {
	h := newTestHandler(t, nil, nil, nil)

	input := tertiaryInput()
	input.AgencyOldestConfirmationDays = nil
	input.NonQMOldestConfirmationDays = nil
	input.HardMoneyOldestConfirmationDays = nil

	output, err := h.execute(context.Background(), input)

	require.NoError(t, err)
	// Unknown catalog age scores full currency.
	assert.Equal(t, match.ConfidenceHigh, output.Confidence.Level)
}

func TestHandler_Execute_AuditFailureDoesNotFailRun(t *testing.T) {
	audit := &fakeAudit{err: errors.New("cluster unavailable")}
	h := newTestHandler(t, audit, nil, nil)

	output, err := h.execute(context.Background(), tertiaryInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.RecordID)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := newTestHandler(t, nil, nil, nil)

	output, err := h.execute(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Hero Escalation Tests
// ==========================

func TestHandler_Execute_HeroTriggersEscalation(t *testing.T) {
	escalator := &fakeEscalator{}
	aeLookup := &fakeAeResolver{info: &catalog.AeInfo{Name: "Marcus Bell", IsOverride: true}}
	h := newTestHandler(t, nil, aeLookup, escalator)

	output, err := h.execute(context.Background(), heroInput())

	require.NoError(t, err)
	assert.Equal(t, match.RoutingHero, output.RoutingState)

	require.Len(t, escalator.records, 1)
	assert.Equal(t, output.RecordID, escalator.records[0].ID)
	require.Len(t, escalator.ae, 1)
	assert.Equal(t, "Marcus Bell", escalator.ae[0].Name)
}

func TestHandler_Execute_TertiaryDoesNotEscalate(t *testing.T) {
	escalator := &fakeEscalator{}
	h := newTestHandler(t, nil, nil, escalator)

	_, err := h.execute(context.Background(), tertiaryInput())

	require.NoError(t, err)
	assert.Empty(t, escalator.records)
}

func TestHandler_Execute_EscalationFailureDoesNotFailRun(t *testing.T) {
	escalator := &fakeEscalator{err: errors.New("ses throttled")}
	h := newTestHandler(t, nil, nil, escalator)

	output, err := h.execute(context.Background(), heroInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.RecordID)
}

func TestHandler_Execute_AeLookupFailureStillEscalates(t *testing.T) {
	escalator := &fakeEscalator{}
	aeLookup := &fakeAeResolver{err: errors.New("connection reset")}
	h := newTestHandler(t, nil, aeLookup, escalator)

	_, err := h.execute(context.Background(), heroInput())

	require.NoError(t, err)
	require.Len(t, escalator.records, 1)
	assert.Nil(t, escalator.ae[0])
}
