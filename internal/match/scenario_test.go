package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Normalization Tests
// ==========================

func TestNormalize_Defaults(t *testing.T) {
	s := Normalize(map[string]any{})

	assert.Equal(t, 0.0, s.LoanAmount)
	assert.Equal(t, 0.0, s.ARV)
	assert.Equal(t, IntentUnspecified, s.Intent)
	assert.Equal(t, EntityUnspecified, s.EntityType)
	assert.Equal(t, ExperienceNone, s.BorrowerExperience)
	assert.Empty(t, s.DealTypes)
	assert.Equal(t, 0.0, s.Completeness)
}

func TestNormalize_NeverPanicsOnGarbage(t *testing.T) {
	assert.NotPanics(t, func() {
		Normalize(map[string]any{
			"loanAmount":    []any{"not", "a", "number"},
			"arv":           map[string]any{"nested": true},
			"propertyState": 42,
			"dealTypes":     3.14,
			"intent":        nil,
		})
	})
}

func TestNormalize_StringAmounts(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"plain number string", "500000", 500000},
		{"dollar sign and commas", "$1,250,000", 1250000},
		{"float64", 750000.0, 750000},
		{"int", 300000, 300000},
		{"unparseable", "a lot", 0},
		{"negative clamped", -50.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Normalize(map[string]any{"loanAmount": tt.raw})
			assert.Equal(t, tt.want, s.LoanAmount)
		})
	}
}

func TestNormalize_StateFallbackKey(t *testing.T) {
	s := Normalize(map[string]any{"state": "tx"})
	assert.Equal(t, "TX", s.PropertyState)

	s = Normalize(map[string]any{"propertyState": "FL", "state": "GA"})
	assert.Equal(t, "FL", s.PropertyState)
}

func TestNormalize_DealTypeSpellings(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want []DealType
	}{
		{
			"string slice",
			map[string]any{"dealTypes": []string{"fix_and_flip", "land"}},
			[]DealType{DealFixAndFlip, DealLand},
		},
		{
			"any slice from JSON decode",
			map[string]any{"dealTypes": []any{"ground_up_construction"}},
			[]DealType{DealGroundUpConstruction},
		},
		{
			"comma separated string",
			map[string]any{"dealTypes": "fix_and_flip, foreign_national"},
			[]DealType{DealFixAndFlip, DealForeignNational},
		},
		{
			"individual boolean flag",
			map[string]any{"land": true},
			[]DealType{DealLand},
		},
		{
			"unknown types dropped",
			map[string]any{"dealTypes": []string{"spaceship", "fix_and_flip"}},
			[]DealType{DealFixAndFlip},
		},
		{
			"duplicates collapsed",
			map[string]any{"dealTypes": []string{"land", "land"}},
			[]DealType{DealLand},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Normalize(tt.raw)
			assert.Equal(t, tt.want, s.DealTypes)
		})
	}
}

func TestNormalize_DerivedLTV(t *testing.T) {
	s := Normalize(map[string]any{
		"loanAmount":    500000.0,
		"arv":           700000.0,
		"purchasePrice": 550000.0,
	})

	assert.InDelta(t, 71.4, s.LTVOnARV, 0.05)
	assert.InDelta(t, 90.9, s.LTVOnPurchase, 0.05)
}

func TestNormalize_Completeness(t *testing.T) {
	full := testScenarioTX()
	assert.Equal(t, 1.0, full.Completeness)

	half := Normalize(map[string]any{
		"loanAmount":    500000.0,
		"propertyState": "TX",
	})
	assert.InDelta(t, 2.0/7.0, half.Completeness, 0.001)
}
