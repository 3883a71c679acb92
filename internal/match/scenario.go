// internal/match/scenario.go
package match

import (
	"strconv"
	"strings"
)

// Intent is the declared purpose of the loan request.
type Intent string

const (
	IntentPurchase     Intent = "purchase"
	IntentRefinance    Intent = "refinance"
	IntentConstruction Intent = "construction"
	IntentUnspecified  Intent = "unspecified"
)

// EntityType is the vesting structure the borrower intends to close under.
type EntityType string

const (
	EntityLLC         EntityType = "LLC"
	EntityCorporation EntityType = "corporation"
	EntityPersonal    EntityType = "personal"
	EntityUnspecified EntityType = "unspecified"
)

// ExperienceTier ranks borrower track record. Ordering matters: lenders
// state a minimum tier and anything at or above it qualifies.
type ExperienceTier string

const (
	ExperienceNone     ExperienceTier = "none"
	ExperienceSome     ExperienceTier = "some"
	ExperienceSeasoned ExperienceTier = "seasoned"
)

var experienceRank = map[ExperienceTier]int{
	ExperienceNone:     0,
	ExperienceSome:     1,
	ExperienceSeasoned: 2,
}

// DealType flags describe the shape of the deal. They drive both the
// deal-type exclusion rule and the last-resort routing triggers.
type DealType string

const (
	DealFixAndFlip           DealType = "fix_and_flip"
	DealGroundUpConstruction DealType = "ground_up_construction"
	DealForeignNational      DealType = "foreign_national"
	DealLand                 DealType = "land"
	DealCommercialMixedUse   DealType = "commercial_mixed_use"
	DealNonWarrantableCondo  DealType = "non_warrantable_condo"
	DealHighLeverageRehab    DealType = "high_leverage_rehab"
	DealOwnerOccupiedPrimary DealType = "owner_occupied_primary"
)

// Scenario is the normalized loan request. Every recognized field is
// present after Normalize; amounts default to 0 when not provided.
// Instances are never mutated downstream.
type Scenario struct {
	LoanAmount    float64 `json:"loanAmount"`
	ARV           float64 `json:"arv"`
	PurchasePrice float64 `json:"purchasePrice"`

	PropertyState      string         `json:"propertyState"`
	BorrowerExperience ExperienceTier `json:"borrowerExperience"`
	EntityType         EntityType     `json:"entityType"`
	Intent             Intent         `json:"intent"`
	ExitStrategy       string         `json:"exitStrategy"`
	DealTypes          []DealType     `json:"dealTypes"`

	PersonalGuaranteeAccepted bool `json:"personalGuaranteeAccepted"`
	CrossCollateral           bool `json:"crossCollateral"`
	UsingThirdPartyProcessor  bool `json:"usingThirdPartyProcessor"`
	RepeatBorrower            bool `json:"repeatBorrower"`
	HardMoneyIntent           bool `json:"hardMoneyIntent"`

	DaysToClose       int `json:"daysToClose"`
	DesiredTermMonths int `json:"desiredTermMonths"`

	// Derived during normalization.
	LTVOnARV      float64 `json:"ltvOnArv"`
	LTVOnPurchase float64 `json:"ltvOnPurchase"`
	Completeness  float64 `json:"completeness"`
}

// HasDealType reports whether the scenario carries the given flag.
func (s Scenario) HasDealType(dt DealType) bool {
	for _, d := range s.DealTypes {
		if d == dt {
			return true
		}
	}
	return false
}

// Fields counted toward the completeness ratio used by the confidence
// annotation on the decision record.
var completenessFields = []string{
	"loanAmount", "purchasePrice", "propertyState",
	"borrowerExperience", "entityType", "intent", "exitStrategy",
}

// Normalize canonicalizes a loosely-typed scenario object into a Scenario.
// It is a total function: string-typed numerics are parsed, missing or
// unparseable values fall back to defaults, and unrecognized intent or
// entity strings map to the unspecified sentinel. It never fails.
func Normalize(raw map[string]any) Scenario {
	s := Scenario{
		LoanAmount:    nonNegative(floatField(raw, "loanAmount")),
		ARV:           nonNegative(floatField(raw, "arv")),
		PurchasePrice: nonNegative(floatField(raw, "purchasePrice")),

		PropertyState:      strings.ToUpper(strings.TrimSpace(stringField(raw, "propertyState", "state"))),
		BorrowerExperience: normalizeExperience(stringField(raw, "borrowerExperience")),
		EntityType:         normalizeEntity(stringField(raw, "entityType")),
		Intent:             normalizeIntent(stringField(raw, "intent")),
		ExitStrategy:       strings.TrimSpace(stringField(raw, "exitStrategy")),

		PersonalGuaranteeAccepted: boolField(raw, "personalGuaranteeAccepted"),
		CrossCollateral:           boolField(raw, "crossCollateral"),
		UsingThirdPartyProcessor:  boolField(raw, "usingThirdPartyProcessor"),
		RepeatBorrower:            boolField(raw, "repeatBorrower"),
		HardMoneyIntent:           boolField(raw, "hardMoneyIntent"),

		DaysToClose:       intField(raw, "daysToClose"),
		DesiredTermMonths: intField(raw, "desiredTermMonths"),

		DealTypes: dealTypeField(raw, "dealTypes"),
	}

	if s.ARV > 0 && s.LoanAmount > 0 {
		s.LTVOnARV = round1(s.LoanAmount / s.ARV * 100)
	}
	if s.PurchasePrice > 0 && s.LoanAmount > 0 {
		s.LTVOnPurchase = round1(s.LoanAmount / s.PurchasePrice * 100)
	}

	provided := 0
	for _, f := range completenessFields {
		if fieldProvided(raw, f) {
			provided++
		}
	}
	s.Completeness = float64(provided) / float64(len(completenessFields))

	return s
}

func normalizeIntent(v string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(v))) {
	case IntentPurchase:
		return IntentPurchase
	case IntentRefinance:
		return IntentRefinance
	case IntentConstruction:
		return IntentConstruction
	default:
		return IntentUnspecified
	}
}

func normalizeEntity(v string) EntityType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "llc":
		return EntityLLC
	case "corporation", "corp", "s_corp", "c_corp":
		return EntityCorporation
	case "personal", "individual":
		return EntityPersonal
	default:
		return EntityUnspecified
	}
}

func normalizeExperience(v string) ExperienceTier {
	switch ExperienceTier(strings.ToLower(strings.TrimSpace(v))) {
	case ExperienceSome:
		return ExperienceSome
	case ExperienceSeasoned:
		return ExperienceSeasoned
	default:
		return ExperienceNone
	}
}

var knownDealTypes = map[DealType]bool{
	DealFixAndFlip:           true,
	DealGroundUpConstruction: true,
	DealForeignNational:      true,
	DealLand:                 true,
	DealCommercialMixedUse:   true,
	DealNonWarrantableCondo:  true,
	DealHighLeverageRehab:    true,
	DealOwnerOccupiedPrimary: true,
}

func dealTypeField(raw map[string]any, key string) []DealType {
	out := []DealType{}
	seen := map[DealType]bool{}
	add := func(dt DealType) {
		if knownDealTypes[dt] && !seen[dt] {
			seen[dt] = true
			out = append(out, dt)
		}
	}

	switch v := raw[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(DealType(strings.ToLower(strings.TrimSpace(s))))
			}
		}
	case []string:
		for _, s := range v {
			add(DealType(strings.ToLower(strings.TrimSpace(s))))
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(DealType(strings.ToLower(strings.TrimSpace(s))))
		}
	}

	// Individual boolean flags are accepted as an alternative spelling.
	for dt := range knownDealTypes {
		if boolField(raw, string(dt)) {
			add(dt)
		}
	}

	return out
}

func floatField(raw map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
			cleaned = strings.TrimPrefix(cleaned, "$")
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intField(raw map[string]any, keys ...string) int {
	return int(floatField(raw, keys...))
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(raw map[string]any, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true") || v == "1"
	case float64:
		return v != 0
	}
	return false
}

func fieldProvided(raw map[string]any, key string) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	}
	return true
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
