// internal/match/record.go
package match

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConfidenceLevel classifies how much trust a decision record deserves.
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceLow      ConfidenceLevel = "LOW"
)

// Confidence annotates a record with input completeness crossed with
// catalog currency.
type Confidence struct {
	Score   float64         `json:"score"`
	Level   ConfidenceLevel `json:"level"`
	Message string          `json:"message"`
}

// calculateConfidence weighs scenario completeness and catalog currency
// equally. Currency degrades with the age of the oldest confirmation among
// the eligible lenders; an unknown age scores full.
func calculateConfidence(completeness float64, oldestConfirmationDays int) Confidence {
	currency := 1.0
	if oldestConfirmationDays >= 0 {
		switch {
		case oldestConfirmationDays <= 30:
			currency = 1.0
		case oldestConfirmationDays <= 90:
			currency = 0.85
		case oldestConfirmationDays <= 180:
			currency = 0.70
		default:
			currency = 0.55
		}
	}

	total := math.Round((completeness*0.50+currency*0.50)*100) / 100

	var level ConfidenceLevel
	var msg string
	switch {
	case total >= 0.85:
		level, msg = ConfidenceHigh, "All inputs provided. Guidelines current."
	case total >= 0.60:
		level, msg = ConfidenceModerate, "Some inputs estimated or guidelines may need verification."
	default:
		level, msg = ConfidenceLow, "Significant inputs missing or guideline data may be outdated. Verify with lender."
	}
	return Confidence{Score: total, Level: level, Message: msg}
}

// DecisionRecord is the sole artifact handed to audit and presentation
// consumers. It is append-only: re-running a scenario produces a new
// record, never an update to an old one.
type DecisionRecord struct {
	ID             string              `json:"id"`
	Scenario       Scenario            `json:"scenario"`
	AgencySection  Section             `json:"agencySection"`
	NonQMSection   Section             `json:"nonQMSection"`
	HardMoney      HardMoneyEvaluation `json:"hardMoneySection"`
	RoutingState   RoutingState        `json:"routingState"`
	TriggerReasons []string            `json:"triggerReasons"`
	Confidence     Confidence          `json:"confidence"`
	EngineVersion  string              `json:"engineVersion"`
	BuiltAt        time.Time           `json:"builtAt"`
}

// BuildDecisionRecord seals the full run output. The engine version stamp
// lets historical records be distinguished from ones produced after a rule
// revision.
func BuildDecisionRecord(s Scenario, agency, nonQM Section, hm HardMoneyEvaluation, builtAt time.Time) DecisionRecord {
	oldest := agency.OldestConfirmationDays
	if nonQM.OldestConfirmationDays > oldest {
		oldest = nonQM.OldestConfirmationDays
	}
	if hm.Section.OldestConfirmationDays > oldest {
		oldest = hm.Section.OldestConfirmationDays
	}

	return DecisionRecord{
		ID:             uuid.NewString(),
		Scenario:       s,
		AgencySection:  agency,
		NonQMSection:   nonQM,
		HardMoney:      hm,
		RoutingState:   hm.State,
		TriggerReasons: hm.TriggerReasons,
		Confidence:     calculateConfidence(s.Completeness, oldest),
		EngineVersion:  EngineVersion,
		BuiltAt:        builtAt.UTC(),
	}
}

// Narrative renders a one-line "why this lender" sentence from the score
// components, for lender cards and escalation emails.
func (r ScoredResult) Narrative() string {
	if len(r.MatchDetails) == 0 {
		return fmt.Sprintf("%s scored %d for this scenario.", r.LenderName, r.Score)
	}
	details := r.MatchDetails
	if len(details) > 3 {
		details = details[:3]
	}
	return fmt.Sprintf("%s scored %d: %s.", r.LenderName, r.Score, strings.Join(details, "; "))
}
