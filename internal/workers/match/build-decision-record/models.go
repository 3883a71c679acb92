// internal/workers/match/build-decision-record/models.go
package builddecisionrecord

import "lender-match-engine/internal/match"

// Input assembles everything the upstream tasks produced. The confirmation
// ages arrive as explicit variables (pointers so an absent variable reads
// as unknown rather than zero days old).
type Input struct {
	Scenario            match.Scenario            `json:"scenario"`
	AgencySection       match.Section             `json:"agencySection"`
	NonQMSection        match.Section             `json:"nonQMSection"`
	HardMoneyEvaluation match.HardMoneyEvaluation `json:"hardMoneyEvaluation"`

	AgencyOldestConfirmationDays    *int `json:"agencyOldestConfirmationDays"`
	NonQMOldestConfirmationDays     *int `json:"nonQMOldestConfirmationDays"`
	HardMoneyOldestConfirmationDays *int `json:"hardMoneyOldestConfirmationDays"`
}

type Output struct {
	DecisionRecord match.DecisionRecord `json:"decisionRecord"`
	RecordID       string               `json:"recordId"`
	RoutingState   match.RoutingState   `json:"routingState"`
	Confidence     match.Confidence     `json:"confidence"`
}
