// internal/workers/match/evaluate-hard-money-path/models.go
package evaluatehardmoneypath

import "lender-match-engine/internal/match"

// Input is the normalized scenario and the per-tier sections produced by
// the run-lender-match task.
type Input struct {
	Scenario         match.Scenario `json:"scenario"`
	AgencySection    match.Section  `json:"agencySection"`
	NonQMSection     match.Section  `json:"nonQMSection"`
	HardMoneySection match.Section  `json:"hardMoneySection"`
}

// Output surfaces the routing decision. RoutingState and HeroMode are
// duplicated at the top level so BPMN gateways can branch on them without
// digging into the evaluation object.
type Output struct {
	HardMoneyEvaluation match.HardMoneyEvaluation `json:"hardMoneyEvaluation"`
	RoutingState        match.RoutingState        `json:"routingState"`
	HeroMode            bool                      `json:"heroMode"`
	TriggerReasons      []string                  `json:"triggerReasons"`
}
