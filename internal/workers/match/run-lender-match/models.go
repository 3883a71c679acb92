// internal/workers/match/run-lender-match/models.go
package runlendermatch

import "lender-match-engine/internal/match"

// Input carries the raw loan-officer scenario as captured by the intake
// form. Normalization happens inside the worker; upstream tasks never have
// to produce a clean scenario.
type Input struct {
	Scenario map[string]interface{} `json:"scenario"`
}

// Output is the per-tier match result set plus the confirmation ages the
// record builder needs later in the process. The ages travel as separate
// variables because they are not part of a section's document contract.
type Output struct {
	Scenario         match.Scenario `json:"scenario"`
	AgencySection    match.Section  `json:"agencySection"`
	NonQMSection     match.Section  `json:"nonQMSection"`
	HardMoneySection match.Section  `json:"hardMoneySection"`

	AgencyOldestConfirmationDays    int `json:"agencyOldestConfirmationDays"`
	NonQMOldestConfirmationDays     int `json:"nonQMOldestConfirmationDays"`
	HardMoneyOldestConfirmationDays int `json:"hardMoneyOldestConfirmationDays"`
}
