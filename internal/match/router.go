// internal/match/router.go
package match

// RoutingState controls how the hard-money section is presented.
type RoutingState string

const (
	// RoutingDormant hides the hard-money section entirely.
	RoutingDormant RoutingState = "DORMANT"
	// RoutingTertiary shows it collapsed as a supplementary option.
	RoutingTertiary RoutingState = "TERTIARY"
	// RoutingTriggered expands it with explicit trigger reasons.
	RoutingTriggered RoutingState = "TRIGGERED"
	// RoutingHero promotes hard money to the primary result path.
	RoutingHero RoutingState = "HERO"
)

const heroReason = "No conventional or Non-QM lenders matched this scenario."

// routingTriggers maps deal-shape conditions to the human-readable reason
// surfaced when that condition independently necessitates hard money.
var routingTriggers = []struct {
	applies func(Scenario) bool
	reason  string
}{
	{
		func(s Scenario) bool { return s.HardMoneyIntent },
		"Borrower explicitly requested a hard-money path",
	},
	{
		func(s Scenario) bool { return s.HasDealType(DealFixAndFlip) },
		"Fix-and-flip purpose — ARV-based hard money path appropriate",
	},
	{
		func(s Scenario) bool { return s.HasDealType(DealGroundUpConstruction) },
		"Ground-up construction — hard money or construction bridge required",
	},
	{
		func(s Scenario) bool { return s.HasDealType(DealLand) },
		"Land/raw land — ineligible for agency and most Non-QM products",
	},
	{
		func(s Scenario) bool { return s.HasDealType(DealForeignNational) },
		"Foreign national with no conforming path",
	},
	{
		func(s Scenario) bool { return s.DaysToClose > 0 && s.DaysToClose <= 10 },
		"Sub-10-day close required — hard money is fastest path",
	},
}

// RouteHardMoney decides the presentation state for the hard-money tier.
// Precedence: HERO over TRIGGERED over TERTIARY over DORMANT. The reasons
// list is ordered, de-duplicated, and empty for TERTIARY and DORMANT.
// Pure: no state survives between calls.
func RouteHardMoney(s Scenario, agencyEligible, nonQMEligible, hardMoneyEligible int) (RoutingState, []string) {
	if agencyEligible == 0 && nonQMEligible == 0 {
		reasons := append([]string{heroReason}, scenarioTriggers(s)...)
		return RoutingHero, dedupe(reasons)
	}
	if reasons := scenarioTriggers(s); len(reasons) > 0 {
		return RoutingTriggered, dedupe(reasons)
	}
	if hardMoneyEligible > 0 {
		return RoutingTertiary, []string{}
	}
	return RoutingDormant, []string{}
}

func scenarioTriggers(s Scenario) []string {
	var reasons []string
	for _, t := range routingTriggers {
		if t.applies(s) {
			reasons = append(reasons, t.reason)
		}
	}
	return reasons
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// HardMoneyEvaluation is the last-resort path result handed to the
// decision record builder.
type HardMoneyEvaluation struct {
	State          RoutingState `json:"state"`
	Triggered      bool         `json:"triggered"`
	HeroMode       bool         `json:"heroMode"`
	TriggerReasons []string     `json:"triggerReasons"`
	Section        Section      `json:"section"`
	EligibleCount  int          `json:"eligibleCount"`
}

// EvaluateHardMoneyPath combines the routing decision with the already
// computed hard-money section. Hero mode holds whenever both upstream
// pools are empty, independent of the hard-money eligible count.
func EvaluateHardMoneyPath(s Scenario, agencyEligible, nonQMEligible int, hm Section) HardMoneyEvaluation {
	state, reasons := RouteHardMoney(s, agencyEligible, nonQMEligible, hm.TotalEligible)
	return HardMoneyEvaluation{
		State:          state,
		Triggered:      state == RoutingTriggered || state == RoutingHero,
		HeroMode:       state == RoutingHero,
		TriggerReasons: reasons,
		Section:        hm,
		EligibleCount:  hm.TotalEligible,
	}
}
