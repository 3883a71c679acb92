// internal/match/engine.go
package match

import "time"

// Engine runs the full decision pipeline against an in-memory catalog
// snapshot. It holds no mutable state; a single Engine is safe for
// concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine returns an engine with the given configuration and the wall
// clock. Staleness and confidence are measured against the clock at the
// start of each run.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run normalizes a raw scenario, matches it against the catalog snapshot,
// routes the hard-money tier and seals a decision record. It never fails:
// malformed input degrades to an ineligible-but-explained record.
func (e *Engine) Run(raw map[string]any, catalog []LenderProfile) DecisionRecord {
	asOf := e.now()
	s := Normalize(raw)
	return e.RunScenario(s, catalog, asOf)
}

// RunScenario is Run for an already-normalized scenario with an explicit
// evaluation time, used when the caller controls normalization or replays
// a historical run.
func (e *Engine) RunScenario(s Scenario, catalog []LenderProfile, asOf time.Time) DecisionRecord {
	agency, nonQM, hardMoney := RunLenderMatch(s, catalog, e.cfg, asOf)
	hm := EvaluateHardMoneyPath(s, agency.TotalEligible, nonQM.TotalEligible, hardMoney)
	return BuildDecisionRecord(s, agency, nonQM, hm, asOf)
}
