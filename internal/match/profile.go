// internal/match/profile.go
package match

import "time"

// LenderType determines which result pool a lender lands in.
type LenderType string

const (
	LenderConventional LenderType = "conventional"
	LenderNonQM        LenderType = "non_qm"
	LenderHardMoney    LenderType = "hard_money"
)

// EntityPolicy values mirror the catalog document vocabulary.
const (
	EntityPolicyLLCRequired  = "LLC_required"
	EntityPolicyLLCPreferred = "LLC_preferred"
	EntityPolicyPersonalOK   = "personal_ok"
)

// PointsRange is a lender origination point band.
type PointsRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Qualification carries the hard thresholds a scenario is gated on.
type Qualification struct {
	MaxLTVOnARV                   float64        `json:"maxLTVonARV"`
	MaxLTVOnPurchase              float64        `json:"maxLTVonPurchase"`
	MinLoanAmount                 float64        `json:"minLoanAmount"`
	MaxLoanAmount                 float64        `json:"maxLoanAmount"`
	BorrowerExperienceRequired    ExperienceTier `json:"borrowerExperienceRequired"`
	EntityRequired                string         `json:"entityRequired"`
	PersonalGuaranteeRequired     bool           `json:"personalGuaranteeRequired"`
	CrossCollateralizationAllowed bool           `json:"crossCollateralizationAllowed"`
	ProofOfFundsLetterAvailable   bool           `json:"proofOfFundsLetterAvailable"`
	SameDayTermSheet              bool           `json:"sameDayTermSheet"`
}

// Compensation describes broker-facing economics. Rates are deliberately
// absent from this record.
type Compensation struct {
	LenderOriginationPoints PointsRange `json:"lenderOriginationPoints"`
	LenderProcessingFee     float64     `json:"lenderProcessingFee"`
	MaxBrokerPointsAllowed  float64     `json:"maxBrokerPointsAllowed"`
	BrokerFeeStructure      []string    `json:"brokerFeeStructure"`
	YSPAvailable            bool        `json:"yspAvailable"`
	YSPTiers                []string    `json:"yspTiers"`
	TotalFeeCap             *float64    `json:"totalFeeCap"`
	PrepaymentPenalty       string      `json:"prepaymentPenalty"`
}

// Terms describes timing and structure options.
type Terms struct {
	AvailableMonths    []int `json:"available"`
	TypicalFundingDays int   `json:"typicalFundingDays"`
	FastCloseCapable   bool  `json:"fastCloseCapable"`
}

// NicheFlags is a closed capability set. Keeping it a struct of named
// booleans (rather than an open map) lets the evaluator and scorer cover
// every flag exhaustively.
type NicheFlags struct {
	FixAndFlipSpecialist    bool `json:"fixAndFlipSpecialist"`
	GroundUpConstruction    bool `json:"groundUpConstruction"`
	BridgeToPermanent       bool `json:"bridgeToPermanent"`
	ForeignNational         bool `json:"foreignNational"`
	NonWarrantableCondo     bool `json:"nonWarrantableCondo"`
	LandLoans               bool `json:"landLoans"`
	CommercialMixedUse      bool `json:"commercialMixedUse"`
	FastCloseUnder10Days    bool `json:"fastCloseUnder10Days"`
	PortfolioRepeatBorrower bool `json:"portfolioRepeatBorrower"`
	HighLeverageRehab       bool `json:"highLeverageRehab"`
}

// DealPreferences lists what a lender seeks out and what it avoids.
type DealPreferences struct {
	PreferredExitStrategies []string `json:"preferredExitStrategies"`
	DealTypesToAvoid        []string `json:"dealTypesToAvoid"`
}

// Operations is the relationship/ops metadata surfaced to LOs.
type Operations struct {
	DedicatedAEAssigned         bool   `json:"dedicatedAEAssigned"`
	AEContact                   string `json:"aeContact"`
	AEEmail                     string `json:"aeEmail"`
	AEPhone                     string `json:"aePhone"`
	EscalationContact           string `json:"escalationContact"`
	SubmissionPortal            string `json:"submissionPortal"`
	ThirdPartyProcessingAllowed string `json:"thirdPartyProcessingAllowed"`
	OverlappingLoanCap          *int   `json:"overlappingLoanCap"`
	ActiveLoanCount             int    `json:"activeLoanCount"`
	ScenarioDeskAvailable       bool   `json:"scenarioDeskAvailable"`
}

// LenderProfile is one lender's program as sourced from the catalog.
// The engine reads a snapshot per evaluation run and never mutates it.
type LenderProfile struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type LenderType `json:"type"`

	Active                         bool      `json:"active"`
	AcceptingNewBrokers            bool      `json:"acceptingNewBrokers"`
	AcceptingNewBrokersConfirmedAt time.Time `json:"acceptingNewBrokersConfirmedDate"`

	StatesActive []string `json:"statesActive"`

	Qualification   Qualification   `json:"qualification"`
	Compensation    Compensation    `json:"compensation"`
	Terms           Terms           `json:"terms"`
	Niches          NicheFlags      `json:"niches"`
	DealPreferences DealPreferences `json:"dealPreferences"`
	Operations      Operations      `json:"operations"`

	// Incomplete marks a profile whose document failed catalog validation.
	// Such lenders become evaluation-skipped entries, never run failures.
	Incomplete bool `json:"-"`
}

// ActiveIn reports whether the lender lends in the given state.
func (p LenderProfile) ActiveIn(state string) bool {
	for _, s := range p.StatesActive {
		if s == state {
			return true
		}
	}
	return false
}

// ConfirmationAgeDays is the age of the broker-status confirmation.
// Profiles with no recorded confirmation report -1.
func (p LenderProfile) ConfirmationAgeDays(asOf time.Time) int {
	if p.AcceptingNewBrokersConfirmedAt.IsZero() {
		return -1
	}
	return int(asOf.Sub(p.AcceptingNewBrokersConfirmedAt).Hours() / 24)
}

// StaleAsOf reports whether the broker-status confirmation is older than
// the given threshold in days. Missing confirmations count as stale.
func (p LenderProfile) StaleAsOf(asOf time.Time, thresholdDays int) bool {
	age := p.ConfirmationAgeDays(asOf)
	return age < 0 || age > thresholdDays
}

// qualificationComplete reports whether the document carried a usable
// qualification block. A zero max loan amount means the block was absent
// or empty.
func (p LenderProfile) qualificationComplete() bool {
	return p.Qualification.MaxLoanAmount > 0
}
