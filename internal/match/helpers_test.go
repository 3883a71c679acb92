package match

import (
	"time"
)

// ==========================
// Test Helper Functions
// ==========================

var testAsOf = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testHardMoneyLender(id, name string) LenderProfile {
	return LenderProfile{
		ID:                             id,
		Name:                           name,
		Type:                           LenderHardMoney,
		Active:                         true,
		AcceptingNewBrokers:            true,
		AcceptingNewBrokersConfirmedAt: testAsOf.AddDate(0, 0, -10),
		StatesActive:                   []string{"TX", "FL", "GA"},
		Qualification: Qualification{
			MaxLTVOnARV:                   75,
			MaxLTVOnPurchase:              85,
			MinLoanAmount:                 100000,
			MaxLoanAmount:                 2000000,
			BorrowerExperienceRequired:    ExperienceNone,
			EntityRequired:                EntityPolicyPersonalOK,
			CrossCollateralizationAllowed: true,
		},
		Compensation: Compensation{
			LenderOriginationPoints: PointsRange{Min: 1.5, Max: 2.5},
			LenderProcessingFee:     995,
			MaxBrokerPointsAllowed:  2,
			YSPAvailable:            false,
		},
		Terms: Terms{
			AvailableMonths:    []int{6, 12, 18},
			TypicalFundingDays: 12,
			FastCloseCapable:   false,
		},
		Operations: Operations{
			ThirdPartyProcessingAllowed: "yes",
		},
	}
}

func testAgencyLender(id, name string) LenderProfile {
	p := testHardMoneyLender(id, name)
	p.Type = LenderConventional
	return p
}

func testScenarioTX() Scenario {
	return Normalize(map[string]any{
		"loanAmount":         500000.0,
		"arv":                700000.0,
		"purchasePrice":      550000.0,
		"propertyState":      "TX",
		"entityType":         "LLC",
		"borrowerExperience": "some",
		"intent":             "purchase",
		"exitStrategy":       "sale",
	})
}
