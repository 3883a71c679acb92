// internal/catalog/schema_test.go
package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func validProfileDoc() []byte {
	return []byte(`{
		"id": "lender-hm-001",
		"name": "Ridgeline Capital",
		"type": "hard_money",
		"active": true,
		"acceptingNewBrokers": true,
		"acceptingNewBrokersConfirmedDate": "2026-02-20T00:00:00Z",
		"statesActive": ["TX", "FL"],
		"qualification": {
			"maxLTVonARV": 75,
			"maxLTVonPurchase": 85,
			"minLoanAmount": 100000,
			"maxLoanAmount": 2000000
		}
	}`)
}

// ==========================
// Schema Validation Tests
// ==========================

func TestValidateProfile_ValidDocument(t *testing.T) {
	violations, err := ValidateProfile(validProfileDoc())

	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateProfile_Violations(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains string
	}{
		{
			name: "missing name",
			doc: `{
				"id": "lender-1",
				"type": "hard_money",
				"active": true,
				"statesActive": ["TX"],
				"qualification": {"minLoanAmount": 100000, "maxLoanAmount": 2000000}
			}`,
			contains: "name",
		},
		{
			name: "unknown lender type",
			doc: `{
				"id": "lender-1",
				"name": "Test",
				"type": "portfolio",
				"active": true,
				"statesActive": ["TX"],
				"qualification": {"minLoanAmount": 100000, "maxLoanAmount": 2000000}
			}`,
			contains: "type",
		},
		{
			name: "zero max loan amount",
			doc: `{
				"id": "lender-1",
				"name": "Test",
				"type": "conventional",
				"active": true,
				"statesActive": ["TX"],
				"qualification": {"minLoanAmount": 0, "maxLoanAmount": 0}
			}`,
			contains: "maxLoanAmount",
		},
		{
			name: "state not a two-letter code",
			doc: `{
				"id": "lender-1",
				"name": "Test",
				"type": "conventional",
				"active": true,
				"statesActive": ["Texas"],
				"qualification": {"minLoanAmount": 100000, "maxLoanAmount": 2000000}
			}`,
			contains: "statesActive",
		},
		{
			name: "missing qualification block",
			doc: `{
				"id": "lender-1",
				"name": "Test",
				"type": "conventional",
				"active": true,
				"statesActive": ["TX"]
			}`,
			contains: "qualification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := ValidateProfile([]byte(tt.doc))

			require.NoError(t, err)
			require.NotEmpty(t, violations)

			found := false
			for _, v := range violations {
				if strings.Contains(v, tt.contains) {
					found = true
					break
				}
			}
			assert.True(t, found, "expected a violation mentioning %q, got %v", tt.contains, violations)
		})
	}
}

func TestValidateProfile_MalformedJSON(t *testing.T) {
	_, err := ValidateProfile([]byte(`{"id": "lender-1",`))
	assert.Error(t, err)
}
