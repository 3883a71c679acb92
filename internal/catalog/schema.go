// internal/catalog/schema.go
package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// profileSchema is the contract a catalog document must satisfy before the
// engine will evaluate the lender. Documents that fail validation are still
// loaded, but flagged incomplete so they surface as skipped entries instead
// of failing the whole run.
const profileSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name", "type", "active", "statesActive", "qualification"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"type": {"type": "string", "enum": ["conventional", "non_qm", "hard_money"]},
		"active": {"type": "boolean"},
		"acceptingNewBrokers": {"type": "boolean"},
		"acceptingNewBrokersConfirmedDate": {"type": "string"},
		"statesActive": {
			"type": "array",
			"items": {"type": "string", "pattern": "^[A-Z]{2}$"}
		},
		"qualification": {
			"type": "object",
			"required": ["minLoanAmount", "maxLoanAmount"],
			"properties": {
				"maxLTVonARV": {"type": "number", "minimum": 0, "maximum": 100},
				"maxLTVonPurchase": {"type": "number", "minimum": 0, "maximum": 100},
				"minLoanAmount": {"type": "number", "minimum": 0},
				"maxLoanAmount": {"type": "number", "exclusiveMinimum": 0}
			}
		},
		"compensation": {"type": "object"},
		"terms": {"type": "object"},
		"niches": {"type": "object"},
		"dealPreferences": {"type": "object"},
		"operations": {"type": "object"}
	}
}`

var compiledProfileSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		panic(fmt.Sprintf("lender profile schema does not compile: %v", err))
	}
	compiledProfileSchema = schema
}

// ValidateProfile checks a raw catalog document against the lender profile
// schema. It returns the list of violation messages; an empty list means the
// document is valid. A non-nil error means the document could not be checked
// at all (e.g. malformed JSON).
func ValidateProfile(doc []byte) ([]string, error) {
	result, err := compiledProfileSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return violations, nil
}
