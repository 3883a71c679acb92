// internal/catalog/aeoverride.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"lender-match-engine/internal/match"
)

// AeInfo is the account-executive contact surfaced on a match result.
type AeInfo struct {
	Name       string `json:"aeName"`
	Email      string `json:"aeEmail"`
	Phone      string `json:"aePhone"`
	IsOverride bool   `json:"isOverride"`
}

// GetAeInfo resolves the AE contact for a lender. LO-entered overrides live
// in the ae_overrides table; resolution is per field: an override value wins
// only when it is non-empty and differs from the lender's catalog default,
// and every other field keeps the default from the profile's operations
// block. IsOverride reports whether any override value won.
func (r *Repository) GetAeInfo(ctx context.Context, lenderName string, defaults match.Operations) (*AeInfo, error) {
	resolved := &AeInfo{
		Name:  defaults.AEContact,
		Email: defaults.AEEmail,
		Phone: defaults.AEPhone,
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT ae_name, ae_email, ae_phone
		FROM ae_overrides
		WHERE lender_name = $1`, lenderName)

	var name, email, phone sql.NullString
	if err := row.Scan(&name, &email, &phone); err != nil {
		if err == sql.ErrNoRows {
			return resolved, nil
		}
		return nil, fmt.Errorf("ae override lookup failed for %s: %w", lenderName, err)
	}

	if name.String != "" && name.String != resolved.Name {
		resolved.Name = name.String
		resolved.IsOverride = true
	}
	if email.String != "" && email.String != resolved.Email {
		resolved.Email = email.String
		resolved.IsOverride = true
	}
	if phone.String != "" && phone.String != resolved.Phone {
		resolved.Phone = phone.String
		resolved.IsOverride = true
	}
	return resolved, nil
}
