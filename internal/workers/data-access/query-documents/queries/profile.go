// internal/workers/data-access/query-documents/queries/profile.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func TaxProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var firstName, lastName, spouseFirstName, spouseLastName string
	var filingStatus, email, phone string

	err := db.QueryRowContext(ctx, `
		SELECT first_name, last_name,
		       COALESCE(spouse_first_name, ''), COALESCE(spouse_last_name, ''),
		       COALESCE(filing_status, ''), COALESCE(email, ''), COALESCE(phone, '')
		FROM tax_profiles
		WHERE user_id = $1`, userID).Scan(
		&firstName, &lastName,
		&spouseFirstName, &spouseLastName,
		&filingStatus, &email, &phone,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"userId":          userID,
		"firstName":       firstName,
		"lastName":        lastName,
		"spouseFirstName": spouseFirstName,
		"spouseLastName":  spouseLastName,
		"filingStatus":    filingStatus,
		"email":           email,
		"phone":           phone,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
