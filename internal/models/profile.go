// internal/models/profile.go
package models

import "time"

// TaxProfile holds the filer identity a document is reconciled against.
// Spouse fields are set only on joint filings.
type TaxProfile struct {
	UserID          string    `json:"userId" db:"user_id"`
	FirstName       string    `json:"firstName" db:"first_name"`
	LastName        string    `json:"lastName" db:"last_name"`
	SpouseFirstName string    `json:"spouseFirstName,omitempty" db:"spouse_first_name"`
	SpouseLastName  string    `json:"spouseLastName,omitempty" db:"spouse_last_name"`
	FilingStatus    string    `json:"filingStatus,omitempty" db:"filing_status"`
	Email           string    `json:"email,omitempty" db:"email"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
