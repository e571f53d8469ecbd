package validation

import (
	"fmt"
	"regexp"
)

// Schema validation for job variables lives in pkg/registry on top of
// gojsonschema. This package keeps the small format checks that do not
// need a schema.

var (
	namingPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z-]+$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern  = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
)

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityId string) error {
	if !namingPattern.MatchString(activityId) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., document.names.validate)")
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
