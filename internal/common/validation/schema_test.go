package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("document.names.validate"))
	assert.NoError(t, ValidateActivityNaming("data.documents.search"))

	assert.Error(t, ValidateActivityNaming("validate-names"))
	assert.Error(t, ValidateActivityNaming("document.validate"))
	assert.Error(t, ValidateActivityNaming("Document.Names.Validate"))
	assert.Error(t, ValidateActivityNaming("document.names.validate.extra"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("jane@example.com"))
	assert.True(t, ValidateEmail("jane.doe+tax@sub.example.co"))

	assert.False(t, ValidateEmail("jane@"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("jane@example"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+15550001111"))
	assert.True(t, ValidatePhone("(555) 000-1111"))

	assert.False(t, ValidatePhone("555"))
	assert.False(t, ValidatePhone("call me"))
}
