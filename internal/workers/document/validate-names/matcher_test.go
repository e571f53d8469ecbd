package validatenames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNames(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		expected []string
	}{
		{
			name: "employee and recipient",
			data: map[string]interface{}{
				"employeeName":  "Jane Doe",
				"recipientName": "John Smith",
			},
			expected: []string{"Jane Doe", "John Smith"},
		},
		{
			name: "employer ignored when employee present",
			data: map[string]interface{}{
				"employeeName": "Jane Doe",
				"employerName": "Acme Corp",
			},
			expected: []string{"Jane Doe"},
		},
		{
			name: "employer used when employee absent",
			data: map[string]interface{}{
				"recipientName": "John Smith",
				"employerName":  "Acme Corp",
			},
			expected: []string{"John Smith", "Acme Corp"},
		},
		{
			name: "values are trimmed",
			data: map[string]interface{}{
				"employeeName": "  Jane Doe  ",
			},
			expected: []string{"Jane Doe"},
		},
		{
			name: "non-string values ignored",
			data: map[string]interface{}{
				"employeeName":  42,
				"recipientName": []string{"x"},
				"employerName":  "Acme Corp",
			},
			expected: []string{"Acme Corp"},
		},
		{
			name:     "blank values ignored",
			data:     map[string]interface{}{"employeeName": "   "},
			expected: []string{},
		},
		{
			name:     "nil input",
			data:     nil,
			expected: []string{},
		},
		{
			name: "duplicates kept",
			data: map[string]interface{}{
				"employeeName":  "Jane Doe",
				"recipientName": "Jane Doe",
			},
			expected: []string{"Jane Doe", "Jane Doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractNames(tt.data))
		})
	}
}

func TestBuildProfileNames(t *testing.T) {
	tests := []struct {
		name     string
		profile  *Profile
		expected []string
	}{
		{
			name:     "primary only",
			profile:  &Profile{FirstName: "Jane", LastName: "Doe"},
			expected: []string{"Jane Doe"},
		},
		{
			name: "primary and spouse",
			profile: &Profile{
				FirstName: "Jane", LastName: "Doe",
				SpouseFirstName: "John", SpouseLastName: "Smith",
			},
			expected: []string{"Jane Doe", "John Smith"},
		},
		{
			name: "spouse takes filer surname when none recorded",
			profile: &Profile{
				FirstName: "Jane", LastName: "Doe",
				SpouseFirstName: "John",
			},
			expected: []string{"Jane Doe", "John Doe"},
		},
		{
			name:     "all blank",
			profile:  &Profile{},
			expected: []string{},
		},
		{
			name:     "nil profile",
			profile:  nil,
			expected: []string{},
		},
		{
			name:     "first name only",
			profile:  &Profile{FirstName: "Jane"},
			expected: []string{"Jane"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildProfileNames(tt.profile))
		})
	}
}

func TestCompareNames(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		wantScore  int
		wantReason string
	}{
		{"exact match", "John Smith", "John Smith", 100, "exact match"},
		{"exact after normalization", "JOHN   SMITH", "john smith", 100, "exact match"},
		{"empty left", "", "Jane Doe", 0, "empty comparison"},
		{"empty right", "Jane Doe", "   ", 0, "empty comparison"},
		{"normalizes to empty", "123 !!!", "Jane Doe", 0, "empty comparison"},
		{"middle initial dropped", "John A. Smith", "John Smith", 100, "strong match"},
		{"first token differs", "Jon Smith", "John Smith", 50, "partial match"},
		{"completely different", "Jane Doe", "Robert Brown", 0, "no match"},
		{"last name only", "Michael Smith", "John Smith", 50, "partial match"},
		{"middle token pair", "Mary Ann Louise Smith", "Mary Ann Smith", 83, "good match"},
		{"only initials on one side", "J R", "John Roe", 0, "no valid name parts"},
		{"punctuation and digits stripped", "Jane Doe #2", "Jane Doe", 100, "exact match"},
		{"hyphen collapses into one token", "Mary-Jane Smith", "Mary Jane Smith", 50, "partial match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compareNames(tt.a, tt.b)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestCompareNames_SelfAlwaysHundred(t *testing.T) {
	for _, x := range []string{"Jane", "Jane Doe", "mary ann louise smith", "A"} {
		result := compareNames(x, x)
		assert.Equal(t, 100, result.Score, "self comparison of %q", x)
	}
}

func TestCompareNames_Deterministic(t *testing.T) {
	first := compareNames("Jon Smith", "John Smith")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, compareNames("Jon Smith", "John Smith"))
	}
}

func TestCompareNames_ScoreClampedAt100(t *testing.T) {
	// Repeated middle tokens count every pair, so parts can exceed the
	// shorter token count.
	result := compareNames("anna bob bob bob lee", "anna bob bob lee")
	assert.LessOrEqual(t, result.Score, 100)
	assert.GreaterOrEqual(t, result.Score, 0)
}

func TestValidateNames_NoDocumentNames(t *testing.T) {
	output := validateNames(&Profile{FirstName: "Jane", LastName: "Doe"}, []string{})

	assert.False(t, output.IsValid)
	assert.Equal(t, 0, output.Score)
	assert.Equal(t, "no names found in document", output.Reason)
	assert.False(t, output.PrimaryMatch)
	assert.False(t, output.SpouseMatch)
}

func TestValidateNames_NoProfileNames(t *testing.T) {
	output := validateNames(&Profile{FirstName: "", LastName: ""}, []string{"Jane Doe"})

	assert.False(t, output.IsValid)
	assert.Equal(t, 0, output.Score)
	assert.Equal(t, "no names in profile", output.Reason)
}

func TestValidateNames_NilProfile(t *testing.T) {
	output := validateNames(nil, []string{"Jane Doe"})

	assert.False(t, output.IsValid)
	assert.Equal(t, "no names in profile", output.Reason)
}

func TestValidateNames_BestPairWins(t *testing.T) {
	profile := &Profile{
		FirstName: "Jane", LastName: "Doe",
		SpouseFirstName: "John", SpouseLastName: "Smith",
	}

	output := validateNames(profile, []string{"Acme Corp", "John Smith"})

	assert.True(t, output.IsValid)
	assert.Equal(t, 100, output.Score)
	assert.False(t, output.PrimaryMatch)
	assert.True(t, output.SpouseMatch)
	assert.Equal(t, "John Smith", output.MatchedDocumentName)
	assert.Equal(t, "John Smith", output.MatchedProfileName)
}

func TestValidateNames_PrimaryWinsTies(t *testing.T) {
	profile := &Profile{
		FirstName: "Jane", LastName: "Doe",
		SpouseFirstName: "Jane", SpouseLastName: "Doe",
	}

	output := validateNames(profile, []string{"Jane Doe"})

	require.Equal(t, 100, output.Score)
	assert.True(t, output.PrimaryMatch)
	assert.False(t, output.SpouseMatch)
}

func TestValidateNames_EarliestDocumentNameWinsTies(t *testing.T) {
	profile := &Profile{FirstName: "Jane", LastName: "Doe"}

	output := validateNames(profile, []string{"Jane Doe", "JANE DOE"})

	require.Equal(t, 100, output.Score)
	assert.Equal(t, "Jane Doe", output.MatchedDocumentName)
}

func TestValidateNames_ValidityCutoff(t *testing.T) {
	profile := &Profile{FirstName: "John", LastName: "Smith"}

	// 50-point partial match sits below the 70 cutoff.
	output := validateNames(profile, []string{"Jon Smith"})

	assert.Equal(t, 50, output.Score)
	assert.Equal(t, "partial match", output.Reason)
	assert.False(t, output.IsValid)
}

func TestValidateNames_IncludesInputListsForDisplay(t *testing.T) {
	profile := &Profile{FirstName: "Jane", LastName: "Doe"}
	docNames := []string{"Jane Doe", "Acme Corp"}

	output := validateNames(profile, docNames)

	assert.Equal(t, docNames, output.DocumentNames)
	assert.Equal(t, []string{"Jane Doe"}, output.ProfileNames)
}
