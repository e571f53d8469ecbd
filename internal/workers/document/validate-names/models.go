// internal/workers/document/validate-names/models.go
package validatenames

type Input struct {
	DocumentID    string                 `json:"documentId"`
	UserID        string                 `json:"userId"`
	ExtractedData map[string]interface{} `json:"extractedData"`
	TaxProfile    *Profile               `json:"taxProfile,omitempty"`
}

// Profile carries the filer names used for matching. Spouse fields are set
// only on joint filings.
type Profile struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	SpouseFirstName string `json:"spouseFirstName,omitempty"`
	SpouseLastName  string `json:"spouseLastName,omitempty"`
}

// MatchResult is the outcome of a single name pair comparison.
type MatchResult struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Output aggregates the best match across every (document name x profile
// name) pair, plus the input name lists for display.
type Output struct {
	IsValid             bool     `json:"isValid"`
	Score               int      `json:"score"`
	Reason              string   `json:"reason"`
	PrimaryMatch        bool     `json:"primaryMatch"`
	SpouseMatch         bool     `json:"spouseMatch"`
	MatchedDocumentName string   `json:"matchedDocumentName,omitempty"`
	MatchedProfileName  string   `json:"matchedProfileName,omitempty"`
	DocumentNames       []string `json:"documentNames"`
	ProfileNames        []string `json:"profileNames"`
}
