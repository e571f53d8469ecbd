// internal/workers/document/classify-document/models.go
package classifydocument

type Input struct {
	DocumentID    string                 `json:"documentId"`
	FileName      string                 `json:"fileName,omitempty"`
	ExtractedData map[string]interface{} `json:"extractedData"`
	ExtractedText string                 `json:"extractedText,omitempty"`
}

type Output struct {
	DocumentID   string  `json:"documentId"`
	DocumentType string  `json:"documentType"`
	Confidence   float64 `json:"confidence"`
	NeedsReview  bool    `json:"needsReview"`
}
