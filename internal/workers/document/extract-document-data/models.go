// internal/workers/document/extract-document-data/models.go
package extractdocumentdata

type Input struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	Content    string `json:"content"` // base64-encoded document bytes
}

type Output struct {
	DocumentID    string                 `json:"documentId"`
	ExtractedData map[string]interface{} `json:"extractedData"`
	ExtractedText string                 `json:"extractedText,omitempty"`
	Provider      string                 `json:"provider"`
	Confidence    float64                `json:"confidence"`
}
