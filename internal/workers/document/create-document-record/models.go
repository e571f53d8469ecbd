// internal/workers/document/create-document-record/models.go
package createdocumentrecord

type Input struct {
	UserID   string `json:"userId"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Checksum string `json:"checksum"`
	TaxYear  int    `json:"taxYear,omitempty"`
}

type Output struct {
	DocumentID     string `json:"documentId"`
	DocumentStatus string `json:"documentStatus"`
	CreatedAt      string `json:"createdAt"`
}
