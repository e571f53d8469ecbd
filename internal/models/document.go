// internal/models/document.go
package models

import "time"

// DocumentType is the classified tax form type.
type DocumentType string

const (
	DocTypeW2      DocumentType = "W-2"
	DocType1099NEC DocumentType = "1099-NEC"
	DocType1099INT DocumentType = "1099-INT"
	DocType1098    DocumentType = "1098"
	DocTypeUnknown DocumentType = "unknown"
)

// DocumentStatus tracks a document through the processing pipeline.
type DocumentStatus string

const (
	StatusUploaded    DocumentStatus = "uploaded"
	StatusExtracting  DocumentStatus = "extracting"
	StatusExtracted   DocumentStatus = "extracted"
	StatusNeedsReview DocumentStatus = "needs_review"
	StatusValidated   DocumentStatus = "validated"
	StatusFailed      DocumentStatus = "failed"
)

// Document is a stored tax document and its extraction results.
type Document struct {
	ID            string                 `json:"id" db:"id"`
	UserID        string                 `json:"userId" db:"user_id"`
	FileName      string                 `json:"fileName" db:"file_name"`
	MimeType      string                 `json:"mimeType" db:"mime_type"`
	Checksum      string                 `json:"checksum" db:"checksum"`
	DocumentType  DocumentType           `json:"documentType" db:"document_type"`
	TaxYear       int                    `json:"taxYear,omitempty" db:"tax_year"`
	Status        DocumentStatus         `json:"status" db:"status"`
	ExtractedData map[string]interface{} `json:"extractedData,omitempty" db:"extracted_data"`
	ExtractedText string                 `json:"extractedText,omitempty" db:"extracted_text"`
	Provider      string                 `json:"provider,omitempty" db:"provider"`
	Confidence    float64                `json:"confidence,omitempty" db:"confidence"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" db:"updated_at"`
}

// DocumentSearchHit is the search projection indexed in Elasticsearch.
type DocumentSearchHit struct {
	DocumentID    string   `json:"documentId"`
	UserID        string   `json:"userId"`
	FileName      string   `json:"fileName"`
	DocumentType  string   `json:"documentType"`
	TaxYear       int      `json:"taxYear,omitempty"`
	Status        string   `json:"status"`
	ExtractedText string   `json:"extractedText,omitempty"`
	Names         []string `json:"names,omitempty"`
	Score         float64  `json:"score,omitempty"`
}
