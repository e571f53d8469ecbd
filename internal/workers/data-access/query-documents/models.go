// internal/workers/data-access/query-documents/models.go
package querydocuments

import "taxdoc-workers/internal/models"

type Input struct {
	QueryType  string                 `json:"queryType"`
	DocumentID string                 `json:"documentId,omitempty"`
	UserID     string                 `json:"userId,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeDocumentDetails        = models.QueryTypeDocumentDetails
	QueryTypeUserDocuments          = models.QueryTypeUserDocuments
	QueryTypeTaxProfile             = models.QueryTypeTaxProfile
	QueryTypePendingReviewDocuments = models.QueryTypePendingReviewDocuments
)
