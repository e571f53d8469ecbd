// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeDocumentDetails        QueryType = "document_details"
	QueryTypeUserDocuments          QueryType = "user_documents"
	QueryTypeTaxProfile             QueryType = "tax_profile"
	QueryTypePendingReviewDocuments QueryType = "pending_review_documents"
)
