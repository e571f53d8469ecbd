// internal/workers/data-access/query-documents/queries/document.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func DocumentDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	documentID, ok := params["documentId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, userID, fileName, mimeType, documentType, status, provider string
	var taxYear int
	var confidence float64
	var extractedData []byte
	var createdAt, updatedAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, user_id, file_name, mime_type, document_type,
		       COALESCE(tax_year, 0), status, COALESCE(provider, ''),
		       COALESCE(confidence, 0), COALESCE(extracted_data, '{}'),
		       created_at, updated_at
		FROM documents
		WHERE id = $1`, documentID).Scan(
		&id, &userID, &fileName, &mimeType, &documentType,
		&taxYear, &status, &provider,
		&confidence, &extractedData,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(extractedData, &fields); err != nil {
		fields = map[string]interface{}{}
	}

	result := map[string]interface{}{
		"id":            id,
		"userId":        userID,
		"fileName":      fileName,
		"mimeType":      mimeType,
		"documentType":  documentType,
		"taxYear":       taxYear,
		"status":        status,
		"provider":      provider,
		"confidence":    confidence,
		"extractedData": fields,
		"createdAt":     createdAt,
		"updatedAt":     updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func UserDocuments(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	query := `
		SELECT id, file_name, document_type, COALESCE(tax_year, 0), status, created_at
		FROM documents
		WHERE user_id = $1`
	args := []interface{}{userID}

	// Optional tax year narrowing.
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if year, ok := filters["taxYear"].(float64); ok {
			query += ` AND tax_year = $2`
			args = append(args, int(year))
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, fileName, documentType, status, createdAt string
		var taxYear int
		if err := rows.Scan(&id, &fileName, &documentType, &taxYear, &status, &createdAt); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"fileName":     fileName,
			"documentType": documentType,
			"taxYear":      taxYear,
			"status":       status,
			"createdAt":    createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func PendingReviewDocuments(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	query := `
		SELECT id, user_id, file_name, document_type, status, created_at
		FROM documents
		WHERE status = 'needs_review'`
	args := []interface{}{}

	if userID, ok := params["userId"].(string); ok && userID != "" {
		query += ` AND user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, userID, fileName, documentType, status, createdAt string
		if err := rows.Scan(&id, &userID, &fileName, &documentType, &status, &createdAt); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"userId":       userID,
			"fileName":     fileName,
			"documentType": documentType,
			"status":       status,
			"createdAt":    createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
