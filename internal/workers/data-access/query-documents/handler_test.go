package querydocuments

import (
	"context"
	"testing"
	"time"

	"taxdoc-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(&Config{Timeout: 5 * time.Second}, db, logger.NewNoOpLogger())
	return h, mock
}

func TestExecute_DocumentDetails(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "file_name", "mime_type", "document_type",
		"tax_year", "status", "provider", "confidence", "extracted_data",
		"created_at", "updated_at",
	}).AddRow(
		"doc-1", "user-1", "w2.pdf", "application/pdf", "W-2",
		2025, "extracted", "document-ai", 0.93, []byte(`{"employeeName":"Jane Doe"}`),
		"2026-01-15T10:00:00Z", "2026-01-15T10:05:00Z",
	)
	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("doc-1").
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		QueryType:  string(QueryTypeDocumentDetails),
		DocumentID: "doc-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.RowCount)
	data := output.Data.(map[string]interface{})
	assert.Equal(t, "doc-1", data["id"])
	assert.Equal(t, "W-2", data["documentType"])
	extracted := data["extractedData"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", extracted["employeeName"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_UserDocuments(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"id", "file_name", "document_type", "tax_year", "status", "created_at"}).
		AddRow("doc-2", "1099.pdf", "1099-NEC", 2025, "extracted", "2026-02-01T09:00:00Z").
		AddRow("doc-1", "w2.pdf", "W-2", 2025, "validated", "2026-01-15T10:00:00Z")
	mock.ExpectQuery("SELECT id, file_name, document_type").
		WithArgs("user-1").
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeUserDocuments),
		UserID:    "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.RowCount)
	docs := output.Data.([]map[string]interface{})
	assert.Equal(t, "doc-2", docs[0]["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_UserDocumentsWithTaxYearFilter(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"id", "file_name", "document_type", "tax_year", "status", "created_at"}).
		AddRow("doc-1", "w2.pdf", "W-2", 2024, "validated", "2025-01-15T10:00:00Z")
	mock.ExpectQuery("SELECT id, file_name, document_type").
		WithArgs("user-1", 2024).
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeUserDocuments),
		UserID:    "user-1",
		Filters:   map[string]interface{}{"taxYear": float64(2024)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_TaxProfile(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"first_name", "last_name", "spouse_first_name", "spouse_last_name",
		"filing_status", "email", "phone",
	}).AddRow("Jane", "Doe", "John", "Doe", "married_filing_jointly", "jane@example.com", "")
	mock.ExpectQuery("SELECT first_name, last_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeTaxProfile),
		UserID:    "user-1",
	})
	require.NoError(t, err)

	data := output.Data.(map[string]interface{})
	assert.Equal(t, "Jane", data["firstName"])
	assert.Equal(t, "John", data["spouseFirstName"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PendingReviewDocuments(t *testing.T) {
	h, mock := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "file_name", "document_type", "status", "created_at"}).
		AddRow("doc-3", "user-2", "scan.pdf", "unknown", "needs_review", "2026-03-01T08:00:00Z")
	mock.ExpectQuery("SELECT id, user_id, file_name").
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		QueryType: string(QueryTypePendingReviewDocuments),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InvalidQueryType(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{QueryType: "drop_tables"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQueryType)
}

func TestExecute_MissingParam(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeDocumentDetails),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}

func TestExecute_QueryFailure(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, user_id, file_name").
		WithArgs("doc-404").
		WillReturnError(assert.AnError)

	_, err := h.Execute(context.Background(), &Input{
		QueryType:  string(QueryTypeDocumentDetails),
		DocumentID: "doc-404",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}
