package validatenames

import (
	"context"
	"testing"
	"time"

	"taxdoc-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h := NewHandler(&Config{CacheTTL: time.Minute, Timeout: 5 * time.Second}, db, rdb, logger.NewNoOpLogger())
	return h, mock, mr
}

func TestExecute_InlineProfile(t *testing.T) {
	h, _, _ := newTestHandler(t)

	output := h.Execute(context.Background(), &Input{
		DocumentID: "doc-1",
		ExtractedData: map[string]interface{}{
			"employeeName": "Jane Doe",
		},
		TaxProfile: &Profile{FirstName: "Jane", LastName: "Doe"},
	})

	assert.True(t, output.IsValid)
	assert.Equal(t, 100, output.Score)
	assert.Equal(t, "exact match", output.Reason)
	assert.True(t, output.PrimaryMatch)
}

func TestExecute_FetchesProfileFromDatabase(t *testing.T) {
	h, mock, mr := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"first_name", "last_name", "spouse_first_name", "spouse_last_name"}).
		AddRow("Jane", "Doe", "John", "Doe")
	mock.ExpectQuery("SELECT first_name, last_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	output := h.Execute(context.Background(), &Input{
		DocumentID: "doc-1",
		UserID:     "user-1",
		ExtractedData: map[string]interface{}{
			"recipientName": "John Doe",
		},
	})

	assert.True(t, output.IsValid)
	assert.Equal(t, 100, output.Score)
	assert.True(t, output.SpouseMatch)
	assert.False(t, output.PrimaryMatch)
	require.NoError(t, mock.ExpectationsWereMet())

	// Fetched profile landed in the cache.
	assert.True(t, mr.Exists("tax:profile:user-1"))
}

func TestExecute_UsesCachedProfile(t *testing.T) {
	h, mock, mr := newTestHandler(t)

	mr.Set("tax:profile:user-1", `{"firstName":"Jane","lastName":"Doe"}`)

	output := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		ExtractedData: map[string]interface{}{
			"employeeName": "Jane Doe",
		},
	})

	assert.True(t, output.IsValid)
	assert.True(t, output.PrimaryMatch)
	// No database query expected.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RedisErrorFallsThroughToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A failing cache (connection error, not a miss) must not block the
	// lookup, and the failed write-back must not surface either.
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("tax:profile:user-1").SetErr(assert.AnError)
	rmock.Regexp().ExpectSet("tax:profile:user-1", `.*`, time.Minute).SetErr(assert.AnError)

	rows := sqlmock.NewRows([]string{"first_name", "last_name", "spouse_first_name", "spouse_last_name"}).
		AddRow("Jane", "Doe", "", "")
	mock.ExpectQuery("SELECT first_name, last_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	h := NewHandler(&Config{CacheTTL: time.Minute, Timeout: 5 * time.Second}, db, rdb, logger.NewNoOpLogger())
	output := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		ExtractedData: map[string]interface{}{
			"employeeName": "Jane Doe",
		},
	})

	assert.True(t, output.IsValid)
	assert.Equal(t, 100, output.Score)
	require.NoError(t, mock.ExpectationsWereMet())
	require.NoError(t, rmock.ExpectationsWereMet())
}

func TestExecute_ProfileLookupFailureDegrades(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	mock.ExpectQuery("SELECT first_name, last_name").
		WithArgs("user-1").
		WillReturnError(assert.AnError)

	output := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		ExtractedData: map[string]interface{}{
			"employeeName": "Jane Doe",
		},
	})

	assert.False(t, output.IsValid)
	assert.Equal(t, 0, output.Score)
	assert.Equal(t, "no names in profile", output.Reason)
}

func TestExecute_MalformedExtractionNeverErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	output := h.Execute(context.Background(), &Input{
		ExtractedData: map[string]interface{}{
			"employeeName":  12345,
			"recipientName": map[string]interface{}{"nested": true},
		},
		TaxProfile: &Profile{FirstName: "Jane", LastName: "Doe"},
	})

	assert.False(t, output.IsValid)
	assert.Equal(t, "no names found in document", output.Reason)
}
