package sendreviewnotification

import (
	"context"
	"testing"
	"time"

	"taxdoc-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	Calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.Calls = append(m.Calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	Calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.Calls = append(m.Calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{}, nil
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *MockSESService, *MockSNSService) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}

	h := &Handler{
		config: &Config{
			EmailEnabled: true,
			SMSEnabled:   true,
			FromEmail:    "noreply@taxdocs.example.com",
			Timeout:      30 * time.Second,
		},
		db:          db,
		logger:      logger.NewNoOpLogger(),
		sesClient:   sesMock,
		snsClient:   snsMock,
		templateMap: loadTemplates(),
	}
	return h, mock, sesMock, snsMock
}

func TestExecute_SendsEmailWithInlineContact(t *testing.T) {
	h, _, sesMock, snsMock := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		DocumentID:       "doc-1",
		NotificationType: TypeNameMismatch,
		Email:            "jane@example.com",
		Metadata:         map[string]interface{}{"reason": "weak match"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, sesMock.Calls, 1)
	call := sesMock.Calls[0]
	assert.Equal(t, "jane@example.com", call.Destination.ToAddresses[0])
	assert.Contains(t, *call.Message.Body.Text.Data, "doc-1")
	assert.Contains(t, *call.Message.Body.Text.Data, "weak match")
	assert.Empty(t, snsMock.Calls)
}

func TestExecute_HighPriorityAlsoSendsSMS(t *testing.T) {
	h, _, sesMock, snsMock := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		DocumentID:       "doc-1",
		NotificationType: TypeNameMismatch,
		Priority:         "high",
		Email:            "jane@example.com",
		Phone:            "+15550001111",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.True(t, output.SMSSent)
	assert.Len(t, sesMock.Calls, 1)
	require.Len(t, snsMock.Calls, 1)
	assert.Equal(t, "+15550001111", *snsMock.Calls[0].PhoneNumber)
}

func TestExecute_NormalPrioritySkipsSMS(t *testing.T) {
	h, _, _, snsMock := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		DocumentID:       "doc-1",
		NotificationType: TypeReviewRequested,
		Email:            "jane@example.com",
		Phone:            "+15550001111",
	})
	require.NoError(t, err)

	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Empty(t, snsMock.Calls)
}

func TestExecute_FetchesContactFromProfile(t *testing.T) {
	h, mock, sesMock, _ := newTestHandler(t)

	rows := sqlmock.NewRows([]string{"email", "phone"}).AddRow("jane@example.com", "")
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("user-1").
		WillReturnRows(rows)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		DocumentID:       "doc-1",
		NotificationType: TypeExtractionDone,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	require.Len(t, sesMock.Calls, 1)
	assert.Equal(t, "jane@example.com", sesMock.Calls[0].Destination.ToAddresses[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingContactDisables(t *testing.T) {
	h, mock, sesMock, _ := newTestHandler(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("user-unknown").
		WillReturnError(assert.AnError)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-unknown",
		DocumentID:       "doc-1",
		NotificationType: TypeNameMismatch,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, sesMock.Calls)
}

func TestExecute_UnknownTemplateErrors(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		NotificationType: "nonexistent",
		Email:            "jane@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestExecute_EmailFailureReportsFailedStatus(t *testing.T) {
	h, _, sesMock, _ := newTestHandler(t)
	sesMock.SendEmailFunc = func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, assert.AnError
	}

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		DocumentID:       "doc-1",
		NotificationType: TypeNameMismatch,
		Email:            "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Document {{documentId}} needs {{action}} by {{missing}}.", map[string]interface{}{
		"documentId": "doc-9",
		"action":     "review",
	})
	assert.Equal(t, "Document doc-9 needs review by .", out)
}
