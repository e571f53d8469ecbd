// internal/workers/communication/send-review-notification/models.go
package sendreviewnotification

type Input struct {
	UserID           string                 `json:"userId"`
	DocumentID       string                 `json:"documentId"`
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	Email            string                 `json:"email,omitempty"`
	Phone            string                 `json:"phone,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeNameMismatch    = "name_mismatch"
	TypeReviewRequested = "review_requested"
	TypeExtractionDone  = "extraction_complete"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
