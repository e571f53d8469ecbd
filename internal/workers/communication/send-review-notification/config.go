// internal/workers/communication/send-review-notification/config.go
package sendreviewnotification

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@taxdocs.example.com",
		AWSRegion:    "us-east-1",
		Timeout:      30 * time.Second,
	}
}
