// internal/workers/document/classify-document/config.go
package classifydocument

import "time"

type Config struct {
	Timeout time.Duration
	// MinConfidence below which the document is routed to manual review.
	MinConfidence float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		MinConfidence: 0.6,
	}
}
