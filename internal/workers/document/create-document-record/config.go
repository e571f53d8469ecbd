// internal/workers/document/create-document-record/config.go
package createdocumentrecord

import "time"

type Config struct {
	Timeout time.Duration
	// IndexName is the Elasticsearch index documents are projected into.
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		IndexName: "tax-documents",
	}
}
