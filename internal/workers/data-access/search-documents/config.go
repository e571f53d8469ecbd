// internal/workers/data-access/search-documents/config.go
package searchdocuments

import "time"

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		IndexName: "tax-documents",
	}
}
