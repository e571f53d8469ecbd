// internal/workers/document/extract-document-data/config.go
package extractdocumentdata

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 30 * time.Minute,
		Timeout:  90 * time.Second,
	}
}
