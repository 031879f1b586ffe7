package filestore

import "time"

// Config holds the settings needed to reach the object store that receives
// exported workbooks.
type Config struct {
	// Endpoint is the host:port of the storage server, e.g. "localhost:9000".
	Endpoint string

	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket receives every uploaded export. It is created on first use.
	Bucket string

	// PresignTTL bounds the lifetime of download links.
	PresignTTL time.Duration
}

// DefaultConfig returns a local-dev MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:   endpoint,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		Bucket:     "exports",
		PresignTTL: 24 * time.Hour,
	}
}
