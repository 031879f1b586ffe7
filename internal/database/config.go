package database

import "time"

// Config holds everything needed to open a connection and pin it to a schema.
type Config struct {
	// Dialect is the database engine (e.g. DialectPostgres).
	Dialect Dialect

	// URL is the connection string as the engine understands it.
	// Examples:
	//   postgres://localhost:5432/agency
	//   tcp(localhost:3306)/agency
	//   /var/lib/agency.db
	URL string

	// Credentials, kept apart from URL so they never appear in logs.
	User     string
	Password string

	// Schema is the schema every connection is pinned to. Empty means the
	// engine default ("public", the URL database, or "main").
	Schema string

	// Timeouts
	ConnectTimeout time.Duration // time limit for establishing a new connection
	QueryTimeout   time.Duration // per-operation deadline applied by Session.Do; 0 disables
}

// DefaultConfig returns settings for a Postgres database at url.
func DefaultConfig(url string) *Config {
	return &Config{
		Dialect:        DialectPostgres,
		URL:            url,
		Schema:         "public",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   30 * time.Second,
	}
}
