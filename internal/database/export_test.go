package database

// NewSessionForTest builds a Session without contacting the database.
func NewSessionForTest(drv Driver, cfg *Config) *Session {
	return &Session{driver: drv, cfg: *cfg, schema: cfg.Schema}
}
