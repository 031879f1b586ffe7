package database

import (
	"sync"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// Factory builds a Driver from a Config. Dialect packages register one in
// their init function.
type Factory func(cfg *Config) (Driver, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[Dialect]Factory{}
)

// Register makes a driver factory available for d. Registering the same
// dialect twice replaces the earlier factory.
func Register(d Dialect, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[d] = f
}

// NewDriver builds the driver registered for cfg.Dialect.
func NewDriver(cfg *Config) (Driver, error) {
	if cfg == nil {
		return nil, errs.New(errs.ErrKindValidation, "database config is required")
	}
	factoriesMu.RLock()
	f, ok := factories[cfg.Dialect]
	factoriesMu.RUnlock()
	if !ok {
		return nil, errs.Newf(errs.ErrKindValidation, "no driver registered for %s", cfg.Dialect)
	}
	return f(cfg)
}
