package mysql

import (
	"github.com/go-sql-driver/mysql"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// buildConfig parses cfg.URL as a go-sql-driver DSN and applies the
// credentials and timeout configured separately.
// Format: [user[:pass]@]tcp(host:port)/dbname?param=value
func buildConfig(cfg *database.Config) (*mysql.Config, error) {
	mcfg, err := mysql.ParseDSN(cfg.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid mysql DSN", err)
	}
	if cfg.User != "" {
		mcfg.User = cfg.User
	}
	if cfg.Password != "" {
		mcfg.Passwd = cfg.Password
	}
	if cfg.ConnectTimeout > 0 {
		mcfg.Timeout = cfg.ConnectTimeout
	}
	// DATE/DATETIME columns come back as time.Time.
	mcfg.ParseTime = true
	// Ad-hoc text may contain several statements.
	mcfg.MultiStatements = true
	return mcfg, nil
}
