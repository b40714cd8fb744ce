package dialect

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewFrom returns a postgres dialector.
// Hint: `dsn` package contains utility to convert `config.DB` to DSN string that can be passed here.
// Note: PreferSimpleProtocol is enabled to disable prepared statement caching, which prevents
// "cached plan must not change result type" errors
func NewFrom(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}
