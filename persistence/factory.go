// persistence/factory.go
package persistence

import (
	"fmt"

	"github.com/wfunc/spellchain/config"
)

// Open picks the backend named by the config driver. An empty driver means
// archival is disabled and the caller gets a nil Database.
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "":
		return nil, nil
	case "gorm":
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "pq":
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
