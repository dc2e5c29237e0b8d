// Package dsn builds driver connection strings from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopadmin/shop-admin/internal/config"
)

const defaultSQLitePath = "shop-admin.db"

// Create builds the Data Source Name for the configured engine. A non-empty
// db.url (DATABASE_URL) wins over the single fields.
func Create(cfg *config.Config) string {
	if cfg.DB.URL != "" {
		return FromURL(cfg.DB.GormEngine, cfg.DB.URL)
	}

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres(cfg.DB)
	case config.EngineSQLite:
		return sqlite(cfg.DB)
	default:
		return mysql(cfg.DB)
	}
}

// FromURL converts a URL style connection string into what the driver expects.
// Postgres and sqlite take URLs as they are, go-sql-driver/mysql does not.
func FromURL(engine, raw string) string {
	if engine != config.EngineMySQL && engine != "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "mysql" {
		return raw
	}

	password, _ := u.User.Password()

	out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
		u.User.Username(),
		password,
		u.Host,
		strings.TrimPrefix(u.Path, "/"),
	)

	query := u.Query()
	if query.Get("parseTime") == "" {
		query.Set("parseTime", "true")
	}

	return out + "?" + query.Encode()
}

func mysql(db config.DB) string {
	extras := db.Extras
	if extras == "" {
		extras = "charset=utf8mb4&parseTime=True&loc=Local"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		extras,
	)
}

func postgres(db config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
	)

	if db.Extras != "" {
		out += " " + db.Extras
	}

	return out
}

func sqlite(db config.DB) string {
	path := db.Path
	if path == "" {
		path = defaultSQLitePath
	}

	if db.Extras != "" {
		return path + "?" + db.Extras
	}

	return path
}
