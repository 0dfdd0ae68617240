package db

import (
	"fmt"
	"strings"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "pgx"
)

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// ParseDSN maps DATABASE_URL onto a driver and a database/sql DSN.
// Accepted forms: postgres://…, postgresql://…, sqlite://path.db,
// sqlite:///abs/path.db and sqlite://:memory:.
func ParseDSN(databaseURL string) (Driver, string, error) {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("db: unsupported DATABASE_URL %q", databaseURL)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DriverPostgres, databaseURL, nil
	case "sqlite":
		if rest == "" || rest == "/" {
			return "", "", fmt.Errorf("db: sqlite path missing in %q", databaseURL)
		}
		if rest == ":memory:" {
			return DriverSQLite, "file::memory:?" + sqlitePragmas, nil
		}
		sep := "?"
		if strings.Contains(rest, "?") {
			sep = "&"
		}
		return DriverSQLite, "file:" + rest + sep + sqlitePragmas, nil
	}
	return "", "", fmt.Errorf("db: unsupported scheme %q", scheme)
}
