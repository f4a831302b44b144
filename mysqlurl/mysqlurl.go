// Package mysqlurl turns the connection strings users pass to the CLI into
// go-sql-driver configurations. Both the driver's native DSN format and
// mysql:// URLs are accepted.
package mysqlurl

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	mysqldriver "github.com/go-sql-driver/mysql"
)

func Parse(connStr string) (*mysqldriver.Config, error) {
	// Try the default go-driver DSN style
	if cfg, err := ParseMySQLDSN(connStr); err == nil {
		return cfg, nil
	}
	// If it fails, try to parse via conn string
	return ParseMySQLConnStr(connStr)
}

func ParseMySQLDSN(connStr string) (*mysqldriver.Config, error) {
	byProtocol := strings.SplitN(connStr, "://", 2)
	cfg, err := mysqldriver.ParseDSN(byProtocol[len(byProtocol)-1])
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing DSN for %q", connStr)
	}
	return cfg, nil
}

func ParseMySQLConnStr(connStr string) (*mysqldriver.Config, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing conn str for %q", connStr)
	}
	if u.Host == "" {
		return nil, errors.Newf("conn str %q has no host", connStr)
	}
	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp" // By default the go-sql-driver uses tcp
	cfg.Addr = u.Host
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	// Query parameters share their names with DSN parameters, so let the driver
	// interpret them.
	dsn := cfg.FormatDSN()
	if q := u.Query(); len(q) > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + q.Encode()
	}
	cfg, err = mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing conn str for %q", connStr)
	}
	return cfg, nil
}
