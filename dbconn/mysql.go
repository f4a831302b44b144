package dbconn

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/rewritecheck/mysqlurl"
)

type MySQLConn struct {
	id      ID
	connStr string
	dsn     string
	*sql.DB
}

var _ Conn = (*MySQLConn)(nil)

func ConnectMySQL(ctx context.Context, id ID, connStr string) (*MySQLConn, error) {
	cfg, err := mysqlurl.Parse(connStr)
	if err != nil {
		return nil, err
	}
	dsn := cfg.FormatDSN()
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if id == "" {
		id = ID(cfg.Addr)
	}
	return &MySQLConn{id: id, connStr: connStr, dsn: dsn, DB: db}, nil
}

func (c *MySQLConn) ID() ID {
	return c.id
}

func (c *MySQLConn) Close(ctx context.Context) error {
	return c.DB.Close()
}

func (c *MySQLConn) Clone(ctx context.Context) (Conn, error) {
	return ConnectMySQL(ctx, c.id, c.connStr)
}

func (c *MySQLConn) ConnStr() string {
	return c.connStr
}

func (c *MySQLConn) Dialect() Dialect {
	return DialectMySQL
}
