package gateway

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/dbconn"
	"github.com/cockroachdb/rewritecheck/mysqlconv"
	"github.com/cockroachdb/rewritecheck/pgconv"
	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/cockroachdb/rewritecheck/retry"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq/oid"
	"github.com/rs/zerolog"
)

// SQLGateway executes queries over a single warehouse connection. It is not
// safe for concurrent use; use Clone to obtain one per goroutine.
type SQLGateway struct {
	conn   dbconn.Conn
	logger zerolog.Logger
	retry  retry.Settings
}

var _ Gateway = (*SQLGateway)(nil)
var _ Cloner = (*SQLGateway)(nil)

type SQLGatewayOpt func(*SQLGateway)

// WithRetrySettings sets the backoff used for transient connection faults.
func WithRetrySettings(s retry.Settings) SQLGatewayOpt {
	return func(g *SQLGateway) {
		g.retry = s
	}
}

func DefaultRetrySettings() retry.Settings {
	return retry.Settings{
		InitialBackoff: 100 * time.Millisecond,
		Multiplier:     2,
		MaxBackoff:     2 * time.Second,
		MaxRetries:     3,
	}
}

func NewSQLGateway(conn dbconn.Conn, logger zerolog.Logger, opts ...SQLGatewayOpt) *SQLGateway {
	g := &SQLGateway{
		conn:   conn,
		logger: logger,
		retry:  DefaultRetrySettings(),
	}
	for _, applyOpt := range opts {
		applyOpt(g)
	}
	return g
}

func (g *SQLGateway) Clone(ctx context.Context) (Gateway, error) {
	conn, err := g.conn.Clone(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error cloning connection")
	}
	return &SQLGateway{conn: conn, logger: g.logger, retry: g.retry}, nil
}

func (g *SQLGateway) Close(ctx context.Context) error {
	return g.conn.Close(ctx)
}

func (g *SQLGateway) Execute(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.Timeout))
	defer cancel()

	if req.DryRun {
		if err := CheckSyntax(g.conn.Dialect(), req.Query); err != nil {
			return Result{}, &Error{Kind: KindSyntax, Query: req.Query, Cause: err}
		}
		err := g.withRetry(ctx, func() error { return g.explain(ctx, req.Query) })
		return Result{}, classify(ctx, KindExecution, req.Query, err)
	}

	var res Result
	err := g.withRetry(ctx, func() error {
		start := time.Now()
		rs, truncated, err := g.query(ctx, req.Query, req.RowLimit)
		if err != nil {
			return err
		}
		res = Result{
			ResultSet: rs,
			RowCount:  rs.NumRows(),
			Truncated: truncated,
			Stats:     Stats{Elapsed: time.Since(start)},
		}
		return nil
	})
	if err != nil {
		return Result{}, classify(ctx, KindExecution, req.Query, err)
	}
	g.logger.Debug().
		Str("conn", string(g.conn.ID())).
		Int("rows", res.RowCount).
		Bool("truncated", res.Truncated).
		Dur("elapsed", res.Stats.Elapsed).
		Msgf("executed query")
	return res, nil
}

func (g *SQLGateway) withRetry(ctx context.Context, fn func() error) error {
	attempt := 0
	return retry.Do(ctx, g.retry, isTransient, func() error {
		attempt++
		err := fn()
		if err != nil && isTransient(err) {
			g.logger.Warn().Err(err).Int("attempt", attempt).Msgf("transient error executing query")
		}
		return err
	})
}

// isTransient reports whether err is a connection fault that happened before
// the server could have acted on the statement.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	return errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn)
}

func (g *SQLGateway) explain(ctx context.Context, query string) error {
	switch conn := g.conn.(type) {
	case *dbconn.PGConn:
		rows, err := conn.Query(ctx, "EXPLAIN "+query)
		if err != nil {
			return err
		}
		rows.Close()
		return rows.Err()
	case *dbconn.MySQLConn:
		rows, err := conn.QueryContext(ctx, "EXPLAIN "+query)
		if err != nil {
			return err
		}
		return rows.Close()
	}
	return errors.AssertionFailedf("unhandled Conn type: %T", g.conn)
}

func (g *SQLGateway) query(
	ctx context.Context, query string, limit int,
) (resultset.ResultSet, bool, error) {
	switch conn := g.conn.(type) {
	case *dbconn.PGConn:
		return queryPG(ctx, conn, query, limit)
	case *dbconn.MySQLConn:
		return queryMySQL(ctx, conn, query, limit)
	}
	return resultset.ResultSet{}, false, errors.AssertionFailedf("unhandled Conn type: %T", g.conn)
}

func queryPG(
	ctx context.Context, conn *dbconn.PGConn, query string, limit int,
) (resultset.ResultSet, bool, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return resultset.ResultSet{}, false, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	oids := make([]oid.Oid, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
		oids[i] = oid.Oid(fd.DataTypeOID)
	}

	var out []resultset.Row
	truncated := false
	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			truncated = true
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return resultset.ResultSet{}, false, err
		}
		row, err := pgconv.ConvertRowValues(vals, oids)
		if err != nil {
			return resultset.ResultSet{}, false, errors.Wrapf(err, "error converting row %d", len(out))
		}
		out = append(out, row)
	}
	if !truncated {
		if err := rows.Err(); err != nil {
			return resultset.ResultSet{}, false, err
		}
	}
	rs, err := resultset.New(cols, out)
	return rs, truncated, err
}

func queryMySQL(
	ctx context.Context, conn *dbconn.MySQLConn, query string, limit int,
) (resultset.ResultSet, bool, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return resultset.ResultSet{}, false, err
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return resultset.ResultSet{}, false, err
	}
	cols := make([]string, len(colTypes))
	typeNames := make([]string, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = ct.Name()
		typeNames[i] = ct.DatabaseTypeName()
	}

	var out []resultset.Row
	truncated := false
	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			truncated = true
			break
		}
		row, err := mysqlconv.ScanRow(rows, typeNames)
		if err != nil {
			return resultset.ResultSet{}, false, errors.Wrapf(err, "error converting row %d", len(out))
		}
		out = append(out, row)
	}
	if !truncated {
		if err := rows.Err(); err != nil {
			return resultset.ResultSet{}, false, err
		}
	}
	rs, err := resultset.New(cols, out)
	return rs, truncated, err
}
