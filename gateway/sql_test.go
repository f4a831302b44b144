package gateway

import (
	"context"
	"testing"

	"github.com/cockroachdb/rewritecheck/testutils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSQLGateway(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		desc    string
		connStr string
		setup   []string
	}{
		{
			desc:    "postgres",
			connStr: testutils.PGConnStr(),
			setup: []string{
				"CREATE TABLE t (id INT8 PRIMARY KEY, amt NUMERIC(10, 2), name TEXT)",
				"INSERT INTO t VALUES (1, 10.50, 'a'), (2, NULL, 'b'), (3, 7, NULL)",
			},
		},
		{
			desc:    "cockroachdb",
			connStr: testutils.CRDBConnStr(),
			setup: []string{
				"CREATE TABLE t (id INT8 PRIMARY KEY, amt DECIMAL(10, 2), name STRING)",
				"INSERT INTO t VALUES (1, 10.50, 'a'), (2, NULL, 'b'), (3, 7, NULL)",
			},
		},
		{
			desc:    "mysql",
			connStr: testutils.MySQLConnStr(),
			setup: []string{
				"CREATE TABLE t (id BIGINT PRIMARY KEY, amt DECIMAL(10, 2), name VARCHAR(10))",
				"INSERT INTO t VALUES (1, 10.50, 'a'), (2, NULL, 'b'), (3, 7, NULL)",
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			conn := testutils.CleanConn(t, tc.connStr, "gateway_test")
			defer func() { _ = conn.Close(ctx) }()
			testutils.ExecConn(t, conn, tc.setup...)

			g := NewSQLGateway(conn, zerolog.Nop())

			_, err := g.Execute(ctx, Request{Query: "SELECT id, amt, name FROM t", DryRun: true})
			require.NoError(t, err)

			_, err = g.Execute(ctx, Request{Query: "SELECT nope FROM t", DryRun: true})
			require.Equal(t, KindExecution, AsError(err, "").Kind)

			_, err = g.Execute(ctx, Request{Query: "SELEC id FROM t", DryRun: true})
			require.Equal(t, KindSyntax, AsError(err, "").Kind)

			res, err := g.Execute(ctx, Request{Query: "SELECT id, amt, name FROM t ORDER BY id"})
			require.NoError(t, err)
			require.Equal(t, []string{"id", "amt", "name"}, res.ResultSet.Columns())
			require.Equal(t, 3, res.RowCount)
			require.Equal(t,
				"id | amt | name\n1 | 10.5 | a\n2 | NULL | b\n3 | 7 | NULL\n",
				testutils.FormatRows(res.ResultSet.Columns(), res.ResultSet.Rows()),
			)

			res, err = g.Execute(ctx, Request{Query: "SELECT id FROM t ORDER BY id", RowLimit: 2})
			require.NoError(t, err)
			require.Equal(t, 2, res.RowCount)
			require.True(t, res.Truncated)

			cloned, err := g.Clone(ctx)
			require.NoError(t, err)
			defer func() { _ = cloned.(Cloner).Close(ctx) }()
			res, err = cloned.Execute(ctx, Request{Query: "SELECT count(*) AS c FROM t"})
			require.NoError(t, err)
			require.Equal(t, 1, res.RowCount)
		})
	}
}
