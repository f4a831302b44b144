package cmdutil

import (
	"context"

	"github.com/cockroachdb/rewritecheck/dbconn"
	"github.com/cockroachdb/rewritecheck/gateway"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var connStr string

func RegisterDBConnFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&connStr,
		"conn",
		"",
		"URL of the database both queries run against",
	)
	if err := cmd.MarkPersistentFlagRequired("conn"); err != nil {
		panic(err)
	}
}

// LoadGateway connects to the database given by --conn.
func LoadGateway(ctx context.Context, logger zerolog.Logger) (*gateway.SQLGateway, error) {
	conn, err := dbconn.Connect(ctx, "warehouse", connStr)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("dialect", string(conn.Dialect())).Msgf("connected")
	return gateway.NewSQLGateway(conn, logger), nil
}
