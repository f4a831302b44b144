package cmdutil

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/validate"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, loggerConfig{level: "warn", format: "json"})
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)

	_, err = newLogger(&buf, loggerConfig{level: "info", format: "xml"})
	require.EqualError(t, err, `unknown log format "xml"`)
}

func TestMetricsServer(t *testing.T) {
	srv := httptest.NewServer(MetricsServer(zerolog.Nop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPolicyFlags(t *testing.T) {
	defer func(old validateConfig) { validateCfg = old }(validateCfg)

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterPolicyFlags(cmd)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.Equal(t, compare.DefaultPolicy(), Policy())

	cmd.SetArgs([]string{"--max-variance", "2.5", "--row-display-cap", "-1", "--any-column-order", "--cell-diagnostics"})
	require.NoError(t, cmd.Execute())
	expected := compare.TolerantPolicy(2.5)
	expected.RowDisplayCap = compare.UnboundedRowDisplay
	expected.RequireColumnOrder = false
	expected.CellDiagnostics = true
	require.Equal(t, expected, Policy())
	require.Len(t, ValidateOpts(), 4)
}

func TestPerfRunsFlags(t *testing.T) {
	for _, tc := range []struct {
		args     []string
		expected int
	}{
		{args: []string{}, expected: 0},
		{args: []string{"--perf"}, expected: validate.DefaultPerformanceRuns},
		{args: []string{"--perf-runs", "5"}, expected: 5},
		{args: []string{"--perf", "--perf-runs", "7"}, expected: 7},
	} {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			defer func(old validateConfig) { validateCfg = old }(validateCfg)
			cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
			RegisterPolicyFlags(cmd)
			cmd.SetArgs(tc.args)
			require.NoError(t, cmd.Execute())
			require.Equal(t, tc.expected, PerfRuns())
		})
	}
}

func TestReportStoreFlags(t *testing.T) {
	defer func(old reportStoreConfig) { reportStoreCfg = old }(reportStoreCfg)

	reportStoreCfg = reportStoreConfig{}
	store, err := ReportStore(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, store)

	reportStoreCfg = reportStoreConfig{localPath: t.TempDir()}
	store, err = ReportStore(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, store)

	reportStoreCfg = reportStoreConfig{localPath: t.TempDir(), s3Bucket: "b"}
	_, err = ReportStore(context.Background(), zerolog.Nop())
	require.Error(t, err)
}
