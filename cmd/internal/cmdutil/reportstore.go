package cmdutil

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/reportstore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type reportStoreConfig struct {
	s3Bucket  string
	gcsBucket string
	localPath string
	prefix    string
}

var reportStoreCfg reportStoreConfig

func RegisterReportStoreFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.s3Bucket,
		"report-s3-bucket",
		"",
		"s3 bucket to persist JSON reports to",
	)
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.gcsBucket,
		"report-gcs-bucket",
		"",
		"gcs bucket to persist JSON reports to",
	)
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.localPath,
		"report-dir",
		"",
		"directory to persist JSON reports to",
	)
	cmd.PersistentFlags().StringVar(
		&reportStoreCfg.prefix,
		"report-prefix",
		"",
		"prefix for report objects in a bucket",
	)
}

// ReportStore returns the store reports are persisted to, or nil if none is
// configured.
func ReportStore(ctx context.Context, logger zerolog.Logger) (reportstore.Store, error) {
	set := 0
	for _, s := range []string{reportStoreCfg.s3Bucket, reportStoreCfg.gcsBucket, reportStoreCfg.localPath} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.Newf("only one of --report-s3-bucket, --report-gcs-bucket and --report-dir may be set")
	}

	switch {
	case reportStoreCfg.gcsBucket != "":
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, errors.Wrapf(err, "error finding gcs credentials")
		}
		gcsClient, err := storage.NewClient(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, err
		}
		return reportstore.NewGCSStore(logger, gcsClient, reportStoreCfg.gcsBucket, reportStoreCfg.prefix), nil
	case reportStoreCfg.s3Bucket != "":
		sess, err := session.NewSession()
		if err != nil {
			return nil, err
		}
		if _, err := sess.Config.Credentials.Get(); err != nil {
			return nil, errors.Wrapf(err, "error finding s3 credentials")
		}
		return reportstore.NewS3Store(logger, sess, reportStoreCfg.s3Bucket, reportStoreCfg.prefix), nil
	case reportStoreCfg.localPath != "":
		store, err := reportstore.NewLocalStore(logger, reportStoreCfg.localPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}
