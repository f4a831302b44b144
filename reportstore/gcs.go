package reportstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type gcsStore struct {
	logger zerolog.Logger
	bucket string
	prefix string
	client *storage.Client
}

func NewGCSStore(logger zerolog.Logger, client *storage.Client, bucket string, prefix string) *gcsStore {
	return &gcsStore{
		bucket: bucket,
		prefix: prefix,
		client: client,
		logger: logger,
	}
}

func (s *gcsStore) Put(ctx context.Context, candidate string, a report.Artifact) (Resource, error) {
	r, err := encode(a)
	if err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, candidate, uuid.New())

	s.logger.Debug().Str("file", key).Msgf("creating new file")
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("file", key).Msgf("gcs file creation complete")
	return &gcsResource{store: s, key: key}, nil
}

type gcsResource struct {
	store *gcsStore
	key   string
}

func (r *gcsResource) URL() string {
	return fmt.Sprintf("gs://%s/%s", r.store.bucket, r.key)
}

func (r *gcsResource) Reader(ctx context.Context) (io.ReadCloser, error) {
	return r.store.client.Bucket(r.store.bucket).Object(r.key).NewReader(ctx)
}

func (r *gcsResource) Delete(ctx context.Context) error {
	return r.store.client.Bucket(r.store.bucket).Object(r.key).Delete(ctx)
}
