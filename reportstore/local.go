package reportstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type localStore struct {
	logger   zerolog.Logger
	basePath string
}

func NewLocalStore(logger zerolog.Logger, basePath string) (*localStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &localStore{logger: logger, basePath: basePath}, nil
}

func (l *localStore) Put(ctx context.Context, candidate string, a report.Artifact) (Resource, error) {
	r, err := encode(a)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(l.basePath, objectKey("", candidate, uuid.New()))
	logger := l.logger.With().Str("path", p).Logger()
	logger.Debug().Msgf("creating file")
	f, err := os.Create(p)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "error writing %s", p)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	logger.Debug().Msgf("wrote file")
	return &localResource{path: p, store: l}, nil
}

type localResource struct {
	path  string
	store *localStore
}

func (l *localResource) URL() string {
	return l.path
}

func (l *localResource) Reader(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(l.path)
}

func (l *localResource) Delete(ctx context.Context) error {
	l.store.logger.Debug().Msgf("removing %s", l.path)
	return os.Remove(l.path)
}
