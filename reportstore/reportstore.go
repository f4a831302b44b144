// Package reportstore persists report artifacts to a local directory or to
// cloud object storage.
package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"

	"github.com/cockroachdb/rewritecheck/report"
	"github.com/google/uuid"
)

type Store interface {
	// Put writes a, named after candidate, and returns where it was stored.
	Put(ctx context.Context, candidate string, a report.Artifact) (Resource, error)
}

type Resource interface {
	URL() string
	Reader(ctx context.Context) (io.ReadCloser, error)
	Delete(ctx context.Context) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// objectKey names an artifact uniquely, so that every run of a candidate is
// kept.
func objectKey(prefix string, candidate string, id uuid.UUID) string {
	name := unsafeKeyChars.ReplaceAllString(candidate, "_")
	if name == "" {
		name = "report"
	}
	return path.Join(prefix, fmt.Sprintf("%s_%s.json", name, id))
}

func encode(a report.Artifact) (*bytes.Reader, error) {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(append(b, '\n')), nil
}
