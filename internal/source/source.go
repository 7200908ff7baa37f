// Package source defines the capability set shared by every session adapter.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/Zuo-Peng/ai-session-hub/internal/model"
)

// Adapter reads one assistant's on-disk format into the canonical model.
// Operations are total: expected failures (missing roots, corrupt or
// oversized files) never surface as panics, only as skips or errors
// wrapping the model sentinels.
type Adapter interface {
	Source() model.Source
	Root() string

	// ListMetadata scans the root for lightweight metadata only.
	ListMetadata(ctx context.Context) ListResult

	// IsMember reports whether id names a session stored by this adapter.
	IsMember(id string) bool

	// LoadDetail fully parses one session. Errors wrap
	// model.ErrSessionNotFound, model.ErrOversize or model.ErrCorrupt.
	LoadDetail(ctx context.Context, id string) (*model.SessionDetail, error)
}

// ListResult contains session metadata and the sessions left out, with
// the reason each was skipped.
type ListResult struct {
	Sessions []model.SessionMeta
	Skipped  []model.Skip
}

func (r *ListResult) Skip(src model.Source, id, path string, err error) {
	r.Skipped = append(r.Skipped, model.Skip{Source: src, ID: id, Path: path, Err: err})
}

// Clock returns the current time; adapters take one so status windows can
// be tested deterministically.
type Clock func() time.Time

// Within reports whether t lies no further than window before now.
func Within(now, t time.Time, window time.Duration) bool {
	if t.IsZero() {
		return false
	}
	return now.Sub(t) <= window
}

// Reason reduces an adapter error to the sentinel describing it.
func Reason(err error) error {
	for _, sentinel := range []error{
		model.ErrSessionNotFound,
		model.ErrOversize,
		model.ErrCorrupt,
		model.ErrNoUserMessages,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}
