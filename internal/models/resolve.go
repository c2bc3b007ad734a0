package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Resolution is the outcome of looking up a short code.
type Resolution int

const (
	ResolutionFound Resolution = iota
	ResolutionNotFound
	ResolutionInactive
	ResolutionExpired
)

func (r Resolution) String() string {
	switch r {
	case ResolutionFound:
		return "found"
	case ResolutionNotFound:
		return "not_found"
	case ResolutionInactive:
		return "inactive"
	case ResolutionExpired:
		return "expired"
	}
	return "unknown"
}

// Evaluate decides the resolution state of an already-fetched link at a
// given instant. Expiry wins over the active flag.
func Evaluate(l *Link, now time.Time) Resolution {
	if l == nil {
		return ResolutionNotFound
	}
	if l.ExpiresAt != nil && l.ExpiresAt.Before(now) {
		return ResolutionExpired
	}
	if !l.IsActive {
		return ResolutionInactive
	}
	return ResolutionFound
}

// ResolveShortCode looks up a short code and classifies its state. The link
// is returned for every resolution except NotFound so callers can
// distinguish an inactive link from a missing one. Pure read; never mutates
// link state.
func ResolveShortCode(ctx context.Context, db *sql.DB, code string, now time.Time) (*Link, Resolution, error) {
	link, err := GetLinkByShortCode(ctx, db, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ResolutionNotFound, nil
		}
		return nil, ResolutionNotFound, fmt.Errorf("resolve %q: %w", code, err)
	}
	return link, Evaluate(link, now), nil
}
