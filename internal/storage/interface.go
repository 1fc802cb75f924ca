// Package storage holds the short link record, the errors shared by every
// registry backend, and the in-process, file and Redis backends.
package storage

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no record matches a code or id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record with the same id already exists.
	ErrConflict = errors.New("already exists")
)

// NormalizeCode case-folds a code to the canonical form used for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(code)
}

// Prefer reports whether candidate should win over current when both are
// active records sharing a code. Resolvable records beat expired ones, then
// the most recently created record wins, then the greater id.
func Prefer(candidate, current *ShortLink, now time.Time) bool {
	if current == nil {
		return true
	}
	cr, rr := candidate.Resolvable(now), current.Resolvable(now)
	if cr != rr {
		return cr
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}
