// Package titlecache caches forum category titles for edit history display.
// Titles change rarely and a miss is harmless (the annotation falls back to
// a placeholder), so short TTLs and best-effort semantics are fine.
package titlecache

import (
	"context"
)

type TitleStore interface {
	// Get returns ("", nil) on a miss; errors are reserved for backend
	// failures.
	Get(ctx context.Context, categoryID string) (string, error)
	Set(ctx context.Context, categoryID, title string) error
	Purge(ctx context.Context, categoryID string) error
}
