package history

import (
	"context"
	"strings"
)

// NewStore picks a backend from databaseURL: empty keeps history in memory,
// postgres:// and postgresql:// use PostgreSQL, sqlite:<path> uses SQLite.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	dsn := strings.TrimSpace(databaseURL)
	switch {
	case dsn == "":
		return NewInMemoryStore(0), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "//"))
	default:
		return NewPostgresStore(ctx, dsn)
	}
}
