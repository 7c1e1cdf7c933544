package store

import (
	"context"
	"fmt"
)

// Open builds the configured backend. backend is one of "memory",
// "sqlite" or "postgres".
func Open(ctx context.Context, backend, databaseURL, sqlitePath string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(sqlitePath)
	case "postgres":
		return ConnectPostgres(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
