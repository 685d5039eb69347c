package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/little-lemon/internal/internaltypes"
)

var ErrNotFound = fmt.Errorf("storage: key %w", internaltypes.ErrNotFound)

// KV is a durable string-keyed blob store, the server-side stand-in for
// browser local storage. Put overwrites.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendLevelDB  Backend = "leveldb"
	BackendPostgres Backend = "postgres"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendMemory, BackendLevelDB, BackendPostgres:
		return b, nil
	case "":
		return BackendLevelDB, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (want memory, leveldb or postgres)", s)
	}
}
