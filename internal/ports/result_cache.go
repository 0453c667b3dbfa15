package ports

import "context"

// Port: cache for serialized search results keyed by run parameters.
// A miss is (nil, false, nil), never an error.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}
