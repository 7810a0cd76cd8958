package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CachedResponse is the stored copy of a live response.
type CachedResponse struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
}

func (cr *CachedResponse) marshal() ([]byte, error) {
	data, err := json.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("marshal cached response: %w", err)
	}
	return data, nil
}

func unmarshalCachedResponse(data []byte) (*CachedResponse, error) {
	cr := &CachedResponse{}
	if err := json.Unmarshal(data, cr); err != nil {
		return nil, fmt.Errorf("unmarshal cached response: %w", err)
	}
	return cr, nil
}

//go:generate mockgen -source=$GOFILE -destination=storage_mocks_test.go -package=offline_test

// CacheStorage holds named cache generations.
type CacheStorage interface {
	// Open returns the generation with the given name, creating it if needed.
	Open(ctx context.Context, name string) (Generation, error)
	Keys(ctx context.Context) ([]string, error)
	// Delete removes a whole generation and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Generation is one versioned set of cached responses. Entries are only ever
// added; a generation is dropped as a whole.
type Generation interface {
	Name() string
	Match(ctx context.Context, key string) (*CachedResponse, bool, error)
	Put(ctx context.Context, key string, resp *CachedResponse) error
}
