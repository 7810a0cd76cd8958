package offline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/coocood/freecache"
)

var _ CacheStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps every generation in its own freecache instance.
// Deleting a generation only unlinks it, so readers still holding it finish
// their lookups on the old data.
type MemoryStorage struct {
	mu                 sync.Mutex
	generationSizeByte int
	generations        map[string]*memoryGeneration
	// creation order, returned by Keys
	names []string
}

// NewMemoryStorage sizes every generation to generationSizeMB. freecache refuses
// entries larger than 1/1024 of its size.
func NewMemoryStorage(generationSizeMB int) *MemoryStorage {
	megabyte := 1024 * 1024
	return &MemoryStorage{
		generationSizeByte: generationSizeMB * megabyte,
		generations:        make(map[string]*memoryGeneration),
	}
}

func (ms *MemoryStorage) Open(_ context.Context, name string) (Generation, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if gen, ok := ms.generations[name]; ok {
		return gen, nil
	}
	gen := &memoryGeneration{
		name:  name,
		cache: freecache.NewCache(ms.generationSizeByte),
	}
	ms.generations[name] = gen
	ms.names = append(ms.names, name)
	return gen, nil
}

func (ms *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return slices.Clone(ms.names), nil
}

func (ms *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.generations[name]; !ok {
		return false, nil
	}
	delete(ms.generations, name)
	ms.names = slices.DeleteFunc(ms.names, func(n string) bool {
		return n == name
	})
	return true, nil
}

type memoryGeneration struct {
	name  string
	cache *freecache.Cache
}

func (g *memoryGeneration) Name() string {
	return g.name
}

func (g *memoryGeneration) Match(_ context.Context, key string) (*CachedResponse, bool, error) {
	data, err := g.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("freecache get [%s]: %w", key, err)
	}
	cr, err := unmarshalCachedResponse(data)
	if err != nil {
		return nil, false, err
	}
	return cr, true, nil
}

func (g *memoryGeneration) Put(_ context.Context, key string, resp *CachedResponse) error {
	data, err := resp.marshal()
	if err != nil {
		return err
	}
	// no expiration, generations are dropped as a whole
	if err := g.cache.Set([]byte(key), data, 0); err != nil {
		return fmt.Errorf("freecache set [%s]: %w", key, err)
	}
	return nil
}
