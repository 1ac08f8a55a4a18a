package completion

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Factory builds a client for one API key.
type Factory func(apiKey string) Client

type entry struct {
	apiKey string
	client Client
}

// Registry hands out one client per project, rebuilding it when the key
// presented for that project changes. Least recently used projects are
// evicted once size is reached. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, entry]
	factory Factory
}

const DefaultRegistrySize = 128

func NewRegistry(size int, factory Factory) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Registry{cache: cache, factory: factory}, nil
}

func (r *Registry) Get(projectID, apiKey string) Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.cache.Get(projectID); ok && e.apiKey == apiKey {
		return e.client
	}
	c := r.factory(apiKey)
	r.cache.Add(projectID, entry{apiKey: apiKey, client: c})
	return c
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
