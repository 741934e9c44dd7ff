package hashlife

import lru "github.com/hashicorp/golang-lru"

// ResultCache memoizes evolution results. Keys are canonical node
// pointers plus a step exponent, so evicting an entry costs only a
// recomputation, never correctness.
type ResultCache interface {
	// Add records a freshly-computed result.
	Add(key, value interface{})
	// Get retrieves the cached result, if present.
	Get(key interface{}) (value interface{}, ok bool)
	// Purge drops every entry.
	Purge()
}

// NewResultCache creates a new LRU-based result cache of the given
// size. ARC keeps both recently and frequently recurring regions
// warm. One cache can be shared by any number of stores.
func NewResultCache(size int) ResultCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
