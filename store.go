package hashlife

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultResultCacheSize is the evolution-cache capacity used when
// StoreOptions doesn't say otherwise.
const DefaultResultCacheSize = 256 * 1024

// StoreOptions sets initial parameters for a Store. A nil *StoreOptions
// means all defaults.
type StoreOptions struct {
	// ResultCacheSize is the capacity of the default evolution cache.
	// 0 means DefaultResultCacheSize.
	ResultCacheSize int

	// ResultCache overrides the evolution cache entirely and may be
	// shared across multiple stores; entries are keyed by node
	// pointers, so stores never observe each other's results.
	ResultCache ResultCache
}

// innerKey is the content of an inner node. Children are canonical
// pointers, so key equality is structural equality of whole subtrees.
type innerKey struct {
	level          Level
	nw, ne, sw, se *node
}

// Store interns quadtree nodes and memoizes evolution results. Every
// universe holds the Store that built it, and universes from the same
// Store share all identical subtrees. Two Stores share nothing.
//
// A Store is safe for concurrent use: node construction is
// insert-if-absent under a mutex, and evolution results are pure
// functions of canonical identity, so racing computations of the same
// result are interchangeable. Collect is the exception; see its note.
type Store struct {
	mu      sync.Mutex
	inners  map[innerKey]*node
	leaves  [2]*node
	empties [MaxLevel + 1]*node
	digests map[*node][32]byte

	results ResultCache

	hits        uint64
	misses      uint64
	collections uint64

	debug bool
}

// NewStore creates an empty Store.
func NewStore(options *StoreOptions) *Store {
	s := &Store{
		inners:  map[innerKey]*node{},
		digests: map[*node][32]byte{},
	}
	s.leaves[Dead] = &node{level: LeafLevel, cell: Dead}
	s.leaves[Alive] = &node{level: LeafLevel, cell: Alive, pop: 1}
	s.empties[LeafLevel] = s.leaves[Dead]
	if options != nil && options.ResultCache != nil {
		s.results = options.ResultCache
	} else {
		size := DefaultResultCacheSize
		if options != nil && options.ResultCacheSize > 0 {
			size = options.ResultCacheSize
		}
		s.results = NewResultCache(size)
	}
	return s
}

// leaf returns the canonical single-cell node for c.
func (s *Store) leaf(c Cell) *node {
	if c != Dead && c != Alive {
		panic(fmt.Sprintf("no such cell state %d", c))
	}
	return s.leaves[c]
}

// inner returns the canonical node with exactly the given children.
// All four must be canonical nodes at level-1.
func (s *Store) inner(level Level, nw, ne, sw, se *node) *node {
	if level < 1 || level > MaxLevel {
		panic(fmt.Sprintf("no inner nodes at level %d", level))
	}
	if nw == nil || ne == nil || sw == nil || se == nil {
		panic("inner node with nil child")
	}
	if cl := level - 1; nw.level != cl || ne.level != cl || sw.level != cl || se.level != cl {
		panic(fmt.Sprintf("inner node at level %d requires children at level %d, got %d/%d/%d/%d",
			level, level-1, nw.level, ne.level, sw.level, se.level))
	}
	key := innerKey{level, nw, ne, sw, se}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.inners[key]; ok {
		return n
	}
	n := &node{
		level: level,
		nw:    nw,
		ne:    ne,
		sw:    sw,
		se:    se,
		pop:   satAdd(satAdd(nw.pop, ne.pop), satAdd(sw.pop, se.pop)),
	}
	s.inners[key] = n
	return n
}

// empty returns the canonical all-dead node at the given level.
func (s *Store) empty(l Level) *node {
	s.mu.Lock()
	n := s.empties[l]
	s.mu.Unlock()
	if n != nil {
		return n
	}
	n = s.inner(l, s.empty(l-1), s.empty(l-1), s.empty(l-1), s.empty(l-1))
	s.mu.Lock()
	s.empties[l] = n
	s.mu.Unlock()
	return n
}

// Collect drops every node that is not reachable from one of the
// given universes, so the runtime can reclaim the rest, and purges
// the evolution cache (its entries are derived data and will be
// recomputed on demand). Universes that are not passed must not be
// used afterward: their subtrees lose canonicality.
//
// Collect must not run concurrently with any other operation on the
// Store or its universes.
func (s *Store) Collect(live ...Universe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := map[*node]bool{}
	var mark func(*node)
	mark = func(n *node) {
		if n == nil || n.level == LeafLevel || keep[n] {
			return
		}
		keep[n] = true
		mark(n.nw)
		mark(n.ne)
		mark(n.sw)
		mark(n.se)
	}
	for _, e := range s.empties {
		mark(e)
	}
	for _, u := range live {
		mark(u.root)
	}
	inners := make(map[innerKey]*node, len(keep))
	for k, n := range s.inners {
		if keep[n] {
			inners[k] = n
		}
	}
	digests := make(map[*node][32]byte, len(s.digests))
	for n, d := range s.digests {
		if keep[n] || n.level == LeafLevel {
			digests[n] = d
		}
	}
	dropped := len(s.inners) - len(inners)
	s.inners = inners
	s.digests = digests
	s.results.Purge()
	atomic.AddUint64(&s.collections, 1)
	if s.debug {
		fmt.Printf("collect: kept %d nodes, dropped %d\n", len(inners), dropped)
	}
}

// StoreStats is a point-in-time snapshot of a Store's counters.
type StoreStats struct {
	// Nodes is the number of interned inner nodes.
	Nodes int
	// ResultHits and ResultMisses count evolution-cache lookups.
	ResultHits   uint64
	ResultMisses uint64
	// Collections is the number of completed Collect passes.
	Collections uint64
}

// Stats reports the Store's counters.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	nodes := len(s.inners)
	s.mu.Unlock()
	return StoreStats{
		Nodes:        nodes,
		ResultHits:   atomic.LoadUint64(&s.hits),
		ResultMisses: atomic.LoadUint64(&s.misses),
		Collections:  atomic.LoadUint64(&s.collections),
	}
}
