package hashlife

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// ErrAddressSpaceExceeded is reported when a universe would have to
// grow beyond MaxLevel: activity, or a requested coordinate, no
// longer fits in signed 64-bit space.
var ErrAddressSpaceExceeded = errors.New("universe exceeds 64-bit coordinate space")

// ErrIterDone can be returned by an IterAlive callback to stop
// iteration early; IterAlive absorbs it and returns nil.
var ErrIterDone = errors.New("done")

// initialLevel is the smallest root a universe keeps, so that
// padding and trimming checks always have grandchildren to inspect.
const initialLevel Level = 3

// Universe is one version of a Life board: a canonical root square
// plus the number of generations it lies from its seed. A Universe
// is an immutable value. Set and Step return new Universes, old ones
// remain valid and unchanged, and all versions from the same Store
// share their common subtrees, so keeping history is just keeping
// the old values.
type Universe struct {
	store *Store
	root  *node
	gen   uint64
}

// New returns an empty universe backed by the given store.
func New(s *Store) Universe {
	return Universe{store: s, root: s.empty(initialLevel)}
}

// Get reports the state of the cell at p. Positions outside the
// materialized region are Dead; empty space extends unbounded in
// every direction.
func (u Universe) Get(p Position) Cell {
	n := u.root
	if !p.InBounds(n.level) {
		return Dead
	}
	for n.level > 1 {
		if n.empty() {
			return Dead
		}
		q := p.Quadrant()
		p = p.Sub(n.level.QuadrantCenter(q))
		n = n.child(q)
	}
	return n.child(p.Quadrant()).cell
}

// Set returns a universe identical to u except that the cell at p has
// the given state. The root grows as needed to address p; every
// subtree off the rebuilt root-to-leaf path is shared with u.
func (u Universe) Set(p Position, c Cell) (Universe, error) {
	for !p.InBounds(u.root.level) {
		var err error
		if u.root, err = u.store.grow(u.root); err != nil {
			return Universe{}, fmt.Errorf("grow to reach (%d,%d): %w", p.X, p.Y, err)
		}
	}
	u.root = setCell(u.store, u.root, p, c)
	return u, nil
}

func setCell(s *Store, n *node, p Position, c Cell) *node {
	q := p.Quadrant()
	children := [4]*node{n.nw, n.ne, n.sw, n.se}
	if n.level == 1 {
		children[q] = s.leaf(c)
	} else {
		children[q] = setCell(s, n.child(q), p.Sub(n.level.QuadrantCenter(q)), c)
	}
	return s.inner(n.level, children[0], children[1], children[2], children[3])
}

// Step returns u advanced by n generations. n is consumed in
// power-of-two chunks, largest first; before each chunk the root is
// grown until the live pattern sits in its center quarter with
// margin to spare, so no activity can reach the result's boundary
// during the chunk.
func (u Universe) Step(n uint64) (Universe, error) {
	for n > 0 {
		exp := Level(bits.Len64(n) - 1)
		if exp > MaxLevel-3 {
			exp = MaxLevel - 3
		}
		var err error
		if u.root, err = u.store.pad(u.root, exp); err != nil {
			return Universe{}, fmt.Errorf("grow for 2^%d generations: %w", exp, err)
		}
		u.root = u.store.advance(u.root, exp)
		for u.root.level < initialLevel {
			if u.root, err = u.store.grow(u.root); err != nil {
				return Universe{}, fmt.Errorf("restore root: %w", err)
			}
		}
		u.gen += 1 << exp
		n -= 1 << exp
	}
	return u, nil
}

// Population is the number of live cells, saturating at the maximum
// uint64.
func (u Universe) Population() uint64 {
	return u.root.pop
}

// Generation is how many generations this universe lies from its
// seed.
func (u Universe) Generation() uint64 {
	return u.gen
}

// Level is the depth of the root: the universe currently addresses
// coordinates in [MinCoord, MaxCoord] of this level.
func (u Universe) Level() Level {
	return u.root.level
}

// IterAlive calls f for each live cell in a deterministic
// quadrant-recursive order (all of the northwest quadrant before the
// northeast, and so on down). Empty regions are skipped without
// descent. If f returns ErrIterDone, iteration stops and IterAlive
// returns nil; any other error stops iteration and is returned.
func (u Universe) IterAlive(f func(Position) error) error {
	err := iterAlive(u.root, Position{}, f)
	if errors.Is(err, ErrIterDone) {
		return nil
	}
	return err
}

func iterAlive(n *node, center Position, f func(Position) error) error {
	if n.empty() {
		return nil
	}
	if n.level == 1 {
		corners := [4]Offset{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}}
		for q, o := range corners {
			if n.child(Quadrant(q)).cell == Alive {
				if err := f(center.Add(o)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for q := NorthWest; q <= SouthEast; q++ {
		child := center.Add(n.level.QuadrantCenter(q))
		if err := iterAlive(n.child(q), child, f); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether two universes have identical live-cell sets,
// regardless of Store, padding, or generation counters.
func (u Universe) Equal(v Universe) bool {
	if u.store == v.store {
		return u.store.trim(u.root) == v.store.trim(v.root)
	}
	return u.Digest() == v.Digest()
}

// maxRenderPop bounds how many cells String will lay out as a grid.
const maxRenderPop = 4096

// String renders small patterns as rows of '.' and '*' covering the
// live cells' bounding box. Large patterns render as a one-line
// summary.
func (u Universe) String() string {
	if u.root.pop == 0 {
		return fmt.Sprintf("generation %d, no live cells", u.gen)
	}
	if u.root.pop > maxRenderPop {
		return fmt.Sprintf("generation %d, population %d, level %d", u.gen, u.root.pop, u.root.level)
	}
	cells := map[Position]bool{}
	min := Position{}
	max := Position{}
	first := true
	_ = u.IterAlive(func(p Position) error {
		cells[p] = true
		if first {
			min, max = p, p
			first = false
			return nil
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		return nil
	})
	if max.X-min.X >= 128 || max.Y-min.Y >= 128 {
		return fmt.Sprintf("generation %d, population %d, level %d", u.gen, u.root.pop, u.root.level)
	}
	var b strings.Builder
	for y := min.Y; y <= max.Y; y++ {
		for x := min.X; x <= max.X; x++ {
			if cells[Position{x, y}] {
				b.WriteByte('*')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// grow wraps n as the all-dead-padded center of a node one level up.
func (s *Store) grow(n *node) (*node, error) {
	if n.level == MaxLevel {
		return nil, ErrAddressSpaceExceeded
	}
	l := n.level
	e := s.empty(l - 1)
	grown := s.inner(l.Add(1),
		s.inner(l, e, e, e, n.nw),
		s.inner(l, e, e, n.ne, e),
		s.inner(l, e, n.sw, e, e),
		s.inner(l, n.se, e, e, e))
	if s.debug {
		fmt.Printf("grow: level %d -> %d\n", l, grown.level)
	}
	return grown, nil
}

// pad grows n until it is at least level exp+3 and confined, leaving
// enough dead margin that 2^exp generations of one-cell-per-step
// spread stay inside the center half that an advance returns.
func (s *Store) pad(n *node, exp Level) (*node, error) {
	for n.level < exp+3 || !confined(n) {
		var err error
		if n, err = s.grow(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// confined reports whether every live cell is inside the center
// quarter-side square: each child may be live only within its inner
// corner grandchild, and that grandchild only within its own inner
// corner. Requires level 3 or above.
func confined(n *node) bool {
	nw, ne, sw, se := n.nw, n.ne, n.sw, n.se
	return nw.nw.empty() && nw.ne.empty() && nw.sw.empty() &&
		nw.se.nw.empty() && nw.se.ne.empty() && nw.se.sw.empty() &&
		ne.nw.empty() && ne.ne.empty() && ne.se.empty() &&
		ne.sw.nw.empty() && ne.sw.ne.empty() && ne.sw.se.empty() &&
		sw.nw.empty() && sw.sw.empty() && sw.se.empty() &&
		sw.ne.nw.empty() && sw.ne.sw.empty() && sw.ne.se.empty() &&
		se.ne.empty() && se.sw.empty() && se.se.empty() &&
		se.nw.ne.empty() && se.nw.sw.empty() && se.nw.se.empty()
}

// trim shrinks n to the smallest root at initialLevel or above whose
// center half still contains every live cell, giving a canonical
// padding for comparisons.
func (s *Store) trim(n *node) *node {
	for n.level > initialLevel && shrinkable(n) {
		n = s.centered(n)
	}
	return n
}

// shrinkable reports whether all live cells are inside the center
// half-side square. Requires level 2 or above.
func shrinkable(n *node) bool {
	nw, ne, sw, se := n.nw, n.ne, n.sw, n.se
	return nw.nw.empty() && nw.ne.empty() && nw.sw.empty() &&
		ne.nw.empty() && ne.ne.empty() && ne.se.empty() &&
		sw.nw.empty() && sw.sw.empty() && sw.se.empty() &&
		se.ne.empty() && se.sw.empty() && se.se.empty()
}
