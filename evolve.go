package hashlife

import (
	"fmt"
	"sync/atomic"
)

// resultKey identifies one evolution: which canonical square, and how
// far forward. exp is the log2 of the generation count. At full speed
// exp is determined by the node's level, and the key reduces to the
// node's identity.
type resultKey struct {
	n   *node
	exp Level
}

// advance returns the canonical node for the center half of n after
// 2^exp generations. n must be at level 2 or above and exp at most
// level-2; violating either is a caller bug. The result depends only
// on n's own content: influence moves at most one cell per
// generation, and the center half's edge is 2^(level-2) cells from
// n's edge, so nothing outside n can reach it in time.
func (s *Store) advance(n *node, exp Level) *node {
	if n.level < 2 {
		panic(fmt.Sprintf("cannot evolve a level %d node", n.level))
	}
	if exp > n.level-2 {
		panic(fmt.Sprintf("cannot advance a level %d node by 2^%d generations", n.level, exp))
	}
	if n.empty() {
		return s.empty(n.level - 1)
	}
	key := resultKey{n, exp}
	if v, ok := s.results.Get(key); ok {
		atomic.AddUint64(&s.hits, 1)
		return v.(*node)
	}
	atomic.AddUint64(&s.misses, 1)
	var r *node
	switch {
	case n.level == 2:
		r = s.evolveBase(n)
	case exp == n.level-2:
		r = s.evolveFull(n, exp)
	default:
		r = s.evolvePartial(n, exp)
	}
	s.results.Add(key, r)
	return r
}

// evolveBase advances a 4x4 square one generation by brute-force
// neighbor counting and returns its 2x2 center.
func (s *Store) evolveBase(n *node) *node {
	var grid [4][4]Cell
	quarters := []struct {
		n      *node
		bx, by int
	}{
		{n.nw, 0, 0}, {n.ne, 2, 0}, {n.sw, 0, 2}, {n.se, 2, 2},
	}
	for _, q := range quarters {
		grid[q.by][q.bx] = q.n.nw.cell
		grid[q.by][q.bx+1] = q.n.ne.cell
		grid[q.by+1][q.bx] = q.n.sw.cell
		grid[q.by+1][q.bx+1] = q.n.se.cell
	}
	next := func(x, y int) Cell {
		neighbors := 0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if grid[y+dy][x+dx] == Alive {
					neighbors++
				}
			}
		}
		if neighbors == 3 || (neighbors == 2 && grid[y][x] == Alive) {
			return Alive
		}
		return Dead
	}
	return s.inner(1,
		s.leaf(next(1, 1)),
		s.leaf(next(2, 1)),
		s.leaf(next(1, 2)),
		s.leaf(next(2, 2)))
}

// evolveFull advances n by its maximum 2^(level-2) generations: the 9
// overlapping half-side windows are each advanced a quarter of that,
// and the four center-correct 2x2 recombinations advanced another
// quarter.
func (s *Store) evolveFull(n *node, exp Level) *node {
	t := s.windowResults(n, exp-1)
	l := n.level - 1
	return s.inner(l,
		s.advance(s.inner(l, t[0][0], t[0][1], t[1][0], t[1][1]), exp-1),
		s.advance(s.inner(l, t[0][1], t[0][2], t[1][1], t[1][2]), exp-1),
		s.advance(s.inner(l, t[1][0], t[1][1], t[2][0], t[2][1]), exp-1),
		s.advance(s.inner(l, t[1][1], t[1][2], t[2][1], t[2][2]), exp-1))
}

// evolvePartial advances n fewer generations than its level allows:
// the 9 windows are advanced the full 2^exp, and the result is
// assembled from the spatial centers of their recombinations with no
// further time evolution.
func (s *Store) evolvePartial(n *node, exp Level) *node {
	t := s.windowResults(n, exp)
	return s.inner(n.level-1,
		s.centerOf4(t[0][0], t[0][1], t[1][0], t[1][1]),
		s.centerOf4(t[0][1], t[0][2], t[1][1], t[1][2]),
		s.centerOf4(t[1][0], t[1][1], t[2][0], t[2][1]),
		s.centerOf4(t[1][1], t[1][2], t[2][1], t[2][2]))
}

// windowResults advances each of the 9 overlapping half-side windows
// of n by 2^exp generations. Rows run north to south, columns west to
// east.
func (s *Store) windowResults(n *node, exp Level) [3][3]*node {
	nw, ne, sw, se := n.nw, n.ne, n.sw, n.se
	windows := [3][3]*node{
		{nw, s.horizontal(nw, ne), ne},
		{s.vertical(nw, sw), s.centered(n), s.vertical(ne, se)},
		{sw, s.horizontal(sw, se), se},
	}
	var t [3][3]*node
	for i := range windows {
		for j := range windows[i] {
			t[i][j] = s.advance(windows[i][j], exp)
		}
	}
	return t
}

// horizontal assembles the square straddling the seam between a west
// and an east neighbor.
func (s *Store) horizontal(w, e *node) *node {
	return s.inner(w.level, w.ne, e.nw, w.se, e.sw)
}

// vertical assembles the square straddling the seam between a north
// and a south neighbor.
func (s *Store) vertical(n, so *node) *node {
	return s.inner(n.level, n.sw, n.se, so.nw, so.ne)
}

// centered is the half-side square at n's own center.
func (s *Store) centered(n *node) *node {
	return s.inner(n.level-1, n.nw.se, n.ne.sw, n.sw.ne, n.se.nw)
}

// centerOf4 is the half-side square at the center of a 2x2
// arrangement of same-level squares.
func (s *Store) centerOf4(nw, ne, sw, se *node) *node {
	return s.inner(nw.level, nw.se, ne.sw, sw.ne, se.nw)
}
