package hashlife

import "math"

// node is one canonical quadtree square. A leaf (level 0) holds a
// single cell; an inner node holds four children one level down,
// together tiling its square. Nodes are immutable after construction
// and unique per content within a Store, so pointer equality is
// structural equality and maps keyed by *node are keyed by content.
type node struct {
	level          Level
	cell           Cell
	nw, ne, sw, se *node

	// pop is the number of live cells, saturating at MaxUint64.
	// Zero is exact regardless of saturation, so pop == 0 is the
	// emptiness test used throughout.
	pop uint64
}

func (n *node) child(q Quadrant) *node {
	switch q {
	case NorthWest:
		return n.nw
	case NorthEast:
		return n.ne
	case SouthWest:
		return n.sw
	default:
		return n.se
	}
}

func (n *node) empty() bool {
	return n.pop == 0
}

func satAdd(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return math.MaxUint64
}
