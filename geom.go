package hashlife

import "fmt"

// Cell is the state of a single grid square.
type Cell uint8

const (
	Dead Cell = iota
	Alive
)

// Position is an absolute, origin-centered grid coordinate. North is
// toward negative Y and west toward negative X.
type Position struct {
	X, Y int64
}

// Offset is a translation between coordinate frames.
type Offset struct {
	DX, DY int64
}

// Quadrant names one quarter of a square region.
type Quadrant uint8

const (
	NorthWest Quadrant = iota
	NorthEast
	SouthWest
	SouthEast
)

// Level is the depth of a quadtree square. A node at level L covers
// 2^L cells on a side, centered on the origin of its own frame.
// Valid levels are 0 through MaxLevel.
type Level uint8

const (
	// LeafLevel is the level of a single cell.
	LeafLevel Level = 0
	// MaxLevel bounds universes to signed 64-bit coordinates.
	MaxLevel Level = 63
)

// Add returns the offset translated by o2, each axis independently.
func (o Offset) Add(o2 Offset) Offset {
	return Offset{o.DX + o2.DX, o.DY + o2.DY}
}

// Sub returns the offset with o2 removed, each axis independently.
func (o Offset) Sub(o2 Offset) Offset {
	return Offset{o.DX - o2.DX, o.DY - o2.DY}
}

// Add returns the position translated by o.
func (p Position) Add(o Offset) Position {
	return Position{p.X + o.DX, p.Y + o.DY}
}

// Sub returns the position with translation o removed.
func (p Position) Sub(o Offset) Position {
	return Position{p.X - o.DX, p.Y - o.DY}
}

// RelativeTo expresses p in the frame whose origin lies at origin in
// the current frame.
func (p Position) RelativeTo(origin Position) Position {
	return Position{p.X - origin.X, p.Y - origin.Y}
}

// Quadrant classifies p relative to its frame's origin. Cells on the
// dividing axes belong to the east/south side, matching the inclusive
// MaxCoord bound.
func (p Position) Quadrant() Quadrant {
	switch {
	case p.X < 0 && p.Y < 0:
		return NorthWest
	case p.X >= 0 && p.Y < 0:
		return NorthEast
	case p.X < 0:
		return SouthWest
	default:
		return SouthEast
	}
}

// InBounds reports whether a node at level l addresses p.
func (p Position) InBounds(l Level) bool {
	min, max := l.MinCoord(), l.MaxCoord()
	return p.X >= min && p.X <= max && p.Y >= min && p.Y <= max
}

// Less orders positions by X, then Y.
func (p Position) Less(q Position) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Add returns l+delta. Results outside [0, MaxLevel] panic: the
// address space of the universe is a hard bound, not a recoverable
// condition. Callers that can legitimately hit the bound check it
// first and report ErrAddressSpaceExceeded.
func (l Level) Add(delta int) Level {
	n := int(l) + delta
	if n < 0 || n > int(MaxLevel) {
		panic(fmt.Sprintf("level %d outside [0,%d]", n, MaxLevel))
	}
	return Level(n)
}

// SideLen is the width in cells of a square at level l.
func (l Level) SideLen() uint64 {
	return 1 << l
}

// MinCoord is the smallest coordinate a node at level l addresses.
// Defined for level 1 and above.
func (l Level) MinCoord() int64 {
	if l < 1 {
		panic("coordinate bounds are undefined for a leaf")
	}
	return -(int64(1) << (l - 1))
}

// MaxCoord is the largest coordinate a node at level l addresses.
// Bounds are inclusive. Defined for level 1 and above.
func (l Level) MaxCoord() int64 {
	if l < 1 {
		panic("coordinate bounds are undefined for a leaf")
	}
	return (int64(1) << (l - 1)) - 1
}

// QuadrantCenter is the offset from a node's center to the center of
// quadrant q, one quarter of the side length on each axis. Defined
// for level 2 and above, where the division is exact.
func (l Level) QuadrantCenter(q Quadrant) Offset {
	if l < 2 {
		panic(fmt.Sprintf("quadrant centers are undefined at level %d", l))
	}
	d := int64(1) << (l - 2)
	switch q {
	case NorthWest:
		return Offset{-d, -d}
	case NorthEast:
		return Offset{d, -d}
	case SouthWest:
		return Offset{-d, d}
	case SouthEast:
		return Offset{d, d}
	}
	panic(fmt.Sprintf("no such quadrant %d", q))
}

// MaxSteps is the number of generations one evolution of a node at
// level l advances: 2^(l-2). Defined for level 2 and above.
func (l Level) MaxSteps() uint64 {
	if l < 2 {
		panic(fmt.Sprintf("evolution is undefined at level %d", l))
	}
	return 1 << (l - 2)
}
