package hashlife

import "errors"

// DiffIter calls f once for each cell whose state differs between old
// and u, passing old's state and u's. Shared subtrees are skipped
// without descent, so the cost scales with the extent of the changes
// rather than with the boards. Cells are visited in the same
// deterministic order as IterAlive. If f returns ErrIterDone,
// iteration stops and DiffIter returns nil; any other error stops
// iteration and is returned.
//
// The universes may come from different Stores; only same-Store pairs
// get the shared-subtree speedup.
func (u Universe) DiffIter(old Universe, f func(p Position, from, to Cell) error) error {
	a, b := old.root, u.root
	var err error
	for a.level < b.level {
		if a, err = old.store.grow(a); err != nil {
			return err
		}
	}
	for b.level < a.level {
		if b, err = u.store.grow(b); err != nil {
			return err
		}
	}
	err = diffIter(a, b, Position{}, f)
	if errors.Is(err, ErrIterDone) {
		return nil
	}
	return err
}

func diffIter(a, b *node, center Position, f func(Position, Cell, Cell) error) error {
	if a == b || (a.empty() && b.empty()) {
		return nil
	}
	if a.level == 1 {
		corners := [4]Offset{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}}
		for q, o := range corners {
			from := a.child(Quadrant(q)).cell
			to := b.child(Quadrant(q)).cell
			if from != to {
				if err := f(center.Add(o), from, to); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for q := NorthWest; q <= SouthEast; q++ {
		child := center.Add(a.level.QuadrantCenter(q))
		if err := diffIter(a.child(q), b.child(q), child, f); err != nil {
			return err
		}
	}
	return nil
}
