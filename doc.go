/*
Package hashlife provides an immutable, versioned Game of Life
universe on an effectively unbounded grid.  Universes can be huge
(bounded by 64-bit coordinates, not by the size of a cell array).
Advancing a universe by millions of generations can cost far less
than millions of sweeps, because repeating regions of space and time
are computed once and shared.  And like other hash-consed
structures, universes are cheap to snapshot and compare.

Uses

- Stepping sparse or highly regular patterns astronomically far

- Keeping every generation a caller has seen, at small marginal cost

- Efficient copy-on-write alternative to a flat cell grid

What is Hashlife

Hashlife is Bill Gosper's algorithm from "Exploiting Regularities in
Large Cellular Spaces", 1984.  Space is a quadtree of power-of-two
squares, and structurally identical squares anywhere in space or in
time are canonicalized to a single shared node, so pointer equality
is structural equality.  Time is folded the same
way: a level-L node can answer what its center becomes 2^(L-2)
generations later, and that answer depends only on the node itself,
so it is memoized by node identity and reused wherever the same
square recurs.  Tomas Rokicki's "An Algorithm for Compressing Space
and Time" (Dr. Dobb's, 2006) is a lucid walkthrough.

Universes here are plain values.  Set and Step return a new Universe
sharing every untouched subtree with the old one, and old values
remain valid, so history retention and undo are just variable
assignments.

Concurrency

A Store may be shared by universes on multiple goroutines.  Node
construction is insert-if-absent under a mutex, and evolution results
are pure functions of canonical identity, so a result computed twice
during a race is simply discarded.  Collect is the exception and
requires quiescence.

Inspiration

The immutable data types in Clojure, Haskell, ML and other functional
languages really do make it easier to "reason about" systems; easier
to test, provide a foundation to build more quickly on.  Hashlife is
a rare case where immutability is not just pleasant but the whole
trick: canonicalization only works because nodes never change.
*/
package hashlife
