package hashlife

import (
	"encoding/base64"

	"github.com/minio/blake2b-simd"
)

const (
	leafDigestTag byte = iota
	innerDigestTag
)

// Digest returns a content identity for the universe's live-cell
// set: equal digests mean observationally equal boards, even for
// universes from different Stores. The root is trimmed first so
// padding does not affect the digest.
func (u Universe) Digest() string {
	d := u.store.digest(u.store.trim(u.root))
	return base64.RawURLEncoding.EncodeToString(d[:])
}

// digest is the blake2b hash of a node's exact content, memoized per
// node so shared subtrees are hashed once.
func (s *Store) digest(n *node) [32]byte {
	s.mu.Lock()
	d, ok := s.digests[n]
	s.mu.Unlock()
	if ok {
		return d
	}
	if n.level == LeafLevel {
		d = blake2b.Sum256([]byte{leafDigestTag, byte(n.cell)})
	} else {
		nw, ne, sw, se := s.digest(n.nw), s.digest(n.ne), s.digest(n.sw), s.digest(n.se)
		buf := make([]byte, 0, 2+4*32)
		buf = append(buf, innerDigestTag, byte(n.level))
		buf = append(buf, nw[:]...)
		buf = append(buf, ne[:]...)
		buf = append(buf, sw[:]...)
		buf = append(buf, se[:]...)
		d = blake2b.Sum256(buf)
	}
	s.mu.Lock()
	s.digests[n] = d
	s.mu.Unlock()
	return d
}
