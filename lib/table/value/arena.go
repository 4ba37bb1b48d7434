package value

// --------------------------------------------------------------------------
// Arena Type (bulk accounting generation)
// --------------------------------------------------------------------------

// Arena tracks a generation of terms as one reclaimable unit. Copying a term
// into an arena charges the term's estimated footprint to the arena; when a
// shard is compacted the old arena is released as a whole and a fresh one
// takes its place.
//
// Thread-safety: an Arena is not internally synchronized. Shard arenas are
// only touched under the owning shard's lock; reply arenas are confined to
// the batch worker.
type Arena struct {
	gen      uint64
	bytes    int64
	released bool
}

// NewArena creates an empty arena for the given generation number.
func NewArena(gen uint64) *Arena {
	return &Arena{gen: gen}
}

// Generation returns the arena's generation number.
func (a *Arena) Generation() uint64 { return a.gen }

// Copy deep-copies a term into the arena and returns the copy.
func (a *Arena) Copy(t Term) Term {
	c := t.deepCopy()
	a.bytes += int64(c.EstimateSize())
	return c
}

// Charge adds the footprint of an already-copied term to the arena.
func (a *Arena) Charge(t Term) {
	a.bytes += int64(t.EstimateSize())
}

// Size returns the accounted footprint of the arena in bytes.
func (a *Arena) Size() int64 { return a.bytes }

// Release retires the arena. Terms owned by it stay valid for readers that
// already hold them; the accounting is simply dropped and the Go runtime
// reclaims the storage once the last reference is gone.
func (a *Arena) Release() {
	a.released = true
	a.bytes = 0
}

// Released reports whether the arena has been retired.
func (a *Arena) Released() bool { return a.released }
