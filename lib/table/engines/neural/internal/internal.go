package internal

import (
	"sync"
	"sync/atomic"

	"github.com/fauxsoup/neural/lib/table/value"
)

// --------------------------------------------------------------------------
// Shard Type (partition of the table)
// --------------------------------------------------------------------------

// Shard represents a partition of the table.
// Each shard has its own lock, entry map, and arena generation. All
// fields except GarbageBytes are guarded by Mu; GarbageBytes is atomic
// so the GC worker can poll it without taking shard locks.
type Shard struct {
	Mu      sync.RWMutex
	Entries map[uint64]value.Term // live values, keyed by table key
	Arena   *value.Arena          // accounting generation for live values
	Pending []value.Term          // superseded terms awaiting the scanner

	GarbageBytes atomic.Uint64 // bytes scanned into garbage, reset by Compact
}

// NewShard creates an empty shard with a generation-zero arena.
func NewShard() *Shard {
	return &Shard{
		Entries: make(map[uint64]value.Term),
		Arena:   value.NewArena(0),
	}
}

// Retire queues a superseded term for reclamation accounting.
// Must only be called after the replacing write has committed.
//
// Thread-safety: The caller must hold Mu exclusively.
func (s *Shard) Retire(t value.Term) {
	s.Pending = append(s.Pending, t)
}

// ScanPending pops up to batch pending terms, drops their references and
// accounts their estimated size as garbage. Returns the bytes accounted.
//
// Thread-safety: The caller must hold Mu exclusively.
func (s *Shard) ScanPending(batch int) uint64 {
	n := batch
	if n > len(s.Pending) {
		n = len(s.Pending)
	}
	if n == 0 {
		return 0
	}

	var scanned uint64
	for i := 0; i < n; i++ {
		scanned += uint64(s.Pending[i].EstimateSize())
		s.Pending[i] = value.Term{} // drop the reference
	}
	s.Pending = s.Pending[n:]

	s.GarbageBytes.Add(scanned)
	return scanned
}

// Compact copies all live values into a fresh arena generation and
// releases the old one, severing any structural sharing with superseded
// terms. Returns the number of bytes reclaimed.
//
// Thread-safety: The caller must hold Mu exclusively.
func (s *Shard) Compact() uint64 {
	old := s.Arena
	fresh := value.NewArena(old.Generation() + 1)

	for key, val := range s.Entries {
		s.Entries[key] = fresh.Copy(val)
	}

	var reclaimed uint64
	if diff := old.Size() - fresh.Size(); diff > 0 {
		reclaimed = uint64(diff)
	}

	old.Release()
	s.Arena = fresh
	s.Pending = nil
	s.GarbageBytes.Store(0)

	return reclaimed
}

// Clear drops all entries and garbage state and starts a fresh arena
// generation.
//
// Thread-safety: The caller must hold Mu exclusively.
func (s *Shard) Clear() {
	old := s.Arena
	s.Entries = make(map[uint64]value.Term)
	s.Arena = value.NewArena(old.Generation() + 1)
	s.Pending = nil
	s.GarbageBytes.Store(0)
	old.Release()
}

// GetShard returns the shard responsible for a given key.
//
// Thread-safety: This function is thread-safe and can be called concurrently.
func GetShard(key uint64, shards []*Shard) *Shard {
	return shards[key%uint64(len(shards))]
}
