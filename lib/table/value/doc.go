// Package value implements the datum model of the neural table engine.
//
// The engine stores opaque, immutable terms. A Term is a tagged tree with
// four kinds: Int (signed 64-bit number), Bytes (opaque binary), List
// (ordered sequence) and Tuple (fixed-arity record). Table values are
// normally tuples; the compound table operations address tuple fields by
// 1-based position.
//
// Terms are never mutated in place. Every update builds a new term and the
// superseded one becomes garbage until its owning arena is compacted.
//
// The package also provides:
//
//   - Arena: a bulk accounting generation that owns a batch of terms. Copying
//     a term into an arena ("copy-into environment") deep-copies it and adds
//     its estimated footprint to the arena. The Go runtime frees the memory;
//     the explicit accounting is what drives the engine's threshold-based
//     compaction cycle.
//   - A binary codec (Encode/Decode) used as the marshaling boundary between
//     the engine and the host transport.
//   - A JSON mapping used by the command line tools.
package value
