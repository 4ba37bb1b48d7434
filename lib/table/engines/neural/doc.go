// Package neural implements a concurrent, sharded key-value table with
// atomic multi-field compound updates and deferred memory reclamation.
// It provides a complete implementation of the table.ITable interface
// with a focus on thread safety, predictable memory behavior, and
// high write throughput.
//
// The package focuses on:
//   - Optimized concurrent access through sharding with per-shard reader/writer locks
//   - Atomic compound updates (Increment, Unshift, Shift, Swap) that modify
//     several tuple fields in one commit or not at all
//   - Deferred, threshold-driven memory reclamation that keeps garbage
//     accounting explicit instead of relying solely on the runtime collector
//   - Asynchronous batch operations (Dump, Drain) served by a dedicated worker
//   - Metrics and statistics for monitoring and optimization
//
// Key Components:
//
//   - neuralImpl: The central table structure implementing table.ITable. It
//     manages shards, coordinates the background workers, and provides the
//     public API for table operations. Keys are caller-provided unsigned
//     integers; the engine performs no secondary hashing, a key's shard is
//     simply key mod NumShards.
//
//   - Shard: A partition of the table that manages a subset of the key space.
//     Each shard contains its own entry map, an arena generation for memory
//     accounting, and a pending-garbage list. Shards operate independently
//     to minimize lock contention; only Empty, Drain, and garbage collection
//     touch more than one shard at a time.
//
//   - Arena: An accounting generation (see lib/table/value). Every stored
//     value is deep-copied into its shard's arena, so stored terms never
//     share memory with caller-held terms. Superseded values are retired to
//     the shard's pending list and counted as garbage by the scanner.
//
// Compound Updates:
//
//   - All four compound operations run under the exclusive shard lock as a
//     load-validate-commit cycle. The operations are applied in order to a
//     private copy of the stored tuple's fields; if every operation
//     validates, the rebuilt tuple replaces the stored value in a single
//     commit. Any invalid position or field type aborts the whole request
//     and leaves the stored value untouched. Concurrent readers never
//     observe a partially updated tuple.
//
// Memory Reclamation:
//
//   - To minimize the impact on performance, reclamation is split between
//     two background goroutines that operate without stop-the-world pauses:
//
//   - The reclamation scanner wakes every ReclaimInterval and visits each
//     shard, converting up to ReclaimBatch retired terms into garbage byte
//     accounting. When a shard's garbage counter reaches ReclaimThreshold,
//     the scanner signals the garbage collector. The small per-interval
//     batch bounds the scanner's hold time on any shard lock.
//
//   - The garbage collector sleeps on a condition variable until signaled
//     (or explicitly forced via GarbageCollect). A collection cycle compacts
//     every shard in ascending index order: live values are deep-copied into
//     a fresh arena generation, the entry map is rewritten to the fresh
//     copies, and the old generation is released. Compaction severs any
//     structural sharing between live values and superseded terms, for
//     example list tails still referenced after a Shift.
//
// Batch Operations:
//
//   - Dump and Drain return immediately with a Pending acknowledgment; the
//     snapshot itself is produced by a dedicated batch worker consuming a
//     lock-free FIFO queue and is delivered through the caller's Requester.
//     Dump holds each shard's shared lock only while that shard's portion is
//     copied, so concurrent writers are barely disturbed but the snapshot is
//     not a consistent cut. Drain holds every shard's exclusive lock for the
//     whole operation and atomically empties the table, making it suitable
//     for handing the full content to exactly one consumer.
//
// Teardown:
//
//   - Close stops the scanner and collector, closes the batch queue (queued
//     jobs are still served), waits for all workers, and releases all shard
//     memory. Close is idempotent; operations after Close fail with
//     RetCTableClosed.
//
// The neural package is designed to serve applications that need shared
// mutable state with field-level atomic updates, such as counters with
// attached queues, session registries, and work-distribution tables.
package neural
