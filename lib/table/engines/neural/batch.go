package neural

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
)

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricBatchDumps  = metrics.NewCounter(`neural_batch_jobs_total{kind="dump"}`)
	metricBatchDrains = metrics.NewCounter(`neural_batch_jobs_total{kind="drain"}`)
)

// --------------------------------------------------------------------------
// Batch Worker
// --------------------------------------------------------------------------

// batchJob is one queued Dump or Drain request.
type batchJob struct {
	kind      table.BatchKind
	requester table.Requester
}

// enqueueBatch queues a batch job and returns the synchronous Pending
// acknowledgment. The result itself is delivered to the requester by the
// batch worker.
func (t *neuralImpl) enqueueBatch(kind table.BatchKind, r table.Requester) (table.Pending, error) {
	if err := t.requireOpen(); err != nil {
		return table.Pending{}, err
	}
	if r == nil {
		return table.Pending{}, table.NewError(table.RetCBadValue, "batch job without requester")
	}

	if !t.jobs.Push(&batchJob{kind: kind, requester: r}) {
		return table.Pending{}, table.NewError(table.RetCTableClosed, "table is closed")
	}

	return table.Pending{Kind: kind}, nil
}

// Dump asynchronously snapshots all stored values and delivers them to r.
//
// Each shard is read-locked only while its own portion is copied, so a
// dump taken during concurrent writes may reflect different shards at
// different instants. Use Drain for an atomic snapshot.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Dump(r table.Requester) (table.Pending, error) {
	return t.enqueueBatch(table.BatchDump, r)
}

// Drain behaves like Dump but also atomically empties the table. All
// shards are locked exclusively for the whole operation, so the delivered
// values are exactly the table content at one instant.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Drain(r table.Requester) (table.Pending, error) {
	return t.enqueueBatch(table.BatchDrain, r)
}

// batchWorker consumes the job queue in FIFO order. It exits once the
// queue is closed and all queued jobs have been served.
//
// WARNING: this method should never be called directly! It is started
// once during initialization.
func (t *neuralImpl) batchWorker() {
	defer t.workers.Done()

	for job := range t.jobs.Recv() {
		switch job.kind {
		case table.BatchDump:
			t.dump(job.requester)
			metricBatchDumps.Inc()
		case table.BatchDrain:
			t.drain(job.requester)
			metricBatchDrains.Inc()
		}
	}
}

// dump copies all stored values into a reply arena, shard by shard under
// the shared lock.
func (t *neuralImpl) dump(r table.Requester) {
	reply := value.NewArena(0)
	var values []value.Term

	for _, shard := range t.shards {
		shard.Mu.RLock()
		for _, val := range shard.Entries {
			values = append(values, reply.Copy(val))
		}
		shard.Mu.RUnlock()
	}

	r.Send(table.BatchResult{Kind: table.BatchDump, Values: values})
}

// drain copies all stored values into a reply arena and clears the table,
// holding every shard lock exclusively for the whole operation.
func (t *neuralImpl) drain(r table.Requester) {
	reply := value.NewArena(0)
	var values []value.Term

	for _, shard := range t.shards {
		shard.Mu.Lock()
	}
	for _, shard := range t.shards {
		for _, val := range shard.Entries {
			values = append(values, reply.Copy(val))
		}
		shard.Clear()
	}
	for i := len(t.shards) - 1; i >= 0; i-- {
		t.shards[i].Mu.Unlock()
	}

	r.Send(table.BatchResult{Kind: table.BatchDrain, Values: values})
}
