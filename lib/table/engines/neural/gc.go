package neural

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Metrics and Logging
// --------------------------------------------------------------------------

var (
	log = logger.GetLogger("neural")

	metricGCCycles       = metrics.NewCounter("neural_gc_cycles_total")
	metricGCForced       = metrics.NewCounter("neural_gc_forced_total")
	metricReclaimedBytes = metrics.NewCounter("neural_gc_reclaimed_bytes_total")
	metricScannedBytes   = metrics.NewCounter("neural_gc_scanned_bytes_total")
)

// --------------------------------------------------------------------------
// Reclamation Scanner
// --------------------------------------------------------------------------

// reclamationScanner periodically converts superseded terms into garbage
// accounting. Every ReclaimInterval it visits each shard, scans up to
// ReclaimBatch pending terms into the shard's garbage counter, and wakes
// the garbage collector once a shard's counter reaches ReclaimThreshold.
//
// WARNING: this method should never be called directly! It is started
// once during initialization.
func (t *neuralImpl) reclamationScanner() {
	defer t.workers.Done()

	ticker := time.NewTicker(t.opts.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.scannerQuit:
			return
		case <-ticker.C:
		}

		signal := false
		for _, shard := range t.shards {
			shard.Mu.Lock()
			scanned := shard.ScanPending(t.opts.ReclaimBatch)
			shard.Mu.Unlock()

			if scanned > 0 {
				metricScannedBytes.Add(int(scanned))
			}
			if shard.GarbageBytes.Load() >= t.opts.ReclaimThreshold {
				signal = true
			}
		}

		if signal {
			t.gcCond.Signal()
		}
	}
}

// --------------------------------------------------------------------------
// Garbage Collection
// --------------------------------------------------------------------------

// overThreshold reports whether any shard has accumulated enough garbage
// to warrant a collection cycle.
func (t *neuralImpl) overThreshold() bool {
	for _, shard := range t.shards {
		if shard.GarbageBytes.Load() >= t.opts.ReclaimThreshold {
			return true
		}
	}
	return false
}

// garbageCollector is the main garbage collection loop. It sleeps on the
// GC condition variable until the scanner signals a shard over threshold,
// a forced collection is requested, or the table is closed. Each cycle
// compacts every shard in ascending index order.
//
// WARNING: this method should never be called directly! It is started
// once during initialization.
func (t *neuralImpl) garbageCollector() {
	defer t.workers.Done()

	for {
		t.gcMu.Lock()
		for !t.gcForced && !t.gcQuit && !t.overThreshold() {
			t.gcCond.Wait()
		}
		if t.gcQuit {
			t.gcMu.Unlock()
			return
		}
		forced := t.gcForced
		t.gcForced = false
		t.gcMu.Unlock()

		if forced {
			metricGCForced.Inc()
		}

		t.compact()
	}
}

// compact runs one collection cycle over all shards. Each shard's live
// values are copied into a fresh arena generation under the exclusive
// shard lock, then the old generation is released.
func (t *neuralImpl) compact() {
	start := time.Now()

	var reclaimed uint64
	for _, shard := range t.shards {
		shard.Mu.Lock()
		reclaimed += shard.Compact()
		shard.Mu.Unlock()
	}

	metricGCCycles.Inc()
	metricReclaimedBytes.Add(int(reclaimed))

	log.Debugf("gc cycle reclaimed %d bytes in %s", reclaimed, time.Since(start))
}

// --------------------------------------------------------------------------
// Maintenance Interface Methods
// --------------------------------------------------------------------------

// GarbageSize returns the number of bytes awaiting reclamation across all
// shards. Terms retired but not yet scanned are not included.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) GarbageSize() (uint64, error) {
	if err := t.requireOpen(); err != nil {
		return 0, err
	}

	var size uint64
	for _, shard := range t.shards {
		size += shard.GarbageBytes.Load()
	}
	return size, nil
}

// GarbageCollect requests an immediate collection cycle and returns
// without waiting for it to complete.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) GarbageCollect() error {
	if err := t.requireOpen(); err != nil {
		return err
	}

	t.gcMu.Lock()
	t.gcForced = true
	t.gcCond.Signal()
	t.gcMu.Unlock()

	return nil
}
