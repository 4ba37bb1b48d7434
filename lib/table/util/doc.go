// Package util provides supporting components for table engine
// implementations.
//
// The package contains:
//   - statistics: tools for analyzing shard balance and a SizeHistogram for tracking stored term sizes
//   - lockfreempsc: a lock-free Multi-Producer Single-Consumer (MPSC) queue built for high throughput and low latency
//
// The statistics helpers let engines report on their data characteristics
// without performing expensive full scans, and the MPSC queue backs
// asynchronous job hand-off between request goroutines and engine workers.
package util
