// Package client implements RPC clients for the neural table system.
// It provides implementations of the table.ITable and lockmgr.ILockManager
// interfaces that communicate with remote servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to table and lock manager implementations
//   - Integration with the transport and serialization layers
//   - Preserving the asynchronous delivery contract of batch operations
//
// Key Components:
//
//   - NewRPCTable: Factory function that creates a client implementing the
//     table.ITable interface. This client forwards all operations to remote
//     servers via the configured transport layer. Dump and Drain run the RPC
//     in a background goroutine and deliver the snapshot to the caller's
//     Requester, matching the local engine's behavior.
//
//   - NewRPCLockMgr: Factory function that creates a client implementing the
//     lockmgr.ILockManager interface for locking operations backed by a
//     remote table.
//
// Usage Example:
//
//		// Configure the client
//		config := common.ClientConfig{
//		  Endpoints:              []string{"localhost:5000"},
//		  TimeoutSecond:          5,
//		  RetryCount:             3,
//		  ConnectionsPerEndpoint: 1,
//		}
//
//	 // Create a serializer
//		serializer := serializer.NewBinarySerializer()
//
//		// Create table client
//		tbl, _ := client.NewRPCTable("sessions", config, tcp.NewTCPClientTransport(), serializer)
//
//		// Use the table
//		tbl.Insert(42, value.Tuple(value.Int(42), value.Int(0)))
//		val, exists, _ := tbl.Get(42)
//
//		// Create and use a lock manager
//		lockMgr, _ := client.NewRPCLockMgr("locks", config, tcp.NewTCPClientTransport(), serializer)
//		acquired, ownerID, _ := lockMgr.AcquireLock(7)
//		if acquired {
//		  lockMgr.ReleaseLock(7, ownerID)
//		}
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
