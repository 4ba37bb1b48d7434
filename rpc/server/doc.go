// Package server implements the RPC server for the neural table system.
// It provides adapters for handling RPC requests to both table and lock manager
// services, along with the core server implementation that hosts a table
// registry and routes requests by table name.
//
// The package focuses on:
//   - Server-side RPC request handling for both table and lock manager operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Hosting any number of named tables behind a single endpoint
//   - Runtime table creation and destruction via registry operations
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a table.ITable.
//
//   - NewTableServerAdapter: Factory function creating an adapter for table
//     operations, translating RPC requests to table.ITable method calls. Batch
//     operations (dump, drain) are resolved server-side: the adapter enqueues
//     the job and waits for the engine's batch worker to deliver the snapshot
//     before replying.
//
//   - NewLockManagerServerAdapter: Factory function creating an adapter for
//     locking operations, creating a lockmgr.ILockManager on top of the table.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Tables: []common.ServerTable{
//	    {Name: "sessions", KeyPosition: 1},
//	    {Name: "locks", KeyPosition: 1},
//	  },
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
