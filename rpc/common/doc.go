// Package common provides core data structures and utilities shared across
// the neural table system's RPC layer. It defines fundamental types,
// configuration structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - Custom logging implementation shared across all packages
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response messages.
//     Table values and compound update operations travel in the Payload field,
//     encoded with the term codec from lib/table/value.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into registry operations, table operations, lock
//     operations, and control messages.
//
//   - ServerConfig: Comprehensive configuration for server nodes, including
//     the hosted tables, engine tuning, network configuration, and log level.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation providing consistent formatting
//     across the application.
package common
