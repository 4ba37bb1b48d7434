// Package cmd implements the command-line interface for the neural table
// engine. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - table: Commands for table operations (insert, get, incr, dump, etc.)
//   - lock: Commands for locking operations (acquire, release)
//   - serve: Commands for starting and configuring the neural server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See neural -help for a list of all commands.
package cmd
