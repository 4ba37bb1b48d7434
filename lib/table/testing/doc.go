// Package testing provides standardised tests and benchmarks for
// table engines that satisfy the table.ITable interface.
//
// The package contains:
//   - testing: A comprehensive test suite for validating conformance to the ITable interface contract
//   - benchmark: Performance tests for measuring throughput of common table operations
//
// This package is particularly useful for:
//   - Engine developers implementing the ITable interface
//   - Validating that remote table handles behave like local ones
//
// The suite expects factories to produce tables with key position 1.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() table.ITable {
//		return neural.New(1, nil)
//	}
//
//	// Running the standard test suite
//	tabletesting.RunTableTests(t, "NeuralTable", factory)
//
//	// Running performance benchmarks
//	tabletesting.RunTableBenchmarks(b, "NeuralTable", factory)
package testing
