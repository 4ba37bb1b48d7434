// Package table defines the interface for concurrent, sharded
// key-value table engines with atomic compound updates.
//
// A table stores tuple-shaped terms addressed by an unsigned integer
// key located at a fixed tuple position (the key position). Beyond
// whole-value reads and writes, tables support atomic multi-field
// updates (Increment, Unshift, Shift, Swap) that modify several fields
// of a stored tuple in one step, and asynchronous batch operations
// (Dump, Drain) whose results are delivered to a requester once a
// background worker has produced them.
//
// The package contains:
//   - interface.go: the ITable interface, operation descriptors, and the Error/RetCode types shared by all engines
//   - ops.go: conversion between operation descriptors and their term form used on the wire
//
// Engine implementations live in the engines/ subdirectory, the
// process-wide name registry in registry/, and a reusable interface
// test suite in testing/.
package table
