// Package lockmgr implements an advisory locking mechanism on top of
// tables that implement the table.ITable interface. It provides a simple
// yet robust way to coordinate access to shared resources between the
// users of one table engine.
//
// The lockmgr only ever stores in the provided ITable and has no other
// internal state. Therefore it is safe to create multiple lock managers
// on the same table. It is even possible to create a new lockmgr for
// every acquire and or release operation. As long as the same table is
// used every time, all locks will work as expected.
//
// Core Functionality:
//   - Lock acquisition with ownership verification
//   - Safe release operations that verify ownership
//
// Implementation Approach:
//
//	Locks are implemented by leveraging the atomic conditional operations
//	of the underlying table. Specifically:
//
//	- Lock Acquisition: Attempts to create a key using InsertNew, which
//	  guarantees that only one requester can successfully create the key.
//	  The stored tuple contains a randomly generated owner ID that
//	  identifies the lock holder.
//
//	- Safe Release: The ReleaseLock operation first verifies that the
//	  requester is the legitimate owner of the lock by comparing owner IDs
//	  before executing the Delete operation.
//
// Note that the table engine has no expiry mechanism, so locks never time
// out. Releasing is the holder's responsibility; a crashed holder's lock
// must be cleared by deleting the key or emptying the table.
//
// Thread Safety:
//
//	The lockmgr is as thread-safe as the underlying table.ITable
//	implementation. All operations are performed through the table
//	interface, which provides atomicity for InsertNew.
//
// Security Considerations:
//
//	The lock mechanism uses randomly generated owner IDs, which provides
//	reasonable protection against accidental lock stealing. However, it is
//	not designed to resist malicious attacks, as anyone with access to the
//	underlying table could manipulate lock data directly.
//
// Performance Impact:
//
//	Lock operations require 1-2 table operations each:
//	- AcquireLock: One InsertNew
//	- ReleaseLock: One Get followed by a conditional Delete
package lockmgr
