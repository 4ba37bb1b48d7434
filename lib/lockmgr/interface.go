package lockmgr

// ILockManager defines the interface for a lock provider.
type ILockManager interface {
	// AcquireLock acquires a lock for the given key.
	// Returns a boolean indicating whether the lock was acquired, an owner ID, and an error if any.
	AcquireLock(key uint64) (ok bool, ownerID []byte, err error)

	// ReleaseLock releases the lock for the given key.
	// Returns a boolean indicating whether the lock was released, and an error if any.
	// The method will also return true if the lock did not exist.
	ReleaseLock(key uint64, ownerID []byte) (ok bool, err error)
}
