package lockmgr

import (
	"bytes"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
)

// lock entries are {key, ownerID} tuples, so lock tables should use key
// position 1
const ownerField = 2

type lockMgrImpl struct {
	table table.ITable
}

func NewLockManager(tbl table.ITable) ILockManager {
	return &lockMgrImpl{
		table: tbl,
	}
}

func (lp *lockMgrImpl) AcquireLock(key uint64) (bool, []byte, error) {
	// Generate owner ID (256 bit random value)
	ownerID, err := generateOwnerID()
	if err != nil {
		return false, nil, err
	}

	// Try to acquire the lock (by inserting only if the key doesn't exist - atomic CAS operation)
	acquired, err := lp.table.InsertNew(key, value.Tuple(value.Int(int64(key)), value.Bytes(ownerID)))
	if err != nil {
		return false, nil, err
	}
	if !acquired {
		// lock is held by someone else
		return false, nil, nil
	}

	return true, ownerID, nil
}

func (lp *lockMgrImpl) ReleaseLock(key uint64, ownerID []byte) (bool, error) {
	// Check if the lock exists
	val, ok, err := lp.table.Get(key)
	if err != nil || !ok {
		return err == nil, err
	}

	// Check if the lock is owned by us
	owner, ok := val.Field(ownerField)
	if !ok || !bytes.Equal(ownerID, owner.Bytes()) {
		return false, nil
	}

	// Release the lock
	_, _, err = lp.table.Delete(key)
	return err == nil, err
}
