package server

import (
	"fmt"

	"github.com/fauxsoup/neural/lib/lockmgr"
	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/rpc/common"
)

func NewLockManagerServerAdapter() IRPCServerAdapter {
	return &lockMgrServerAdapter{}
}

type lockMgrServerAdapter struct{}

func (adapter *lockMgrServerAdapter) Handle(req *common.Message, tbl table.ITable) (resp *common.Message) {

	// Check for nil table
	if tbl == nil {
		return common.NewErrorResponse("handler: table is nil")
	}

	// Create lock manager
	locks := lockmgr.NewLockManager(tbl)

	// Handle different message types
	switch req.MsgType {
	case common.MsgTLCKAcquire:
		ok, ownerID, err := locks.AcquireLock(req.Key)
		return common.NewAcquireResponse(ok, ownerID, err)
	case common.MsgTLCKRelease:
		ok, err := locks.ReleaseLock(req.Key, req.Payload)
		return common.NewReleaseResponse(ok, err)
	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC LockManagerAdapter - Unsupported message type: %s", req.MsgType))
	}
}
