package client

import (
	"github.com/fauxsoup/neural/lib/lockmgr"
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/fauxsoup/neural/rpc/serializer"
	"github.com/fauxsoup/neural/rpc/transport"
)

// NewRPCLockMgr creates a new RPC ILockManager backed by a named table
// The function takes a table name, a config, a transport and a serializer as parameters
// It returns a lockmgr.ILockManager and an error
func NewRPCLockMgr(
	tableName string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (lockmgr.ILockManager, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC lock manager
	l := rpcLockMgr{
		rpcClientAdapter{
			table:      tableName,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC lock manager
	return &l, nil
}

type rpcLockMgr struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the lockmgr package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcLockMgr) AcquireLock(key uint64) (ok bool, ownerID []byte, err error) {
	req := common.NewAcquireRequest(i.table, key)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return false, nil, err
	}
	return resp.Ok, resp.Payload, nil
}

func (i *rpcLockMgr) ReleaseLock(key uint64, ownerID []byte) (ok bool, err error) {
	req := common.NewReleaseRequest(i.table, key, ownerID)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}
