package client

import (
	"encoding/json"
	"fmt"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
	"github.com/fauxsoup/neural/rpc/common"
	"github.com/fauxsoup/neural/rpc/serializer"
	"github.com/fauxsoup/neural/rpc/transport"
)

// NewRPCTable creates a remote handle for a named table hosted by an RPC server
// The function takes a table name, a config, a transport and a serializer as parameters
// It returns a table.ITable and an error
//
// The key position is fetched once at creation time so that KeyPosition()
// can answer locally afterwards
func NewRPCTable(
	tableName string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (table.ITable, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC table
	t := rpcTable{
		rpcClientAdapter: rpcClientAdapter{
			table:      tableName,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Resolve the key position once
	resp, err := invokeRPCRequest(common.NewKeyPositionRequest(tableName), transport, serializer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key position for table %q: %w", tableName, err)
	}
	t.keyPos = resp.KeyPos

	// Return the RPC table
	return &t, nil
}

type rpcTable struct {
	rpcClientAdapter
	keyPos uint32
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the table package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcTable) Insert(key uint64, val value.Term) (prev value.Term, existed bool, err error) {
	req := common.NewInsertRequest(i.table, key, value.Encode(val))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return value.Term{}, false, err
	}
	return decodeIfPresent(resp.Payload, resp.Ok)
}

func (i *rpcTable) InsertNew(key uint64, val value.Term) (inserted bool, err error) {
	req := common.NewInsertNewRequest(i.table, key, value.Encode(val))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcTable) Get(key uint64) (val value.Term, loaded bool, err error) {
	req := common.NewGetRequest(i.table, key)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return value.Term{}, false, err
	}
	return decodeIfPresent(resp.Payload, resp.Ok)
}

func (i *rpcTable) Delete(key uint64) (prev value.Term, existed bool, err error) {
	req := common.NewDeleteRequest(i.table, key)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return value.Term{}, false, err
	}
	return decodeIfPresent(resp.Payload, resp.Ok)
}

func (i *rpcTable) Empty() (err error) {
	req := common.NewEmptyRequest(i.table)
	_, err = invokeRPCRequest(req, i.transport, i.serializer)
	return err
}

func (i *rpcTable) Increment(key uint64, ops []table.IncrOp) (values []int64, err error) {
	req := common.NewIncrementRequest(i.table, key, value.Encode(table.EncodeIncrOps(ops)))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	t, err := value.Decode(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode increment results: %w", err)
	}
	return table.DecodeIntResults(t)
}

func (i *rpcTable) Unshift(key uint64, ops []table.UnshiftOp) (lengths []int, err error) {
	req := common.NewUnshiftRequest(i.table, key, value.Encode(table.EncodeUnshiftOps(ops)))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	t, err := value.Decode(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode unshift results: %w", err)
	}
	results, err := table.DecodeIntResults(t)
	if err != nil {
		return nil, err
	}
	lengths = make([]int, len(results))
	for idx, l := range results {
		lengths[idx] = int(l)
	}
	return lengths, nil
}

func (i *rpcTable) Shift(key uint64, ops []table.ShiftOp) (removed [][]value.Term, err error) {
	req := common.NewShiftRequest(i.table, key, value.Encode(table.EncodeShiftOps(ops)))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	t, err := value.Decode(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode shift results: %w", err)
	}
	return table.DecodeTermLists(t)
}

func (i *rpcTable) Swap(key uint64, ops []table.SwapOp) (previous []value.Term, err error) {
	req := common.NewSwapRequest(i.table, key, value.Encode(table.EncodeSwapOps(ops)))
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	t, err := value.Decode(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode swap results: %w", err)
	}
	return t.Items(), nil
}

// Dump enqueues the request remotely and delivers the snapshot to r once
// the server replies. The RPC itself runs in a background goroutine so
// that the call stays asynchronous like the local engine.
func (i *rpcTable) Dump(r table.Requester) (table.Pending, error) {
	go i.runBatch(common.NewDumpRequest(i.table), table.BatchDump, r)
	return table.Pending{Kind: table.BatchDump}, nil
}

// Drain behaves like Dump but also empties the remote table.
func (i *rpcTable) Drain(r table.Requester) (table.Pending, error) {
	go i.runBatch(common.NewDrainRequest(i.table), table.BatchDrain, r)
	return table.Pending{Kind: table.BatchDrain}, nil
}

func (i *rpcTable) GarbageSize() (size uint64, err error) {
	req := common.NewGarbageSizeRequest(i.table)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Size, nil
}

func (i *rpcTable) GarbageCollect() (err error) {
	req := common.NewGarbageCollectRequest(i.table)
	_, err = invokeRPCRequest(req, i.transport, i.serializer)
	return err
}

func (i *rpcTable) KeyPosition() uint32 {
	return i.keyPos
}

func (i *rpcTable) Info() (info table.TableInfo, err error) {
	req := common.NewInfoRequest(i.table)
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		return table.TableInfo{}, err
	}
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return table.TableInfo{}, fmt.Errorf("failed to decode table info: %w", err)
	}
	return info, nil
}

// Close closes the underlying transport. The remote table keeps running.
func (i *rpcTable) Close() (err error) {
	return i.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// runBatch performs a dump or drain RPC and feeds the result to r.
// Errors are logged, the requester always receives a result so waiters
// are never left hanging.
func (i *rpcTable) runBatch(req *common.Message, kind table.BatchKind, r table.Requester) {
	resp, err := invokeRPCRequest(req, i.transport, i.serializer)
	if err != nil {
		Logger.Errorf("batch %s for table %q failed: %v", kind, i.table, err)
		r.Send(table.BatchResult{Kind: kind})
		return
	}

	t, err := value.Decode(resp.Payload)
	if err != nil {
		Logger.Errorf("failed to decode batch %s result for table %q: %v", kind, i.table, err)
		r.Send(table.BatchResult{Kind: kind})
		return
	}

	r.Send(table.BatchResult{Kind: kind, Values: t.Items()})
}

// decodeIfPresent decodes a term payload only when the presence flag is set
func decodeIfPresent(payload []byte, present bool) (value.Term, bool, error) {
	if !present {
		return value.Term{}, false, nil
	}
	t, err := value.Decode(payload)
	if err != nil {
		return value.Term{}, false, fmt.Errorf("failed to decode value: %w", err)
	}
	return t, true, nil
}
