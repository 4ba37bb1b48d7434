package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
	"github.com/fauxsoup/neural/rpc/common"
)

// NewTableServerAdapter creates an adapter that translates RPC requests into
// table operations. The batchTimeout bounds how long Dump and Drain requests
// wait for the engine's batch worker to deliver the snapshot.
func NewTableServerAdapter(batchTimeout time.Duration) IRPCServerAdapter {
	return &tableServerAdapterImpl{batchTimeout: batchTimeout}
}

type tableServerAdapterImpl struct {
	batchTimeout time.Duration
}

func (adapter *tableServerAdapterImpl) Handle(req *common.Message, tbl table.ITable) *common.Message {
	// Check for nil table
	if tbl == nil {
		return common.NewErrorResponse("handler: table is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTTblInsert:
		val, err := value.Decode(req.Payload)
		if err != nil {
			return common.NewErrorResponse(fmt.Sprintf("failed to decode value: %s", err))
		}
		prev, existed, err := tbl.Insert(req.Key, val)
		return common.NewInsertResponse(encodeIfPresent(prev, existed), existed, err)

	case common.MsgTTblInsertNew:
		val, err := value.Decode(req.Payload)
		if err != nil {
			return common.NewErrorResponse(fmt.Sprintf("failed to decode value: %s", err))
		}
		inserted, err := tbl.InsertNew(req.Key, val)
		return common.NewInsertNewResponse(inserted, err)

	case common.MsgTTblGet:
		val, found, err := tbl.Get(req.Key)
		return common.NewGetResponse(encodeIfPresent(val, found), found, err)

	case common.MsgTTblDelete:
		prev, existed, err := tbl.Delete(req.Key)
		return common.NewDeleteResponse(encodeIfPresent(prev, existed), existed, err)

	case common.MsgTTblIncrement:
		ops, err := decodeOps(req.Payload, table.DecodeIncrOps)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		values, err := tbl.Increment(req.Key, ops)
		if err != nil {
			return common.NewIncrementResponse(nil, err)
		}
		return common.NewIncrementResponse(value.Encode(table.EncodeIntResults(values)), nil)

	case common.MsgTTblUnshift:
		ops, err := decodeOps(req.Payload, table.DecodeUnshiftOps)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		lengths, err := tbl.Unshift(req.Key, ops)
		if err != nil {
			return common.NewUnshiftResponse(nil, err)
		}
		results := make([]int64, len(lengths))
		for i, l := range lengths {
			results[i] = int64(l)
		}
		return common.NewUnshiftResponse(value.Encode(table.EncodeIntResults(results)), nil)

	case common.MsgTTblShift:
		ops, err := decodeOps(req.Payload, table.DecodeShiftOps)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		removed, err := tbl.Shift(req.Key, ops)
		if err != nil {
			return common.NewShiftResponse(nil, err)
		}
		return common.NewShiftResponse(value.Encode(table.EncodeTermLists(removed)), nil)

	case common.MsgTTblSwap:
		ops, err := decodeOps(req.Payload, table.DecodeSwapOps)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		previous, err := tbl.Swap(req.Key, ops)
		if err != nil {
			return common.NewSwapResponse(nil, err)
		}
		return common.NewSwapResponse(value.Encode(value.List(previous...)), nil)

	case common.MsgTTblEmpty:
		err := tbl.Empty()
		return common.NewEmptyResponse(err)

	case common.MsgTTblDump:
		values, err := adapter.awaitBatch(tbl.Dump)
		return common.NewDumpResponse(values, err)

	case common.MsgTTblDrain:
		values, err := adapter.awaitBatch(tbl.Drain)
		return common.NewDrainResponse(values, err)

	case common.MsgTTblGarbageSize:
		size, err := tbl.GarbageSize()
		return common.NewGarbageSizeResponse(size, err)

	case common.MsgTTblGarbageCollect:
		err := tbl.GarbageCollect()
		return common.NewGarbageCollectResponse(err)

	case common.MsgTTblKeyPosition:
		return common.NewKeyPositionResponse(tbl.KeyPosition(), nil)

	case common.MsgTTblInfo:
		info, err := tbl.Info()
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		data, err := json.Marshal(info)
		return common.NewInfoResponse(data, err)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC TableAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// encodeIfPresent encodes a term only when the presence flag is set
func encodeIfPresent(t value.Term, present bool) []byte {
	if !present {
		return nil
	}
	return value.Encode(t)
}

// decodeOps decodes an encoded operation list using the provided decoder
func decodeOps[T any](payload []byte, decode func(value.Term) ([]T, error)) ([]T, error) {
	t, err := value.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode operations: %s", err)
	}
	return decode(t)
}

// awaitBatch enqueues a batch job and waits for the engine's batch worker
// to deliver the snapshot. The rows are returned as one encoded list term.
func (adapter *tableServerAdapterImpl) awaitBatch(enqueue func(table.Requester) (table.Pending, error)) ([]byte, error) {
	r := table.NewChanRequester()
	if _, err := enqueue(r); err != nil {
		return nil, err
	}

	var timeoutCh <-chan time.Time
	if adapter.batchTimeout > 0 {
		timeoutCh = time.After(adapter.batchTimeout)
	}

	select {
	case res := <-r.Recv():
		return value.Encode(value.List(res.Values...)), nil
	case <-timeoutCh:
		return nil, fmt.Errorf("batch operation timed out after %s", adapter.batchTimeout)
	}
}
