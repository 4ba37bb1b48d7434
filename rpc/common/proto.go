package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Table   string `json:"table,omitempty"`   // Name of the table the request is addressed to
	Key     uint64 `json:"key,omitempty"`     // Used for: Insert, Get, Delete, compound updates, Acquire, Release
	KeyPos  uint32 `json:"keyPos,omitempty"`  // Used for: Create (request), KeyPosition (response)
	Payload []byte `json:"payload,omitempty"` // Encoded term data (see lib/table/value codec)

	// Response only fields
	Ok   bool   `json:"ok,omitempty"`   // Used for: Insert, InsertNew, Get, Delete, Empty, Acquire, Release responses
	Size uint64 `json:"size,omitempty"` // Used for: GarbageSize response
	Err  string `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info response, custom Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewCreateRequest creates a new Create request
func NewCreateRequest(table string, keyPos uint32) *Message {
	return &Message{
		MsgType: MsgTTblCreate,
		Table:   table,
		KeyPos:  keyPos,
	}
}

// NewCreateResponse creates a new Create response
func NewCreateResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTTblCreate,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDestroyRequest creates a new Destroy request
func NewDestroyRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblDestroy,
		Table:   table,
	}
}

// NewDestroyResponse creates a new Destroy response
func NewDestroyResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTTblDestroy,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewInsertRequest creates a new Insert request
func NewInsertRequest(table string, key uint64, value []byte) *Message {
	return &Message{
		MsgType: MsgTTblInsert,
		Table:   table,
		Key:     key,
		Payload: value,
	}
}

// NewInsertResponse creates a new Insert response
func NewInsertResponse(prev []byte, existed bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblInsert,
		Ok:      existed,
		Payload: prev,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewInsertNewRequest creates a new InsertNew request
func NewInsertNewRequest(table string, key uint64, value []byte) *Message {
	return &Message{
		MsgType: MsgTTblInsertNew,
		Table:   table,
		Key:     key,
		Payload: value,
	}
}

// NewInsertNewResponse creates a new InsertNew response
func NewInsertNewResponse(inserted bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblInsertNew,
		Ok:      inserted,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(table string, key uint64) *Message {
	return &Message{
		MsgType: MsgTTblGet,
		Table:   table,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, found bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblGet,
		Ok:      found,
		Payload: value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(table string, key uint64) *Message {
	return &Message{
		MsgType: MsgTTblDelete,
		Table:   table,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(prev []byte, existed bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblDelete,
		Ok:      existed,
		Payload: prev,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewIncrementRequest creates a new Increment request.
// The ops parameter holds the encoded operation list (see table.EncodeIncrOps).
func NewIncrementRequest(table string, key uint64, ops []byte) *Message {
	return &Message{
		MsgType: MsgTTblIncrement,
		Table:   table,
		Key:     key,
		Payload: ops,
	}
}

// NewIncrementResponse creates a new Increment response
func NewIncrementResponse(results []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblIncrement,
		Payload: results,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewUnshiftRequest creates a new Unshift request
func NewUnshiftRequest(table string, key uint64, ops []byte) *Message {
	return &Message{
		MsgType: MsgTTblUnshift,
		Table:   table,
		Key:     key,
		Payload: ops,
	}
}

// NewUnshiftResponse creates a new Unshift response
func NewUnshiftResponse(results []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblUnshift,
		Payload: results,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewShiftRequest creates a new Shift request
func NewShiftRequest(table string, key uint64, ops []byte) *Message {
	return &Message{
		MsgType: MsgTTblShift,
		Table:   table,
		Key:     key,
		Payload: ops,
	}
}

// NewShiftResponse creates a new Shift response
func NewShiftResponse(results []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblShift,
		Payload: results,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSwapRequest creates a new Swap request
func NewSwapRequest(table string, key uint64, ops []byte) *Message {
	return &Message{
		MsgType: MsgTTblSwap,
		Table:   table,
		Key:     key,
		Payload: ops,
	}
}

// NewSwapResponse creates a new Swap response
func NewSwapResponse(results []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblSwap,
		Payload: results,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewEmptyRequest creates a new Empty request
func NewEmptyRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblEmpty,
		Table:   table,
	}
}

// NewEmptyResponse creates a new Empty response
func NewEmptyResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTTblEmpty,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDumpRequest creates a new Dump request
func NewDumpRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblDump,
		Table:   table,
	}
}

// NewDumpResponse creates a new Dump response.
// The values parameter holds the encoded list of dumped rows.
func NewDumpResponse(values []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblDump,
		Payload: values,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDrainRequest creates a new Drain request
func NewDrainRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblDrain,
		Table:   table,
	}
}

// NewDrainResponse creates a new Drain response
func NewDrainResponse(values []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblDrain,
		Payload: values,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGarbageSizeRequest creates a new GarbageSize request
func NewGarbageSizeRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblGarbageSize,
		Table:   table,
	}
}

// NewGarbageSizeResponse creates a new GarbageSize response
func NewGarbageSizeResponse(size uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblGarbageSize,
		Size:    size,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGarbageCollectRequest creates a new GarbageCollect request
func NewGarbageCollectRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblGarbageCollect,
		Table:   table,
	}
}

// NewGarbageCollectResponse creates a new GarbageCollect response
func NewGarbageCollectResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTTblGarbageCollect,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewKeyPositionRequest creates a new KeyPosition request
func NewKeyPositionRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblKeyPosition,
		Table:   table,
	}
}

// NewKeyPositionResponse creates a new KeyPosition response
func NewKeyPositionResponse(keyPos uint32, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblKeyPosition,
		KeyPos:  keyPos,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewInfoRequest creates a new Info request
func NewInfoRequest(table string) *Message {
	return &Message{
		MsgType: MsgTTblInfo,
		Table:   table,
	}
}

// NewInfoResponse creates a new Info response.
// The info parameter holds the JSON encoded table info.
func NewInfoResponse(info []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTTblInfo,
		Meta:    info,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewAcquireRequest creates a new Acquire request
func NewAcquireRequest(table string, key uint64) *Message {
	return &Message{
		MsgType: MsgTLCKAcquire,
		Table:   table,
		Key:     key,
	}
}

// NewAcquireResponse creates a new Acquire response
func NewAcquireResponse(ok bool, ownerID []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKAcquire,
		Ok:      ok,
		Payload: ownerID,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewReleaseRequest creates a new Release request
func NewReleaseRequest(table string, key uint64, ownerID []byte) *Message {
	return &Message{
		MsgType: MsgTLCKRelease,
		Table:   table,
		Key:     key,
		Payload: ownerID,
	}
}

// NewReleaseResponse creates a new Release response
func NewReleaseResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKRelease,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTTblCreate:
		return "create"
	case MsgTTblDestroy:
		return "destroy"
	case MsgTTblInsert:
		return "insert"
	case MsgTTblInsertNew:
		return "insertNew"
	case MsgTTblGet:
		return "get"
	case MsgTTblDelete:
		return "delete"
	case MsgTTblIncrement:
		return "increment"
	case MsgTTblUnshift:
		return "unshift"
	case MsgTTblShift:
		return "shift"
	case MsgTTblSwap:
		return "swap"
	case MsgTTblEmpty:
		return "empty"
	case MsgTTblDump:
		return "dump"
	case MsgTTblDrain:
		return "drain"
	case MsgTTblGarbageSize:
		return "garbageSize"
	case MsgTTblGarbageCollect:
		return "garbageCollect"
	case MsgTTblKeyPosition:
		return "keyPosition"
	case MsgTTblInfo:
		return "info"
	case MsgTLCKAcquire:
		return "acquire"
	case MsgTLCKRelease:
		return "release"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "create":
		*t = MsgTTblCreate
	case "destroy":
		*t = MsgTTblDestroy
	case "insert":
		*t = MsgTTblInsert
	case "insertNew":
		*t = MsgTTblInsertNew
	case "get":
		*t = MsgTTblGet
	case "delete":
		*t = MsgTTblDelete
	case "increment":
		*t = MsgTTblIncrement
	case "unshift":
		*t = MsgTTblUnshift
	case "shift":
		*t = MsgTTblShift
	case "swap":
		*t = MsgTTblSwap
	case "empty":
		*t = MsgTTblEmpty
	case "dump":
		*t = MsgTTblDump
	case "drain":
		*t = MsgTTblDrain
	case "garbageSize":
		*t = MsgTTblGarbageSize
	case "garbageCollect":
		*t = MsgTTblGarbageCollect
	case "keyPosition":
		*t = MsgTTblKeyPosition
	case "info":
		*t = MsgTTblInfo
	case "acquire":
		*t = MsgTLCKAcquire
	case "release":
		*t = MsgTLCKRelease
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Registry operations

	MsgTTblCreate  // Create a named table
	MsgTTblDestroy // Destroy a named table

	// ITable operations

	MsgTTblInsert         // Insert a row
	MsgTTblInsertNew      // Insert a row only if the key is absent
	MsgTTblGet            // Get a row by key
	MsgTTblDelete         // Delete a row by key
	MsgTTblIncrement      // Atomically add deltas to integer fields
	MsgTTblUnshift        // Atomically prepend values to list fields
	MsgTTblShift          // Atomically remove values from list fields
	MsgTTblSwap           // Atomically replace field values
	MsgTTblEmpty          // Remove all rows
	MsgTTblDump           // Snapshot all rows
	MsgTTblDrain          // Snapshot and remove all rows
	MsgTTblGarbageSize    // Report retired bytes awaiting collection
	MsgTTblGarbageCollect // Force a collection cycle
	MsgTTblKeyPosition    // Report the configured key position
	MsgTTblInfo           // Report table statistics

	// ILockManager operations

	MsgTLCKAcquire // Acquire a lock
	MsgTLCKRelease // Release a lock

	// Custom operations

	MsgTCustom // Custom operation type
)
