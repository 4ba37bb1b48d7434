package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/fauxsoup/neural/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasTable   byte = 1 << 0
	hasKey     byte = 1 << 1
	hasKeyPos  byte = 1 << 2
	hasPayload byte = 1 << 3
	hasOk      byte = 1 << 4
	hasSize    byte = 1 << 5
	hasErr     byte = 1 << 6
	hasMeta    byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Table
	if msg.Table != "" {
		flags |= hasTable
		tableBytes := []byte(msg.Table)
		tableLen := len(tableBytes)

		// Write table name length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(tableLen))
		pos += 4

		// Write table name data
		copy(result[pos:pos+tableLen], tableBytes)
		pos += tableLen
	}

	// Handle Key
	if msg.Key > 0 {
		flags |= hasKey
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Key)
		pos += 8
	}

	// Handle KeyPos
	if msg.KeyPos > 0 {
		flags |= hasKeyPos
		binary.BigEndian.PutUint32(result[pos:pos+4], msg.KeyPos)
		pos += 4
	}

	// Handle Payload
	if msg.Payload != nil {
		flags |= hasPayload
		payloadLen := len(msg.Payload)

		// Write payload length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(payloadLen))
		pos += 4

		// Write payload data
		if payloadLen > 0 {
			copy(result[pos:pos+payloadLen], msg.Payload)
			pos += payloadLen
		}
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Size
	if msg.Size > 0 {
		flags |= hasSize
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Size)
		pos += 8
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	// Read Table if present
	if flags&hasTable != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for table name length")
		}

		// Read table name length
		tableLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(tableLen) > len(data) {
			return fmt.Errorf("data too short for table name data")
		}

		// Read table name data
		msg.Table = string(data[pos : pos+int(tableLen)])
		pos += int(tableLen)
	} else {
		msg.Table = ""
	}

	// Read Key if present
	if flags&hasKey != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for key")
		}

		msg.Key = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Key = 0
	}

	// Read KeyPos if present
	if flags&hasKeyPos != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for key position")
		}

		msg.KeyPos = binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
	} else {
		msg.KeyPos = 0
	}

	// Read Payload if present
	if flags&hasPayload != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for payload length")
		}

		// Read payload length
		payloadLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(payloadLen) > len(data) {
			return fmt.Errorf("data too short for payload data")
		}

		// Read payload data - create an empty slice (not nil) if length is 0
		// Allocate only if needed
		if msg.Payload == nil || cap(msg.Payload) < int(payloadLen) {
			msg.Payload = make([]byte, payloadLen)
		} else {
			msg.Payload = msg.Payload[:payloadLen]
		}

		if payloadLen > 0 {
			copy(msg.Payload, data[pos:pos+int(payloadLen)])
		}
		pos += int(payloadLen)
	} else {
		msg.Payload = nil
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}

		msg.Ok = data[pos] != 0
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Size if present
	if flags&hasSize != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for size")
		}

		msg.Size = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Size = 0
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}

		// Read error length
		errLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(errLen) > len(data) {
			return fmt.Errorf("data too short for error data")
		}

		// Read error data
		msg.Err = string(data[pos : pos+int(errLen)])
		pos += int(errLen)
	} else {
		msg.Err = ""
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for meta length")
		}

		// Read meta length
		metaLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(metaLen) > len(data) {
			return fmt.Errorf("data too short for meta data")
		}

		// Read metadata - create an empty slice (not nil) if length is 0
		// Allocate only if needed
		if msg.Meta == nil || cap(msg.Meta) < int(metaLen) {
			msg.Meta = make([]byte, metaLen)
		} else {
			msg.Meta = msg.Meta[:metaLen]
		}

		if metaLen > 0 {
			copy(msg.Meta, data[pos:pos+int(metaLen)])
		}
		pos += int(metaLen)
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding
	if msg.Table != "" {
		size += 4 + len(msg.Table) // 4 bytes for length + table name
	}
	if msg.Key > 0 {
		size += 8 // uint64
	}
	if msg.KeyPos > 0 {
		size += 4 // uint32
	}
	if msg.Payload != nil {
		size += 4 + len(msg.Payload) // 4 bytes for length + payload bytes
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Size > 0 {
		size += 8 // uint64
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta) // 4 bytes for length + meta bytes
	}

	return size
}
