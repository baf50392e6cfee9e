package protocol

import (
	"encoding/hex"
	"hash/crc32"
)

// WordSize is the protocol's alignment unit; every length field counts words.
const WordSize = 4

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ChecksumCRC32C returns the protocol's application-data checksum (CRC32-C,
// Castagnoli), the value carried in the PUT header's crc32c field.
func ChecksumCRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// EventType occupies the low 7 bits of the first event-header byte.
type EventType uint8

const (
	EventTypeUndefined EventType = iota
	EventTypeControl
	EventTypePut
	EventTypeConfirm
	EventTypePush
	EventTypeAck
)

// String returns the wire-facing name of the event type.
func (t EventType) String() string {
	switch t {
	case EventTypeUndefined:
		return "UNDEFINED"
	case EventTypeControl:
		return "CONTROL"
	case EventTypePut:
		return "PUT"
	case EventTypeConfirm:
		return "CONFIRM"
	case EventTypePush:
		return "PUSH"
	case EventTypeAck:
		return "ACK"
	default:
		return "UNKNOWN"
	}
}

// MessageGUID is the 16-byte globally unique message identifier stamped by
// the producer.
type MessageGUID [16]byte

// String renders the GUID as lowercase hex.
func (g MessageGUID) String() string {
	return hex.EncodeToString(g[:])
}

// PaddingForLength returns the number of padding bytes, in [1,4], that
// follow a region of n bytes to reach the next word boundary. A region that
// is already aligned still carries a full word of padding so the pad-count
// byte always exists.
func PaddingForLength(n int) int {
	return WordSize - n%WordSize
}
