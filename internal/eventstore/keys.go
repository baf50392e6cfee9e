package eventstore

import (
	"encoding/binary"

	"github.com/willhoy/blazingmq/internal/protocol"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - q/{queueID_be4}/m/{guid_16}

var (
	queuePrefix = []byte("q/")
	msgSeg      = []byte("/m/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// KeyMessage builds the archive key for one message.
func KeyMessage(queueID uint32, guid protocol.MessageGUID) []byte {
	k := make([]byte, 0, len(queuePrefix)+4+len(msgSeg)+len(guid))
	k = append(k, queuePrefix...)
	k = appendBE4(k, queueID)
	k = append(k, msgSeg...)
	return append(k, guid[:]...)
}

// KeyQueuePrefix builds the common prefix of all message keys of a queue.
func KeyQueuePrefix(queueID uint32) []byte {
	k := make([]byte, 0, len(queuePrefix)+4+len(msgSeg))
	k = append(k, queuePrefix...)
	k = appendBE4(k, queueID)
	return append(k, msgSeg...)
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
