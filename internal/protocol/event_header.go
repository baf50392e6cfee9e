package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/willhoy/blazingmq/internal/blob"
)

const (
	// EventHeaderMinSize is the byte size of the minimum-version event
	// header.
	EventHeaderMinSize = 8
	// EventHeaderMinWords is EventHeaderMinSize in words.
	EventHeaderMinWords = EventHeaderMinSize / WordSize

	fragmentBitMask = 0x80
	eventTypeMask   = 0x7f
)

// EventHeader is the fixed structure at offset 0 of every event:
//
//	0: fragment(1) | type(7)
//	1: headerWords(8)
//	2: reserved(16)
//	4: totalLength(32)        whole event, header included, in bytes
//
// The header length in words permits future extension; readers skip past
// declared bytes they do not understand.
type EventHeader struct {
	Fragment    bool
	Type        EventType
	HeaderWords uint8
	TotalLength uint32
}

// HeaderBytes returns the declared header length in bytes.
func (h EventHeader) HeaderBytes() int { return int(h.HeaderWords) * WordSize }

// DecodeEventHeader projects and validates the event header at the start of
// b: enough bytes for the declared header, header words at least the
// minimum, and total length covering the header. Semantic validation of the
// event type is left to the consumer (the PUT iterator requires PUT).
func DecodeEventHeader(b *blob.Blob) (EventHeader, error) {
	var raw [EventHeaderMinSize]byte
	if err := blob.ReadBytes(raw[:], b, blob.Start(), EventHeaderMinSize); err != nil {
		return EventHeader{}, fmt.Errorf("%w: event header", ErrTruncatedHeader)
	}
	h := EventHeader{
		Fragment:    raw[0]&fragmentBitMask != 0,
		Type:        EventType(raw[0] & eventTypeMask),
		HeaderWords: raw[1],
		TotalLength: binary.BigEndian.Uint32(raw[4:8]),
	}
	if h.HeaderWords < EventHeaderMinWords {
		return EventHeader{}, fmt.Errorf("%w: event header words %d", ErrInvalidLength, h.HeaderWords)
	}
	if int(h.TotalLength) < h.HeaderBytes() {
		return EventHeader{}, fmt.Errorf("%w: event length %d below header", ErrInvalidLength, h.TotalLength)
	}
	if h.HeaderBytes() > b.Length() {
		return EventHeader{}, fmt.Errorf("%w: event header", ErrTruncatedHeader)
	}
	return h, nil
}

// appendEventHeader serializes h at the end of dst.
func appendEventHeader(dst []byte, h EventHeader) []byte {
	b0 := byte(h.Type) & eventTypeMask
	if h.Fragment {
		b0 |= fragmentBitMask
	}
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], h.TotalLength)
	dst = append(dst, b0, h.HeaderWords, 0, 0)
	return append(dst, tail[:]...)
}
