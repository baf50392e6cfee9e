package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/willhoy/blazingmq/internal/compression"
)

const (
	// PutHeaderMinSize is the byte size of the minimum-version PUT header.
	PutHeaderMinSize = 40
	// PutHeaderMinWords is PutHeaderMinSize in words.
	PutHeaderMinWords = PutHeaderMinSize / WordSize

	compressionShift = 5
	compressionMask  = 0x07
)

// PutHeaderFlag is one bit of the PUT header flags byte.
type PutHeaderFlag uint8

const (
	// FlagMessageProperties marks a message carrying a properties area at
	// the front of its application data.
	FlagMessageProperties PutHeaderFlag = 1 << 0
	// FlagOptions marks a message with a non-empty options area. The flag is
	// implied whenever the options length field is non-zero.
	FlagOptions PutHeaderFlag = 1 << 1
)

// PutHeader is the fixed structure at the start of each PUT message:
//
//	0:  flags(8) | headerWords(8) | optionsWords hi 16
//	4:  optionsWords low 8 | compression(3)+reserved(5) | reserved(16)
//	8:  totalWords(32)
//	12: queueID(32)
//	16: messageGUID(16 bytes)
//	32: crc32c(32)              over on-wire application data
//	36: schemaID(16) | reserved(16)
//
// A schema id of zero marks the legacy, pre-schema properties format whose
// properties travel compressed together with the payload.
type PutHeader struct {
	Flags        PutHeaderFlag
	HeaderWords  uint8
	OptionsWords uint32
	Compression  compression.Algorithm
	TotalWords   uint32
	QueueID      uint32
	GUID         MessageGUID
	CRC32C       uint32
	SchemaID     uint16
}

// HeaderBytes returns the declared header length in bytes.
func (h PutHeader) HeaderBytes() int { return int(h.HeaderWords) * WordSize }

// TotalBytes returns the declared total message length in bytes.
func (h PutHeader) TotalBytes() int { return int(h.TotalWords) * WordSize }

// OptionsBytes returns the declared options-area length in bytes.
func (h PutHeader) OptionsBytes() int { return int(h.OptionsWords) * WordSize }

// HasFlag reports whether f is set.
func (h PutHeader) HasFlag(f PutHeaderFlag) bool { return h.Flags&f != 0 }

// IsLegacyProperties reports whether the message declares the pre-schema
// properties format.
func (h PutHeader) IsLegacyProperties() bool { return h.SchemaID == 0 }

// decodePutHeader projects the fixed PUT header fields out of raw, which
// must hold at least PutHeaderMinSize bytes. Structural validation happens
// in validatePutHeader; semantic validation of flags and enums is the
// caller's concern.
func decodePutHeader(raw []byte) PutHeader {
	h := PutHeader{
		Flags:       PutHeaderFlag(raw[0]),
		HeaderWords: raw[1],
		OptionsWords: uint32(raw[2])<<16 |
			uint32(raw[3])<<8 |
			uint32(raw[4]),
		Compression: compression.Algorithm(raw[5] >> compressionShift & compressionMask),
		TotalWords:  binary.BigEndian.Uint32(raw[8:12]),
		QueueID:     binary.BigEndian.Uint32(raw[12:16]),
		CRC32C:      binary.BigEndian.Uint32(raw[32:36]),
		SchemaID:    binary.BigEndian.Uint16(raw[36:38]),
	}
	copy(h.GUID[:], raw[16:32])
	return h
}

// validatePutHeader enforces the structural bounds the decoder guarantees:
// the declared header length is at least the minimum and the declared total
// length covers the header.
func validatePutHeader(h PutHeader) error {
	if h.HeaderWords < PutHeaderMinWords {
		return fmt.Errorf("%w: put header words %d", ErrInvalidLength, h.HeaderWords)
	}
	if h.TotalWords < uint32(h.HeaderWords) {
		return fmt.Errorf("%w: total words %d below header words %d",
			ErrInvalidLength, h.TotalWords, h.HeaderWords)
	}
	return nil
}

// Encode serializes h into a new buffer using the minimum header size.
func (h PutHeader) Encode() []byte {
	return appendPutHeader(nil, h)
}

// DecodePutHeaderBytes projects and validates a PUT header out of raw bytes,
// for consumers that persist headers outside an event.
func DecodePutHeaderBytes(raw []byte) (PutHeader, error) {
	if len(raw) < PutHeaderMinSize {
		return PutHeader{}, fmt.Errorf("%w: %d bytes for put header", ErrTruncatedHeader, len(raw))
	}
	h := decodePutHeader(raw)
	if err := validatePutHeader(h); err != nil {
		return PutHeader{}, err
	}
	return h, nil
}

// appendPutHeader serializes h at the end of dst using the minimum header
// size.
func appendPutHeader(dst []byte, h PutHeader) []byte {
	var raw [PutHeaderMinSize]byte
	raw[0] = byte(h.Flags)
	raw[1] = h.HeaderWords
	raw[2] = byte(h.OptionsWords >> 16)
	raw[3] = byte(h.OptionsWords >> 8)
	raw[4] = byte(h.OptionsWords)
	raw[5] = byte(h.Compression&compressionMask) << compressionShift
	binary.BigEndian.PutUint32(raw[8:12], h.TotalWords)
	binary.BigEndian.PutUint32(raw[12:16], h.QueueID)
	copy(raw[16:32], h.GUID[:])
	binary.BigEndian.PutUint32(raw[32:36], h.CRC32C)
	binary.BigEndian.PutUint16(raw[36:38], h.SchemaID)
	return append(dst, raw[:]...)
}
