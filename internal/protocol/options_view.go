package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/willhoy/blazingmq/internal/blob"
)

// OptionType occupies the low 7 bits of the first option-header byte.
type OptionType uint8

const (
	OptionTypeUndefined  OptionType = 0
	OptionTypeMsgGroupID OptionType = 1
)

const (
	// OptionHeaderSize is the byte size of one option-record header.
	OptionHeaderSize = 4

	// optionWordsExtended in the 24-bit words field means the real length
	// follows as a 32-bit word count in the next word.
	optionWordsExtended = 0x7fffff

	// MsgGroupIDMaxLength bounds the group identifier carried by a
	// MSG_GROUP_ID option. The option payload is one length byte, the
	// identifier, and zero padding to the word boundary.
	MsgGroupIDMaxLength = 31

	optionPackedMask = 0x80
	optionTypeMask   = 0x7f
)

type optionEntry struct {
	typ     OptionType
	packed  bool
	payload blob.Section
}

// OptionsView is a lazy typed view over the options area of one PUT
// message: a sequence of (type, payload range) records. Unknown types are
// skipped by length; a declared length overrunning the area marks the whole
// view invalid.
type OptionsView struct {
	blob    *blob.Blob
	entries []optionEntry
	valid   bool
}

// Reset rebuilds the view over the options area described by section.
// A zero-length section yields a valid, empty view.
func (v *OptionsView) Reset(b *blob.Blob, section blob.Section) error {
	v.Clear()
	if section.Length == 0 {
		v.valid = true
		return nil
	}
	if b == nil || section.Length < 0 || section.Start.IsUnset() {
		return fmt.Errorf("%w: bad options section", ErrInvalidOption)
	}
	pos := section.Start
	left := section.Length
	for left > 0 {
		if left < OptionHeaderSize {
			return fmt.Errorf("%w: %d stray bytes", ErrInvalidOption, left)
		}
		var raw [OptionHeaderSize]byte
		if err := blob.ReadBytes(raw[:], b, pos, OptionHeaderSize); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		typ := OptionType(raw[0] & optionTypeMask)
		packed := raw[0]&optionPackedMask != 0
		words := int(raw[1])<<16 | int(raw[2])<<8 | int(raw[3])
		headerBytes := OptionHeaderSize
		if words == optionWordsExtended {
			var ext [WordSize]byte
			extPos, err := blob.FindOffset(b, pos, OptionHeaderSize)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidOption, err)
			}
			if left < OptionHeaderSize+WordSize {
				return fmt.Errorf("%w: truncated extended header", ErrInvalidOption)
			}
			if err := blob.ReadBytes(ext[:], b, extPos, WordSize); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidOption, err)
			}
			words = int(binary.BigEndian.Uint32(ext[:]))
			headerBytes += WordSize
		}
		recordBytes := headerBytes + words*WordSize
		if words < 0 || recordBytes > left {
			return fmt.Errorf("%w: record length %d words overruns area", ErrInvalidOption, words)
		}
		payloadPos, err := blob.FindOffset(b, pos, headerBytes)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		v.entries = append(v.entries, optionEntry{
			typ:     typ,
			packed:  packed,
			payload: blob.Section{Start: payloadPos, Length: words * WordSize},
		})
		if pos, err = blob.FindOffset(b, pos, recordBytes); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		left -= recordBytes
	}
	v.blob = b
	v.valid = true
	return nil
}

// Clear detaches the view and drops all entries.
func (v *OptionsView) Clear() {
	v.blob = nil
	v.entries = v.entries[:0]
	v.valid = false
}

// IsValid reports whether the last Reset parsed the whole area.
func (v *OptionsView) IsValid() bool { return v.valid }

// Len returns the number of option records.
func (v *OptionsView) Len() int { return len(v.entries) }

// Find returns the payload range of the first record with the given type.
func (v *OptionsView) Find(t OptionType) (blob.Section, bool) {
	for _, e := range v.entries {
		if e.typ == t {
			return e.payload, true
		}
	}
	return blob.Section{Start: blob.NoPosition}, false
}

// LoadMsgGroupID extracts the group identifier into id. It returns false
// when the option is absent, malformed, or longer than
// MsgGroupIDMaxLength.
func (v *OptionsView) LoadMsgGroupID(id *string) bool {
	if !v.valid {
		return false
	}
	section, ok := v.Find(OptionTypeMsgGroupID)
	if !ok || section.Length < 1 {
		return false
	}
	var lenByte [1]byte
	if err := blob.ReadBytes(lenByte[:], v.blob, section.Start, 1); err != nil {
		return false
	}
	n := int(lenByte[0])
	if n == 0 || n > MsgGroupIDMaxLength || 1+n > section.Length {
		return false
	}
	buf := make([]byte, 1+n)
	if err := blob.ReadBytes(buf, v.blob, section.Start, 1+n); err != nil {
		return false
	}
	*id = string(buf[1:])
	return true
}
