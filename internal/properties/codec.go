package properties

import (
	"encoding/binary"
	"fmt"
)

// AreaLength returns the total byte length of a properties area, including
// its sub-header and padding, from the first HeaderSize bytes of the area.
func AreaLength(header []byte) (int, error) {
	if len(header) < HeaderSize {
		return 0, ErrTruncated
	}
	hw := int(header[0])
	if hw < headerWords {
		return 0, fmt.Errorf("%w: header words %d", ErrCorrupt, hw)
	}
	total := int(binary.BigEndian.Uint32(header[4:8])) * wordSize
	if total < hw*wordSize {
		return 0, fmt.Errorf("%w: total %d below header", ErrCorrupt, total)
	}
	return total, nil
}

// EncodedSize returns the byte length Encode would produce.
func (mp *MessageProperties) EncodedSize() int {
	if len(mp.props) == 0 {
		return 0
	}
	raw := HeaderSize
	for _, p := range mp.props {
		raw += entryHeaderSize + len(p.name) + len(p.value)
	}
	pad := wordSize - raw%wordSize
	if pad == 0 {
		pad = wordSize
	}
	return raw + pad
}

// Encode serializes the properties into a padded, word-aligned area. An
// empty set encodes to nil.
func (mp *MessageProperties) Encode() []byte {
	if len(mp.props) == 0 {
		return nil
	}
	total := mp.EncodedSize()
	out := make([]byte, HeaderSize, total)
	out[0] = headerWords
	binary.BigEndian.PutUint16(out[2:4], uint16(len(mp.props)))
	binary.BigEndian.PutUint32(out[4:8], uint32(total/wordSize))
	for _, p := range mp.props {
		var eh [entryHeaderSize]byte
		eh[0] = byte(p.typ)
		eh[1] = byte(len(p.name))
		binary.BigEndian.PutUint16(eh[2:4], uint16(len(p.value)))
		out = append(out, eh[:]...)
		out = append(out, p.name...)
		out = append(out, p.value...)
	}
	pad := total - len(out)
	for i := 0; i < pad; i++ {
		out = append(out, byte(pad))
	}
	return out
}

// Decode replaces the contents of mp with the properties encoded in data.
// data must hold exactly one complete area; trailing bytes past the declared
// total are rejected by the caller handing in a sized slice.
func (mp *MessageProperties) Decode(data []byte) error {
	mp.Clear()
	if len(data) == 0 {
		return nil
	}
	total, err := AreaLength(data)
	if err != nil {
		return err
	}
	if total > len(data) {
		return ErrTruncated
	}
	pad := int(data[total-1])
	if pad < 1 || pad > wordSize {
		return fmt.Errorf("%w: pad byte %d", ErrCorrupt, pad)
	}
	num := int(binary.BigEndian.Uint16(data[2:4]))
	if num > MaxProperties {
		return fmt.Errorf("%w: %d properties", ErrCorrupt, num)
	}
	start := int(data[0]) * wordSize
	if total-pad < start {
		return fmt.Errorf("%w: padding overlaps header", ErrCorrupt)
	}
	body := data[start : total-pad]
	for i := 0; i < num; i++ {
		if len(body) < entryHeaderSize {
			return ErrTruncated
		}
		typ := PropertyType(body[0])
		if typ == TypeUndefined || typ > TypeBinary {
			return fmt.Errorf("%w: %d", ErrUnknownType, typ)
		}
		nameLen := int(body[1])
		valueLen := int(binary.BigEndian.Uint16(body[2:4]))
		body = body[entryHeaderSize:]
		if len(body) < nameLen+valueLen {
			return ErrTruncated
		}
		name := string(body[:nameLen])
		value := append([]byte(nil), body[nameLen:nameLen+valueLen]...)
		body = body[nameLen+valueLen:]
		mp.props = append(mp.props, property{name: name, typ: typ, value: value})
	}
	if len(body) != 0 {
		return fmt.Errorf("%w: %d stray bytes after entries", ErrCorrupt, len(body))
	}
	return nil
}
