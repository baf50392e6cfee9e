package properties

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrTruncated   = errors.New("properties: truncated area")
	ErrCorrupt     = errors.New("properties: corrupt area")
	ErrUnknownType = errors.New("properties: unknown property type")
	ErrTooLarge    = errors.New("properties: limit exceeded")
)

// PropertyType identifies the value encoding of a single property.
type PropertyType uint8

const (
	TypeUndefined PropertyType = iota
	TypeBool
	TypeInt32
	TypeInt64
	TypeString
	TypeBinary
)

const (
	// HeaderSize is the fixed size of the area sub-header in bytes.
	HeaderSize = 8
	headerWords = HeaderSize / 4

	// MaxProperties bounds the number of properties in one area.
	MaxProperties = 255
	// MaxNameLength bounds a property name.
	MaxNameLength = 255
	// MaxValueLength bounds a single encoded value.
	MaxValueLength = 65535

	entryHeaderSize = 4
	wordSize        = 4
)

type property struct {
	name  string
	typ   PropertyType
	value []byte
}

// MessageProperties is an ordered set of typed name/value pairs. The zero
// value is an empty set ready for use.
type MessageProperties struct {
	props []property
}

// Clear removes all properties.
func (mp *MessageProperties) Clear() { mp.props = mp.props[:0] }

// Len returns the number of properties.
func (mp *MessageProperties) Len() int { return len(mp.props) }

// Names returns the property names in insertion order.
func (mp *MessageProperties) Names() []string {
	out := make([]string, len(mp.props))
	for i, p := range mp.props {
		out[i] = p.name
	}
	return out
}

func (mp *MessageProperties) set(name string, typ PropertyType, value []byte) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return fmt.Errorf("%w: name length %d", ErrTooLarge, len(name))
	}
	if len(value) > MaxValueLength {
		return fmt.Errorf("%w: value length %d", ErrTooLarge, len(value))
	}
	for i := range mp.props {
		if mp.props[i].name == name {
			mp.props[i].typ = typ
			mp.props[i].value = value
			return nil
		}
	}
	if len(mp.props) >= MaxProperties {
		return fmt.Errorf("%w: %d properties", ErrTooLarge, len(mp.props)+1)
	}
	mp.props = append(mp.props, property{name: name, typ: typ, value: value})
	return nil
}

func (mp *MessageProperties) get(name string, typ PropertyType) ([]byte, bool) {
	for _, p := range mp.props {
		if p.name == name && p.typ == typ {
			return p.value, true
		}
	}
	return nil, false
}

// SetBool sets a boolean property, replacing any existing value under name.
func (mp *MessageProperties) SetBool(name string, v bool) error {
	b := []byte{0}
	if v {
		b[0] = 1
	}
	return mp.set(name, TypeBool, b)
}

// SetInt32 sets a 32-bit integer property.
func (mp *MessageProperties) SetInt32(name string, v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return mp.set(name, TypeInt32, b[:])
}

// SetInt64 sets a 64-bit integer property.
func (mp *MessageProperties) SetInt64(name string, v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return mp.set(name, TypeInt64, b[:])
}

// SetString sets a string property.
func (mp *MessageProperties) SetString(name, v string) error {
	return mp.set(name, TypeString, []byte(v))
}

// SetBinary sets a raw bytes property. The value is not copied.
func (mp *MessageProperties) SetBinary(name string, v []byte) error {
	return mp.set(name, TypeBinary, v)
}

// GetBool returns the boolean property under name.
func (mp *MessageProperties) GetBool(name string) (bool, bool) {
	v, ok := mp.get(name, TypeBool)
	if !ok || len(v) != 1 {
		return false, false
	}
	return v[0] != 0, true
}

// GetInt32 returns the 32-bit integer property under name.
func (mp *MessageProperties) GetInt32(name string) (int32, bool) {
	v, ok := mp.get(name, TypeInt32)
	if !ok || len(v) != 4 {
		return 0, false
	}
	return int32(binary.BigEndian.Uint32(v)), true
}

// GetInt64 returns the 64-bit integer property under name.
func (mp *MessageProperties) GetInt64(name string) (int64, bool) {
	v, ok := mp.get(name, TypeInt64)
	if !ok || len(v) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(v)), true
}

// GetString returns the string property under name.
func (mp *MessageProperties) GetString(name string) (string, bool) {
	v, ok := mp.get(name, TypeString)
	if !ok {
		return "", false
	}
	return string(v), true
}

// GetBinary returns the raw bytes property under name.
func (mp *MessageProperties) GetBinary(name string) ([]byte, bool) {
	return mp.get(name, TypeBinary)
}
