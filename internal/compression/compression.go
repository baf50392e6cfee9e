package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

var (
	ErrUnknownAlgorithm = errors.New("compression: unknown algorithm")
	ErrSizeCapExceeded  = errors.New("compression: decompressed size cap exceeded")
)

// Algorithm identifies the codec applied to application data. Values map to
// the wire's 3-bit compression-type field.
type Algorithm uint8

const (
	AlgorithmNone Algorithm = 0
	AlgorithmZlib Algorithm = 1
)

// String returns the wire-facing name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmZlib:
		return "e_ZLIB"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// IsKnown reports whether a names a supported codec.
func (a Algorithm) IsKnown() bool {
	return a == AlgorithmNone || a == AlgorithmZlib
}

// Policy selects when a PUT message iterator decompresses application data.
type Policy int

const (
	// DecompressNone leaves application data as it is on the wire.
	DecompressNone Policy = iota
	// DecompressAlways decompresses every compressed message.
	DecompressAlways
	// DecompressOldProperties decompresses only legacy frames that carry
	// message properties in the pre-schema format, where properties were
	// compressed together with the payload.
	DecompressOldProperties
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case DecompressNone:
		return "none"
	case DecompressAlways:
		return "always"
	case DecompressOldProperties:
		return "old-properties"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// Compress encodes src with the given algorithm into a new buffer.
func Compress(src []byte, alg Algorithm) ([]byte, error) {
	switch alg {
	case AlgorithmNone:
		return append([]byte(nil), src...), nil
	case AlgorithmZlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(alg))
	}
}

// Decompress decodes src with the given algorithm into a new buffer. maxSize
// bounds the decompressed size; maxSize <= 0 means unbounded.
func Decompress(src []byte, alg Algorithm, maxSize int) ([]byte, error) {
	switch alg {
	case AlgorithmNone:
		if maxSize > 0 && len(src) > maxSize {
			return nil, ErrSizeCapExceeded
		}
		return append([]byte(nil), src...), nil
	case AlgorithmZlib:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		var out bytes.Buffer
		if maxSize > 0 {
			n, err := io.Copy(&out, io.LimitReader(r, int64(maxSize)+1))
			if err != nil {
				return nil, err
			}
			if n > int64(maxSize) {
				return nil, ErrSizeCapExceeded
			}
		} else if _, err := io.Copy(&out, r); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(alg))
	}
}
