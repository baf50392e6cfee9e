package protocol

import (
	"fmt"

	"github.com/willhoy/blazingmq/internal/blob"
	"github.com/willhoy/blazingmq/internal/compression"
	"github.com/willhoy/blazingmq/internal/properties"
)

// PutMessage describes one message to pack into a PUT event.
type PutMessage struct {
	QueueID     uint32
	GUID        MessageGUID
	Payload     []byte
	Properties  *properties.MessageProperties
	GroupID     string
	Compression compression.Algorithm
	// SchemaID zero marks the legacy properties format; a non-zero value is
	// carried in the header as the properties schema. Either way PackMessage
	// compresses properties and payload together.
	SchemaID uint16
}

// PutEventBuilder assembles a PUT event: the event header followed by the
// packed messages. The zero value is ready for use.
type PutEventBuilder struct {
	messages []byte
	count    int
}

// Reset drops all packed messages.
func (bld *PutEventBuilder) Reset() {
	bld.messages = bld.messages[:0]
	bld.count = 0
}

// MessageCount returns the number of packed messages.
func (bld *PutEventBuilder) MessageCount() int { return bld.count }

// EventLength returns the total event length Build would produce.
func (bld *PutEventBuilder) EventLength() int {
	return EventHeaderMinSize + len(bld.messages)
}

// PackMessage appends one message to the event under construction.
func (bld *PutEventBuilder) PackMessage(m PutMessage) error {
	var props []byte
	if m.Properties != nil {
		props = m.Properties.Encode()
	}
	appData := make([]byte, 0, len(props)+len(m.Payload))
	appData = append(appData, props...)
	appData = append(appData, m.Payload...)

	wire := appData
	if m.Compression != compression.AlgorithmNone {
		var err error
		if wire, err = compression.Compress(appData, m.Compression); err != nil {
			return err
		}
	}

	var options []byte
	if m.GroupID != "" {
		var err error
		if options, err = appendMsgGroupIDOption(nil, m.GroupID); err != nil {
			return err
		}
	}

	pad := PaddingForLength(len(wire))
	totalBytes := PutHeaderMinSize + len(options) + len(wire) + pad
	h := PutHeader{
		HeaderWords:  PutHeaderMinWords,
		OptionsWords: uint32(len(options) / WordSize),
		Compression:  m.Compression,
		TotalWords:   uint32(totalBytes / WordSize),
		QueueID:      m.QueueID,
		GUID:         m.GUID,
		CRC32C:       ChecksumCRC32C(wire),
		SchemaID:     m.SchemaID,
	}
	if len(props) > 0 {
		h.Flags |= FlagMessageProperties
	}
	if len(options) > 0 {
		h.Flags |= FlagOptions
	}

	bld.messages = appendPutHeader(bld.messages, h)
	bld.messages = append(bld.messages, options...)
	bld.messages = append(bld.messages, wire...)
	for i := 0; i < pad; i++ {
		bld.messages = append(bld.messages, byte(pad))
	}
	bld.count++
	return nil
}

// Build serializes the complete event into a new buffer.
func (bld *PutEventBuilder) Build() []byte {
	eh := EventHeader{
		Type:        EventTypePut,
		HeaderWords: EventHeaderMinWords,
		TotalLength: uint32(bld.EventLength()),
	}
	out := make([]byte, 0, bld.EventLength())
	out = appendEventHeader(out, eh)
	return append(out, bld.messages...)
}

// BuildBlob serializes the event and splits it into segments of at most
// segmentSize bytes, mimicking a transport's buffer chain.
func (bld *PutEventBuilder) BuildBlob(segmentSize int) *blob.Blob {
	return blob.FromBytes(bld.Build(), segmentSize)
}

// appendMsgGroupIDOption encodes a MSG_GROUP_ID option record: one header
// word, then a length byte, the identifier, and zero fill to the word
// boundary.
func appendMsgGroupIDOption(dst []byte, id string) ([]byte, error) {
	if len(id) == 0 || len(id) > MsgGroupIDMaxLength {
		return nil, fmt.Errorf("%w: group id length %d", ErrInvalidOption, len(id))
	}
	payloadWords := (1 + len(id) + WordSize - 1) / WordSize
	dst = append(dst,
		byte(OptionTypeMsgGroupID)&optionTypeMask,
		byte(payloadWords>>16),
		byte(payloadWords>>8),
		byte(payloadWords),
	)
	dst = append(dst, byte(len(id)))
	dst = append(dst, id...)
	for n := 1 + len(id); n%WordSize != 0; n++ {
		dst = append(dst, 0)
	}
	return dst, nil
}
