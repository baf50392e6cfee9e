package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/willhoy/blazingmq/internal/blob"
	"github.com/willhoy/blazingmq/internal/compression"
	"github.com/willhoy/blazingmq/internal/properties"
)

func testGUID(fill byte) MessageGUID {
	var g MessageGUID
	for i := range g {
		g[i] = fill
	}
	return g
}

func buildEvent(t *testing.T, segSize int, msgs ...PutMessage) (*blob.Blob, EventHeader) {
	t.Helper()
	var bld PutEventBuilder
	for i, m := range msgs {
		if err := bld.PackMessage(m); err != nil {
			t.Fatalf("PackMessage(%d): %v", i, err)
		}
	}
	b := bld.BuildBlob(segSize)
	eh, err := DecodeEventHeader(b)
	if err != nil {
		t.Fatalf("DecodeEventHeader: %v", err)
	}
	return b, eh
}

func loadBytes(t *testing.T, load func(*blob.Blob) error) []byte {
	t.Helper()
	var dst blob.Blob
	if err := load(&dst); err != nil {
		t.Fatalf("load: %v", err)
	}
	return dst.Bytes()
}

func TestEmptyEvent(t *testing.T) {
	b, eh := buildEvent(t, 4)
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 0 {
		t.Fatalf("Next = %d, want 0", rc)
	}
	if it.IsValid() {
		t.Fatalf("iterator valid after empty event")
	}
	if it.Err() != nil {
		t.Fatalf("Err = %v on clean end", it.Err())
	}
}

func TestSingleBareMessage(t *testing.T) {
	b, eh := buildEvent(t, 4, PutMessage{QueueID: 9, GUID: testGUID(1), Payload: []byte("hello")})
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v), want 1", rc, it.Err())
	}
	if it.ApplicationDataSize() != 5 {
		t.Fatalf("ApplicationDataSize = %d, want 5", it.ApplicationDataSize())
	}
	if it.MessagePropertiesSize() != 0 || it.HasMessageProperties() {
		t.Fatalf("unexpected properties")
	}
	if it.HasOptions() || it.OptionsSize() != 0 {
		t.Fatalf("unexpected options")
	}
	if it.MessagePayloadSize() != 5 {
		t.Fatalf("MessagePayloadSize = %d, want 5", it.MessagePayloadSize())
	}
	if got := loadBytes(t, it.LoadMessagePayload); string(got) != "hello" {
		t.Fatalf("payload = %q", got)
	}
	h := it.Header()
	if h.QueueID != 9 || h.GUID != testGUID(1) {
		t.Fatalf("header = %+v", h)
	}
	if rc := it.Next(); rc != 0 {
		t.Fatalf("second Next = %d, want 0", rc)
	}
}

func TestEventLengthAccounting(t *testing.T) {
	b, eh := buildEvent(t, 7,
		PutMessage{Payload: []byte("a")},
		PutMessage{Payload: []byte("bcde"), GroupID: "g"},
		PutMessage{Payload: bytes.Repeat([]byte("x"), 100)},
	)
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	sum := eh.HeaderBytes()
	for it.Next() == 1 {
		sum += it.Header().TotalBytes()
	}
	if it.Err() != nil {
		t.Fatalf("Err: %v", it.Err())
	}
	if sum != int(eh.TotalLength) || sum != b.Length() {
		t.Fatalf("sum %d, event length %d, blob %d", sum, eh.TotalLength, b.Length())
	}
}

func TestTwoMessagesWithOptions(t *testing.T) {
	b, eh := buildEvent(t, 4,
		PutMessage{GUID: testGUID(1), Payload: []byte("one"), GroupID: "g1"},
		PutMessage{GUID: testGUID(2), Payload: []byte("two")},
	)
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if !it.HasOptions() || !it.HasMsgGroupID() {
		t.Fatalf("message A should carry a group id")
	}
	if it.OptionsSize() == 0 {
		t.Fatalf("OptionsSize = 0 with options present")
	}
	var id string
	if !it.ExtractMsgGroupID(&id) || id != "g1" {
		t.Fatalf("group id = %q", id)
	}
	var view OptionsView
	if err := it.LoadOptionsView(&view); err != nil {
		t.Fatalf("LoadOptionsView: %v", err)
	}
	if view.Len() != 1 {
		t.Fatalf("view len = %d", view.Len())
	}
	opts := loadBytes(t, it.LoadOptions)
	if len(opts) != it.OptionsSize() {
		t.Fatalf("LoadOptions %d bytes, OptionsSize %d", len(opts), it.OptionsSize())
	}

	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if it.HasOptions() || it.HasMsgGroupID() {
		t.Fatalf("message B should carry no options")
	}
	if it.ExtractMsgGroupID(&id) {
		t.Fatalf("group id extracted from message B")
	}
	if err := it.LoadOptionsView(&view); err != nil {
		t.Fatalf("LoadOptionsView on optionless message: %v", err)
	}
	if view.Len() != 0 || !view.IsValid() {
		t.Fatalf("optionless view: len=%d valid=%v", view.Len(), view.IsValid())
	}

	if rc := it.Next(); rc != 0 {
		t.Fatalf("trailing Next = %d", rc)
	}
}

func TestCompressedApplicationData(t *testing.T) {
	msg := PutMessage{Payload: []byte("abcdef"), Compression: compression.AlgorithmZlib}
	b, eh := buildEvent(t, 4, msg)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressAlways); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if it.ApplicationDataSize() != 6 {
		t.Fatalf("ApplicationDataSize = %d, want 6", it.ApplicationDataSize())
	}
	if got := loadBytes(t, it.LoadApplicationData); string(got) != "abcdef" {
		t.Fatalf("application data = %q", got)
	}
	if it.Header().Compression != compression.AlgorithmNone {
		t.Fatalf("exposed header kept compression %s", it.Header().Compression)
	}
	var pos blob.Position
	if err := it.LoadApplicationDataPosition(&pos); !errors.Is(err, ErrOwnedData) {
		t.Fatalf("position on owned data: %v", err)
	}

	// Same event under DecompressNone: raw bytes, header untouched.
	compressed, err := compression.Compress([]byte("abcdef"), compression.AlgorithmZlib)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if it.ApplicationDataSize() != len(compressed) {
		t.Fatalf("raw size = %d, want %d", it.ApplicationDataSize(), len(compressed))
	}
	if got := loadBytes(t, it.LoadApplicationData); !bytes.Equal(got, compressed) {
		t.Fatalf("raw application data mismatch")
	}
	if it.Header().Compression != compression.AlgorithmZlib {
		t.Fatalf("on-wire compression lost: %s", it.Header().Compression)
	}
	if err := it.LoadApplicationDataPosition(&pos); err != nil {
		t.Fatalf("position in zero-copy mode: %v", err)
	}
}

func TestLegacyPropertiesCompression(t *testing.T) {
	var mp properties.MessageProperties
	if err := mp.SetString("k", "v"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	propsLen := len(mp.Encode())

	legacy := PutMessage{
		Payload:     []byte("data"),
		Properties:  &mp,
		Compression: compression.AlgorithmZlib,
		SchemaID:    0,
	}
	b, eh := buildEvent(t, 4, legacy)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressOldProperties); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if it.MessagePropertiesSize() != propsLen {
		t.Fatalf("MessagePropertiesSize = %d, want %d", it.MessagePropertiesSize(), propsLen)
	}
	if got := loadBytes(t, it.LoadMessagePayload); string(got) != "data" {
		t.Fatalf("payload = %q", got)
	}
	var decoded properties.MessageProperties
	if err := it.LoadMessagePropertiesInto(&decoded); err != nil {
		t.Fatalf("LoadMessagePropertiesInto: %v", err)
	}
	if v, ok := decoded.GetString("k"); !ok || v != "v" {
		t.Fatalf("property k = %q ok=%v", v, ok)
	}

	// Under DecompressNone the message still iterates; the compressed
	// properties area stays opaque.
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if !it.HasMessageProperties() {
		t.Fatalf("properties flag lost")
	}
	if it.MessagePropertiesSize() != 0 {
		t.Fatalf("opaque compressed area reported size %d", it.MessagePropertiesSize())
	}

	// A schema-bearing frame is not decompressed by the legacy-only policy.
	modern := legacy
	modern.SchemaID = 5
	b2, eh2 := buildEvent(t, 4, modern)
	if err := it.Reset(b2, eh2, compression.DecompressOldProperties); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	if it.Header().Compression != compression.AlgorithmZlib {
		t.Fatalf("schema-bearing frame was decompressed")
	}
}

func TestDecompressionTransparency(t *testing.T) {
	plain := PutMessage{Payload: []byte("transparent payload")}
	packed := plain
	packed.Compression = compression.AlgorithmZlib

	bPlain, ehPlain := buildEvent(t, 4, plain)
	bPacked, ehPacked := buildEvent(t, 4, packed)

	var it PutMessageIterator
	if err := it.Reset(bPlain, ehPlain, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if it.Next() != 1 {
		t.Fatalf("plain Next failed: %v", it.Err())
	}
	want := loadBytes(t, it.LoadApplicationData)

	if err := it.Reset(bPacked, ehPacked, compression.DecompressAlways); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if it.Next() != 1 {
		t.Fatalf("packed Next failed: %v", it.Err())
	}
	got := loadBytes(t, it.LoadApplicationData)
	if !bytes.Equal(got, want) {
		t.Fatalf("decompressed data differs from plain build")
	}
}

func TestZeroCopyDiscipline(t *testing.T) {
	msgs := []PutMessage{
		{Payload: []byte("first")},
		{Payload: []byte("second message"), GroupID: "zc"},
		{Payload: []byte("third")},
	}
	b, eh := buildEvent(t, 3, msgs...)
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for i := 0; it.Next() == 1; i++ {
		var pos blob.Position
		if err := it.LoadApplicationDataPosition(&pos); err != nil {
			t.Fatalf("message %d: position: %v", i, err)
		}
		raw := make([]byte, it.ApplicationDataSize())
		if err := blob.ReadBytes(raw, b, pos, len(raw)); err != nil {
			t.Fatalf("message %d: ReadBytes: %v", i, err)
		}
		if string(raw) != string(msgs[i].Payload) {
			t.Fatalf("message %d: aliased bytes %q, want %q", i, raw, msgs[i].Payload)
		}
	}
	if it.Err() != nil {
		t.Fatalf("Err: %v", it.Err())
	}
}

func TestIterationIdempotence(t *testing.T) {
	b, eh := buildEvent(t, 5,
		PutMessage{Payload: []byte("aa"), GroupID: "g1"},
		PutMessage{Payload: []byte("bbb")},
	)
	run := func(it *PutMessageIterator) []string {
		if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
			t.Fatalf("Reset: %v", err)
		}
		var out []string
		for it.Next() == 1 {
			out = append(out, string(loadBytes(t, it.LoadMessagePayload)))
		}
		if it.Err() != nil {
			t.Fatalf("Err: %v", it.Err())
		}
		return out
	}
	it := NewPutMessageIterator()
	first := run(it)
	it.Clear()
	second := run(it)
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
}

func TestSegmentSeamStability(t *testing.T) {
	var mp properties.MessageProperties
	_ = mp.SetInt32("seq", 17)
	msgs := []PutMessage{
		{Payload: bytes.Repeat([]byte("payload-"), 16), GroupID: "seams", Properties: &mp},
		{Payload: []byte("x")},
	}
	type snapshot struct {
		payload string
		group   string
		mpSize  int
	}
	run := func(segSize int) []snapshot {
		b, eh := buildEvent(t, segSize, msgs...)
		var it PutMessageIterator
		if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
			t.Fatalf("seg %d: Reset: %v", segSize, err)
		}
		var out []snapshot
		for it.Next() == 1 {
			var s snapshot
			s.payload = string(loadBytes(t, it.LoadMessagePayload))
			it.ExtractMsgGroupID(&s.group)
			s.mpSize = it.MessagePropertiesSize()
			out = append(out, s)
		}
		if it.Err() != nil {
			t.Fatalf("seg %d: Err: %v", segSize, it.Err())
		}
		return out
	}
	want := run(4096)
	for _, segSize := range []int{1, 3, 7} {
		got := run(segSize)
		if len(got) != len(want) {
			t.Fatalf("seg %d: %d messages, want %d", segSize, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("seg %d message %d: %+v, want %+v", segSize, i, got[i], want[i])
			}
		}
	}
}

func TestTruncatedSecondHeader(t *testing.T) {
	var bld PutEventBuilder
	if err := bld.PackMessage(PutMessage{Payload: []byte("first")}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	secondStart := bld.EventLength()
	if err := bld.PackMessage(PutMessage{Payload: []byte("second")}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	raw := bld.Build()
	raw = raw[:secondStart+PutHeaderMinSize-1] // cut inside the second PUT header
	binary.BigEndian.PutUint32(raw[4:8], uint32(len(raw)))
	b := blob.FromBytes(raw, 4)
	eh, err := DecodeEventHeader(b)
	if err != nil {
		t.Fatalf("DecodeEventHeader: %v", err)
	}

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("first Next = %d (err %v)", rc, it.Err())
	}
	if rc := it.Next(); rc >= 0 {
		t.Fatalf("second Next = %d, want negative", rc)
	}
	if !errors.Is(it.Err(), ErrTruncatedHeader) {
		t.Fatalf("Err = %v, want ErrTruncatedHeader", it.Err())
	}
	if it.IsValid() {
		t.Fatalf("iterator valid after corruption")
	}
	if rc := it.Next(); rc != 0 {
		t.Fatalf("Next after error = %d, want 0", rc)
	}
	var dump strings.Builder
	it.DumpBlob(&dump)
	if dump.Len() == 0 {
		t.Fatalf("empty dump")
	}
}

func TestInvalidPadding(t *testing.T) {
	var bld PutEventBuilder
	if err := bld.PackMessage(PutMessage{Payload: []byte("pad")}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	raw := bld.Build()
	raw[len(raw)-1] = 9
	b := blob.FromBytes(raw, 4)
	eh, _ := DecodeEventHeader(b)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc >= 0 {
		t.Fatalf("Next = %d, want negative", rc)
	}
	if !errors.Is(it.Err(), ErrInvalidPadding) {
		t.Fatalf("Err = %v, want ErrInvalidPadding", it.Err())
	}
}

func TestUnsupportedCompression(t *testing.T) {
	var bld PutEventBuilder
	if err := bld.PackMessage(PutMessage{Payload: []byte("body")}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	raw := bld.Build()
	raw[EventHeaderMinSize+5] = 3 << compressionShift // reserved codec value
	b := blob.FromBytes(raw, 4)
	eh, _ := DecodeEventHeader(b)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressAlways); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc >= 0 {
		t.Fatalf("Next = %d, want negative", rc)
	}
	if !errors.Is(it.Err(), ErrUnsupportedCompression) {
		t.Fatalf("Err = %v, want ErrUnsupportedCompression", it.Err())
	}

	// Under DecompressNone the unknown codec is tolerated; the data stays
	// opaque bytes.
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
}

func TestDecompressFailure(t *testing.T) {
	var bld PutEventBuilder
	if err := bld.PackMessage(PutMessage{Payload: []byte("abcdef"), Compression: compression.AlgorithmZlib}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	raw := bld.Build()
	raw[EventHeaderMinSize+PutHeaderMinSize] ^= 0xff // corrupt the zlib stream head
	b := blob.FromBytes(raw, 4)
	eh, _ := DecodeEventHeader(b)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressAlways); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc >= 0 {
		t.Fatalf("Next = %d, want negative", rc)
	}
	if !errors.Is(it.Err(), ErrDecompressFailed) {
		t.Fatalf("Err = %v, want ErrDecompressFailed", it.Err())
	}
}

func TestDecompressSizeCap(t *testing.T) {
	payload := bytes.Repeat([]byte("inflate"), 512)
	b, eh := buildEvent(t, 8, PutMessage{Payload: payload, Compression: compression.AlgorithmZlib})

	it := NewPutMessageIterator(WithMaxDecompressedBytes(16))
	if err := it.Reset(b, eh, compression.DecompressAlways); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc >= 0 {
		t.Fatalf("Next = %d, want negative", rc)
	}
	if !errors.Is(it.Err(), ErrDecompressFailed) {
		t.Fatalf("Err = %v, want ErrDecompressFailed", it.Err())
	}
}

func TestInvalidOptionOverrun(t *testing.T) {
	var bld PutEventBuilder
	if err := bld.PackMessage(PutMessage{Payload: []byte("p"), GroupID: "gg"}); err != nil {
		t.Fatalf("PackMessage: %v", err)
	}
	raw := bld.Build()
	// Option header lives right after the PUT header; declare 255 words.
	off := EventHeaderMinSize + PutHeaderMinSize
	raw[off+1], raw[off+2], raw[off+3] = 0x00, 0x00, 0xff
	b := blob.FromBytes(raw, 4)
	eh, _ := DecodeEventHeader(b)

	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rc := it.Next(); rc != 1 {
		t.Fatalf("Next = %d (err %v)", rc, it.Err())
	}
	var view OptionsView
	if err := it.LoadOptionsView(&view); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("LoadOptionsView = %v, want ErrInvalidOption", err)
	}
	if it.HasMsgGroupID() {
		t.Fatalf("group id reported from corrupt options")
	}
	var id string
	if it.ExtractMsgGroupID(&id) {
		t.Fatalf("group id extracted from corrupt options")
	}
}

func TestResetRejectsWrongEvents(t *testing.T) {
	b, eh := buildEvent(t, 4, PutMessage{Payload: []byte("x")})
	var it PutMessageIterator

	notPut := eh
	notPut.Type = EventTypeAck
	if err := it.Reset(b, notPut, compression.DecompressNone); !errors.Is(err, ErrNotPutEvent) {
		t.Fatalf("non-PUT Reset: %v", err)
	}

	tooLong := eh
	tooLong.TotalLength = uint32(b.Length() + 1)
	if err := it.Reset(b, tooLong, compression.DecompressNone); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("oversized Reset: %v", err)
	}

	if err := it.Reset(nil, eh, compression.DecompressNone); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("nil blob Reset: %v", err)
	}
}

func TestRebind(t *testing.T) {
	raw := func() []byte {
		var bld PutEventBuilder
		_ = bld.PackMessage(PutMessage{Payload: []byte("alpha"), GroupID: "r1"})
		_ = bld.PackMessage(PutMessage{Payload: []byte("beta")})
		return bld.Build()
	}()
	bA := blob.FromBytes(raw, 4)
	bB := blob.FromBytes(append([]byte(nil), raw...), 16) // same bytes, different chain
	eh, _ := DecodeEventHeader(bA)

	var src PutMessageIterator
	if err := src.Reset(bA, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if src.Next() != 1 {
		t.Fatalf("Next: %v", src.Err())
	}

	var dst PutMessageIterator
	if err := dst.ResetFrom(bB, &src); err != nil {
		t.Fatalf("ResetFrom: %v", err)
	}
	if dst.ApplicationDataSize() != src.ApplicationDataSize() {
		t.Fatalf("sizes differ after rebind")
	}
	if got := loadBytes(t, dst.LoadMessagePayload); string(got) != "alpha" {
		t.Fatalf("rebound payload = %q", got)
	}
	var id string
	if !dst.ExtractMsgGroupID(&id) || id != "r1" {
		t.Fatalf("rebound group id = %q", id)
	}
	// The rebound iterator continues the sequence on the new chain.
	if dst.Next() != 1 {
		t.Fatalf("rebound Next: %v", dst.Err())
	}
	if got := loadBytes(t, dst.LoadMessagePayload); string(got) != "beta" {
		t.Fatalf("second payload = %q", got)
	}

	short := blob.FromBytes(raw[:len(raw)-4], 8)
	if err := dst.ResetFrom(short, &src); !errors.Is(err, ErrBlobMismatch) {
		t.Fatalf("mismatched rebind: %v", err)
	}
}

func TestClearInvalidates(t *testing.T) {
	b, eh := buildEvent(t, 4, PutMessage{Payload: []byte("x")})
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if it.Next() != 1 {
		t.Fatalf("Next: %v", it.Err())
	}
	it.Clear()
	if it.IsValid() {
		t.Fatalf("valid after Clear")
	}
	if rc := it.Next(); rc != 0 {
		t.Fatalf("Next after Clear = %d", rc)
	}
	if it.ApplicationDataSize() != 0 || it.OptionsSize() != 0 {
		t.Fatalf("stale sizes after Clear")
	}
}

func TestAccessorsBeforeFirstNext(t *testing.T) {
	b, eh := buildEvent(t, 4, PutMessage{Payload: []byte("x")})
	var it PutMessageIterator
	if err := it.Reset(b, eh, compression.DecompressNone); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if it.ApplicationDataSize() != 0 || it.MessagePayloadSize() != 0 {
		t.Fatalf("sizes nonzero before first Next")
	}
	var dst blob.Blob
	if err := it.LoadApplicationData(&dst); !errors.Is(err, ErrNotPositioned) {
		t.Fatalf("LoadApplicationData = %v, want ErrNotPositioned", err)
	}
}
