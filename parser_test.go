package swf

import "testing"

// tagWriter accumulates a raw SWF body (post-header) using the same
// MSB-first bit packing as bitWriterForTest, plus little-endian byte
// helpers for the byte-aligned fields every tag body uses.
type tagWriter struct{ buf []byte }

func (w *tagWriter) u8(v byte)  { w.buf = append(w.buf, v) }
func (w *tagWriter) u16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}
func (w *tagWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }

// tag appends a short-form tag header (code + length, both fitting the
// 6-bit inline length field) followed by body.
func (w *tagWriter) tag(code uint16, body []byte) {
	packed := (code << 6) | uint16(len(body))
	w.u16(packed)
	w.bytes(body)
}

// minimalRect encodes a zero-origin RECT with an 8-twip-wide, 8-twip-tall
// stage using a 5-bit field width, matching ReadRect's bit layout.
func minimalRect() []byte {
	bw := NewBitWriterForTest()
	bw.writeBits(8, 5)
	bw.writeSignedBits(0, 8)
	bw.writeSignedBits(8, 8)
	bw.writeSignedBits(0, 8)
	bw.writeSignedBits(8, 8)
	return bw.bytes()
}

func TestParseFileUncompressedEndToEnd(t *testing.T) {
	body := &tagWriter{}
	body.bytes(minimalRect())
	body.u16(uint16(int16(12 * 256))) // frame rate 12.0 as 8.8 fixed
	body.u16(1)                       // frame count

	body.tag(TagSetBackgroundColor, []byte{0x10, 0x20, 0x30})
	body.tag(TagShowFrame, nil)
	body.tag(TagEnd, nil)

	file := append([]byte{'F', 'W', 'S', 6, 0, 0, 0, 0}, body.buf...)

	m, err := ParseFile(file, ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if m.Version != 6 {
		t.Fatalf("Version = %v, want 6", m.Version)
	}
	if m.FrameRate != 12 {
		t.Fatalf("FrameRate = %v, want 12", m.FrameRate)
	}
	if m.FrameCount != 1 {
		t.Fatalf("FrameCount = %v, want 1", m.FrameCount)
	}
	if m.BackgroundColor.R != 0x10 || m.BackgroundColor.G != 0x20 || m.BackgroundColor.B != 0x30 {
		t.Fatalf("BackgroundColor = %+v, want (0x10,0x20,0x30)", m.BackgroundColor)
	}
	if len(m.Frames) != 1 {
		t.Fatalf("Frames = %d, want 1 (closed by the single ShowFrame)", len(m.Frames))
	}
}

func TestParseFileRejectsBadSignature(t *testing.T) {
	file := []byte{'X', 'X', 'X', 6, 0, 0, 0, 0, 0, 0}
	if _, err := ParseFile(file, ParseOptions{}); !IsKind(err, MalformedBinary) {
		t.Fatalf("ParseFile with a bad signature = %v, want a MalformedBinary error", err)
	}
}

func TestParseFileRejectsAVM2(t *testing.T) {
	body := &tagWriter{}
	body.bytes(minimalRect())
	body.u16(uint16(int16(12 * 256)))
	body.u16(1)
	body.tag(TagFileAttributes, []byte{0x08, 0, 0, 0}) // bit 3 set -> ActionScript3
	body.tag(TagEnd, nil)

	file := append([]byte{'F', 'W', 'S', 9, 0, 0, 0, 0}, body.buf...)
	_, err := ParseFile(file, ParseOptions{})
	if !IsKind(err, UnsupportedAVM2) {
		t.Fatalf("ParseFile on an AVM2 file = %v, want an UnsupportedAVM2 error", err)
	}
}
