// bitio.go - Bit-stream reader for the SWF tag and record formats

/*
bitio.go implements the byte/bit-level reader that every tag and record
decoder in this package is built on (component C1 of the player). SWF
stores integers in little-endian byte order but packs bit fields
big-endian within a byte, so the reader keeps two cursors: a byte offset
into the underlying slice and a small bit-buffer for the field currently
being consumed.

Core Features:

    Byte-aligned fixed-width integer and fixed-point reads.
    Big-endian bit-field reads with sign extension for signed fields.
    Base-128 variable-length unsigned integers (1-5 bytes).
    Aggregate readers for rect, matrix and colour-transform records.
    Sub-stream extraction for nested tag bodies (DefineSprite, DoAction).

Any byte-aligned read first discards a partial bit-buffer; any bit read
draws from a one-byte buffer refilled on demand from the underlying
slice. Overrunning the slice is reported as a MalformedBinary error
rather than panicking, since a truncated tag is an ordinary malformed
input the parser must recover from at the tag boundary.
*/

package swf

import (
	"encoding/binary"
	"math"
)

// BitReader decodes the little-endian/bit-packed primitives used across
// the tag, shape and action record formats.
type BitReader struct {
	data         []byte
	pos          int
	currentByte  uint32
	unusedBits   uint
}

// NewBitReader wraps data for sequential reading starting at offset 0.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Position returns the current byte offset.
func (r *BitReader) Position() int { return r.pos }

// SetPosition seeks to an absolute byte offset, discarding any partial bit buffer.
func (r *BitReader) SetPosition(pos int) { r.pos = pos; r.Align() }

// Len returns the total number of bytes in the underlying buffer.
func (r *BitReader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *BitReader) Remaining() int { return len(r.data) - r.pos }

// IsFinished reports whether the stream has been fully consumed.
func (r *BitReader) IsFinished() bool { return r.pos >= len(r.data) && r.unusedBits == 0 }

// Align discards any partial bit-buffer, forcing the next read onto a byte boundary.
func (r *BitReader) Align() {
	r.currentByte = 0
	r.unusedBits = 0
}

func (r *BitReader) requireBytes(n int) error {
	if r.pos+n > len(r.data) {
		return newErr(MalformedBinary, "bitio", "read past end of stream")
	}
	return nil
}

// ReadU8 reads one byte-aligned unsigned byte.
func (r *BitReader) ReadU8() (uint8, error) {
	r.Align()
	if err := r.requireBytes(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadI8 reads one byte-aligned signed byte.
func (r *BitReader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadU16 reads a byte-aligned little-endian uint16.
func (r *BitReader) ReadU16() (uint16, error) {
	r.Align()
	if err := r.requireBytes(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadI16 reads a byte-aligned little-endian int16.
func (r *BitReader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a byte-aligned little-endian uint32.
func (r *BitReader) ReadU32() (uint32, error) {
	r.Align()
	if err := r.requireBytes(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadI32 reads a byte-aligned little-endian int32.
func (r *BitReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a byte-aligned little-endian uint64.
func (r *BitReader) ReadU64() (uint64, error) {
	r.Align()
	if err := r.requireBytes(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadFixed16 reads an 8.8 fixed-point value stored as an int16.
func (r *BitReader) ReadFixed16() (float64, error) {
	v, err := r.ReadI16()
	return float64(v) / 256.0, err
}

// ReadFixed32 reads a 16.16 fixed-point value stored as an int32.
func (r *BitReader) ReadFixed32() (float64, error) {
	v, err := r.ReadI32()
	return float64(v) / 65536.0, err
}

// ReadFloat32 reads an IEEE-754 single precision float.
func (r *BitReader) ReadFloat32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE-754 double precision float.
func (r *BitReader) ReadFloat64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}

// ReadEncodedU32 reads a base-128 variable-length unsigned integer (1-5
// bytes, high bit of each byte is the continuation flag).
func (r *BitReader) ReadEncodedU32() (uint32, error) {
	var value uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		value |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return value, nil
}

// ReadBitsU32 reads bitcount (0-32) bits as an unsigned value, MSB first,
// refilling the internal one-byte buffer from the stream on demand.
func (r *BitReader) ReadBitsU32(bitcount int) (uint32, error) {
	if bitcount == 0 {
		return 0, nil
	}
	var value uint32
	needed := uint(bitcount)
	for needed > 0 {
		if r.unusedBits > 0 {
			if needed >= r.unusedBits {
				value |= r.currentByte << (needed - r.unusedBits)
				needed -= r.unusedBits
				r.currentByte = 0
				r.unusedBits = 0
			} else {
				value |= r.currentByte >> (r.unusedBits - needed)
				r.currentByte &= (1 << (r.unusedBits - needed)) - 1
				r.unusedBits -= needed
				needed = 0
				break
			}
		} else {
			if err := r.requireBytes(1); err != nil {
				return 0, err
			}
			r.currentByte = uint32(r.data[r.pos])
			r.pos++
			r.unusedBits = 8
		}
	}
	return value, nil
}

// ReadBitsI32 reads bitcount bits as a two's-complement signed value,
// sign-extending the top bit to the full 32 bits.
func (r *BitReader) ReadBitsI32(bitcount int) (int32, error) {
	u, err := r.ReadBitsU32(bitcount)
	if err != nil {
		return 0, err
	}
	v := int32(u)
	if bitcount > 0 && bitcount < 32 && v&(1<<(uint(bitcount)-1)) != 0 {
		v |= -1 << uint(bitcount)
	}
	return v, nil
}

// ReadBitsFixed16 reads a bitcount-wide bit field as an 8.8 fixed-point value.
func (r *BitReader) ReadBitsFixed16(bitcount int) (float64, error) {
	if bitcount <= 8 {
		v, err := r.ReadBitsU32(bitcount)
		return float64(v) / 256.0, err
	}
	v, err := r.ReadBitsI32(bitcount)
	return float64(v) / 256.0, err
}

// ReadBitsFixed32 reads a bitcount-wide bit field as a 16.16 fixed-point value.
func (r *BitReader) ReadBitsFixed32(bitcount int) (float64, error) {
	if bitcount <= 16 {
		v, err := r.ReadBitsU32(bitcount)
		return float64(v) / 65536.0, err
	}
	v, err := r.ReadBitsI32(bitcount)
	return float64(v) / 65536.0, err
}

// ReadString reads a null-terminated UTF-8 string.
func (r *BitReader) ReadString() (string, error) {
	r.Align()
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return "", newErr(MalformedBinary, "bitio", "unterminated string")
	}
	s := string(r.data[start:r.pos])
	r.pos++ // consume the NUL
	return s, nil
}

// Extract returns a byte slice spanning size bytes from the current
// position, without advancing the cursor - used to carve out a nested
// tag body (e.g. a DefineSprite's inner tag stream) as its own sub-reader.
func (r *BitReader) Extract(size int) ([]byte, error) {
	r.Align()
	if err := r.requireBytes(size); err != nil {
		return nil, err
	}
	return r.data[r.pos : r.pos+size : r.pos+size], nil
}

// Skip advances the byte cursor by n bytes, byte-aligning first.
func (r *BitReader) Skip(n int) error {
	r.Align()
	if err := r.requireBytes(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Sub returns a new BitReader over the next size bytes and advances past them.
func (r *BitReader) Sub(size int) (*BitReader, error) {
	b, err := r.Extract(size)
	if err != nil {
		return nil, err
	}
	r.pos += size
	return NewBitReader(b), nil
}

// ReadRect reads a RECT record: a 5-bit width prefix followed by four
// signed bit fields of that width, in twip units, then converts to pixels.
func (r *BitReader) ReadRect() (Rect, error) {
	width, err := r.ReadBitsU32(5)
	if err != nil {
		return Rect{}, err
	}
	xmin, err := r.ReadBitsI32(int(width))
	if err != nil {
		return Rect{}, err
	}
	xmax, err := r.ReadBitsI32(int(width))
	if err != nil {
		return Rect{}, err
	}
	ymin, err := r.ReadBitsI32(int(width))
	if err != nil {
		return Rect{}, err
	}
	ymax, err := r.ReadBitsI32(int(width))
	if err != nil {
		return Rect{}, err
	}
	r.Align()
	return Rect{
		XMin: TwipsToPixels(xmin),
		XMax: TwipsToPixels(xmax),
		YMin: TwipsToPixels(ymin),
		YMax: TwipsToPixels(ymax),
	}, nil
}

// ReadMatrix reads a MATRIX record: optional scale pair, optional rotate
// pair, and an always-present translate pair in twips.
func (r *BitReader) ReadMatrix() (Matrix, error) {
	m := IdentityMatrix()

	hasScale, err := r.ReadBitsU32(1)
	if err != nil {
		return m, err
	}
	if hasScale != 0 {
		bits, err := r.ReadBitsU32(5)
		if err != nil {
			return m, err
		}
		sx, err := r.ReadBitsFixed32(int(bits))
		if err != nil {
			return m, err
		}
		sy, err := r.ReadBitsFixed32(int(bits))
		if err != nil {
			return m, err
		}
		m.A, m.D = sx, sy
	}

	hasRotate, err := r.ReadBitsU32(1)
	if err != nil {
		return m, err
	}
	if hasRotate != 0 {
		bits, err := r.ReadBitsU32(5)
		if err != nil {
			return m, err
		}
		b1, err := r.ReadBitsFixed32(int(bits))
		if err != nil {
			return m, err
		}
		c1, err := r.ReadBitsFixed32(int(bits))
		if err != nil {
			return m, err
		}
		m.B, m.C = b1, c1
	}

	bits, err := r.ReadBitsU32(5)
	if err != nil {
		return m, err
	}
	tx, err := r.ReadBitsI32(int(bits))
	if err != nil {
		return m, err
	}
	ty, err := r.ReadBitsI32(int(bits))
	if err != nil {
		return m, err
	}
	m.TX = TwipsToPixels(tx)
	m.TY = TwipsToPixels(ty)

	r.Align()
	return m, nil
}

// ReadColorTransform reads a CXFORM record (no alpha channel).
func (r *BitReader) ReadColorTransform() (ColorTransform, error) {
	return r.readColorTransform(false)
}

// ReadColorTransformAlpha reads a CXFORMWITHALPHA record.
func (r *BitReader) ReadColorTransformAlpha() (ColorTransform, error) {
	return r.readColorTransform(true)
}

func (r *BitReader) readColorTransform(withAlpha bool) (ColorTransform, error) {
	ct := IdentityColorTransform()

	hasAdd, err := r.ReadBitsU32(1)
	if err != nil {
		return ct, err
	}
	hasMult, err := r.ReadBitsU32(1)
	if err != nil {
		return ct, err
	}
	bits, err := r.ReadBitsU32(4)
	if err != nil {
		return ct, err
	}

	if hasMult != 0 {
		rv, _ := r.ReadBitsFixed16(int(bits))
		gv, _ := r.ReadBitsFixed16(int(bits))
		bv, _ := r.ReadBitsFixed16(int(bits))
		ct.RMul, ct.GMul, ct.BMul = rv, gv, bv
		if withAlpha {
			av, err := r.ReadBitsFixed16(int(bits))
			if err != nil {
				return ct, err
			}
			ct.AMul = av
		}
	}
	if hasAdd != 0 {
		rv, err := r.ReadBitsI32(int(bits))
		if err != nil {
			return ct, err
		}
		gv, err := r.ReadBitsI32(int(bits))
		if err != nil {
			return ct, err
		}
		bv, err := r.ReadBitsI32(int(bits))
		if err != nil {
			return ct, err
		}
		ct.RAdd, ct.GAdd, ct.BAdd = float64(rv), float64(gv), float64(bv)
		if withAlpha {
			av, err := r.ReadBitsI32(int(bits))
			if err != nil {
				return ct, err
			}
			ct.AAdd = float64(av)
		}
	}

	r.Align()
	return ct, nil
}

// ReadRGB reads an opaque RGB triple.
func (r *BitReader) ReadRGB() (Color, error) {
	rr, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	g, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	b, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	return Color{R: rr, G: g, B: b, A: 255}, nil
}

// ReadRGBA reads an RGB triple followed by an alpha byte.
func (r *BitReader) ReadRGBA() (Color, error) {
	rr, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	g, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	b, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	a, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	return Color{R: rr, G: g, B: b, A: a}, nil
}

// ReadARGB reads an alpha byte followed by an RGB triple (DefineBitsJPEG3 palette order).
func (r *BitReader) ReadARGB() (Color, error) {
	a, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	rr, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	g, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	b, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	return Color{R: rr, G: g, B: b, A: a}, nil
}

const twipsPerPixel = 20.0

// TwipsToPixels converts a twip (1/20 px) coordinate to pixel units.
func TwipsToPixels(twips int32) float64 {
	return float64(twips) / twipsPerPixel
}
