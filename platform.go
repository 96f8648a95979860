// platform.go - external collaborator interfaces the player depends on
// rather than owns, per the component design's explicit boundary: decoding
// raw bytes into pixels, decompressing a file body, and sourcing wall-clock
// time or randomness are all treated as swappable services, not internals.

package swf

import (
	"bytes"
	"compress/zlib"
	"image"
	"io"
	"math/rand"
	"time"

	_ "image/jpeg" // registered for ImageDecoder's default implementation

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Clock supplies the wall-clock time the AVM1 GetTime action reads; tests
// can substitute a fake clock for a deterministic result.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RandomSource backs the AVM1 RandomNumber action; swappable so a test can
// pin the sequence a script observes.
type RandomSource interface {
	Intn(n int) int
}

// MathRandSource is the default RandomSource, backed by math/rand.
type MathRandSource struct{ r *rand.Rand }

// NewMathRandSource seeds a RandomSource from seed.
func NewMathRandSource(seed int64) *MathRandSource {
	return &MathRandSource{r: rand.New(rand.NewSource(seed))}
}

func (m *MathRandSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return m.r.Intn(n)
}

// TraceSink receives AVM1 Trace action output; defaults to logging through
// the player's own structured logger at Info level, but any func(string)
// works (e.g. writing to a test buffer).
type TraceSink func(message string)

// NewLoggingTraceSink returns a TraceSink that writes through logger.
func NewLoggingTraceSink(logger *zap.SugaredLogger) TraceSink {
	return func(message string) {
		logger.Infow("trace", "message", message)
	}
}

// Inflater decompresses a SWF file body stored under the 'CWS' (zlib) or
// 'ZWS' (LZMA) signature; only zlib is implemented here, matching the
// format versions (3-8) this player targets (LZMA compression was
// introduced later, out of scope).
type Inflater interface {
	Inflate(r io.Reader) (io.Reader, error)
}

// ZlibInflater is the default Inflater. No third-party Go deflate/zlib
// library appears anywhere in the reference corpus, so this one component
// uses the standard library directly rather than forcing an unrelated
// ecosystem dependency into the role (see DESIGN.md).
type ZlibInflater struct{}

func (ZlibInflater) Inflate(r io.Reader) (io.Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, wrapErr(MalformedBinary, "ZlibInflater.Inflate", "not a valid zlib stream", err)
	}
	return zr, nil
}

// ImageDecoder turns an embedded bitmap tag's compressed payload into
// decoded RGBA pixels; JPEG tables (DefineBitsJPEG) and raw DEFLATE
// lossless bitmaps use different sub-paths but share this interface.
type ImageDecoder interface {
	Decode(data []byte) (*BitmapData, error)
}

// StdImageDecoder decodes JPEG payloads via the standard image/jpeg
// registration. DefineBitsLossless's raw/zlib paletted format isn't a
// registered image.Image codec, and no code in this package decodes it.
type StdImageDecoder struct{}

func (StdImageDecoder) Decode(data []byte) (*BitmapData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, wrapErr(MalformedBinary, "StdImageDecoder.Decode", "unrecognized image payload", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// draw.Draw rather than a manual per-pixel loop: it already handles the
	// arbitrary source color model (paletted, YCbCr, NRGBA, ...) that
	// image.Decode can hand back for a JPEG tag.
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return &BitmapData{Width: w, Height: h, RGBA: dst.Pix}, nil
}

// ScaleRGBA resizes src to the given width/height using a bilinear filter,
// for DefineBitsJPEG variants whose declared stage dimensions (from the
// containing PlaceObject matrix) differ from the decoded image's own size.
func ScaleRGBA(src *BitmapData, w, h int) *BitmapData {
	if src.Width == w && src.Height == h {
		return src
	}
	srcImg := &image.RGBA{Pix: src.RGBA, Stride: src.Width * 4, Rect: image.Rect(0, 0, src.Width, src.Height)}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), srcImg, srcImg.Bounds(), draw.Over, nil)
	return &BitmapData{Width: w, Height: h, RGBA: dst.Pix}
}
