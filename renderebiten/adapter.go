// Package renderebiten is the concrete ebiten-backed implementation of the
// player's RenderAdapter interface: submitted triangle batches are
// converted to ebiten.Vertex/index slices and drawn with DrawTriangles,
// following the same buffered-frame, mutex-guarded game-loop shape the
// teacher's own ebiten video backend uses.
package renderebiten

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	swf "github.com/swfplayer/swfplayer"
)

// Adapter implements swf.RenderAdapter on top of an ebiten.Image canvas.
type Adapter struct {
	mu     sync.Mutex
	canvas *ebiten.Image
	width  int
	height int

	textures map[swf.TextureHandle]*ebiten.Image
}

// NewAdapter returns an Adapter with no bound textures; UploadTexture
// registers a decoded bitmap character before the first frame that
// references it is submitted.
func NewAdapter() *Adapter {
	return &Adapter{textures: make(map[swf.TextureHandle]*ebiten.Image)}
}

// UploadTexture registers RGBA pixel data under handle for later
// DrawTriangles submissions that reference it.
func (a *Adapter) UploadTexture(handle swf.TextureHandle, width, height int, rgba []byte) {
	img := ebiten.NewImageFromImage(&image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	})
	a.mu.Lock()
	a.textures[handle] = img
	a.mu.Unlock()
}

// Begin allocates (or resizes) the backing canvas and clears it.
func (a *Adapter) Begin(width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.canvas == nil || a.width != width || a.height != height {
		a.canvas = ebiten.NewImage(width, height)
		a.width, a.height = width, height
	}
	a.canvas.Fill(color.Black)
}

// PushTriangles draws one coalesced batch via DrawTriangles, using a 1x1
// white pixel as the source image for untextured (solid/gradient) fills
// so per-vertex color still modulates correctly.
func (a *Adapter) PushTriangles(texture swf.TextureHandle, vertices []swf.Vertex, indices []uint16) {
	if len(indices) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.canvas == nil {
		return
	}
	src, ok := a.textures[texture]
	if !ok {
		src = whitePixel
	}
	ev := make([]ebiten.Vertex, len(vertices))
	for i, v := range vertices {
		ev[i] = ebiten.Vertex{
			DstX: v.X, DstY: v.Y,
			SrcX: v.U * float32(src.Bounds().Dx()),
			SrcY: v.V * float32(src.Bounds().Dy()),
			ColorR: float32(v.Color.R) / 255,
			ColorG: float32(v.Color.G) / 255,
			ColorB: float32(v.Color.B) / 255,
			ColorA: float32(v.Color.A) / 255,
		}
	}
	a.canvas.DrawTriangles(ev, indices, src, &ebiten.DrawTrianglesOptions{})
}

// End is a no-op: the canvas is read by Image() from the game loop's own
// Draw callback, not flushed here, since ebiten owns its own present timing.
func (a *Adapter) End() {}

// Image returns the current frame's canvas for an ebiten.Game's Draw
// method to blit, e.g. screen.DrawImage(adapter.Image(), nil).
func (a *Adapter) Image() *ebiten.Image {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canvas
}

var whitePixel = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
}()
