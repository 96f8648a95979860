// render.go - stateless render submission interface (component C8)

package swf

// TextureHandle identifies a decoded bitmap uploaded to whatever backend
// implements RenderAdapter; the zero value means "no texture" (a solid or
// gradient fill rendered as flat-shaded geometry).
type TextureHandle int

// Vertex is one renderer-submitted vertex: shape-space position already
// transformed to its final placement, its fill's texture coordinate, and
// the resolved per-vertex color after color-transform composition.
type Vertex struct {
	X, Y  float32
	U, V  float32
	Color Color
}

// RenderAdapter is the player's only rendering dependency: a stateless
// vertex-push API with no notion of "current" anything between calls,
// per §4.8 - every call is fully self-describing, which is what lets a
// coalescing layer batch adjacent calls safely.
type RenderAdapter interface {
	Begin(width, height int)
	PushTriangles(texture TextureHandle, vertices []Vertex, indices []uint16)
	End()
}

// batchedCall is one pending PushTriangles submission inside a Batcher.
type batchedCall struct {
	texture  TextureHandle
	vertices []Vertex
	indices  []uint16
}

// Batcher coalesces consecutive PushTriangles submissions that share a
// texture into a single call to the wrapped adapter, flushing whenever
// the texture changes (a "state-affecting boundary", per §4.8) or Flush
// is called explicitly at frame end.
type Batcher struct {
	adapter RenderAdapter
	pending *batchedCall
}

// NewBatcher wraps adapter with submission coalescing.
func NewBatcher(adapter RenderAdapter) *Batcher {
	return &Batcher{adapter: adapter}
}

// Begin starts a frame on the wrapped adapter.
func (b *Batcher) Begin(width, height int) { b.adapter.Begin(width, height) }

// Push queues a triangle submission, merging it into the current batch if
// its texture matches, or flushing the batch and starting a new one if not.
func (b *Batcher) Push(texture TextureHandle, vertices []Vertex, indices []uint16) {
	if b.pending != nil && b.pending.texture != texture {
		b.Flush()
	}
	if b.pending == nil {
		b.pending = &batchedCall{texture: texture}
	}
	base := uint16(len(b.pending.vertices))
	b.pending.vertices = append(b.pending.vertices, vertices...)
	for _, idx := range indices {
		b.pending.indices = append(b.pending.indices, idx+base)
	}
}

// Flush submits the current batch, if any, to the wrapped adapter.
func (b *Batcher) Flush() {
	if b.pending == nil {
		return
	}
	b.adapter.PushTriangles(b.pending.texture, b.pending.vertices, b.pending.indices)
	b.pending = nil
}

// End flushes any pending batch and ends the frame on the wrapped adapter.
func (b *Batcher) End() {
	b.Flush()
	b.adapter.End()
}

// transformVertex applies a shape-to-stage matrix and color transform to
// one tesselated vertex, producing the final Vertex a RenderAdapter consumes.
func transformVertex(p, tc Point, m Matrix, ct ColorTransform, base Color) Vertex {
	x, y := m.Apply(p.X, p.Y)
	return Vertex{
		X: float32(x), Y: float32(y),
		U: float32(tc.X), V: float32(tc.Y),
		Color: ct.Apply(base),
	}
}
