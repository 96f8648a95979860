// player.go - top-level Player wiring the parser, display tree, interpreter and renderer

package swf

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// PlayerConfig configures a Player instance. Zero values fall back to
// sensible defaults in NewPlayer, mirroring the teacher's own
// flag-populated, zero-value-safe config structs.
type PlayerConfig struct {
	FrameRateOverride float64 // 0 means "use the movie's own frame rate"
	ScriptLimits      ScriptLimits
	LogLevel          zapcore.Level
	LogFilePath       string // empty means log to stderr only
	RandomSeed        int64
}

// Player owns one loaded movie's entire runtime state: its dictionary,
// display tree, AVM1 heap and interpreter, and render submission pipeline.
type Player struct {
	Movie   *Movie
	Root    *Node
	Heap    *Heap
	Global  *Object
	Interp  *Interpreter
	Logger  *zap.SugaredLogger

	cfg      PlayerConfig
	renderer *Batcher
}

// NewPlayer constructs a Player from a parsed Movie and configuration,
// wiring the logger, heap, interpreter and root display-tree node.
func NewPlayer(m *Movie, cfg PlayerConfig) (*Player, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, wrapErr(MalformedBinary, "NewPlayer", "failed to build logger", err)
	}

	heap := NewHeap()
	global := NewObject()
	heap.Alloc(global, nil)

	limits := cfg.ScriptLimits
	if limits.MaxInstructions == 0 {
		limits = DefaultScriptLimits()
	}

	p := &Player{
		Movie:  m,
		Root:   NewRootClip(m),
		Heap:   heap,
		Global: global,
		Logger: logger,
		cfg:    cfg,
	}
	if cfg.FrameRateOverride > 0 {
		p.Root.frameDuration = 1.0 / cfg.FrameRateOverride
	}
	p.Interp = &Interpreter{
		Heap:   heap,
		Global: global,
		Limits: limits,
		Trace:  NewLoggingTraceSink(logger),
		Random: NewMathRandSource(cfg.RandomSeed),
		Clock:  SystemClock{},
		Logger: logger,
	}
	return p, nil
}

func buildLogger(cfg PlayerConfig) (*zap.SugaredLogger, error) {
	level := cfg.LogLevel
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)}
	if cfg.LogFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core).Sugar(), nil
}

// SetRenderer attaches a RenderAdapter; the player batches submissions
// through a Batcher so per-frame drawing always coalesces adjacent
// same-texture triangle pushes (see render.go).
func (p *Player) SetRenderer(adapter RenderAdapter) {
	p.renderer = NewBatcher(adapter)
}

// Update advances the display tree by dt seconds, binds the characters of
// newly placed nodes, and runs a heap collection once the live count
// reaches the heap's threshold. It runs no frame actions; RunFrameActions
// does that. An error from advancing the display tree is returned.
func (p *Player) Update(dt float64) error {
	if err := p.Root.Update(dt); err != nil {
		return err
	}
	p.resolveAndRunAll(p.Root)
	if p.Heap.liveCount >= p.Heap.threshold {
		p.Heap.Collect(p.gcRoots())
	}
	return nil
}

// resolveAndRunAll walks the tree binding the Character of every node that
// has none yet, then recurses into children, so a sprite resolved here has
// its own timeline's children bound in the same pass. It binds characters
// only and executes no DoAction scripts.
func (p *Player) resolveAndRunAll(n *Node) {
	if n.Character == nil && n.CharacterID != 0 {
		n.resolveCharacter(p.Movie.Dictionary, n.frameDurationOrParent(), func(msg string, id uint16) {
			p.Logger.Warnw(msg, "characterID", id)
		})
	}
	for _, child := range n.Children {
		if child.Character == nil {
			child.resolveCharacter(p.Movie.Dictionary, n.frameDurationIfClip(), func(msg string, id uint16) {
				p.Logger.Warnw(msg, "characterID", id)
			})
		}
		p.resolveAndRunAll(child)
	}
}

// RunFrameActions executes every DoAction record attached to the frame a
// clip just landed on (CurrentFrame-1, wrapping). Player.Update does not
// call it; a caller that wants scripts to run calls it after each Update.
// An action that fails is logged and the remaining actions still run.
func (p *Player) RunFrameActions(n *Node) {
	if n.Kind != NodeClip || len(n.Scripts) == 0 {
		return
	}
	frame := n.Scripts[(n.CurrentFrame-1+len(n.Scripts))%len(n.Scripts)]
	if len(frame.Actions) > 0 {
		if n.context == nil {
			n.context = NewContext(p.Movie.Version, p.Global, p.Global)
			n.context.Clip = n
			n.context.Home = n
			n.context.Root = p.Root
		}
		for _, a := range frame.Actions {
			if err := p.Interp.Run(n.context, a.Bytes); err != nil {
				p.Logger.Warnw("action execution failed", "error", err)
			}
		}
	}
	for _, child := range n.Children {
		p.RunFrameActions(child)
	}
}

func (p *Player) gcRoots() []*Object {
	var roots []*Object
	roots = append(roots, p.Global)
	p.collectContextRoots(p.Root, &roots)
	return roots
}

func (p *Player) collectContextRoots(n *Node, roots *[]*Object) {
	if n.context != nil {
		*roots = append(*roots, p.Interp.roots(n.context)...)
	}
	for _, c := range n.Children {
		p.collectContextRoots(c, roots)
	}
}

// Render submits the current display tree to the attached RenderAdapter,
// depth-sorting each clip's children and composing matrices/color
// transforms down the tree, then flushing the Batcher's coalesced draw
// calls.
func (p *Player) Render(viewportW, viewportH int) {
	if p.renderer == nil {
		return
	}
	p.renderer.Begin(viewportW, viewportH)
	p.renderNode(p.Root, IdentityMatrix(), IdentityColorTransform())
	p.renderer.End()
}

func (p *Player) renderNode(n *Node, parentMatrix Matrix, parentCT ColorTransform) {
	if !n.Visible {
		return
	}
	m := Multiply(parentMatrix, n.Matrix)
	ct := ComposeColorTransform(parentCT, n.ColorTransform)

	if n.Character != nil {
		switch n.Character.Kind {
		case CharacterShape:
			p.renderShape(n.Character.Shape, m, ct)
		case CharacterMorphShape:
			p.renderMorph(n.Character.Morph, n.Ratio, m, ct)
		}
	}

	if n.Kind != NodeClip {
		return
	}
	for _, depth := range sortedDepths(n.Children) {
		p.renderNode(n.Children[depth], m, ct)
	}
}

func sortedDepths(children map[int]*Node) []int {
	depths := make([]int, 0, len(children))
	for d := range children {
		depths = append(depths, d)
	}
	for i := 1; i < len(depths); i++ {
		for j := i; j > 0 && depths[j-1] > depths[j]; j-- {
			depths[j-1], depths[j] = depths[j], depths[j-1]
		}
	}
	return depths
}

func (p *Player) renderShape(shape *TesselatedShape, m Matrix, ct ColorTransform) {
	for _, fill := range shape.Fills {
		verts := make([]Vertex, len(fill.Vertices))
		style := shape.fillStyle[fill.StyleIndex-1]
		for i, v := range fill.Vertices {
			verts[i] = transformVertex(v, fill.Texcoords[i], m, ct, style.Color)
		}
		p.renderer.Push(textureFor(style), verts, fill.Indices)
	}
}

func (p *Player) renderMorph(morph *MorphShape, ratio uint16, m Matrix, ct ColorTransform) {
	for fi, fill := range morph.Start.Fills {
		endFill := morph.End.Fills[fi]
		verts := make([]Vertex, len(fill.Vertices))
		style := morph.Start.fillStyle[fill.StyleIndex-1]
		for i := range fill.Vertices {
			pos := morph.InterpolatePosition(fi, i, ratio)
			tc := fill.Texcoords[i]
			if i < len(endFill.Texcoords) {
				t := float64(ratio) / 65535.0
				tc = Point{X: tc.X + (endFill.Texcoords[i].X-tc.X)*t, Y: tc.Y + (endFill.Texcoords[i].Y-tc.Y)*t}
			}
			verts[i] = transformVertex(pos, tc, m, ct, style.Color)
		}
		p.renderer.Push(textureFor(style), verts, fill.Indices)
	}
}

func textureFor(fs FillStyle) TextureHandle {
	if fs.Kind == FillImage {
		return TextureHandle(fs.BitmapCharID)
	}
	return 0
}

// frameDurationOrParent/frameDurationIfClip exist only to propagate the
// root movie's frame duration down to freshly materialized sprite clips,
// since a child Node has no Movie reference of its own.
func (n *Node) frameDurationOrParent() float64 {
	if n.frameDuration > 0 {
		return n.frameDuration
	}
	return 1.0 / 12.0
}

func (n *Node) frameDurationIfClip() float64 { return n.frameDurationOrParent() }
