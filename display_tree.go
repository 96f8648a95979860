// display_tree.go - hierarchical display-list timeline (component C5)
//
// Per the architectural redesign from the format's original virtual
// MovieClip/Sprite/Shape dispatch hierarchy, Node is a single tagged
// struct switched on Kind rather than a base class with overridable
// methods; a leaf carries renderable character data, a clip carries its
// own depth-keyed children and timeline instead.

package swf

import "strings"

// NodeKind discriminates a display-tree node.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeClip
)

// Node is one display-list instance: a placed character plus (for clips)
// its own nested timeline and children. Ownership is a plain tree -
// Children owns its nodes outright; Deprecated holds instances removed
// from the live tree but retained for possible reuse on a timeline
// rewind, per the cross-rewind identity preservation the timeline engine
// requires (see Update/StepToFrame below).
type Node struct {
	Kind           NodeKind
	Depth          int
	Name           string
	CharacterID    uint16
	Matrix         Matrix
	ColorTransform ColorTransform
	Ratio          uint16 // morph-shape blend ratio, 0-65535; unused for non-morph leaves
	Character      *Character
	Visible        bool // backs the _visible intrinsic property; hides this node and its whole subtree when false

	// Clip-only fields.
	Children         map[int]*Node
	Deprecated       map[int]*Node
	Scripts          []FrameScript
	CurrentFrame     int
	Playing          bool
	frameAccumulator float64
	frameDuration    float64 // seconds/frame, inherited from the root movie's frame rate
	context          *Context // this clip's AVM1 scope, created lazily on first script execution
}

// NewRootClip builds the root display-tree node for a parsed movie.
func NewRootClip(m *Movie) *Node {
	frameDuration := 1.0
	if m.FrameRate > 0 {
		frameDuration = 1.0 / m.FrameRate
	}
	return &Node{
		Kind:          NodeClip,
		Name:          "_root",
		Children:      make(map[int]*Node),
		Deprecated:    make(map[int]*Node),
		Scripts:       m.Frames,
		frameDuration: frameDuration,
		Playing:       true,
		Visible:       true,
	}
}

func newChildClip(def *SpriteDefinition, frameDuration float64) *Node {
	return &Node{
		Kind:          NodeClip,
		Children:      make(map[int]*Node),
		Deprecated:    make(map[int]*Node),
		Scripts:       def.Frames,
		frameDuration: frameDuration,
		Playing:       true,
		Visible:       true,
	}
}

// Update advances the clip's frame accumulator by dt seconds, stepping the
// timeline forward by whole frames as the accumulator crosses each
// frame's duration, then recurses into every child clip. A leaf updates
// nothing of its own; a clip with zero frames (a sprite definition with
// no ShowFrame) never advances.
func (n *Node) Update(dt float64) error {
	if n.Kind != NodeClip {
		return nil
	}
	if n.Playing && len(n.Scripts) > 0 && n.frameDuration > 0 {
		n.frameAccumulator += dt
		for n.frameAccumulator >= n.frameDuration {
			n.frameAccumulator -= n.frameDuration
			if err := n.advanceOneFrame(); err != nil {
				return err
			}
		}
	}
	for _, child := range n.Children {
		if err := child.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// advanceOneFrame applies the next frame's commands and wraps the frame
// counter at the end of the timeline, looping back to frame 0 the way a
// SWF movie clip's timeline always loops unless a script calls stop().
func (n *Node) advanceOneFrame() error {
	if len(n.Scripts) == 0 {
		return nil
	}
	if err := n.applyFrame(n.Scripts[n.CurrentFrame]); err != nil {
		return err
	}
	n.CurrentFrame++
	if n.CurrentFrame >= len(n.Scripts) {
		n.CurrentFrame = 0
	}
	return nil
}

// StepToFrame moves the clip directly to target (0-based), replaying every
// frame from 0 up to and including target if target lies before the
// current position (a "rewind"), or from the current position forward
// otherwise. A rewind first moves every live child into Deprecated rather
// than discarding it, so that a placement later in the replay referencing
// the same depth and character id can reclaim the original instance
// instead of losing its accumulated AVM state - e.g. a clip's own local
// variables survive gotoAndPlay(1) the same way they do in the original
// player. Whatever is still in Deprecated once the replay has finished is
// discarded, so an instance that the replay did not reclaim is never
// reused by a later step.
func (n *Node) StepToFrame(target int) error {
	if n.Kind != NodeClip || len(n.Scripts) == 0 {
		return nil
	}
	if target < 0 {
		target = 0
	}
	if target >= len(n.Scripts) {
		target = len(n.Scripts) - 1
	}
	if target < n.CurrentFrame {
		for depth, child := range n.Children {
			n.Deprecated[depth] = child
		}
		n.Children = make(map[int]*Node)
		n.CurrentFrame = 0
	}
	for n.CurrentFrame <= target {
		if err := n.applyFrame(n.Scripts[n.CurrentFrame]); err != nil {
			return err
		}
		n.CurrentFrame++
	}
	if n.CurrentFrame >= len(n.Scripts) {
		n.CurrentFrame = 0
	}
	n.Deprecated = make(map[int]*Node)
	return nil
}

func (n *Node) applyFrame(f FrameScript) error {
	for _, cmd := range f.Commands {
		switch cmd.Kind {
		case CommandPlace:
			n.placeChild(cmd)
		case CommandModify:
			n.modifyChild(cmd)
		case CommandRemove:
			n.removeChild(cmd.Depth)
		}
	}
	// Action execution is the AVM1 interpreter's concern (avm_interp.go);
	// applyFrame runs none of f.Actions. Player.RunFrameActions runs the
	// actions of the frame a clip has just landed on when its caller
	// invokes it.
	return nil
}

func (n *Node) placeChild(cmd PlaceCommand) {
	if live, ok := n.Children[cmd.Depth]; ok && live.CharacterID == cmd.CharacterID {
		live.applyPlacement(cmd)
		return
	}
	if reused, ok := n.Deprecated[cmd.Depth]; ok && reused.CharacterID == cmd.CharacterID {
		delete(n.Deprecated, cmd.Depth)
		reused.applyPlacement(cmd)
		n.Children[cmd.Depth] = reused
		return
	}
	if live, ok := n.Children[cmd.Depth]; ok {
		n.Deprecated[cmd.Depth] = live
	}
	child := &Node{Depth: cmd.Depth, CharacterID: cmd.CharacterID, Matrix: IdentityMatrix(), ColorTransform: IdentityColorTransform(), Visible: true}
	child.applyPlacement(cmd)
	n.Children[cmd.Depth] = child
}

// modifyChild operates only on an already-occupied slot; a Modify command
// referencing an empty depth is a no-op, never a creation.
func (n *Node) modifyChild(cmd PlaceCommand) {
	child, ok := n.Children[cmd.Depth]
	if !ok {
		return
	}
	child.applyPlacement(cmd)
}

func (n *Node) removeChild(depth int) {
	if child, ok := n.Children[depth]; ok {
		delete(n.Children, depth)
		n.Deprecated[depth] = child
	}
}

// applyPlacement records the node's character id (if cmd carries one;
// the Character pointer itself is bound later by resolveCharacter) and
// overlays the "has"-gated fields from cmd, leaving any
// field cmd left unset at its current value - a Modify command only
// edits what it explicitly carries.
func (n *Node) applyPlacement(cmd PlaceCommand) {
	if cmd.HasCharacter {
		n.CharacterID = cmd.CharacterID
	}
	if cmd.HasMatrix {
		n.Matrix = cmd.Matrix
	}
	if cmd.HasColorTransform {
		n.ColorTransform = cmd.ColorTransform
	}
	if cmd.HasRatio {
		n.Ratio = cmd.Ratio
	}
	if cmd.HasName {
		n.Name = cmd.InstanceName
	}
}

// resolveCharacter binds this one node's Character pointer and, for a
// sprite, turns the node into a clip with the SpriteDefinition's frames.
// Player.resolveAndRunAll calls it, after each Update, for every node
// whose Character is still nil; the Player holds the Dictionary this tree
// doesn't.
func (n *Node) resolveCharacter(dict *Dictionary, frameDuration float64, logger func(string, uint16)) {
	c, ok := dict.Lookup(n.CharacterID)
	if !ok {
		logger("dictionary miss", n.CharacterID)
		return
	}
	n.Character = c
	switch c.Kind {
	case CharacterSpriteDefinition:
		n.Kind = NodeClip
		if n.Children == nil {
			fresh := newChildClip(c.SpriteDef, frameDuration)
			n.Children, n.Deprecated, n.Scripts = fresh.Children, fresh.Deprecated, fresh.Scripts
			n.frameDuration = frameDuration
		}
	default:
		n.Kind = NodeLeaf
	}
}

// pathTo returns the slash-separated instance-name path from n down to
// target, or false if target is not reachable from n; backs the _target
// and _droptarget intrinsic properties, which need a node's full path
// rather than the address used to reach it.
func (n *Node) pathTo(target *Node) (string, bool) {
	if n == target {
		return "", true
	}
	for _, child := range n.Children {
		if rest, ok := child.pathTo(target); ok {
			if rest == "" {
				return child.Name, true
			}
			return child.Name + "/" + rest, true
		}
	}
	return "", false
}

// Get resolves a slash-separated instance-name path relative to n, e.g.
// Get("hud/healthBar") descending through named children.
func (n *Node) Get(path string) (*Node, bool) {
	if path == "" {
		return n, true
	}
	cur := n
	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "_root" {
			continue
		}
		found := false
		for _, child := range cur.Children {
			if child.Name == part {
				cur = child
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return cur, true
}
