package swf

import "testing"

func frameWithPlace(depth int, charID uint16) FrameScript {
	return FrameScript{Commands: []PlaceCommand{
		{Kind: CommandPlace, Depth: depth, CharacterID: charID, HasCharacter: true},
	}}
}

func TestNewRootClipDefaultsToPlaying(t *testing.T) {
	m := &Movie{FrameRate: 12}
	root := NewRootClip(m)
	if !root.Playing {
		t.Fatal("a freshly built root clip should start Playing")
	}
}

func TestAdvanceOneFrameWrapsAtEnd(t *testing.T) {
	root := &Node{
		Kind:          NodeClip,
		Children:      make(map[int]*Node),
		Deprecated:    make(map[int]*Node),
		Scripts:       []FrameScript{frameWithPlace(1, 10), frameWithPlace(1, 11)},
		frameDuration: 1,
		Playing:       true,
	}
	if err := root.advanceOneFrame(); err != nil {
		t.Fatal(err)
	}
	if root.CurrentFrame != 1 {
		t.Fatalf("CurrentFrame = %v, want 1", root.CurrentFrame)
	}
	if err := root.advanceOneFrame(); err != nil {
		t.Fatal(err)
	}
	if root.CurrentFrame != 0 {
		t.Fatalf("CurrentFrame should wrap to 0 after the last frame, got %v", root.CurrentFrame)
	}
}

func TestStopGatesUpdate(t *testing.T) {
	root := &Node{
		Kind:          NodeClip,
		Children:      make(map[int]*Node),
		Deprecated:    make(map[int]*Node),
		Scripts:       []FrameScript{frameWithPlace(1, 10), frameWithPlace(1, 11)},
		frameDuration: 1,
		Playing:       false,
	}
	if err := root.Update(10); err != nil {
		t.Fatal(err)
	}
	if root.CurrentFrame != 0 {
		t.Fatalf("a stopped clip must not advance on Update, got CurrentFrame=%v", root.CurrentFrame)
	}
}

// TestRewindPreservesInstanceIdentity is the core invariant of the
// Deprecated-cache rewind design: an instance at a given depth with a given
// character id that survives a rewind (StepToFrame to an earlier frame that
// places the same depth+characterID again) must be the same *Node, not a
// freshly constructed one, so any AVM state attached to it (e.g. its own
// Context) is preserved.
func TestRewindPreservesInstanceIdentity(t *testing.T) {
	root := &Node{
		Kind:       NodeClip,
		Children:   make(map[int]*Node),
		Deprecated: make(map[int]*Node),
		Scripts: []FrameScript{
			frameWithPlace(1, 42),
			{Commands: nil},
			frameWithPlace(1, 42), // re-places the same depth+characterID on rewind
		},
		frameDuration: 1,
	}

	if err := root.StepToFrame(0); err != nil {
		t.Fatal(err)
	}
	original := root.Children[1]
	if original == nil {
		t.Fatal("frame 0 should have placed a child at depth 1")
	}
	original.Name = "marked" // stand-in for accumulated AVM state

	if err := root.StepToFrame(2); err != nil {
		t.Fatal(err)
	}
	if err := root.StepToFrame(0); err != nil { // rewind back to frame 0
		t.Fatal(err)
	}

	reused := root.Children[1]
	if reused != original {
		t.Fatal("re-placing the same depth+characterID after a rewind should reuse the original instance")
	}
	if reused.Name != "marked" {
		t.Fatal("reused instance should retain state set before the rewind")
	}
}

func TestRewindDoesNotReuseDifferentCharacterID(t *testing.T) {
	root := &Node{
		Kind:       NodeClip,
		Children:   make(map[int]*Node),
		Deprecated: make(map[int]*Node),
		Scripts: []FrameScript{
			frameWithPlace(1, 42),
			frameWithPlace(1, 99), // different character at the same depth
		},
		frameDuration: 1,
	}
	if err := root.StepToFrame(0); err != nil {
		t.Fatal(err)
	}
	first := root.Children[1]

	if err := root.StepToFrame(1); err != nil {
		t.Fatal(err)
	}
	if err := root.StepToFrame(0); err != nil {
		t.Fatal(err)
	}
	second := root.Children[1]
	if second == first {
		t.Fatal("a different character id at the same depth must not reuse the prior instance")
	}
}

func TestPlaceOverLiveOccupantSameCharacterReuses(t *testing.T) {
	root := &Node{Kind: NodeClip, Children: make(map[int]*Node), Deprecated: make(map[int]*Node)}
	root.placeChild(PlaceCommand{Kind: CommandPlace, Depth: 1, CharacterID: 42, HasCharacter: true})
	original := root.Children[1]
	original.Name = "marked"

	root.placeChild(PlaceCommand{Kind: CommandPlace, Depth: 1, CharacterID: 42, HasCharacter: true})
	if root.Children[1] != original {
		t.Fatal("re-Place at an occupied depth with the same character id must reuse the live instance")
	}
	if root.Children[1].Name != "marked" {
		t.Fatal("reused live instance should retain its prior state")
	}
}

func TestPlaceOverLiveOccupantDifferentCharacterReplaces(t *testing.T) {
	root := &Node{Kind: NodeClip, Children: make(map[int]*Node), Deprecated: make(map[int]*Node)}
	root.placeChild(PlaceCommand{Kind: CommandPlace, Depth: 1, CharacterID: 42, HasCharacter: true})
	original := root.Children[1]

	root.placeChild(PlaceCommand{Kind: CommandPlace, Depth: 1, CharacterID: 99, HasCharacter: true})
	if root.Children[1] == original {
		t.Fatal("re-Place at an occupied depth with a different character id must destroy and recreate")
	}
	if root.Children[1].CharacterID != 99 {
		t.Fatalf("CharacterID = %v, want 99", root.Children[1].CharacterID)
	}
	if _, ok := root.Deprecated[1]; !ok {
		t.Fatal("the destroyed instance should move to the deprecated cache, not vanish")
	}
}

func TestModifyOnEmptyDepthIsNoOp(t *testing.T) {
	root := &Node{Kind: NodeClip, Children: make(map[int]*Node), Deprecated: make(map[int]*Node)}
	root.modifyChild(PlaceCommand{Kind: CommandModify, Depth: 1, CharacterID: 42, HasCharacter: true})
	if _, ok := root.Children[1]; ok {
		t.Fatal("Modify on an empty depth must not create an instance")
	}
}

func TestGetResolvesNamedPath(t *testing.T) {
	root := &Node{Kind: NodeClip, Children: map[int]*Node{1: {Name: "hud", Kind: NodeClip, Children: map[int]*Node{2: {Name: "healthBar"}}}}}
	found, ok := root.Get("hud/healthBar")
	if !ok || found.Name != "healthBar" {
		t.Fatalf("Get(\"hud/healthBar\") = (%v, %v), want healthBar node", found, ok)
	}
	if _, ok := root.Get("missing"); ok {
		t.Fatal("Get on a nonexistent path should report false")
	}
}
