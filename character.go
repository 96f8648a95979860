// character.go - the tagged character variant stored in the dictionary

package swf

// CharacterKind discriminates the Character tagged union. Per the explicit
// architectural redesign from virtual dispatch to tagged variants, callers
// switch on Kind rather than relying on dynamic dispatch.
type CharacterKind int

const (
	CharacterShape CharacterKind = iota
	CharacterMorphShape
	CharacterBitmap
	CharacterSpriteDefinition
	CharacterFont
	CharacterOther // recognized but not interpreted (text, sound, button, ...)
)

// Character is one entry of the character dictionary (component C3): an
// immutable, shared definition referenced by id from placement commands and
// from other definitions (e.g. a sprite's children, a shape's bitmap fill).
type Character struct {
	ID   uint16
	Kind CharacterKind

	Shape      *TesselatedShape
	Morph      *MorphShape
	Bitmap     *BitmapData
	SpriteDef  *SpriteDefinition
	ExportName string // set if this id was also named by ExportAssets
}

// BitmapData is a decoded bitmap character's pixel source, in a form ready
// to upload to whatever render adapter is attached; this package does not
// decode JPEG/PNG/DEFLATE itself (see platform.go's ImageDecoder and
// Inflater collaborators) but stores the decoded result here once available.
type BitmapData struct {
	Width, Height int
	RGBA          []byte // 4 bytes/pixel, row-major, premultiplied alpha
}

// SpriteDefinition is a DefineSprite's parsed body: its own frame count and
// the opaque per-frame command/action stream that a movie-clip node replays
// as it advances, mirroring the top-level movie's own timeline structure at
// one nesting level down.
type SpriteDefinition struct {
	FrameCount int
	Frames     []FrameScript
}
