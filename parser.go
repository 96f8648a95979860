// parser.go - file header and tag stream parsing (component C2)

package swf

import (
	"io"

	"go.uber.org/zap"
)

// Movie is the fully parsed, immutable result of loading one SWF file: a
// populated character dictionary plus the top-level timeline's per-frame
// scripts, ready to be driven by a display tree.
type Movie struct {
	Version         int
	FrameRect       Rect
	FrameRate       float64
	FrameCount      int
	BackgroundColor Color
	Dictionary      *Dictionary
	Frames          []FrameScript
	FrameLabels     map[string]int
	AVM2            bool // FileAttributes ActionScript3 bit; true means unsupported (see ParseFile)
}

// ParseOptions configures an individual ParseFile call; logger and inflater
// default to a no-op logger and ZlibInflater if left zero.
type ParseOptions struct {
	Logger   *zap.SugaredLogger
	Inflater Inflater
	Images   ImageDecoder
}

func (o *ParseOptions) fillDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Inflater == nil {
		o.Inflater = ZlibInflater{}
	}
	if o.Images == nil {
		o.Images = StdImageDecoder{}
	}
}

// ParseFile parses a complete SWF file body (signature through the final
// End tag) into a Movie.
func ParseFile(data []byte, opts ParseOptions) (*Movie, error) {
	opts.fillDefaults()
	if len(data) < 8 {
		return nil, newErr(MalformedBinary, "ParseFile", "file shorter than header")
	}
	sig := [3]byte{data[0], data[1], data[2]}
	version := int(data[3])
	var body []byte
	switch sig {
	case [3]byte{'F', 'W', 'S'}:
		body = data[8:]
	case [3]byte{'C', 'W', 'S'}:
		inflated, err := opts.Inflater.Inflate(byteReader(data[8:]))
		if err != nil {
			return nil, err
		}
		all, err := io.ReadAll(inflated)
		if err != nil {
			return nil, wrapErr(MalformedBinary, "ParseFile", "inflate failed", err)
		}
		body = all
	case [3]byte{'Z', 'W', 'S'}:
		return nil, newErr(MalformedBinary, "ParseFile", "LZMA-compressed SWF (version 13+) is not supported")
	default:
		return nil, newErr(MalformedBinary, "ParseFile", "bad file signature")
	}

	r := NewBitReader(body)
	frameRect, err := r.ReadRect()
	if err != nil {
		return nil, err
	}
	frameRate, err := r.ReadFixed16()
	if err != nil {
		return nil, err
	}
	frameCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	m := &Movie{
		Version:     version,
		FrameRect:   frameRect,
		FrameRate:   frameRate,
		FrameCount:  int(frameCount),
		Dictionary:  NewDictionary(),
		FrameLabels: make(map[string]int),
	}

	pc := &parseContext{dict: m.Dictionary, logger: opts.Logger, images: opts.Images}
	frames, err := pc.readTagStream(r)
	if err != nil {
		return nil, err
	}
	m.Frames = frames
	if pc.hasBackground {
		m.BackgroundColor = pc.background
	}
	for i, f := range frames {
		if f.Label != "" {
			m.FrameLabels[f.Label] = i
		}
	}
	if pc.avm2 {
		m.AVM2 = true
		return nil, newErr(UnsupportedAVM2, "ParseFile", "file declares AVM2/ActionScript 3, unsupported")
	}
	return m, nil
}

func byteReader(b []byte) *byteReaderImpl { return &byteReaderImpl{b: b} }

type byteReaderImpl struct {
	b   []byte
	pos int
}

func (r *byteReaderImpl) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

// parseContext carries parse-time state that is shared across the
// top-level timeline and every nested DefineSprite body: the dictionary
// being built, the logger diagnostics flow through, and whether a
// FileAttributes tag has flagged AVM2.
type parseContext struct {
	dict       *Dictionary
	logger     *zap.SugaredLogger
	images     ImageDecoder
	avm2       bool
	background Color
	hasBackground bool
}

// readTagStream reads tags until an End tag (or the stream is exhausted),
// building the dictionary as a side effect and returning one FrameScript
// per ShowFrame boundary. This same method parses both the top-level
// timeline and a DefineSprite's nested tag stream, since both follow the
// identical tag-stream-terminated-by-End shape.
func (pc *parseContext) readTagStream(r *BitReader) ([]FrameScript, error) {
	var frames []FrameScript
	var current FrameScript

	for {
		header, err := ReadTagHeader(r)
		if err != nil {
			return nil, err
		}
		if header.Code == TagEnd {
			break
		}
		bodyStart := r.Position()
		bodyEnd := bodyStart + header.Length

		switch header.Code {
		case TagShowFrame:
			frames = append(frames, current)
			current = FrameScript{}

		case TagDefineShape, TagDefineShape2, TagDefineShape3, TagDefineShape4:
			if err := pc.defineShape(r, header); err != nil {
				return nil, err
			}

		case TagDefineMorphShape, TagDefineMorphShape2:
			if err := pc.defineMorphShape(r, header); err != nil {
				return nil, err
			}

		case TagDefineSprite:
			if err := pc.defineSprite(r, header); err != nil {
				return nil, err
			}

		case TagPlaceObject:
			cmd, err := readPlaceObject(r, header.Length)
			if err != nil {
				return nil, err
			}
			current.Commands = append(current.Commands, cmd)

		case TagPlaceObject2, TagPlaceObject3:
			cmd, err := readPlaceObject2(r, header.Code)
			if err != nil {
				return nil, err
			}
			current.Commands = append(current.Commands, cmd)

		case TagRemoveObject:
			cmd, err := readRemoveObject(r)
			if err != nil {
				return nil, err
			}
			current.Commands = append(current.Commands, cmd)

		case TagRemoveObject2:
			cmd, err := readRemoveObject2(r)
			if err != nil {
				return nil, err
			}
			current.Commands = append(current.Commands, cmd)

		case TagDoAction:
			bytes, err := r.Extract(header.Length)
			if err != nil {
				return nil, err
			}
			current.Actions = append(current.Actions, ActionRecord{Bytes: append([]byte(nil), bytes...)})

		case TagFrameLabel:
			name, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			current.Label = name

		case TagDefineSceneAndFrameLabelData:
			label, err := pc.readSceneAndFrameLabelData(r)
			if err == nil && label != "" {
				current.Label = label
			}

		case TagExportAssets:
			if err := pc.readExportAssets(r); err != nil {
				return nil, err
			}

		case TagFileAttributes:
			flags, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			if flags&(1<<3) != 0 {
				pc.avm2 = true
			}

		case TagSetBackgroundColor:
			c, err := r.ReadRGB()
			if err != nil {
				return nil, err
			}
			pc.background, pc.hasBackground = c, true
		}

		r.SetPosition(bodyEnd)
	}

	if len(current.Commands) != 0 || len(current.Actions) != 0 || current.Label != "" {
		frames = append(frames, current)
	}
	return frames, nil
}

func (pc *parseContext) defineShape(r *BitReader, header TagHeader) error {
	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	bounds, err := r.ReadRect()
	if err != nil {
		return err
	}
	if header.Code == TagDefineShape4 {
		if _, err := r.ReadRect(); err != nil { // edge bounds
			return err
		}
		if _, err := r.ReadBitsU32(6); err != nil {
			return err
		}
		if _, err := r.ReadBitsU32(1); err != nil {
			return err
		}
		if _, err := r.ReadBitsU32(1); err != nil {
			return err
		}
	}
	set, err := readShapeRecordSet(r, header.Code)
	if err != nil {
		return err
	}
	set.Bounds = bounds
	tess, err := Tesselate(set)
	if err != nil {
		if IsKind(err, TesselationFailure) {
			pc.logger.Warnw("tesselation failure, shape dropped", "charID", id, "error", err)
			return nil
		}
		return err
	}
	return pc.dict.Define(id, &Character{Kind: CharacterShape, Shape: tess})
}

func (pc *parseContext) defineMorphShape(r *BitReader, header TagHeader) error {
	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	morph, err := readMorphShape(r, header.Code)
	if err != nil {
		if IsKind(err, TesselationFailure) {
			pc.logger.Warnw("tesselation failure, morph shape dropped", "charID", id, "error", err)
			return nil
		}
		return err
	}
	return pc.dict.Define(id, &Character{Kind: CharacterMorphShape, Morph: morph})
}

func (pc *parseContext) defineSprite(r *BitReader, header TagHeader) error {
	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	frameCount, err := r.ReadU16()
	if err != nil {
		return err
	}
	frames, err := pc.readTagStream(r)
	if err != nil {
		return err
	}
	return pc.dict.Define(id, &Character{
		Kind:      CharacterSpriteDefinition,
		SpriteDef: &SpriteDefinition{FrameCount: int(frameCount), Frames: frames},
	})
}

func (pc *parseContext) readExportAssets(r *BitReader) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		id, err := r.ReadU16()
		if err != nil {
			return err
		}
		name, err := r.ReadString()
		if err != nil {
			return err
		}
		pc.dict.BindExportName(name, id)
	}
	return nil
}

// readSceneAndFrameLabelData reads tag 86's scene table and frame-label
// table; only the frame-label table feeds FrameLabel (the scene table
// names whole frame ranges, a navigation feature this player does not
// otherwise surface), returning the label for frame 0 if present so the
// caller can still route it through FrameScript.Label the same way a
// legacy FrameLabel tag would.
func (pc *parseContext) readSceneAndFrameLabelData(r *BitReader) (string, error) {
	sceneCount, err := r.ReadEncodedU32()
	if err != nil {
		return "", err
	}
	for i := uint32(0); i < sceneCount; i++ {
		if _, err := r.ReadEncodedU32(); err != nil {
			return "", err
		}
		if _, err := r.ReadString(); err != nil {
			return "", err
		}
	}
	labelCount, err := r.ReadEncodedU32()
	if err != nil {
		return "", err
	}
	var first string
	for i := uint32(0); i < labelCount; i++ {
		frameNum, err := r.ReadEncodedU32()
		if err != nil {
			return "", err
		}
		name, err := r.ReadString()
		if err != nil {
			return "", err
		}
		if i == 0 && frameNum == 0 {
			first = name
		}
	}
	return first, nil
}
