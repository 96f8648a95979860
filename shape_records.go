// shape_records.go - raw path, fill and line style records shared by DefineShape and DefineMorphShape

package swf

// FillStyleKind discriminates the tagged fill-style variant.
type FillStyleKind int

const (
	FillSolid FillStyleKind = iota
	FillLinearGradient
	FillRadialGradient
	FillFocalGradient
	FillImage
)

// GradientControlPoint is one ratio/color stop of a gradient fill.
type GradientControlPoint struct {
	Ratio uint8
	Color Color
}

// FillStyle is a tagged variant over solid-color, gradient-texture and
// image-texture fills, per the shape definition's data model.
type FillStyle struct {
	Kind FillStyleKind

	// FillSolid
	Color Color

	// FillLinearGradient / FillRadialGradient / FillFocalGradient
	GradientMatrix Matrix // coordinate matrix, twip-rect [-16384,16384]^2 reference
	Controls       []GradientControlPoint
	FocalPoint     float64

	// FillImage
	BitmapCharID uint16
	ImageMatrix  Matrix // coordinate matrix, image's own pixel rect reference
	Clipped      bool
	Smoothed     bool
}

// gradientReferenceRect is the fixed coordinate square gradients map from.
var gradientReferenceRect = Rect{XMin: -16384, XMax: 16384, YMin: -16384, YMax: 16384}

// LineStyle is read for wire fidelity; the core tesselator does not stroke
// lines (an explicit simplification, see DESIGN.md).
type LineStyle struct {
	Width float64
	Color Color
}

// ShapeEdge is either a straight (anchor-only) or quadratic (control+anchor) segment.
type ShapeEdge struct {
	Control, Anchor Point
}

// IsStraight reports whether the edge has no distinct control point.
func (e ShapeEdge) IsStraight() bool { return e.Control == e.Anchor }

// Point is a plain 2D point, used both in twips (pre-tesselation) and pixels (post).
type Point struct{ X, Y float64 }

// ShapePath is one run of edges sharing a (left-fill, right-fill, line) style
// triple. Style indices keep the wire's 1-based convention, counted across
// the shape's whole style lists (initial arrays, then any NewStyles
// additions), with 0 meaning "no style"; they are not folded to 0-based.
type ShapePath struct {
	LeftFill, RightFill, Line int
	Start                     Point
	Edges                     []ShapeEdge
}

// ShapeRecordSet is the fully parsed, still-untesselated body of a
// DefineShape/DefineMorphShape record: its style lists and path list.
type ShapeRecordSet struct {
	Bounds      Rect
	FillStyles  []FillStyle
	LineStyles  []LineStyle
	Paths       []ShapePath
}

// shape style-change record bits
const (
	shapeMoveTo      = 0x01
	shapeFillStyle0  = 0x02
	shapeFillStyle1  = 0x04
	shapeLineStyle   = 0x08
	shapeNewStyles   = 0x10
)

// readFillStyleArray reads a count-prefixed array of fill styles. tag
// selects the RGB vs RGBA / gradient-alpha wire variant.
func readFillStyleArray(r *BitReader, tag uint16) ([]FillStyle, error) {
	count, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	n := int(count)
	if count == 0xFF {
		c16, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		n = int(c16)
	}
	out := make([]FillStyle, 0, n)
	for i := 0; i < n; i++ {
		fs, err := readFillStyle(r, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, nil
}

func readFillStyle(r *BitReader, tag uint16) (FillStyle, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return FillStyle{}, err
	}
	hasAlphaColors := tag == TagDefineShape3 || tag == TagDefineShape4
	switch kind {
	case 0x00:
		var c Color
		if hasAlphaColors {
			c, err = r.ReadRGBA()
		} else {
			c, err = r.ReadRGB()
		}
		return FillStyle{Kind: FillSolid, Color: c}, err
	case 0x10, 0x12, 0x13:
		m, err := r.ReadMatrix()
		if err != nil {
			return FillStyle{}, err
		}
		controls, err := readGradientControls(r, hasAlphaColors)
		if err != nil {
			return FillStyle{}, err
		}
		fs := FillStyle{GradientMatrix: m, Controls: controls}
		switch kind {
		case 0x10:
			fs.Kind = FillLinearGradient
		case 0x12:
			fs.Kind = FillRadialGradient
		case 0x13:
			fs.Kind = FillFocalGradient
			focal, err := r.ReadFixed16()
			if err != nil {
				return FillStyle{}, err
			}
			fs.FocalPoint = focal
		}
		return fs, nil
	case 0x40, 0x41, 0x42, 0x43:
		charID, err := r.ReadU16()
		if err != nil {
			return FillStyle{}, err
		}
		m, err := r.ReadMatrix()
		if err != nil {
			return FillStyle{}, err
		}
		return FillStyle{
			Kind:         FillImage,
			BitmapCharID: charID,
			ImageMatrix:  m,
			Clipped:      kind == 0x41 || kind == 0x43,
			Smoothed:     kind == 0x40 || kind == 0x41,
		}, nil
	default:
		return FillStyle{}, newErr(MalformedBinary, "readFillStyle", "unknown fill style kind")
	}
}

func readGradientControls(r *BitReader, hasAlphaColors bool) ([]GradientControlPoint, error) {
	// spread(2) + interpolation(2) are parsed and discarded; the core
	// does not implement gradient spread/interpolation rendering modes.
	if _, err := r.ReadBitsU32(2); err != nil {
		return nil, err
	}
	if _, err := r.ReadBitsU32(2); err != nil {
		return nil, err
	}
	count, err := r.ReadBitsU32(4)
	if err != nil {
		return nil, err
	}
	out := make([]GradientControlPoint, 0, count)
	for i := uint32(0); i < count; i++ {
		ratio, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		var c Color
		if hasAlphaColors {
			c, err = r.ReadRGBA()
		} else {
			c, err = r.ReadRGB()
		}
		if err != nil {
			return nil, err
		}
		out = append(out, GradientControlPoint{Ratio: ratio, Color: c})
	}
	return out, nil
}

func readLineStyleArray(r *BitReader, tag uint16) ([]LineStyle, error) {
	count, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	n := int(count)
	if count == 0xFF {
		c16, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		n = int(c16)
	}
	out := make([]LineStyle, 0, n)
	for i := 0; i < n; i++ {
		width, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		ls := LineStyle{Width: TwipsToPixels(int32(width))}
		if tag == TagDefineShape4 {
			if _, err := r.ReadBitsU32(2); err != nil { // start cap
				return nil, err
			}
			join, err := r.ReadBitsU32(2)
			if err != nil {
				return nil, err
			}
			hasFill, err := r.ReadBitsU32(1)
			if err != nil {
				return nil, err
			}
			if _, err := r.ReadBitsU32(1); err != nil { // no h-scale
				return nil, err
			}
			if _, err := r.ReadBitsU32(1); err != nil { // no v-scale
				return nil, err
			}
			if _, err := r.ReadBitsU32(1); err != nil { // pixel hinting
				return nil, err
			}
			if _, err := r.ReadBitsU32(5); err != nil { // reserved
				return nil, err
			}
			if _, err := r.ReadBitsU32(1); err != nil { // no close
				return nil, err
			}
			endCapJoin, err := r.ReadBitsU32(2) // end cap
			if err != nil {
				return nil, err
			}
			_ = endCapJoin
			if join == 2 { // miter join: a 16-bit miter limit factor follows
				if _, err := r.ReadU16(); err != nil {
					return nil, err
				}
			}
			if hasFill != 0 {
				if _, err := readFillStyle(r, tag); err != nil {
					return nil, err
				}
			} else {
				c, err := r.ReadRGBA()
				if err != nil {
					return nil, err
				}
				ls.Color = c
			}
		} else if tag == TagDefineShape3 {
			c, err := r.ReadRGBA()
			if err != nil {
				return nil, err
			}
			ls.Color = c
		} else {
			c, err := r.ReadRGB()
			if err != nil {
				return nil, err
			}
			ls.Color = c
		}
		out = append(out, ls)
	}
	return out, nil
}

// readShapeRecordSet reads a DEFINESHAPE-family body (after the character
// id and bounds rect(s) have already been consumed by the caller, since
// DefineMorphShape wraps two of these with its own outer framing).
func readShapeRecordSet(r *BitReader, tag uint16) (*ShapeRecordSet, error) {
	fillStyles, err := readFillStyleArray(r, tag)
	if err != nil {
		return nil, err
	}
	lineStyles, err := readLineStyleArray(r, tag)
	if err != nil {
		return nil, err
	}
	paths, extraFills, extraLines, err := readShapeEdgeRecords(r, tag, len(fillStyles), len(lineStyles))
	if err != nil {
		return nil, err
	}
	fillStyles = append(fillStyles, extraFills...)
	lineStyles = append(lineStyles, extraLines...)
	return &ShapeRecordSet{FillStyles: fillStyles, LineStyles: lineStyles, Paths: paths}, nil
}

// readShapeEdgeRecords reads the style-bit-width header and edge/style-change
// record stream shared by every DEFINESHAPE body and by a morph shape's
// separate start/end edge blocks (which carry this same structure without
// a preceding style array, since morph fill/line styles are declared once
// and shared by both endpoints). A mid-record style-change record (rare;
// used once a shape exceeds 255 styles) appends to the returned extra
// style slices rather than the caller's original arrays, since this
// function doesn't own them.
func readShapeEdgeRecords(r *BitReader, tag uint16, fillStyleCount, lineStyleCount int) ([]ShapePath, []FillStyle, []LineStyle, error) {
	fillBits, err := r.ReadBitsU32(4)
	if err != nil {
		return nil, nil, nil, err
	}
	lineBits, err := r.ReadBitsU32(4)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		paths                    []ShapePath
		extraFills               []FillStyle
		extraLines               []LineStyle
		cursor                   Point
		current                  ShapePath
		fillBase, lineBase       = 0, 0
	)

	pushPath := func(reset bool) {
		if len(current.Edges) != 0 {
			paths = append(paths, current)
		}
		current = ShapePath{Start: cursor, LeftFill: current.LeftFill, RightFill: current.RightFill, Line: current.Line}
		if reset {
			current.LeftFill, current.RightFill, current.Line = 0, 0, 0
		}
	}

	for {
		isEdge, err := r.ReadBitsU32(1)
		if err != nil {
			return nil, nil, nil, err
		}
		if isEdge == 0 {
			mask, err := r.ReadBitsU32(5)
			if err != nil {
				return nil, nil, nil, err
			}
			if mask == 0 {
				pushPath(false)
				break
			}
			if mask&shapeMoveTo != 0 {
				bits, err := r.ReadBitsU32(5)
				if err != nil {
					return nil, nil, nil, err
				}
				x, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				y, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				cursor = Point{X: float64(x), Y: float64(y)}
				pushPath(true)
			}
			if mask&shapeFillStyle0 != 0 && fillBits > 0 {
				pushPath(false)
				v, err := r.ReadBitsU32(int(fillBits))
				if err != nil {
					return nil, nil, nil, err
				}
				current.LeftFill = int(v)
				if current.LeftFill > 0 {
					current.LeftFill += fillBase
				}
			}
			if mask&shapeFillStyle1 != 0 && fillBits > 0 {
				pushPath(false)
				v, err := r.ReadBitsU32(int(fillBits))
				if err != nil {
					return nil, nil, nil, err
				}
				current.RightFill = int(v)
				if current.RightFill > 0 {
					current.RightFill += fillBase
				}
			}
			if mask&shapeLineStyle != 0 && lineBits > 0 {
				pushPath(false)
				v, err := r.ReadBitsU32(int(lineBits))
				if err != nil {
					return nil, nil, nil, err
				}
				current.Line = int(v)
				if current.Line > 0 {
					current.Line += lineBase
				}
			}
			if mask&shapeNewStyles != 0 {
				pushPath(false)
				fillBase = fillStyleCount + len(extraFills)
				lineBase = lineStyleCount + len(extraLines)
				more, err := readFillStyleArray(r, tag)
				if err != nil {
					return nil, nil, nil, err
				}
				extraFills = append(extraFills, more...)
				moreLines, err := readLineStyleArray(r, tag)
				if err != nil {
					return nil, nil, nil, err
				}
				extraLines = append(extraLines, moreLines...)
				fillBits, err = r.ReadBitsU32(4)
				if err != nil {
					return nil, nil, nil, err
				}
				lineBits, err = r.ReadBitsU32(4)
				if err != nil {
					return nil, nil, nil, err
				}
			}
		} else {
			isStraight, err := r.ReadBitsU32(1)
			if err != nil {
				return nil, nil, nil, err
			}
			if isStraight != 0 {
				bits, err := r.ReadBitsU32(4)
				if err != nil {
					return nil, nil, nil, err
				}
				bits += 2
				general, err := r.ReadBitsU32(1)
				if err != nil {
					return nil, nil, nil, err
				}
				var dx, dy float64
				if general != 0 {
					x, err := r.ReadBitsI32(int(bits))
					if err != nil {
						return nil, nil, nil, err
					}
					y, err := r.ReadBitsI32(int(bits))
					if err != nil {
						return nil, nil, nil, err
					}
					dx, dy = float64(x), float64(y)
				} else {
					vertical, err := r.ReadBitsU32(1)
					if err != nil {
						return nil, nil, nil, err
					}
					v, err := r.ReadBitsI32(int(bits))
					if err != nil {
						return nil, nil, nil, err
					}
					if vertical != 0 {
						dy = float64(v)
					} else {
						dx = float64(v)
					}
				}
				cursor = Point{X: cursor.X + dx, Y: cursor.Y + dy}
				current.Edges = append(current.Edges, ShapeEdge{Control: cursor, Anchor: cursor})
			} else {
				bits, err := r.ReadBitsU32(4)
				if err != nil {
					return nil, nil, nil, err
				}
				bits += 2
				cx, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				cy, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				ax, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				ay, err := r.ReadBitsI32(int(bits))
				if err != nil {
					return nil, nil, nil, err
				}
				control := Point{X: cursor.X + float64(cx), Y: cursor.Y + float64(cy)}
				anchor := Point{X: control.X + float64(ax), Y: control.Y + float64(ay)}
				current.Edges = append(current.Edges, ShapeEdge{Control: control, Anchor: anchor})
				cursor = anchor
			}
		}
	}

	return paths, extraFills, extraLines, nil
}
