// tesselate.go - curve flattening, contour assembly and polygon tesselation
//
// No library in the reference corpus offers a Go binding for a general
// polygon tesselator (the libtess2 C library the format's original
// implementation used has no such binding here); triangulation below is a
// hand-rolled ear-clip over contours pre-merged by winding, which is the one
// deliberate standard-library-only exception in this package (see DESIGN.md).

package swf

import "math"

const curveFlattenTolerancePixels = 0.1

// TesselatedContour is one fill style's flattened, triangulated geometry.
type TesselatedContour struct {
	StyleIndex int
	Vertices   []Point // shape-space (pixel) positions
	Texcoords  []Point // normalized [0,1] texture coordinates, one per vertex
	Indices    []uint16
}

// TesselatedShape is the renderable output of one DefineShape-family record.
type TesselatedShape struct {
	Bounds    Rect
	Fills     []TesselatedContour
	fillStyle []FillStyle // retained for texcoord/material lookup by StyleIndex-1
}

// flattenEdge recursively subdivides a quadratic edge until the control
// point deviates from the anchor-to-anchor chord by less than tolerance,
// following the same midpoint/control-distance test as the format's
// original curve flattener.
func flattenEdge(start, control, anchor Point, tolerance float64, depth int, out *[]Point) {
	if depth > 16 {
		*out = append(*out, anchor)
		return
	}
	mid := Point{X: (start.X + anchor.X) / 2, Y: (start.Y + anchor.Y) / 2}
	dx, dy := control.X-mid.X, control.Y-mid.Y
	dist := math.Abs(dx) + math.Abs(dy)
	if dist < tolerance {
		*out = append(*out, anchor)
		return
	}
	midStartControl := Point{X: (start.X + control.X) / 2, Y: (start.Y + control.Y) / 2}
	midControlAnchor := Point{X: (control.X + anchor.X) / 2, Y: (control.Y + anchor.Y) / 2}
	midCurve := Point{X: (midStartControl.X + midControlAnchor.X) / 2, Y: (midStartControl.Y + midControlAnchor.Y) / 2}
	flattenEdge(start, midStartControl, midCurve, tolerance, depth+1, out)
	flattenEdge(midCurve, midControlAnchor, anchor, tolerance, depth+1, out)
}

// polylineFromPath flattens every edge of a path into a point sequence in
// pixel units, including the path's own start point.
func polylineFromPath(p ShapePath) []Point {
	cursor := Point{X: TwipsToPixels(int32(p.Start.X)), Y: TwipsToPixels(int32(p.Start.Y))}
	pts := []Point{cursor}
	for _, e := range p.Edges {
		control := Point{X: TwipsToPixels(int32(e.Control.X)), Y: TwipsToPixels(int32(e.Control.Y))}
		anchor := Point{X: TwipsToPixels(int32(e.Anchor.X)), Y: TwipsToPixels(int32(e.Anchor.Y))}
		if e.IsStraight() {
			pts = append(pts, anchor)
			cursor = anchor
			continue
		}
		var flattened []Point
		flattenEdge(cursor, control, anchor, curveFlattenTolerancePixels, 0, &flattened)
		pts = append(pts, flattened...)
		cursor = anchor
	}
	return pts
}

// segment is a directed run of points belonging to one style, oriented so
// that the filled region lies to its left (matching RightFill's winding;
// LeftFill segments are reversed before merging).
type segment struct {
	points []Point
}

func reversed(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// collectSegments gathers every path segment that references styleIndex
// (1-based, matching the wire encoding) on either fill side, orienting
// right-fill runs forward and left-fill runs reversed so the filled area is
// consistently to the segment's left.
func collectSegments(paths []ShapePath, styleIndex int) []segment {
	var segs []segment
	for _, p := range paths {
		pts := polylineFromPath(p)
		if len(pts) < 2 {
			continue
		}
		if p.RightFill == styleIndex {
			segs = append(segs, segment{points: pts})
		}
		if p.LeftFill == styleIndex {
			segs = append(segs, segment{points: reversed(pts)})
		}
	}
	return segs
}

const contourJoinEpsilon = 1e-3

func pointsEqual(a, b Point) bool {
	return math.Abs(a.X-b.X) < contourJoinEpsilon && math.Abs(a.Y-b.Y) < contourJoinEpsilon
}

// mergeSegments stitches open segments end-to-start into closed contours by
// endpoint matching, the same join rule the format's shape records rely on
// since edges within one style are only guaranteed connected, not ordered.
func mergeSegments(segs []segment) [][]Point {
	remaining := make([]segment, len(segs))
	copy(remaining, segs)

	var contours [][]Point
	for len(remaining) > 0 {
		current := remaining[0]
		remaining = remaining[1:]
		chain := append([]Point(nil), current.points...)

		for {
			tail := chain[len(chain)-1]
			if pointsEqual(tail, chain[0]) {
				break
			}
			found := -1
			reverse := false
			for i, s := range remaining {
				if len(s.points) == 0 {
					continue
				}
				if pointsEqual(tail, s.points[0]) {
					found, reverse = i, false
					break
				}
				if pointsEqual(tail, s.points[len(s.points)-1]) {
					found, reverse = i, true
					break
				}
			}
			if found == -1 {
				break // unclosed contour: malformed input, close it as-is
			}
			next := remaining[found].points
			if reverse {
				next = reversed(next)
			}
			chain = append(chain, next[1:]...)
			remaining = append(remaining[:found], remaining[found+1:]...)
		}
		if len(chain) >= 4 {
			contours = append(contours, chain[:len(chain)-1]) // drop closing duplicate
		}
	}
	return contours
}

func signedArea(pts []Point) float64 {
	var area float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return area / 2
}

func pointInPolygon(pt Point, poly []Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) &&
			pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// bridgeHolesIntoOuter combines a list of contours (mixed winding) into a
// single simple polygon per connected outer region by cutting a degenerate
// channel from each hole to its closest outer vertex, the standard
// ear-clip-with-holes technique.
func bridgeHolesIntoOuter(contours [][]Point) [][]Point {
	if len(contours) <= 1 {
		return contours
	}
	type ring struct {
		pts    []Point
		area   float64
		isHole bool
	}
	rings := make([]ring, len(contours))
	for i, c := range contours {
		a := signedArea(c)
		rings[i] = ring{pts: c, area: a}
	}
	// Outer rings wind one way, holes the other; classify by containment
	// inside the largest-by-area ring rather than assuming a fixed sign,
	// since upstream orientation depends on which side carried the fill.
	outerIdx := 0
	for i, r := range rings {
		if math.Abs(r.area) > math.Abs(rings[outerIdx].area) {
			outerIdx = i
		}
	}
	var holes, others [][]Point
	for i, r := range rings {
		if i == outerIdx {
			continue
		}
		if len(r.pts) > 0 && pointInPolygon(r.pts[0], rings[outerIdx].pts) {
			holes = append(holes, r.pts)
		} else {
			others = append(others, r.pts) // disjoint region: kept as its own simple polygon, holes not bridged into it
		}
	}
	outer := rings[outerIdx].pts
	if len(holes) == 0 {
		return contours
	}
	combined := append([]Point{}, outer...)
	for _, hole := range holes {
		bestOuter, bestHole, bestDist := 0, 0, math.MaxFloat64
		for oi, op := range combined {
			for hi, hp := range hole {
				d := (op.X-hp.X)*(op.X-hp.X) + (op.Y-hp.Y)*(op.Y-hp.Y)
				if d < bestDist {
					bestDist, bestOuter, bestHole = d, oi, hi
				}
			}
		}
		rotatedHole := append(append([]Point{}, hole[bestHole:]...), hole[:bestHole+1]...)
		var next []Point
		next = append(next, combined[:bestOuter+1]...)
		next = append(next, rotatedHole...)
		next = append(next, combined[bestOuter:]...)
		combined = next
	}
	return append([][]Point{combined}, others...)
}

// triangulate ear-clips a simple (possibly bridge-degenerate) polygon into
// a list of triangle indices into pts, three per triangle.
func triangulate(pts []Point) []uint16 {
	n := len(pts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedArea(pts) < 0 {
		for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
			idx[l], idx[r] = idx[r], idx[l]
		}
	}

	isConvex := func(a, b, c Point) bool {
		return (b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X) > 0
	}
	inTriangle := func(p, a, b, c Point) bool {
		d1 := (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
		d2 := (p.X-c.X)*(b.Y-c.Y) - (b.X-c.X)*(p.Y-c.Y)
		d3 := (p.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(p.Y-a.Y)
		hasNeg := d1 < 0 || d2 < 0 || d3 < 0
		hasPos := d1 > 0 || d2 > 0 || d3 > 0
		return !(hasNeg && hasPos)
	}

	var out []uint16
	guard := 0
	for len(idx) > 3 && guard < n*n+8 {
		guard++
		earFound := false
		for i := range idx {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := pts[prev], pts[cur], pts[next]
			if !isConvex(a, b, c) {
				continue
			}
			clipped := true
			for _, j := range idx {
				if j == prev || j == cur || j == next {
					continue
				}
				if inTriangle(pts[j], a, b, c) {
					clipped = false
					break
				}
			}
			if !clipped {
				continue
			}
			out = append(out, uint16(prev), uint16(cur), uint16(next))
			idx = append(idx[:i], idx[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			break // degenerate input; stop rather than loop forever
		}
	}
	if len(idx) == 3 {
		out = append(out, uint16(idx[0]), uint16(idx[1]), uint16(idx[2]))
	}
	return out
}

func invert(m Matrix) Matrix {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return IdentityMatrix()
	}
	inv := 1 / det
	return Matrix{
		A:  m.D * inv,
		B:  -m.B * inv,
		C:  -m.C * inv,
		D:  m.A * inv,
		TX: (m.C*m.TY - m.D*m.TX) * inv,
		TY: (m.B*m.TX - m.A*m.TY) * inv,
	}
}

// texcoordFor projects a shape-space point into a fill style's normalized
// [0,1] texture space; solid fills don't sample a texture and return the
// zero point, matching the format's own unused-coordinate convention.
func texcoordFor(fs FillStyle, p Point) Point {
	switch fs.Kind {
	case FillLinearGradient, FillRadialGradient, FillFocalGradient:
		inv := invert(fs.GradientMatrix)
		gx, gy := inv.Apply(p.X*twipsPerPixel, p.Y*twipsPerPixel)
		return normalizeAgainst(gradientReferenceRect, Point{X: gx, Y: gy})
	case FillImage:
		inv := invert(fs.ImageMatrix)
		ix, iy := inv.Apply(p.X, p.Y)
		return Point{X: ix, Y: iy}
	default:
		return Point{}
	}
}

func normalizeAgainst(ref Rect, p Point) Point {
	w, h := ref.Width(), ref.Height()
	if w == 0 || h == 0 {
		return Point{}
	}
	return Point{X: (p.X - ref.XMin) / w, Y: (p.Y - ref.YMin) / h}
}

// Tesselate builds the renderable triangle geometry for a parsed shape
// record: per fill style, gather and merge its bounding segments, bridge
// any holes into their enclosing contour, then ear-clip and project
// texture coordinates.
func Tesselate(shape *ShapeRecordSet) (*TesselatedShape, error) {
	styleCount := len(shape.FillStyles)
	out := &TesselatedShape{Bounds: shape.Bounds, fillStyle: shape.FillStyles}
	for styleIndex := 1; styleIndex <= styleCount; styleIndex++ {
		segs := collectSegments(shape.Paths, styleIndex)
		if len(segs) == 0 {
			continue
		}
		contours := mergeSegments(segs)
		if len(contours) == 0 {
			continue
		}
		polys := bridgeHolesIntoOuter(contours)
		fs := shape.FillStyles[styleIndex-1]

		tc := TesselatedContour{StyleIndex: styleIndex}
		base := uint16(0)
		for _, poly := range polys {
			tris := triangulate(poly)
			if tris == nil {
				continue
			}
			for _, p := range poly {
				tc.Vertices = append(tc.Vertices, p)
				tc.Texcoords = append(tc.Texcoords, texcoordFor(fs, p))
			}
			for _, t := range tris {
				tc.Indices = append(tc.Indices, t+base)
			}
			base += uint16(len(poly))
		}
		if len(tc.Indices) == 0 {
			return nil, newErr(TesselationFailure, "Tesselate", "fill style produced no triangles")
		}
		out.Fills = append(out.Fills, tc)
	}
	return out, nil
}
