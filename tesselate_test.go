package swf

import (
	"math"
	"testing"
)

func triangleArea(pts []Point, idx []uint16) float64 {
	var total float64
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := pts[idx[i]], pts[idx[i+1]], pts[idx[i+2]]
		total += math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
	}
	return total
}

func TestTriangulateSquarePreservesArea(t *testing.T) {
	square := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	idx := triangulate(square)
	if len(idx) != 6 {
		t.Fatalf("triangulate(square) produced %d indices, want 6 (2 triangles)", len(idx))
	}
	if got := triangleArea(square, idx); math.Abs(got-100) > 1e-6 {
		t.Fatalf("triangulated area = %v, want 100", got)
	}
}

func TestTriangulateHandlesClockwiseWinding(t *testing.T) {
	clockwise := []Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	idx := triangulate(clockwise)
	if got := triangleArea(clockwise, idx); math.Abs(got-100) > 1e-6 {
		t.Fatalf("triangulated area (cw winding) = %v, want 100", got)
	}
}

func TestMergeSegmentsClosesOpenRuns(t *testing.T) {
	segs := []segment{
		{points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{points: []Point{{X: 10, Y: 0}, {X: 10, Y: 10}}},
		{points: []Point{{X: 10, Y: 10}, {X: 0, Y: 10}}},
		{points: []Point{{X: 0, Y: 10}, {X: 0, Y: 0}}},
	}
	contours := mergeSegments(segs)
	if len(contours) != 1 {
		t.Fatalf("mergeSegments produced %d contours, want 1 closed contour", len(contours))
	}
	if len(contours[0]) != 4 {
		t.Fatalf("closed contour has %d points, want 4 (closing duplicate dropped)", len(contours[0]))
	}
}

func TestSignedAreaSignMatchesWinding(t *testing.T) {
	ccw := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	cw := reversed(ccw)
	if signedArea(ccw) <= 0 {
		t.Fatal("counter-clockwise polygon should have positive signed area")
	}
	if signedArea(cw) >= 0 {
		t.Fatal("clockwise polygon should have negative signed area")
	}
}

func TestFlattenEdgeStraightLineProducesNoExtraPoints(t *testing.T) {
	start := Point{X: 0, Y: 0}
	anchor := Point{X: 10, Y: 0}
	control := Point{X: 5, Y: 0} // collinear: no curvature to flatten
	var out []Point
	flattenEdge(start, control, anchor, curveFlattenTolerancePixels, 0, &out)
	if len(out) != 1 || out[0] != anchor {
		t.Fatalf("flattenEdge on a collinear control point should emit just the anchor, got %v", out)
	}
}
