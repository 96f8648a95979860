// geometry.go - value types for rectangles, colors, matrices and color transforms

package swf

import "math"

// Rect is an axis-aligned bounding box in pixel units.
type Rect struct {
	XMin, XMax, YMin, YMax float64
}

// Width returns the rectangle's width.
func (r Rect) Width() float64 { return r.XMax - r.XMin }

// Height returns the rectangle's height.
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Color is a non-premultiplied 8-bit-per-channel RGBA color.
type Color struct {
	R, G, B, A uint8
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ColorLerp blends between from and to at ratio in [0,1].
func ColorLerp(from, to Color, ratio float64) Color {
	return Color{
		R: clamp255(float64(from.R) + (float64(to.R)-float64(from.R))*ratio),
		G: clamp255(float64(from.G) + (float64(to.G)-float64(from.G))*ratio),
		B: clamp255(float64(from.B) + (float64(to.B)-float64(from.B))*ratio),
		A: clamp255(float64(from.A) + (float64(to.A)-float64(from.A))*ratio),
	}
}

// Matrix is a standard 2x3 affine transform:
//
//	x' = A*x + C*y + TX
//	y' = B*x + D*y + TY
type Matrix struct {
	A, B, C, D, TX, TY float64
}

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return Matrix{A: 1, D: 1}
}

// Apply transforms a point by the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.TX, m.B*x + m.D*y + m.TY
}

// Multiply composes outer and inner so that the result applied to a point p
// equals outer.Apply(inner.Apply(p)) - i.e. child-into-parent when inner is
// a child's local matrix and outer is the parent's accumulated matrix.
func Multiply(outer, inner Matrix) Matrix {
	return Matrix{
		A:  outer.A*inner.A + outer.C*inner.B,
		C:  outer.A*inner.C + outer.C*inner.D,
		B:  outer.B*inner.A + outer.D*inner.B,
		D:  outer.B*inner.C + outer.D*inner.D,
		TX: outer.A*inner.TX + outer.C*inner.TY + outer.TX,
		TY: outer.B*inner.TX + outer.D*inner.TY + outer.TY,
	}
}

// MatrixLerp interpolates each component linearly, clamping ratio to [0,1].
func MatrixLerp(from, to Matrix, ratio float64) Matrix {
	ratio = math.Max(0, math.Min(1, ratio))
	lerp := func(a, b float64) float64 { return a + (b-a)*ratio }
	return Matrix{
		A:  lerp(from.A, to.A),
		B:  lerp(from.B, to.B),
		C:  lerp(from.C, to.C),
		D:  lerp(from.D, to.D),
		TX: lerp(from.TX, to.TX),
		TY: lerp(from.TY, to.TY),
	}
}

// ColorTransform is a per-channel multiply-then-add transform applied as
// out = clamp(mult*in + add).
type ColorTransform struct {
	RMul, GMul, BMul, AMul float64
	RAdd, GAdd, BAdd, AAdd float64
}

// IdentityColorTransform returns the transform that leaves color unchanged.
func IdentityColorTransform() ColorTransform {
	return ColorTransform{RMul: 1, GMul: 1, BMul: 1, AMul: 1}
}

// ComposeColorTransform returns the transform equivalent to applying inner then outer:
// ComposeColorTransform(outer, inner).Apply(c) == outer.Apply(inner.Apply(c)).
func ComposeColorTransform(outer, inner ColorTransform) ColorTransform {
	return ColorTransform{
		RMul: outer.RMul * inner.RMul,
		GMul: outer.GMul * inner.GMul,
		BMul: outer.BMul * inner.BMul,
		AMul: outer.AMul * inner.AMul,
		RAdd: outer.RMul*inner.RAdd + outer.RAdd,
		GAdd: outer.GMul*inner.GAdd + outer.GAdd,
		BAdd: outer.BMul*inner.BAdd + outer.BAdd,
		AAdd: outer.AMul*inner.AAdd + outer.AAdd,
	}
}

// Apply applies the color transform to c, clamping each channel to [0,255].
func (ct ColorTransform) Apply(c Color) Color {
	return Color{
		R: clamp255(ct.RMul*float64(c.R) + ct.RAdd),
		G: clamp255(ct.GMul*float64(c.G) + ct.GAdd),
		B: clamp255(ct.BMul*float64(c.B) + ct.BAdd),
		A: clamp255(ct.AMul*float64(c.A) + ct.AAdd),
	}
}

// ColorTransformLerp interpolates each component linearly.
func ColorTransformLerp(from, to ColorTransform, ratio float64) ColorTransform {
	ratio = math.Max(0, math.Min(1, ratio))
	lerp := func(a, b float64) float64 { return a + (b-a)*ratio }
	return ColorTransform{
		RMul: lerp(from.RMul, to.RMul),
		GMul: lerp(from.GMul, to.GMul),
		BMul: lerp(from.BMul, to.BMul),
		AMul: lerp(from.AMul, to.AMul),
		RAdd: lerp(from.RAdd, to.RAdd),
		GAdd: lerp(from.GAdd, to.GAdd),
		BAdd: lerp(from.BAdd, to.BAdd),
		AAdd: lerp(from.AAdd, to.AAdd),
	}
}
