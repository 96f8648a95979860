package swf

import "testing"

func TestIdentityMatrixIsMultiplyIdentity(t *testing.T) {
	m := Matrix{A: 1.5, D: 0.5, C: 0.1, B: -0.1, TX: 10, TY: -20}
	if got := Multiply(IdentityMatrix(), m); got != m {
		t.Fatalf("Multiply(Identity, m) = %+v, want %+v", got, m)
	}
	if got := Multiply(m, IdentityMatrix()); got != m {
		t.Fatalf("Multiply(m, Identity) = %+v, want %+v", got, m)
	}
}

func TestMatrixApplyTranslation(t *testing.T) {
	translate := Matrix{A: 1, D: 1, TX: 10, TY: 20}
	x, y := translate.Apply(1, 1)
	if x != 11 || y != 21 {
		t.Fatalf("Apply = (%v, %v), want (11, 21)", x, y)
	}
}

func TestMatrixMultiplyIsChildIntoParent(t *testing.T) {
	parent := Matrix{A: 2, D: 2, TX: 100, TY: 100}
	child := Matrix{A: 1, D: 1, TX: 5, TY: 5}
	combined := Multiply(parent, child)
	wantX, wantY := parent.Apply(child.Apply(1, 1))
	gotX, gotY := combined.Apply(1, 1)
	if gotX != wantX || gotY != wantY {
		t.Fatalf("Multiply result disagrees with applying inner then outer: got (%v,%v) want (%v,%v)", gotX, gotY, wantX, wantY)
	}
}

func TestComposeColorTransformIdentity(t *testing.T) {
	ct := ColorTransform{RMul: 0.5, GMul: 1, BMul: 1, AMul: 1}
	if got := ComposeColorTransform(IdentityColorTransform(), ct); got != ct {
		t.Fatalf("ComposeColorTransform(Identity, ct) = %+v, want %+v", got, ct)
	}
}

// TestComposeColorTransformNonIdentityOuter uses a non-identity outer
// transform, which an add-terms-only composition cannot distinguish from
// the correct outer.Mul*inner.Add+outer.Add law.
func TestComposeColorTransformNonIdentityOuter(t *testing.T) {
	outer := ColorTransform{RMul: 2, GMul: 1, BMul: 1, AMul: 1}
	inner := ColorTransform{RMul: 1, GMul: 1, BMul: 1, AMul: 1, RAdd: 10}
	composed := ComposeColorTransform(outer, inner)

	c := Color{R: 5, G: 0, B: 0, A: 255}
	want := outer.Apply(inner.Apply(c))
	got := composed.Apply(c)
	if got != want {
		t.Fatalf("ComposeColorTransform(outer,inner).Apply(c) = %+v, want %+v (outer.Apply(inner.Apply(c)))", got, want)
	}
	if composed.RAdd != 20 {
		t.Fatalf("composed.RAdd = %v, want 20 (outer.RMul*inner.RAdd + outer.RAdd = 2*10+0)", composed.RAdd)
	}
}

func TestColorTransformApplyClamps(t *testing.T) {
	ct := ColorTransform{RMul: 3, GMul: 1, BMul: 1, AMul: 1, RAdd: 500}
	got := ct.Apply(Color{R: 100, G: 10, B: 10, A: 255})
	if got.R != 255 {
		t.Fatalf("Apply R = %v, want clamped 255", got.R)
	}
}

func TestRectWidthHeight(t *testing.T) {
	r := Rect{XMin: -100, XMax: 300, YMin: 0, YMax: 200}
	if got := r.Width(); got != 400 {
		t.Fatalf("Width() = %v, want 400", got)
	}
	if got := r.Height(); got != 200 {
		t.Fatalf("Height() = %v, want 200", got)
	}
}

func TestMatrixLerpEndpoints(t *testing.T) {
	a := Matrix{A: 1, D: 1}
	b := Matrix{A: 2, D: 2, TX: 10}
	if got := MatrixLerp(a, b, 0); got != a {
		t.Fatalf("MatrixLerp(a,b,0) = %+v, want %+v", got, a)
	}
	if got := MatrixLerp(a, b, 1); got != b {
		t.Fatalf("MatrixLerp(a,b,1) = %+v, want %+v", got, b)
	}
}
