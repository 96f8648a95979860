package swf

import "testing"

func TestToBooleanByKind(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"undefined", UndefinedValue(), false},
		{"null", NullValue(), false},
		{"false", BoolValue(false), false},
		{"true", BoolValue(true), true},
		{"zero", NumberValue(0), false},
		{"nonzero", NumberValue(-1.5), true},
		{"nan", NumberValue(nan()), false},
		{"empty string", StringValue(""), false},
		{"nonempty string", StringValue("0"), true},
		{"nil object", ObjectValue(nil), false},
		{"object", ObjectValue(NewObject()), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.ToBoolean(); got != c.want {
				t.Fatalf("ToBoolean() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestToNumberVersionBranch(t *testing.T) {
	// SWF4: a non-numeric string coerces to 0. SWF5+: it coerces to NaN.
	v := StringValue("not a number")
	if got := v.ToNumber(4); got != 0 {
		t.Fatalf("SWF4 ToNumber(non-numeric string) = %v, want 0", got)
	}
	if got := v.ToNumber(5); !isNaN(got) {
		t.Fatalf("SWF5 ToNumber(non-numeric string) = %v, want NaN", got)
	}
}

func TestToNumberUndefinedVersionBranch(t *testing.T) {
	if got := UndefinedValue().ToNumber(4); got != 0 {
		t.Fatalf("SWF4 ToNumber(undefined) = %v, want 0", got)
	}
	if got := UndefinedValue().ToNumber(5); !isNaN(got) {
		t.Fatalf("SWF5 ToNumber(undefined) = %v, want NaN", got)
	}
}

func TestStrictEqualsRequiresSameKind(t *testing.T) {
	if StrictEquals(NumberValue(0), StringValue("0")) {
		t.Fatal("StrictEquals should not coerce across kinds")
	}
	if !StrictEquals(NumberValue(1), NumberValue(1)) {
		t.Fatal("StrictEquals(1, 1) should be true")
	}
}

func TestLooseEqualsVersionBranch(t *testing.T) {
	// SWF4's ActionEquals unconditionally coerces numerically.
	if !LooseEquals(NumberValue(1), StringValue("1"), 4) {
		t.Fatal("SWF4 LooseEquals(1, \"1\") should be true")
	}
	// SWF5+'s ActionEquals2 only coerces when kinds differ, like JS ==.
	if !LooseEquals(NumberValue(1), StringValue("1"), 5) {
		t.Fatal("SWF5 LooseEquals(1, \"1\") should be true via numeric coercion")
	}
	if LooseEquals(StringValue("01"), StringValue("1"), 5) {
		t.Fatal("SWF5 LooseEquals of two strings should use StrictEquals, no numeric coercion")
	}
}

func TestToStrRoundTrips(t *testing.T) {
	if NumberValue(3.5).ToStr() != "3.5" {
		t.Fatalf("ToStr(3.5) = %q", NumberValue(3.5).ToStr())
	}
	if BoolValue(true).ToStr() != "true" {
		t.Fatalf("ToStr(true) = %q", BoolValue(true).ToStr())
	}
	if NumberValue(nan()).ToStr() != "NaN" {
		t.Fatalf("ToStr(NaN) = %q", NumberValue(nan()).ToStr())
	}
}
