package swf

import (
	"encoding/binary"
	"math"
	"testing"
)

func newTestInterp() *Interpreter {
	heap := NewHeap()
	global := NewObject()
	heap.Alloc(global, nil)
	return &Interpreter{Heap: heap, Global: global, Limits: DefaultScriptLimits(), Random: NewMathRandSource(1)}
}

func newTestContext(version int) *Context {
	return NewContext(version, NewObject(), NewObject())
}

// actionHeader builds an opcode + little-endian length header for an
// opcode >= 0x80 (the framing every such opcode uses, per avm_opcodes.go).
func actionHeader(op byte, payload []byte) []byte {
	out := []byte{op, 0, 0}
	binary.LittleEndian.PutUint16(out[1:], uint16(len(payload)))
	return append(out, payload...)
}

func pushStringAction(s string) []byte {
	payload := append([]byte{pushString}, append([]byte(s), 0)...)
	return actionHeader(opPush, payload)
}

func pushIntAction(v int32) []byte {
	payload := make([]byte, 5)
	payload[0] = pushInt
	binary.LittleEndian.PutUint32(payload[1:], uint32(v))
	return actionHeader(opPush, payload)
}

func jumpAction(offset int16) []byte {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(offset))
	return actionHeader(opJump, payload)
}

func ifAction(offset int16) []byte {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(offset))
	return actionHeader(opIf, payload)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDivideByZeroSWF4YieldsErrorString(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(4)
	// push 5 (dividend), push 0 (divisor), divide, end.
	bytes := concat(pushIntAction(5), pushIntAction(0), []byte{opDivide}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Kind != ValueString || ctx.Stack[0].Str != "#ERROR#" {
		t.Fatalf("SWF4 divide by zero = %+v, want the string \"#ERROR#\"", ctx.Stack)
	}
}

func TestDivideByZeroSWF5YieldsPositiveInfinity(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(5)
	bytes := concat(pushIntAction(5), pushIntAction(0), []byte{opDivide}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || !math.IsInf(ctx.Stack[0].Num, 1) {
		t.Fatalf("SWF5 divide by zero = %+v, want +Inf", ctx.Stack)
	}
}

func TestDivideNonZero(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	bytes := concat(pushIntAction(10), pushIntAction(2), []byte{opDivide}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Num != 5 {
		t.Fatalf("10/2 = %+v, want 5", ctx.Stack)
	}
}

func TestAdd2StringVsNumericBranch(t *testing.T) {
	in := newTestInterp()

	ctx := newTestContext(6)
	bytes := concat(pushIntAction(1), pushIntAction(2), []byte{opAdd2}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if ctx.Stack[0].Kind != ValueNumber || ctx.Stack[0].Num != 3 {
		t.Fatalf("Add2(1,2) = %+v, want numeric 3", ctx.Stack[0])
	}

	ctx2 := newTestContext(6)
	bytes2 := concat(pushStringAction("a"), pushIntAction(2), []byte{opAdd2}, []byte{opEnd})
	if err := in.Run(ctx2, bytes2); err != nil {
		t.Fatal(err)
	}
	if ctx2.Stack[0].Kind != ValueString || ctx2.Stack[0].Str != "a2" {
		t.Fatalf("Add2(\"a\",2) = %+v, want string \"a2\"", ctx2.Stack[0])
	}
}

func TestJumpSkipsIntermediateAction(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)

	pushA := pushStringAction("A")
	pushB := pushStringAction("B") // must be skipped entirely
	pushC := pushStringAction("C")
	// The jump's offset is relative to the position right after its own
	// payload; jumping forward by exactly len(pushB) lands precisely on
	// the start of pushC, regardless of where in the stream this sits.
	jmp := jumpAction(int16(len(pushB)))

	bytes := concat(pushA, jmp, pushB, pushC, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 2 || ctx.Stack[0].Str != "A" || ctx.Stack[1].Str != "C" {
		t.Fatalf("stack after jump = %+v, want [A C] (B skipped)", ctx.Stack)
	}
}

func TestIfFallsThroughWhenFalse(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)

	pushFalse := actionHeader(opPush, []byte{pushBool, 0})
	pushB := pushStringAction("B")
	iff := ifAction(int16(len(pushB)))

	bytes := concat(pushFalse, iff, pushB, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Str != "B" {
		t.Fatalf("If(false) should fall through into the next action, got stack %+v", ctx.Stack)
	}
}

func TestIfJumpsWhenTrue(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)

	pushTrue := actionHeader(opPush, []byte{pushBool, 1})
	pushB := pushStringAction("B") // skipped when the condition is true
	iff := ifAction(int16(len(pushB)))

	bytes := concat(pushTrue, iff, pushB, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 0 {
		t.Fatalf("If(true) should skip the next action, got stack %+v", ctx.Stack)
	}
}

func TestScriptLimitTripsOnRunawayInstructionCount(t *testing.T) {
	in := newTestInterp()
	in.Limits = ScriptLimits{MaxInstructions: 3, MaxCallDepth: 256}
	ctx := newTestContext(6)
	// A jump back to its own start loops forever unless the budget trips.
	loop := jumpAction(0)
	loop = jumpAction(int16(-len(loop)))
	err := in.Run(ctx, loop)
	if !IsKind(err, ScriptLimit) {
		t.Fatalf("Run() on an infinite jump loop = %v, want a ScriptLimit error", err)
	}
}

func TestPopOnEmptyStackIsRecoverableNotPanic(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	bytes := []byte{opPop, opEnd}
	err := in.Run(ctx, bytes)
	if !IsKind(err, StackUnderflow) {
		t.Fatalf("Run() popping an empty stack = %v, want a StackUnderflow error", err)
	}
}

func TestConstantPoolAndPushConst8(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)

	poolPayload := make([]byte, 0)
	poolPayload = binary.LittleEndian.AppendUint16(poolPayload, 2)
	poolPayload = append(poolPayload, append([]byte("foo"), 0)...)
	poolPayload = append(poolPayload, append([]byte("bar"), 0)...)
	pool := actionHeader(opConstantPool, poolPayload)

	pushConst := actionHeader(opPush, []byte{pushConst8, 1})

	bytes := concat(pool, pushConst, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Str != "bar" {
		t.Fatalf("pushConst8(1) after pool [foo,bar] = %+v, want \"bar\"", ctx.Stack)
	}
}

func TestLooseEqualsSWF4ViaEqualsOpcode(t *testing.T) {
	in := newTestInterp()

	ctx4 := newTestContext(4)
	bytes := concat(pushStringAction("1"), pushIntAction(1), []byte{opEquals}, []byte{opEnd})
	if err := in.Run(ctx4, bytes); err != nil {
		t.Fatal(err)
	}
	if !ctx4.Stack[0].Bool {
		t.Fatal("SWF4 Equals(\"1\", 1) should coerce numerically and be true")
	}
}

func pushStringExtractAction(s string, start, count int32) []byte {
	return concat(pushStringAction(s), pushIntAction(start), pushIntAction(count), []byte{opStringExtract})
}

func TestStringExtractNegativeCountRecoversToEmpty(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	// StringExtract pops count, then start, then the string itself (pushed
	// in that order: string, start, count).
	bytes := concat(pushStringExtractAction("hello", 1, -1), []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Str != "" {
		t.Fatalf("StringExtract(\"hello\", start=1, count=-1) = %+v, want an empty string, not a panic", ctx.Stack)
	}
}

func TestStringExtractPositiveCount(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	bytes := concat(pushStringExtractAction("hello", 1, 3), []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Str != "ell" {
		t.Fatalf("StringExtract(\"hello\", 1, 3) = %+v, want \"ell\"", ctx.Stack)
	}
}

func TestGetSetXPropertyRoundTrips(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	clip := &Node{Kind: NodeClip, Name: "mc", Children: make(map[int]*Node), Deprecated: make(map[int]*Node), Matrix: IdentityMatrix()}
	root := &Node{Kind: NodeClip, Children: map[int]*Node{1: clip}, Deprecated: make(map[int]*Node)}
	ctx.Clip, ctx.Home, ctx.Root = root, root, root

	// SetProperty("mc", _x=0, 42), then GetProperty("mc", _x=0).
	setBytes := concat(pushStringAction("mc"), pushIntAction(0), pushIntAction(42), []byte{opSetProperty}, []byte{opEnd})
	if err := in.Run(ctx, setBytes); err != nil {
		t.Fatal(err)
	}
	if clip.Matrix.TX != 42 {
		t.Fatalf("clip.Matrix.TX after SetProperty(_x, 42) = %v, want 42", clip.Matrix.TX)
	}

	getBytes := concat(pushStringAction("mc"), pushIntAction(0), []byte{opGetProperty}, []byte{opEnd})
	if err := in.Run(ctx, getBytes); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Num != 42 {
		t.Fatalf("GetProperty(_x) = %+v, want 42", ctx.Stack)
	}
}

func TestSetTargetRetargetsTimelineOpcodes(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	clip := &Node{Kind: NodeClip, Name: "mc", Children: make(map[int]*Node), Deprecated: make(map[int]*Node), Scripts: []FrameScript{{}, {}}, Playing: true}
	root := &Node{Kind: NodeClip, Children: map[int]*Node{1: clip}, Deprecated: make(map[int]*Node)}
	ctx.Clip, ctx.Home, ctx.Root = root, root, root

	setTarget := actionHeader(opSetTarget, append([]byte("mc"), 0))
	bytes := concat(setTarget, []byte{opStop}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if clip.Playing {
		t.Fatal("Stop after SetTarget(\"mc\") should stop the named clip, not the context's original one")
	}
}

func TestPathPrefixedVariableRetargetsClip(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	clip := &Node{Kind: NodeClip, Name: "mc", Children: make(map[int]*Node), Deprecated: make(map[int]*Node)}
	root := &Node{Kind: NodeClip, Children: map[int]*Node{1: clip}, Deprecated: make(map[int]*Node)}
	ctx.Clip, ctx.Home, ctx.Root = root, root, root

	setVar := concat(pushStringAction("mc:score"), pushIntAction(7), []byte{opSetVariable})
	bytes := concat(setVar, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if clip.context == nil {
		t.Fatal("a path-prefixed SetVariable should materialize the target clip's own context")
	}
	if v, ok := clip.context.ResolveVariable("score"); !ok || v.Num != 7 {
		t.Fatalf("clip's own \"score\" variable = (%v, %v), want (7, true)", v, ok)
	}

	getVar := concat(pushStringAction("mc:score"), []byte{opGetVariable})
	bytes2 := concat(getVar, []byte{opEnd})
	if err := in.Run(ctx, bytes2); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Stack) != 1 || ctx.Stack[0].Num != 7 {
		t.Fatalf("GetVariable(\"mc:score\") = %+v, want 7", ctx.Stack)
	}
}

func TestCallRunsTargetFrameActionsOnly(t *testing.T) {
	in := newTestInterp()
	ctx := newTestContext(6)
	clip := &Node{
		Kind:       NodeClip,
		Children:   make(map[int]*Node),
		Deprecated: make(map[int]*Node),
		Scripts: []FrameScript{
			{Actions: []ActionRecord{{Bytes: concat(pushStringAction("x"), pushIntAction(9), []byte{opSetVariable}, []byte{opEnd})}}},
		},
	}
	ctx.Clip, ctx.Home, ctx.Root = clip, clip, clip

	bytes := concat(pushIntAction(0), []byte{opCall}, []byte{opEnd})
	if err := in.Run(ctx, bytes); err != nil {
		t.Fatal(err)
	}
	if clip.context == nil {
		t.Fatal("Call should run the target frame's actions against the clip's own context")
	}
	if v, ok := clip.context.ResolveVariable("x"); !ok || v.Num != 9 {
		t.Fatalf("clip's \"x\" variable after Call(0) = (%v, %v), want (9, true)", v, ok)
	}
	if len(clip.Children) != 0 {
		t.Fatal("Call must not replay the target frame's placement commands")
	}
}

func TestNaNIsNotANumber(t *testing.T) {
	if !math.IsNaN(nan()) {
		t.Fatal("nan() must produce an actual NaN bit pattern")
	}
}
