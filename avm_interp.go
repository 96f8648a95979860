// avm_interp.go - AVM1 bytecode execution loop (component C6)
//
// Dispatch is a plain compile-time switch over the opcode byte rather
// than a mutable function-pointer table, per the architectural redesign:
// nothing in this player installs or replaces opcode handlers at
// runtime, so there is no need to pay for an indirect call through a
// table the way the original implementation did.

package swf

import (
	"encoding/binary"
	"math"
	"strings"

	"go.uber.org/zap"
)

// ScriptLimits bounds one action-record execution: a wall-clock style
// instruction budget and a maximum ActionCall nesting depth, both of which trip a
// ScriptLimit error that the caller recovers from at the frame boundary
// rather than letting a runaway or malicious script hang the player.
type ScriptLimits struct {
	MaxInstructions int
	MaxCallDepth    int
}

// DefaultScriptLimits matches the ScriptLimits tag's own typical
// authoring defaults when a file doesn't declare its own.
func DefaultScriptLimits() ScriptLimits {
	return ScriptLimits{MaxInstructions: 1_000_000, MaxCallDepth: 256}
}

// Interpreter executes AVM1 action byte sequences against a Context. One
// Interpreter is shared across every context in a movie; it carries no
// per-execution state of its own beyond its collaborators.
type Interpreter struct {
	Heap    *Heap
	Global  *Object
	Limits  ScriptLimits
	Trace   TraceSink
	Random  RandomSource
	Clock   Clock
	Logger  *zap.SugaredLogger
}

// Run executes action bytes against ctx, returning a recoverable
// *PlayerError (StackUnderflow, MalformedBinary, ScriptLimit) rather than
// panicking on malformed or adversarial input - the caller (a frame's
// DoAction replay, or an ActionCall) decides
// whether to log-and-continue or abort the whole movie.
func (in *Interpreter) Run(ctx *Context, bytes []byte) error {
	pc := 0
	instructions := 0
	for pc < len(bytes) {
		instructions++
		if instructions > in.Limits.MaxInstructions {
			return newErr(ScriptLimit, "Interpreter.Run", "instruction budget exhausted")
		}
		op := bytes[pc]
		pc++
		if op == opEnd {
			return nil
		}
		var payload []byte
		if op >= 0x80 {
			if pc+2 > len(bytes) {
				return newErr(MalformedBinary, "Interpreter.Run", "truncated action length")
			}
			n := int(binary.LittleEndian.Uint16(bytes[pc:]))
			pc += 2
			if pc+n > len(bytes) {
				return newErr(MalformedBinary, "Interpreter.Run", "truncated action payload")
			}
			payload = bytes[pc : pc+n]
			pc += n
		}

		jump, err := in.exec(ctx, op, payload, pc)
		if err != nil {
			return err
		}
		if jump != nil {
			pc = *jump
		}
	}
	return nil
}

// exec runs one opcode, returning a non-nil absolute byte offset when the
// opcode is a control-flow jump relative to the action stream this Run
// call was given (opJump/opIf resolve relative to the *action body*
// boundary, which Run treats as offset 0 by construction since each
// DoAction/closure body is its own self-contained byte slice).
func (in *Interpreter) exec(ctx *Context, op byte, payload []byte, afterPC int) (*int, error) {
	switch op {
	case opPush:
		if err := in.execPush(ctx, payload); err != nil {
			return nil, err
		}
	case opPop:
		if _, err := ctx.Pop(); err != nil {
			return nil, err
		}
	case opPushDuplicate:
		if len(ctx.Stack) == 0 {
			return nil, newErr(StackUnderflow, "PushDuplicate", "")
		}
		ctx.Push(ctx.Stack[len(ctx.Stack)-1])
	case opStackSwap:
		if len(ctx.Stack) < 2 {
			return nil, newErr(StackUnderflow, "StackSwap", "")
		}
		n := len(ctx.Stack)
		ctx.Stack[n-1], ctx.Stack[n-2] = ctx.Stack[n-2], ctx.Stack[n-1]

	case opAdd:
		return nil, binaryNumericOp(ctx, ctx.Version, func(a, b float64) float64 { return a + b })
	case opSubtract:
		return nil, binaryNumericOp(ctx, ctx.Version, func(a, b float64) float64 { return b - a })
	case opMultiply:
		return nil, binaryNumericOp(ctx, ctx.Version, func(a, b float64) float64 { return a * b })
	case opDivide:
		return nil, in.execDivide(ctx)
	case opModulo:
		return nil, binaryNumericOp(ctx, ctx.Version, func(a, b float64) float64 {
			if a == 0 {
				return nan()
			}
			return float64(int64(b) % int64(a))
		})
	case opAdd2:
		return nil, in.execAdd2(ctx)

	case opEquals, opEquals2:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return LooseEquals(a, b, ctx.Version) })
	case opStrictEquals:
		return nil, binaryCompareOp(ctx, StrictEquals)
	case opLess, opLess2:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return b.ToNumber(ctx.Version) < a.ToNumber(ctx.Version) })
	case opGreater:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return b.ToNumber(ctx.Version) > a.ToNumber(ctx.Version) })
	case opStringEquals:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return a.ToStr() == b.ToStr() })
	case opStringLess:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return b.ToStr() < a.ToStr() })
	case opStringGreater:
		return nil, binaryCompareOp(ctx, func(a, b Value) bool { return b.ToStr() > a.ToStr() })

	case opAnd:
		return nil, binaryBoolOp(ctx, func(a, b bool) bool { return a && b })
	case opOr:
		return nil, binaryBoolOp(ctx, func(a, b bool) bool { return a || b })
	case opNot:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(BoolValue(!v.ToBoolean()))

	case opBitAnd:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return a & b })
	case opBitOr:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return a | b })
	case opBitXor:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return a ^ b })
	case opBitLShift:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return b << (uint32(a) & 31) })
	case opBitRShift:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return b >> (uint32(a) & 31) })
	case opBitURShift:
		return nil, binaryIntOp(ctx, func(a, b int32) int32 { return int32(uint32(b) >> (uint32(a) & 31)) })

	case opStringAdd:
		b, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		a, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(StringValue(a.ToStr() + b.ToStr()))
	case opStringLength, opMBStringLength:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(NumberValue(float64(len([]rune(v.ToStr())))))
	case opStringExtract:
		count, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		index, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		s, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		runes := []rune(s.ToStr())
		start := clampIndex(int(index.ToNumber(ctx.Version)), len(runes))
		end := start + int(count.ToNumber(ctx.Version))
		if end < start {
			end = start // a negative count (e.g. -1) extracts nothing, not a reversed range
		}
		if end > len(runes) {
			end = len(runes)
		}
		ctx.Push(StringValue(string(runes[start:end])))

	case opToInteger:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(NumberValue(float64(int64(v.ToNumber(ctx.Version)))))
	case opToNumber:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(NumberValue(v.ToNumber(ctx.Version)))
	case opToString:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(StringValue(v.ToStr()))
	case opTypeOf:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(StringValue(typeOfValue(v)))
	case opIncrement:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(NumberValue(v.ToNumber(ctx.Version) + 1))
	case opDecrement:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(NumberValue(v.ToNumber(ctx.Version) - 1))

	case opGetVariable:
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(in.resolveQualifiedVariable(ctx, name.ToStr()))
	case opSetVariable:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		in.setQualifiedVariable(ctx, name.ToStr(), v)
	case opDefineLocal:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Locals[name.ToStr()] = v
	case opDefineLocal2:
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if _, ok := ctx.Locals[name.ToStr()]; !ok {
			ctx.Locals[name.ToStr()] = UndefinedValue()
		}
	case opDelete, opDelete2:
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if op == opDelete {
			if _, err := ctx.Pop(); err != nil { // object operand, unused without qualified-name resolution
				return nil, err
			}
		}
		delete(ctx.Locals, name.ToStr())

	case opGetMember:
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		obj, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if obj.Kind == ValueObject && obj.Obj != nil {
			v, _ := obj.Obj.Get(name.ToStr())
			ctx.Push(v)
		} else {
			ctx.Push(UndefinedValue())
		}
	case opSetMember:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		obj, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if obj.Kind == ValueObject && obj.Obj != nil {
			obj.Obj.Set(name.ToStr(), v)
		}

	case opInitObject:
		n, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		count := int(n.ToNumber(ctx.Version))
		o := NewObject()
		for i := 0; i < count; i++ {
			v, err := ctx.Pop()
			if err != nil {
				return nil, err
			}
			name, err := ctx.Pop()
			if err != nil {
				return nil, err
			}
			o.Set(name.ToStr(), v)
		}
		in.Heap.Alloc(o, in.roots(ctx))
		ctx.Push(ObjectValue(o))
	case opInitArray:
		n, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		count := int(n.ToNumber(ctx.Version))
		elems := make([]Value, count)
		for i := count - 1; i >= 0; i-- {
			v, err := ctx.Pop()
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		arr := NewArray(elems)
		in.Heap.Alloc(arr, in.roots(ctx))
		ctx.Push(ObjectValue(arr))
	case opNewObject:
		name, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		argc, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(argc.ToNumber(ctx.Version)); i++ {
			if _, err := ctx.Pop(); err != nil {
				return nil, err
			}
		}
		_ = name
		ctx.Push(UndefinedValue()) // user-defined constructors are out of scope; see DESIGN.md

	case opTrace:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if in.Trace != nil {
			in.Trace(v.ToStr())
		}

	case opRandomNumber:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		n := int(v.ToNumber(ctx.Version))
		if in.Random != nil && n > 0 {
			ctx.Push(NumberValue(float64(in.Random.Intn(n))))
		} else {
			ctx.Push(NumberValue(0))
		}
	case opGetTime:
		if in.Clock != nil {
			ctx.Push(NumberValue(float64(in.Clock.Now().UnixMilli())))
		} else {
			ctx.Push(NumberValue(0))
		}

	case opPlay:
		if ctx.Clip != nil {
			ctx.Clip.Playing = true
		}
	case opStop:
		if ctx.Clip != nil {
			ctx.Clip.Playing = false
		}
	case opNextFrame:
		if ctx.Clip != nil {
			_ = ctx.Clip.StepToFrame(ctx.Clip.CurrentFrame + 1)
		}
	case opPrevFrame:
		if ctx.Clip != nil {
			_ = ctx.Clip.StepToFrame(ctx.Clip.CurrentFrame - 1)
		}

	case opConstantPool:
		ctx.Constants = decodeConstantPool(payload)
	case opGotoFrame:
		if len(payload) >= 2 && ctx.Clip != nil {
			frame := int(binary.LittleEndian.Uint16(payload))
			_ = ctx.Clip.StepToFrame(frame)
		}
	case opGotoFrame2:
		if ctx.Clip != nil {
			v, err := ctx.Pop()
			if err != nil {
				return nil, err
			}
			_ = ctx.Clip.StepToFrame(int(v.ToNumber(ctx.Version)))
		}
	case opGotoLabel:
		if ctx.Clip != nil && len(payload) > 0 {
			label := cString(payload)
			for i, f := range ctx.Clip.Scripts {
				if f.Label == label {
					_ = ctx.Clip.StepToFrame(i)
					break
				}
			}
		}

	case opJump:
		if len(payload) >= 2 {
			offset := int(int16(binary.LittleEndian.Uint16(payload)))
			target := afterPC + offset
			return &target, nil
		}
	case opIf:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		if len(payload) >= 2 && v.ToBoolean() {
			offset := int(int16(binary.LittleEndian.Uint16(payload)))
			target := afterPC + offset
			return &target, nil
		}

	case opCallFunction, opCallMethod, opNewMethod:
		// Named, non-recursive calls into user-defined AVM1 functions need
		// the Closure/call-stack machinery bound up in Player, not this
		// opcode-local Interpreter; see DESIGN.md for the scoping decision.
		return nil, in.stubCall(ctx, op)
	case opCall:
		return nil, in.execCall(ctx)

	case opSetTarget:
		in.setTarget(ctx, cString(payload))
	case opSetTarget2:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		in.setTarget(ctx, v.ToStr())

	case opGetProperty:
		idx, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		target, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		ctx.Push(in.getClipProperty(ctx, target.ToStr(), int(idx.ToNumber(ctx.Version))))
	case opSetProperty:
		v, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		idx, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		target, err := ctx.Pop()
		if err != nil {
			return nil, err
		}
		in.setClipProperty(ctx, target.ToStr(), int(idx.ToNumber(ctx.Version)), v)

	default:
		in.Logger.Debugw("unimplemented AVM1 opcode", "opcode", op)
	}
	return nil, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func typeOfValue(v Value) string {
	switch v.Kind {
	case ValueUndefined:
		return "undefined"
	case ValueNull:
		return "null"
	case ValueBoolean:
		return "boolean"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueObject:
		if v.Obj != nil && v.Obj.Closure != nil {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

func decodeConstantPool(payload []byte) []string {
	if len(payload) < 2 {
		return nil
	}
	count := int(binary.LittleEndian.Uint16(payload))
	out := make([]string, 0, count)
	pos := 2
	for i := 0; i < count && pos < len(payload); i++ {
		s := cString(payload[pos:])
		out = append(out, s)
		pos += len(s) + 1
	}
	return out
}

func (in *Interpreter) execPush(ctx *Context, payload []byte) error {
	pos := 0
	for pos < len(payload) {
		kind := payload[pos]
		pos++
		switch kind {
		case pushString:
			s := cString(payload[pos:])
			pos += len(s) + 1
			ctx.Push(StringValue(s))
		case pushFloat:
			if pos+4 > len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated float")
			}
			bits := binary.LittleEndian.Uint32(payload[pos:])
			pos += 4
			ctx.Push(NumberValue(float64(float32FromBits(bits))))
		case pushNull:
			ctx.Push(NullValue())
		case pushUndef:
			ctx.Push(UndefinedValue())
		case pushRegister:
			if pos >= len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated register index")
			}
			idx := payload[pos]
			pos++
			if int(idx) < len(ctx.Registers) {
				ctx.Push(ctx.Registers[idx])
			} else {
				ctx.Push(UndefinedValue())
			}
		case pushBool:
			if pos >= len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated bool")
			}
			ctx.Push(BoolValue(payload[pos] != 0))
			pos++
		case pushDouble:
			if pos+8 > len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated double")
			}
			bits := binary.LittleEndian.Uint64(payload[pos:])
			pos += 8
			ctx.Push(NumberValue(float64FromBits(bits)))
		case pushInt:
			if pos+4 > len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated int")
			}
			v := int32(binary.LittleEndian.Uint32(payload[pos:]))
			pos += 4
			ctx.Push(NumberValue(float64(v)))
		case pushConst8:
			if pos >= len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated const8")
			}
			idx := int(payload[pos])
			pos++
			ctx.Push(constantAt(ctx, idx))
		case pushConst16:
			if pos+2 > len(payload) {
				return newErr(MalformedBinary, "execPush", "truncated const16")
			}
			idx := int(binary.LittleEndian.Uint16(payload[pos:]))
			pos += 2
			ctx.Push(constantAt(ctx, idx))
		default:
			return newErr(MalformedBinary, "execPush", "unknown push type tag")
		}
	}
	return nil
}

func constantAt(ctx *Context, idx int) Value {
	if idx < 0 || idx >= len(ctx.Constants) {
		return UndefinedValue()
	}
	return StringValue(ctx.Constants[idx])
}

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }

func (in *Interpreter) execAdd2(ctx *Context) error {
	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	if a.Kind == ValueString || b.Kind == ValueString {
		ctx.Push(StringValue(a.ToStr() + b.ToStr()))
		return nil
	}
	ctx.Push(NumberValue(a.ToNumber(ctx.Version) + b.ToNumber(ctx.Version)))
	return nil
}

// execDivide implements ActionDivide's version-gated zero-divisor behavior:
// SWF4 and earlier push the string "#ERROR#" on division by zero; SWF5+
// instead let IEEE 754 division produce +Inf/-Inf/NaN as the sign of the
// dividend and the zero divisor dictate, matching real floating point
// division rather than special-casing the result.
func (in *Interpreter) execDivide(ctx *Context) error {
	a, err := ctx.Pop() // divisor
	if err != nil {
		return err
	}
	b, err := ctx.Pop() // dividend
	if err != nil {
		return err
	}
	divisor := a.ToNumber(ctx.Version)
	dividend := b.ToNumber(ctx.Version)
	if divisor == 0 && ctx.Version < 5 {
		ctx.Push(StringValue("#ERROR#"))
		return nil
	}
	ctx.Push(NumberValue(dividend / divisor))
	return nil
}

// setTarget resolves path against ctx (absolute if it starts with "/",
// relative to ctx.Clip otherwise, Home if empty) and retargets ctx.Clip;
// an unresolvable path falls back to Home rather than leaving Clip stale,
// matching the original player's SetTarget failure behavior.
func (in *Interpreter) setTarget(ctx *Context, path string) {
	if target, ok := ctx.resolveTarget(path); ok {
		ctx.Clip = target
	} else {
		ctx.Clip = ctx.Home
	}
}

// targetContext returns n's own script context, creating it lazily the
// same way Player.RunFrameActions does, so a path-prefixed variable
// reference or a retargeted timeline opcode reaches the same persistent
// state a DoAction on that clip's own frame would.
func (in *Interpreter) targetContext(ctx *Context, n *Node) *Context {
	if n.context == nil {
		n.context = NewContext(ctx.Version, in.Global, in.Global)
		n.context.Clip = n
		n.context.Home = n
		n.context.Root = ctx.Root
	}
	return n.context
}

// splitTargetPath splits a path-prefixed variable name ("/clip:var") into
// its clip path and variable name; names with no colon have no path.
func splitTargetPath(name string) (path, varName string, hasPath bool) {
	idx := strings.LastIndex(name, ":")
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+1:], true
}

func (in *Interpreter) resolveQualifiedVariable(ctx *Context, name string) Value {
	path, varName, hasPath := splitTargetPath(name)
	if !hasPath {
		v, _ := ctx.ResolveVariable(name)
		return v
	}
	target, ok := ctx.resolveTarget(path)
	if !ok {
		return UndefinedValue()
	}
	v, _ := in.targetContext(ctx, target).ResolveVariable(varName)
	return v
}

func (in *Interpreter) setQualifiedVariable(ctx *Context, name string, v Value) {
	path, varName, hasPath := splitTargetPath(name)
	if !hasPath {
		ctx.SetVariable(name, v)
		return
	}
	target, ok := ctx.resolveTarget(path)
	if !ok {
		return
	}
	in.targetContext(ctx, target).SetVariable(varName, v)
}

// frameIndexFor resolves Call's frame operand against n's own
// timeline: a string names a frame label, anything else is a direct
// 0-based frame index (as opGotoFrame2 treats its numeric operand).
func frameIndexFor(n *Node, v Value, version int) (int, bool) {
	if v.Kind == ValueString {
		for i, f := range n.Scripts {
			if f.Label == v.Str {
				return i, true
			}
		}
		return 0, false
	}
	idx := int(v.ToNumber(version))
	if idx < 0 || idx >= len(n.Scripts) {
		return 0, false
	}
	return idx, true
}

// execCall implements ActionCall: run a target frame's attached action
// list against the clip's own persistent context, without replaying that
// frame's placement commands the way a GotoFrame would.
func (in *Interpreter) execCall(ctx *Context) error {
	v, err := ctx.Pop()
	if err != nil {
		return err
	}
	if ctx.Clip == nil || len(ctx.Clip.Scripts) == 0 {
		return nil
	}
	idx, ok := frameIndexFor(ctx.Clip, v, ctx.Version)
	if !ok {
		return nil
	}
	target := in.targetContext(ctx, ctx.Clip)
	if target.depth >= in.Limits.MaxCallDepth {
		return newErr(ScriptLimit, "Call", "maximum call depth exceeded")
	}
	target.depth++
	defer func() { target.depth-- }()
	for _, a := range ctx.Clip.Scripts[idx].Actions {
		if err := in.Run(target, a.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// clipProperty backs one of GetProperty/SetProperty's 22 enumerated
// intrinsic properties, indexed exactly as the opcode's numeric operand
// encodes them. Properties with no corresponding runtime state in this
// player (quality, mouse position, sound buffering, ...) read a fixed
// default and ignore writes, matching how this player surfaces any other
// platform capability it does not implement rather than erroring.
type clipProperty struct {
	get func(n, root *Node) Value
	set func(n *Node, v Value, version int)
}

func scaleXY(n *Node) (sx, sy float64) { return n.Matrix.A, n.Matrix.D }

func naturalBounds(n *Node) Rect {
	if n.Character == nil {
		return Rect{}
	}
	switch n.Character.Kind {
	case CharacterShape:
		return n.Character.Shape.Bounds
	case CharacterMorphShape:
		return n.Character.Morph.Start.Bounds
	}
	return Rect{}
}

var clipProperties = [22]clipProperty{
	0: { // _x
		get: func(n, _ *Node) Value { return NumberValue(n.Matrix.TX) },
		set: func(n *Node, v Value, ver int) { n.Matrix.TX = v.ToNumber(ver) },
	},
	1: { // _y
		get: func(n, _ *Node) Value { return NumberValue(n.Matrix.TY) },
		set: func(n *Node, v Value, ver int) { n.Matrix.TY = v.ToNumber(ver) },
	},
	2: { // _xscale, percent; approximates the matrix's A term as a pure scale, ignoring any rotation/skew component
		get: func(n, _ *Node) Value { sx, _ := scaleXY(n); return NumberValue(sx * 100) },
		set: func(n *Node, v Value, ver int) { n.Matrix.A = v.ToNumber(ver) / 100 },
	},
	3: { // _yscale
		get: func(n, _ *Node) Value { _, sy := scaleXY(n); return NumberValue(sy * 100) },
		set: func(n *Node, v Value, ver int) { n.Matrix.D = v.ToNumber(ver) / 100 },
	},
	4: { // _currentframe, 1-based; read-only in the real player
		get: func(n, _ *Node) Value {
			if len(n.Scripts) == 0 {
				return NumberValue(0)
			}
			// CurrentFrame is the next frame to apply; the one last applied is CurrentFrame-1.
			return NumberValue(float64((n.CurrentFrame-1+len(n.Scripts))%len(n.Scripts) + 1))
		},
	},
	5: { // _totalframes, read-only
		get: func(n, _ *Node) Value { return NumberValue(float64(len(n.Scripts))) },
	},
	6: { // _alpha, percent
		get: func(n, _ *Node) Value { return NumberValue(n.ColorTransform.AMul * 100) },
		set: func(n *Node, v Value, ver int) { n.ColorTransform.AMul = v.ToNumber(ver) / 100 },
	},
	7: { // _visible
		get: func(n, _ *Node) Value { return BoolValue(n.Visible) },
		set: func(n *Node, v Value, _ int) { n.Visible = v.ToBoolean() },
	},
	8: { // _width; natural bounds scaled by the matrix's A term, same rotation-ignoring approximation as _xscale
		get: func(n, _ *Node) Value { sx, _ := scaleXY(n); return NumberValue(naturalBounds(n).Width() * sx) },
		set: func(n *Node, v Value, ver int) {
			if w := naturalBounds(n).Width(); w > 0 {
				n.Matrix.A = v.ToNumber(ver) / w
			}
		},
	},
	9: { // _height
		get: func(n, _ *Node) Value { _, sy := scaleXY(n); return NumberValue(naturalBounds(n).Height() * sy) },
		set: func(n *Node, v Value, ver int) {
			if h := naturalBounds(n).Height(); h > 0 {
				n.Matrix.D = v.ToNumber(ver) / h
			}
		},
	},
	10: { // _rotation, degrees; setting it preserves the current scale magnitude and discards any skew
		get: func(n, _ *Node) Value { return NumberValue(math.Atan2(n.Matrix.B, n.Matrix.A) * 180 / math.Pi) },
		set: func(n *Node, v Value, ver int) {
			scale := math.Hypot(n.Matrix.A, n.Matrix.B)
			if scale == 0 {
				scale = 1
			}
			rad := v.ToNumber(ver) * math.Pi / 180
			n.Matrix.A, n.Matrix.B = scale*math.Cos(rad), scale*math.Sin(rad)
			n.Matrix.C, n.Matrix.D = -scale*math.Sin(rad), scale*math.Cos(rad)
		},
	},
	11: { // _target, read-only
		get: func(n, root *Node) Value {
			if root == nil {
				return StringValue("")
			}
			path, ok := root.pathTo(n)
			if !ok {
				return StringValue("")
			}
			return StringValue("/" + path)
		},
	},
	12: { // _framesloaded, read-only; this player has no streaming/partial-load model, so a clip is always fully loaded
		get: func(n, _ *Node) Value { return NumberValue(float64(len(n.Scripts))) },
	},
	13: { // _name
		get: func(n, _ *Node) Value { return StringValue(n.Name) },
		set: func(n *Node, v Value, _ int) { n.Name = v.ToStr() },
	},
	14: { // _droptarget, read-only; no drag-and-drop state is tracked (StartDrag/EndDrag are out of scope)
		get: func(n, root *Node) Value {
			if root == nil {
				return StringValue("")
			}
			path, ok := root.pathTo(n)
			if !ok {
				return StringValue("")
			}
			return StringValue("/" + path)
		},
	},
	15: { // _url, read-only; this player has no source-location concept on a Node
		get: func(n, _ *Node) Value { return StringValue("") },
	},
	16: { // _highquality, read-only
		get: func(n, _ *Node) Value { return NumberValue(1) },
	},
	17: { // _focusrect, read-only; no focus/keyboard-navigation model
		get: func(n, _ *Node) Value { return NumberValue(1) },
	},
	18: { // _soundbuftime, read-only; audio playback is an explicit non-goal
		get: func(n, _ *Node) Value { return NumberValue(0) },
	},
	19: { // _quality, read-only
		get: func(n, _ *Node) Value { return StringValue("HIGH") },
	},
	20: { // _xmouse, read-only; no pointer position is tracked
		get: func(n, _ *Node) Value { return NumberValue(0) },
	},
	21: { // _ymouse, read-only
		get: func(n, _ *Node) Value { return NumberValue(0) },
	},
}

func (in *Interpreter) getClipProperty(ctx *Context, path string, idx int) Value {
	if idx < 0 || idx >= len(clipProperties) || clipProperties[idx].get == nil {
		return UndefinedValue()
	}
	target, ok := ctx.resolveTarget(path)
	if !ok {
		return UndefinedValue()
	}
	return clipProperties[idx].get(target, ctx.Root)
}

func (in *Interpreter) setClipProperty(ctx *Context, path string, idx int, v Value) {
	if idx < 0 || idx >= len(clipProperties) || clipProperties[idx].set == nil {
		return
	}
	target, ok := ctx.resolveTarget(path)
	if !ok {
		return
	}
	clipProperties[idx].set(target, v, ctx.Version)
}

func (in *Interpreter) stubCall(ctx *Context, op byte) error {
	// Drop the declared argument count and arguments so the stack stays
	// balanced for the remainder of the action stream, and push undefined
	// as the call's result.
	switch op {
	case opCallFunction:
		name, err := ctx.Pop()
		if err != nil {
			return err
		}
		_ = name
	case opCallMethod, opNewMethod:
		if _, err := ctx.Pop(); err != nil { // method name
			return err
		}
		if _, err := ctx.Pop(); err != nil { // object
			return err
		}
	}
	argc, err := ctx.Pop()
	if err != nil {
		return err
	}
	for i := 0; i < int(argc.ToNumber(ctx.Version)); i++ {
		if _, err := ctx.Pop(); err != nil {
			return err
		}
	}
	ctx.Push(UndefinedValue())
	return nil
}

func (in *Interpreter) roots(ctx *Context) []*Object {
	roots := []*Object{in.Global}
	roots = append(roots, ctx.ScopeChain...)
	if ctx.This != nil {
		roots = append(roots, ctx.This)
	}
	for _, v := range ctx.Stack {
		if v.Kind == ValueObject && v.Obj != nil {
			roots = append(roots, v.Obj)
		}
	}
	return roots
}

func binaryNumericOp(ctx *Context, version int, f func(a, b float64) float64) error {
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	ctx.Push(NumberValue(f(a.ToNumber(version), b.ToNumber(version))))
	return nil
}

func binaryIntOp(ctx *Context, f func(a, b int32) int32) error {
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	ctx.Push(NumberValue(float64(f(int32(a.ToNumber(ctx.Version)), int32(b.ToNumber(ctx.Version))))))
	return nil
}

func binaryBoolOp(ctx *Context, f func(a, b bool) bool) error {
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	ctx.Push(BoolValue(f(a.ToBoolean(), b.ToBoolean())))
	return nil
}

func binaryCompareOp(ctx *Context, f func(a, b Value) bool) error {
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	ctx.Push(BoolValue(f(a, b)))
	return nil
}
