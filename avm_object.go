// avm_object.go - AVM1 script objects, arrays, closures and execution contexts

package swf

import "strings"

// Object is the single representation behind every AVM1 reference type -
// plain object, array and function share this struct (discriminated by
// which of Elements/Closure is populated) rather than a type hierarchy,
// matching the tagged-variant-over-virtual-dispatch redesign applied
// throughout this package.
type Object struct {
	Prototype  *Object
	Properties map[string]Value
	Elements   []Value // populated when this object is an Array
	IsArray    bool
	Closure    *Closure // populated when this object is a function

	handle Handle
}

// NewObject allocates a plain object with no prototype.
func NewObject() *Object {
	return &Object{Properties: make(map[string]Value)}
}

// NewArray allocates an array object backed by Elements.
func NewArray(elems []Value) *Object {
	return &Object{Properties: make(map[string]Value), Elements: elems, IsArray: true}
}

// Get resolves a property, walking the prototype chain, the way AVM1's
// GetMember opcode does.
func (o *Object) Get(name string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if v, ok := cur.Properties[name]; ok {
			return v, true
		}
	}
	return UndefinedValue(), false
}

// Set assigns a property directly on o (AVM1 property assignment never
// walks the prototype chain to find where to write).
func (o *Object) Set(name string, v Value) {
	o.Properties[name] = v
}

// Closure is a compiled AVM1 function: its bytecode body, parameter
// names, and the captured scope chain (outer Contexts' object set) that
// distinguishes a closure from a bare top-level action sequence.
type Closure struct {
	Name       string
	ParamNames []string
	Body       []byte
	ScopeChain []*Object // captured at definition time, innermost last
	Version    int
}

// Context is one AVM1 execution frame: its operand stack, local
// variables/registers, constant pool (refreshed by ConstantPool actions)
// and scope chain used for unqualified identifier lookup, per §4.6's
// per-context state.
type Context struct {
	Stack     []Value
	Registers [4]Value // SWF4 register set, read by Push's register operand
	Locals    map[string]Value
	Constants []string
	ScopeChain []*Object
	This      *Object
	Version   int
	Clip      *Node // the clip SetTarget/SetTarget2 and timeline-control opcodes (Play/Stop/GotoFrame) currently act on
	Home      *Node // the clip that owns this context; SetTarget("") restores Clip to this
	Root      *Node // the movie's root clip, for resolving absolute ("/foo") target paths

	depth int // current ActionCall nesting depth on this context, checked against ScriptLimits.MaxCallDepth
}

// resolveTarget resolves a SetTarget-style path to the clip it names:
// absolute (leading "/") paths walk down from Root, relative paths walk
// down from the context's current Clip, and the empty path restores Home -
// matching ActionSetTarget/ActionSetTarget2 and the target half of a
// path-prefixed ("/clip:var") variable name.
func (c *Context) resolveTarget(path string) (*Node, bool) {
	if path == "" {
		return c.Home, c.Home != nil
	}
	base := c.Clip
	if strings.HasPrefix(path, "/") {
		base = c.Root
	}
	if base == nil {
		return nil, false
	}
	return base.Get(path)
}

// NewContext builds a top-level execution context for a clip's own timeline.
func NewContext(version int, global, this *Object) *Context {
	return &Context{
		Locals:     make(map[string]Value),
		ScopeChain: []*Object{global},
		This:       this,
		Version:    version,
	}
}

// Push appends to the operand stack.
func (c *Context) Push(v Value) { c.Stack = append(c.Stack, v) }

// Pop removes and returns the top of the operand stack, or a StackUnderflow
// error if it is empty - a recoverable error per the error handling design,
// not a panic, since a malformed or adversarial action stream must not
// crash the whole player.
func (c *Context) Pop() (Value, error) {
	if len(c.Stack) == 0 {
		return Value{}, newErr(StackUnderflow, "Context.Pop", "operand stack empty")
	}
	v := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return v, nil
}

// ResolveVariable looks up name first in Locals, then walking ScopeChain
// from innermost to outermost, matching AVM1's GetVariable semantics.
func (c *Context) ResolveVariable(name string) (Value, bool) {
	if v, ok := c.Locals[name]; ok {
		return v, true
	}
	for i := len(c.ScopeChain) - 1; i >= 0; i-- {
		if v, ok := c.ScopeChain[i].Get(name); ok {
			return v, true
		}
	}
	return UndefinedValue(), false
}

// SetVariable assigns name in the innermost scope object that already
// defines it, or in Locals if none does - matching AVM1's implicit local
// declaration on first assignment.
func (c *Context) SetVariable(name string, v Value) {
	for i := len(c.ScopeChain) - 1; i >= 0; i-- {
		if _, ok := c.ScopeChain[i].Properties[name]; ok {
			c.ScopeChain[i].Set(name, v)
			return
		}
	}
	c.Locals[name] = v
}
