// Package value defines the runtime representation every Linh value is
// boxed into: a closed tagged union, rather than an interface, since the
// VM's hot loop dispatches on the tag far more often than it needs
// dynamic method dispatch.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"linh/bytecode"
)

// Kind tags which field of a Value is meaningful.
type Kind int

const (
	KindSol Kind = iota
	KindUninit
	KindInt
	KindUint
	KindFloat
	KindBool
	KindString
	KindArray
	KindMap
	KindFunction
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindSol:
		return "sol"
	case KindUninit:
		return "uninit"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindFunction:
		return "func"
	case KindNative:
		return "native"
	default:
		return "?"
	}
}

// Value is the VM's universal value representation.
type Value struct {
	Kind Kind

	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Str   string
	Array *Array
	Map   *Map
	Func  *bytecode.FunctionProto
}

// Sol is the language's null/"sol" value.
var Sol = Value{Kind: KindSol}

// Uninit is the sentinel produced by the "uninit" keyword: distinct from
// Sol so that a variable explicitly declared "= uninit" can be told apart
// from one that was simply never assigned.
var Uninit = Value{Kind: KindUninit}

func Int(n int64) Value        { return Value{Kind: KindInt, Int: n} }
func Uint(n uint64) Value      { return Value{Kind: KindUint, Uint: n} }
func Float(f float64) Value    { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value        { return Value{Kind: KindBool, Bool: b} }
func String(s string) Value    { return Value{Kind: KindString, Str: intern(s)} }
func FromArray(a *Array) Value { return Value{Kind: KindArray, Array: a} }
func FromMap(m *Map) Value     { return Value{Kind: KindMap, Map: m} }
func Function(f *bytecode.FunctionProto) Value {
	return Value{Kind: KindFunction, Func: f}
}

// Native wraps a built-in callable (pow, len, str, ...) identified by
// name; the VM's built-in dispatch table resolves it at call time.
func Native(name string) Value { return Value{Kind: KindNative, Str: name} }

// IsTruthy implements the language's truthiness rule: sol and false are
// falsy, the numeric zero values and empty containers are truthy (only
// bool and sol carry truthiness semantics; everything else is truthy so
// that "if someArray" reads as "if defined").
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindSol, KindUninit:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// IsNumeric reports whether v participates in arithmetic promotion.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindUint || v.Kind == KindFloat
}

// Equal implements the language's equality, comparing containers by deep
// structural equality and numerics across kinds by value.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return numericCompare(a, b) == 0
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSol, KindUninit:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	case KindArray:
		return a.Array == b.Array || arrayDeepEqual(a.Array, b.Array)
	case KindMap:
		return a.Map == b.Map || mapDeepEqual(a.Map, b.Map)
	case KindFunction:
		return a.Func == b.Func
	case KindNative:
		return a.Str == b.Str
	default:
		return false
	}
}

func arrayDeepEqual(a, b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		if !Equal(a.Elements[i], b.Elements[i]) {
			return false
		}
	}
	return true
}

func mapDeepEqual(a, b *Map) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.entries) != len(b.entries) {
		return false
	}
	for k, v := range a.entries {
		ov, ok := b.entries[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// numericCompare orders two numeric values of any numeric kinds. It
// renders both operands to their canonical decimal text; identical text
// compares equal. Otherwise both texts are parsed as float64 and ordered
// numerically, and only when those doubles tie (distinct values a
// float64 cannot tell apart) does it fall back to lexicographic order of
// the two texts.
func numericCompare(a, b Value) int {
	ca, cb := canonicalNumericText(a), canonicalNumericText(b)
	if ca == cb {
		return 0
	}
	af, _ := strconv.ParseFloat(ca, 64)
	bf, _ := strconv.ParseFloat(cb, 64)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return strings.Compare(ca, cb)
	}
}

func canonicalNumericText(v Value) string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return "0"
	}
}

// Less reports whether a orders before b, used by OP_LESS and friends.
// Numeric-with-numeric compares as doubles; boolean-with-boolean orders
// false before true; any other pairing (including a mismatched numeric
// vs. text comparison) falls back to lexicographic comparison of each
// side's text rendering.
func Less(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return numericCompare(a, b) < 0
	}
	if a.Kind == KindBool && b.Kind == KindBool {
		return !a.Bool && b.Bool
	}
	return a.String() < b.String()
}

// String renders v for "print" and string coercion.
func (v Value) String() string {
	switch v.Kind {
	case KindSol:
		return "sol"
	case KindUninit:
		return "uninit"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	case KindArray:
		return v.Array.String()
	case KindMap:
		return v.Map.String()
	case KindFunction:
		return fmt.Sprintf("<fn %s>", v.Func.Name)
	case KindNative:
		return fmt.Sprintf("<native %s>", v.Str)
	default:
		return "?"
	}
}
