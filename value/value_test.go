package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Sol, false},
		{Uninit, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), true},
		{String(""), true},
		{FromArray(NewArray(nil)), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.IsTruthy(), "IsTruthy(%v)", c.v)
	}
}

func TestEqualAcrossNumericKinds(t *testing.T) {
	assert.True(t, Equal(Int(3), Uint(3)), "Int(3) should equal Uint(3)")
	assert.True(t, Equal(Int(3), Float(3)), "Int(3) should equal Float(3)")
	assert.False(t, Equal(Int(3), String("3")), `Int(3) should not equal String("3")`)
}

func TestEqualContainersByStructure(t *testing.T) {
	a := FromArray(NewArray([]Value{Int(1), Int(2)}))
	b := FromArray(NewArray([]Value{Int(1), Int(2)}))
	assert.True(t, Equal(a, b), "arrays with equal elements should be Equal")

	c := FromArray(NewArray([]Value{Int(1), Int(3)}))
	assert.False(t, Equal(a, c), "arrays with differing elements should not be Equal")
}

func TestLessMixedTypeFallsBackToText(t *testing.T) {
	assert.True(t, Less(Int(2), Int(10)), "numeric comparison should order 2 before 10, not lexicographically")
	// Mixed numeric/text comparisons fall back to lexicographic text
	// comparison, per the canonicalize-to-text rule.
	assert.True(t, Less(Int(10), String("2")), `Int(10) should order before "2" by text`)
}

func TestLessBooleanOrdering(t *testing.T) {
	assert.False(t, Less(Bool(true), Bool(false)), "true should not order before false")
	assert.True(t, Less(Bool(false), Bool(true)), "false should order before true")
}

func TestArrayAliasingThroughValue(t *testing.T) {
	arr := NewArray([]Value{Int(1)})
	original := FromArray(arr)
	alias := original
	alias.Array.Append(Int(2))

	assert.Len(t, original.Array.Elements, 2, "the aliased append should be visible through original")
}

func TestArrayCloneIsIndependent(t *testing.T) {
	arr := NewArray([]Value{Int(1), Int(2)})
	clone := arr.Clone()
	clone.Append(Int(3))

	assert.Len(t, arr.Elements, 2, "cloning should not affect the original array")
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set(String("z"), Int(1))
	m.Set(String("a"), Int(2))
	m.Set(String("z"), Int(3)) // re-setting an existing key shouldn't move it

	keys := m.Keys()
	if assert.Len(t, keys, 2) {
		assert.Equal(t, "z", keys[0].Str)
		assert.Equal(t, "a", keys[1].Str)
	}

	v, ok := m.Get(String("z"))
	assert.True(t, ok)
	assert.Equal(t, int64(3), v.Int, "re-setting 'z' should update its value")
}

func TestMapDeleteRemovesFromOrder(t *testing.T) {
	m := NewMap()
	m.Set(String("a"), Int(1))
	m.Set(String("b"), Int(2))
	m.Delete(String("a"))

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get(String("a"))
	assert.False(t, ok, "deleted key should no longer be present")
}

func TestStringValuesAreInterned(t *testing.T) {
	a := String("hello")
	b := String("hello")
	// Interning is an internal storage optimization; the observable
	// contract is just that equal strings still compare equal.
	assert.Equal(t, a.Str, b.Str)
}
