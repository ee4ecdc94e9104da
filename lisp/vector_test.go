package lisp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorConj(t *testing.T) {
	v0 := Vector(nil)
	assert.Equal(t, "[]", v0.String())
	v1 := vectorConj(v0, Int(1))
	v2 := vectorConj(v1, Int(2))
	// v1 no longer owns the tail, so branching from it copies.
	v3 := vectorConj(v1, Int(3))
	assert.Equal(t, "[]", v0.String())
	assert.Equal(t, "[1]", v1.String())
	assert.Equal(t, "[1 2]", v2.String())
	assert.Equal(t, "[1 3]", v3.String())
}

func TestVectorOwnedTail(t *testing.T) {
	v := Vector(make([]*LVal, 0, 4))
	v2 := vectorConj(v, Int(1))
	// Spare capacity was claimed in place rather than copied.
	assert.Same(t, v.owner, v2.owner)
	assert.NotEqual(t, v.stamp, v2.stamp)
	assert.Equal(t, 4, cap(v2.Cells))
	// The stale handle must copy when extended.
	v3 := vectorConj(v, Int(9))
	assert.NotSame(t, v.owner, v3.owner)
	assert.Equal(t, "[9]", v3.String())
	assert.Equal(t, "[1]", v2.String())
}

func TestVectorGrowth(t *testing.T) {
	v := Vector(nil)
	for i := 0; i < 100; i++ {
		v = vectorConj(v, Int(int64(i)))
	}
	require.Equal(t, 100, v.Len())
	for i, c := range v.Cells {
		require.Equal(t, int64(i), c.Int, "index: %d", i)
	}
	assert.LessOrEqual(t, cap(v.Cells), 200)
}

func TestVectorAssoc(t *testing.T) {
	env := testEnv(t)
	v := Vector([]*LVal{Int(1), Int(2), Int(3)})
	v2 := vectorAssoc(env, v, 1, Int(9))
	assert.Equal(t, "[1 9 3]", v2.String())
	assert.Equal(t, "[1 2 3]", v.String())
	// Index n appends.
	v3 := vectorAssoc(env, v, 3, Int(4))
	assert.Equal(t, "[1 2 3 4]", v3.String())
	lerr := vectorAssoc(env, v, 5, Int(0))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionIndex, Condition(lerr))
	lerr = vectorAssoc(env, v, -1, Int(0))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionIndex, Condition(lerr))
}

func TestVectorSubVec(t *testing.T) {
	env := testEnv(t)
	v := Vector([]*LVal{Int(1), Int(2), Int(3), Int(4)})
	sub := vectorSubVec(env, v, 1, 3)
	require.Equal(t, LVector, sub.Type)
	assert.Equal(t, "[2 3]", sub.String())
	// Extending the view copies instead of clobbering v's buffer.
	sub2 := vectorConj(sub, Int(9))
	assert.Equal(t, "[2 3 9]", sub2.String())
	assert.Equal(t, "[1 2 3 4]", v.String())

	empty := vectorSubVec(env, v, 2, 2)
	require.Equal(t, LVector, empty.Type)
	assert.Equal(t, 0, empty.Len())

	for _, bounds := range [][2]int64{{-1, 2}, {3, 1}, {1, 5}} {
		lerr := vectorSubVec(env, v, bounds[0], bounds[1])
		require.Equal(t, LError, lerr.Type, "bounds: %v", bounds)
		assert.Equal(t, ConditionIndex, Condition(lerr), "bounds: %v", bounds)
	}
}

func TestVectorPopPeek(t *testing.T) {
	env := testEnv(t)
	v := Vector([]*LVal{Int(1), Int(2), Int(3)})
	assert.Equal(t, int64(3), vectorPeek(env, v).Int)
	p := vectorPop(env, v)
	assert.Equal(t, "[1 2]", p.String())
	assert.Equal(t, "[1 2 3]", v.String())
	// The popped view does not own the buffer either.
	p2 := vectorConj(p, Int(9))
	assert.Equal(t, "[1 2 9]", p2.String())
	assert.Equal(t, "[1 2 3]", v.String())

	assert.True(t, vectorPeek(env, Vector(nil)).IsNil())
	lerr := vectorPop(env, Vector(nil))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionValue, Condition(lerr))
}

func TestVectorMeta(t *testing.T) {
	v := Vector([]*LVal{Int(1)})
	v.Meta = arrayMapAssoc(nil, ArrayMap(), Keyword("tag"), String("xs"))
	v2 := vectorConj(v, Int(2))
	assert.Same(t, v.Meta, v2.Meta)
	env := testEnv(t)
	v3 := vectorAssoc(env, v, 0, Int(9))
	assert.Same(t, v.Meta, v3.Meta)
	p := vectorPop(env, v)
	assert.Same(t, v.Meta, p.Meta)
}

func TestVectorConcurrentBranching(t *testing.T) {
	// Many handles branched from one vector each extend independently.
	base := Vector(nil)
	for i := 0; i < 8; i++ {
		base = vectorConj(base, Int(int64(i)))
	}
	branches := make([]*LVal, 4)
	for i := range branches {
		branches[i] = vectorConj(base, Int(int64(100+i)))
	}
	for i, b := range branches {
		require.Equal(t, 9, b.Len(), "branch: %d", i)
		assert.Equal(t, int64(100+i), b.Cells[8].Int, "branch: %d", i)
	}
	assert.Equal(t, 8, base.Len())
}

func ExampleVector() {
	v := Vector([]*LVal{Int(1), Int(2)})
	fmt.Println(vectorConj(v, Int(3)))
	fmt.Println(v)
	// Output:
	// [1 2 3]
	// [1 2]
}
