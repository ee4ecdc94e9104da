package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaturalOrderLadder(t *testing.T) {
	// Strictly ascending under the natural order.
	ladder := []*LVal{
		Nil(),
		Bool(false),
		Bool(true),
		Int(-5),
		Float(-1.5),
		Int(0),
		Float(2.5),
		Int(3),
		Char('a'),
		Char('b'),
		String("a"),
		String("b"),
		Keyword("a"),
		Keyword("b"),
		QKeyword("m", "a"),
		Symbol("a"),
		Symbol("b"),
		QSymbol("m", "a"),
		Vector([]*LVal{Int(1), Int(2)}),
		Vector([]*LVal{Int(1), Int(2), Int(3)}),
		Vector([]*LVal{Int(1), Int(3)}),
	}
	for i, a := range ladder {
		for j, b := range ladder {
			c, lerr := Compare(a, b)
			require.Nil(t, lerr, "pair: %v %v", a, b)
			assert.Equal(t, cmpInt(i, j), c, "pair: %v %v", a, b)
		}
	}
}

func TestCompareNumericMixed(t *testing.T) {
	c, lerr := Compare(Int(2), Float(2.0))
	require.Nil(t, lerr)
	assert.Equal(t, 0, c)
	c, _ = Compare(Float(1.5), Int(2))
	assert.Equal(t, -1, c)
	c, _ = Compare(Int(2), Float(1.5))
	assert.Equal(t, 1, c)
}

func TestCompareIncomparable(t *testing.T) {
	env := testEnv(t)
	pairs := [][2]*LVal{
		{List([]*LVal{Int(1)}), List([]*LVal{Int(1)})},
		{Int(1), List([]*LVal{Int(1)})},
		{ArrayMap(), ArrayMap()},
		{HashSet(), HashSet()},
		{env.GetFun(Symbol("identity")), Int(1)},
		// A vector is only as comparable as its elements.
		{Vector([]*LVal{List(nil)}), Vector([]*LVal{List(nil)})},
	}
	for _, pair := range pairs {
		_, lerr := Compare(pair[0], pair[1])
		require.NotNil(t, lerr, "pair: %v %v", pair[0], pair[1])
		assert.Equal(t, ConditionType, Condition(lerr), "pair: %v %v", pair[0], pair[1])
	}
}

func TestCompareFunInt(t *testing.T) {
	env := testEnv(t)
	calls := 0
	sub := Fun("test:sub", func(env *LEnv, args *LVal) *LVal {
		calls++
		return Int(args.Cells[0].Int - args.Cells[1].Int)
	})
	c, lerr := compareFun(env, sub, Int(1), Int(4))
	require.Nil(t, lerr)
	assert.Equal(t, -1, c)
	assert.Equal(t, 1, calls)
	c, _ = compareFun(env, sub, Int(4), Int(4))
	assert.Equal(t, 0, c)
	assert.Equal(t, 2, calls)
}

func TestCompareFunBooleanProbes(t *testing.T) {
	env := testEnv(t)
	calls := 0
	lt := Fun("test:lt", func(env *LEnv, args *LVal) *LVal {
		calls++
		return Bool(args.Cells[0].Int < args.Cells[1].Int)
	})
	// Less needs one probe.
	c, lerr := compareFun(env, lt, Int(1), Int(2))
	require.Nil(t, lerr)
	assert.Equal(t, -1, c)
	assert.Equal(t, 1, calls)
	// Greater and equal need the reversed second probe.
	calls = 0
	c, _ = compareFun(env, lt, Int(2), Int(1))
	assert.Equal(t, 1, c)
	assert.Equal(t, 2, calls)
	calls = 0
	c, _ = compareFun(env, lt, Int(2), Int(2))
	assert.Equal(t, 0, c)
	assert.Equal(t, 2, calls)
}

func TestCompareWith(t *testing.T) {
	env := testEnv(t)
	for _, cmp := range []*LVal{nil, NaturalOrder, Nil()} {
		c, lerr := compareWith(env, cmp, Int(1), Int(2))
		require.Nil(t, lerr, "cmp: %v", cmp)
		assert.Equal(t, -1, c, "cmp: %v", cmp)
	}
	_, lerr := compareWith(env, Int(1), Int(1), Int(2))
	require.NotNil(t, lerr)
	assert.Equal(t, ConditionType, Condition(lerr))
}

func TestSortCells(t *testing.T) {
	env := testEnv(t)
	cells := []*LVal{Int(3), Int(1), Int(2), Int(-4)}
	lerr := sortCells(env, cells, nil, nil)
	require.Nil(t, lerr)
	assert.Equal(t, "(-4 1 2 3)", List(cells).String())
}

func TestSortCellsStable(t *testing.T) {
	env := testEnv(t)
	byFirst := Fun("test:by-first", func(env *LEnv, args *LVal) *LVal {
		return Int(args.Cells[0].Cells[0].Int - args.Cells[1].Cells[0].Int)
	})
	cells := []*LVal{
		Vector([]*LVal{Int(1), Int(0)}),
		Vector([]*LVal{Int(0), Int(1)}),
		Vector([]*LVal{Int(1), Int(2)}),
		Vector([]*LVal{Int(0), Int(3)}),
	}
	lerr := sortCells(env, cells, byFirst, nil)
	require.Nil(t, lerr)
	// Ties keep their original relative order.
	assert.Equal(t, "([0 1] [0 3] [1 0] [1 2])", List(cells).String())
}

func TestSortCellsKeyFun(t *testing.T) {
	env := testEnv(t)
	abs := Fun("test:abs", func(env *LEnv, args *LVal) *LVal {
		n := args.Cells[0].Int
		if n < 0 {
			n = -n
		}
		return Int(n)
	})
	cells := []*LVal{Int(3), Int(-1), Int(2)}
	lerr := sortCells(env, cells, nil, abs)
	require.Nil(t, lerr)
	assert.Equal(t, "(-1 2 3)", List(cells).String())
}

func TestSortCellsError(t *testing.T) {
	env := testEnv(t)
	cells := []*LVal{List(nil), List(nil)}
	lerr := sortCells(env, cells, nil, nil)
	require.NotNil(t, lerr)
	assert.Equal(t, ConditionType, Condition(lerr))
}

func TestInsertSorted(t *testing.T) {
	env := testEnv(t)
	cells := []*LVal{Int(1), Int(2), Int(2), Int(3)}
	// New elements land after the members they tie with.
	pos, lerr := insertSorted(env, cells, nil, Int(2))
	require.Nil(t, lerr)
	assert.Equal(t, 3, pos)
	pos, _ = insertSorted(env, cells, nil, Int(0))
	assert.Equal(t, 0, pos)
	pos, _ = insertSorted(env, cells, nil, Int(9))
	assert.Equal(t, 4, pos)
}
