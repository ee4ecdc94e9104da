package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConj(t *testing.T) {
	env := testEnv(t)
	s := HashSet()
	for _, n := range []int64{3, 1, 2} {
		s = setConj(env, s, Int(n))
	}
	require.Equal(t, LHashSet, s.Type)
	assert.Equal(t, "#{3 1 2}", s.String())
	// Adding a member already present returns the same handle.
	assert.Same(t, s, setConj(env, s, Int(1)))
	// A vector equal to no member is a new member.
	s2 := setConj(env, s, Vector([]*LVal{Int(1)}))
	assert.Equal(t, "#{3 1 2 [1]}", s2.String())
	assert.Equal(t, 3, s.Len())
}

func TestSetContains(t *testing.T) {
	env := testEnv(t)
	s := setConj(env, HashSet(), List([]*LVal{Int(1), Int(2)}))
	assert.True(t, setContains(s, List([]*LVal{Int(1), Int(2)})))
	// Cross-representation equality applies to membership too.
	assert.True(t, setContains(s, Vector([]*LVal{Int(1), Int(2)})))
	assert.False(t, setContains(s, List([]*LVal{Int(1)})))
}

func TestSetDisj(t *testing.T) {
	env := testEnv(t)
	s := HashSet()
	for _, n := range []int64{1, 2, 3} {
		s = setConj(env, s, Int(n))
	}
	s2 := setDisj(env, s, Int(2))
	assert.Equal(t, "#{1 3}", s2.String())
	assert.Equal(t, "#{1 2 3}", s.String())
	assert.Same(t, s, setDisj(env, s, Int(9)))
}

func TestSortedSetNatural(t *testing.T) {
	env := testEnv(t)
	s := SortedSet(NaturalOrder)
	for _, n := range []int64{5, 1, 4, 1, 3} {
		s = setConj(env, s, Int(n))
	}
	assert.Equal(t, "#{1 3 4 5}", s.String())
}

func TestSortedSetComparator(t *testing.T) {
	env := testEnv(t)
	desc := Fun("test:desc", func(env *LEnv, args *LVal) *LVal {
		return Int(args.Cells[1].Int - args.Cells[0].Int)
	})
	s := SortedSet(desc)
	for _, n := range []int64{2, 5, 1, 4} {
		s = setConj(env, s, Int(n))
	}
	assert.Equal(t, "#{5 4 2 1}", s.String())
	// The comparator also decides which member disj removes.
	s2 := setDisj(env, s, Int(4))
	assert.Equal(t, "#{5 2 1}", s2.String())
}

func TestSortedSetComparatorIdentity(t *testing.T) {
	env := testEnv(t)
	byAbs := Fun("test:by-abs", func(env *LEnv, args *LVal) *LVal {
		a, b := args.Cells[0].Int, args.Cells[1].Int
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		return Int(a - b)
	})
	s := setConj(env, SortedSet(byAbs), Int(-3))
	// 3 and -3 are one member under the comparator, keeping the first.
	assert.Same(t, s, setConj(env, s, Int(3)))
	assert.Equal(t, "#{-3}", s.String())
}

func TestSetLazyElementMaterialized(t *testing.T) {
	env := testEnv(t)
	identity := env.GetFun(Symbol("identity"))
	elem := LazyMap(env, identity, List([]*LVal{Int(1), Int(2)}))
	s := setConj(env, HashSet(), elem)
	require.Equal(t, LHashSet, s.Type)
	assert.Equal(t, LList, s.Cells[0].Type)
	assert.True(t, setContains(s, List([]*LVal{Int(1), Int(2)})))
}

func TestSetEqualOrderIndependent(t *testing.T) {
	env := testEnv(t)
	a := HashSet()
	b := SortedSet(NaturalOrder)
	for _, n := range []int64{3, 1, 2} {
		a = setConj(env, a, Int(n))
	}
	for _, n := range []int64{1, 2, 3} {
		b = setConj(env, b, Int(n))
	}
	assert.True(t, Equal(a, b))
	b = setConj(env, b, Int(4))
	assert.False(t, Equal(a, b))
}
