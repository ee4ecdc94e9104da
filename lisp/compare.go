package lisp

import (
	"sort"
	"strings"
)

// compareRanks orders the comparable variants relative to each other.  A
// rank of -1 marks a variant that only a user comparator can order.
var compareRanks = map[LType]int{
	LNil:     0,
	LBool:    1,
	LInt:     2,
	LFloat:   2,
	LChar:    3,
	LString:  4,
	LKeyword: 5,
	LSymbol:  6,
	LVector:  7,
}

// Compare orders a and b naturally, returning a negative, zero, or positive
// int.  The natural order is nil < false < true < numbers by value < chars <
// strings by byte order < keywords < symbols (each namespace first) <
// vectors compared element-wise.  Comparing any other variant, or a vector
// element pair that cannot be compared, returns a type error in the second
// return value.
func Compare(a *LVal, b *LVal) (int, *LVal) {
	ra, aok := compareRanks[a.Type]
	rb, bok := compareRanks[b.Type]
	if !aok || !bok {
		return 0, ErrorConditionf(ConditionType, "cannot compare types: %v and %v", a.Type, b.Type)
	}
	if ra != rb {
		return cmpInt(ra, rb), nil
	}
	switch a.Type {
	case LNil:
		return 0, nil
	case LBool, LChar:
		return cmpInt64(a.Int, b.Int), nil
	case LInt:
		if b.Type == LInt {
			return cmpInt64(a.Int, b.Int), nil
		}
		return cmpFloat(float64(a.Int), b.Float), nil
	case LFloat:
		if b.Type == LInt {
			return cmpFloat(a.Float, float64(b.Int)), nil
		}
		return cmpFloat(a.Float, b.Float), nil
	case LString:
		return strings.Compare(a.Str, b.Str), nil
	case LSymbol, LKeyword:
		if a.NS != b.NS {
			return strings.Compare(a.NS, b.NS), nil
		}
		return strings.Compare(a.Str, b.Str), nil
	case LVector:
		n := len(a.Cells)
		if len(b.Cells) < n {
			n = len(b.Cells)
		}
		for i := 0; i < n; i++ {
			c, lerr := Compare(a.Cells[i], b.Cells[i])
			if lerr != nil {
				return 0, lerr
			}
			if c != 0 {
				return c, nil
			}
		}
		return cmpInt(len(a.Cells), len(b.Cells)), nil
	}
	return 0, ErrorConditionf(ConditionType, "cannot compare types: %v and %v", a.Type, b.Type)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFun orders a and b with the user comparator fun.  An integer result
// is interpreted by sign.  A boolean result is interpreted as a less-than
// predicate: a true result means a sorts before b, and a false result
// requires a second probe with the arguments reversed to distinguish equal
// from greater.
func compareFun(env *LEnv, fun *LVal, a *LVal, b *LVal) (int, *LVal) {
	ret := env.call2(fun, a, b)
	if ret.Type == LError {
		return 0, ret
	}
	switch ret.Type {
	case LInt:
		return cmpInt64(ret.Int, 0), nil
	case LFloat:
		return cmpFloat(ret.Float, 0), nil
	}
	if ret.IsTruthy() {
		return -1, nil
	}
	ret = env.call2(fun, b, a)
	if ret.Type == LError {
		return 0, ret
	}
	if ret.IsTruthy() {
		return 1, nil
	}
	return 0, nil
}

// compareWith orders a and b with the comparator value cmp.  A nil cmp and
// the NaturalOrder sentinel both select the natural order.
func compareWith(env *LEnv, cmp *LVal, a *LVal, b *LVal) (int, *LVal) {
	if cmp == nil || cmp == NaturalOrder || cmp.Type == LNil {
		return Compare(a, b)
	}
	if cmp.Type != LFun {
		return 0, env.TypeErrorf("comparator is not a function: %v", cmp.Type)
	}
	return compareFun(env, cmp, a, b)
}

// sortCells stable-sorts cells in place by the comparator cmp, projecting
// elements through the optional key function first.  It returns an error
// value when a comparison fails and nil otherwise.
func sortCells(env *LEnv, cells []*LVal, cmp *LVal, keyfun *LVal) *LVal {
	var lerr *LVal
	key := func(v *LVal) *LVal {
		if keyfun == nil {
			return v
		}
		return env.call1(keyfun, v)
	}
	sort.SliceStable(cells, func(i, j int) bool {
		if lerr != nil {
			return false
		}
		a := key(cells[i])
		if a.Type == LError {
			lerr = a
			return false
		}
		b := key(cells[j])
		if b.Type == LError {
			lerr = b
			return false
		}
		c, err := compareWith(env, cmp, a, b)
		if err != nil {
			lerr = err
			return false
		}
		return c < 0
	})
	return lerr
}

// insertSorted returns the position at which v belongs among the sorted
// cells, after any existing elements that compare equal.
func insertSorted(env *LEnv, cells []*LVal, cmp *LVal, v *LVal) (int, *LVal) {
	for i := range cells {
		c, lerr := compareWith(env, cmp, v, cells[i])
		if lerr != nil {
			return 0, lerr
		}
		if c < 0 {
			return i, nil
		}
	}
	return len(cells), nil
}
