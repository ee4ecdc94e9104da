package lisp

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Equal returns true when a and b are structurally equal.  Scalars are equal
// within the same variant only, so an int never equals a float.  Sequential
// values of different representations are equal when their elements are,
// maps and sets are equal by content regardless of representation and entry
// order, and function values are equal only to themselves.  Lazy sequences
// are realized as far as the comparison requires.
func Equal(a *LVal, b *LVal) bool {
	if a == b {
		return true
	}
	if a.isSequential() && b.isSequential() {
		return equalSeq(a, b)
	}
	if a.isMap() && b.isMap() {
		return equalMap(a, b)
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case LNil:
		return true
	case LBool, LInt, LChar:
		return a.Int == b.Int
	case LFloat:
		return a.Float == b.Float
	case LString:
		return a.Str == b.Str
	case LSymbol, LKeyword:
		return a.NS == b.NS && a.Str == b.Str
	case LHashSet:
		return equalSet(a, b)
	case LReduced:
		return Equal(a.Cells[0], b.Cells[0])
	case LError:
		return a.Str == b.Str && equalCells(a.Cells, b.Cells)
	default:
		return false
	}
}

func (v *LVal) isSequential() bool {
	switch v.Type {
	case LList, LVector, LCons, LLazySeq, LChunkedCons:
		return true
	}
	return false
}

func (v *LVal) isMap() bool {
	return v.Type == LArrayMap || v.Type == LHashMap
}

func equalCells(a []*LVal, b []*LVal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSeq(a *LVal, b *LVal) bool {
	sa := Seq(a)
	sb := Seq(b)
	for {
		if sa.Type == LError || sb.Type == LError {
			return false
		}
		if sa.IsNil() || sb.IsNil() {
			return sa.IsNil() && sb.IsNil()
		}
		if !Equal(First(sa), First(sb)) {
			return false
		}
		sa = Next(sa)
		sb = Next(sb)
	}
}

func equalMap(a *LVal, b *LVal) bool {
	if mapCount(a) != mapCount(b) {
		return false
	}
	cells := mapEntryCells(a)
	for i := 0; i+1 < len(cells); i += 2 {
		v, ok := mapLookup(b, cells[i])
		if !ok || !Equal(v, cells[i+1]) {
			return false
		}
	}
	return true
}

func equalSet(a *LVal, b *LVal) bool {
	if len(a.Cells) != len(b.Cells) {
		return false
	}
	for _, elem := range a.Cells {
		if !setContains(b, elem) {
			return false
		}
	}
	return true
}

// Hash tags keep values that are never Equal from trivially colliding.
const (
	hashTagNil byte = iota
	hashTagFalse
	hashTagTrue
	hashTagInt
	hashTagFloat
	hashTagChar
	hashTagString
	hashTagSymbol
	hashTagKeyword
	hashTagSeq
	hashTagMap
	hashTagSet
	hashTagFun
	hashTagError
	hashTagReduced
	hashTagOpaque
)

// hashVal returns a structural hash consistent with Equal: values that are
// Equal hash identically regardless of representation.  Sequential values
// hash by ordered element walk under a common tag, maps and sets by an
// order-independent combination of their entries.
func hashVal(v *LVal) uint64 {
	switch {
	case v.isSequential():
		h := uint64(14695981039346656037)
		h = hashUint64(h, uint64(hashTagSeq))
		s := Seq(v)
		for !s.IsNil() && s.Type != LError {
			h = hashUint64(h, hashVal(First(s)))
			s = Next(s)
		}
		return h
	case v.isMap():
		var sum uint64
		cells := mapEntryCells(v)
		for i := 0; i+1 < len(cells); i += 2 {
			sum += hashVal(cells[i]) * 31
			sum += hashVal(cells[i+1])
		}
		return hashScalar(hashTagMap, sum)
	}
	switch v.Type {
	case LNil:
		return hashScalar(hashTagNil, 0)
	case LBool:
		if v.Int != 0 {
			return hashScalar(hashTagTrue, 1)
		}
		return hashScalar(hashTagFalse, 0)
	case LInt:
		return hashScalar(hashTagInt, uint64(v.Int))
	case LFloat:
		return hashScalar(hashTagFloat, math.Float64bits(v.Float))
	case LChar:
		return hashScalar(hashTagChar, uint64(v.Int))
	case LString:
		return hashString(hashTagString, "", v.Str)
	case LSymbol:
		return hashString(hashTagSymbol, v.NS, v.Str)
	case LKeyword:
		return hashString(hashTagKeyword, v.NS, v.Str)
	case LHashSet:
		var sum uint64
		for _, elem := range v.Cells {
			sum += hashVal(elem)
		}
		return hashScalar(hashTagSet, sum)
	case LReduced:
		return hashUint64(hashScalar(hashTagReduced, 0), hashVal(v.Cells[0]))
	case LFun:
		return hashString(hashTagFun, "", v.FID)
	case LError:
		return hashString(hashTagError, v.Str, (*ErrorVal)(v).Error())
	default:
		return hashScalar(hashTagOpaque, uint64(v.Type))
	}
}

func hashScalar(tag byte, x uint64) uint64 {
	var b [9]byte
	b[0] = tag
	binary.LittleEndian.PutUint64(b[1:], x)
	h := fnv.New64a()
	h.Write(b[:])
	return h.Sum64()
}

func hashString(tag byte, ns string, s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte{tag})
	h.Write([]byte(ns))
	h.Write([]byte{0})
	h.Write([]byte(s))
	return h.Sum64()
}

func hashUint64(h uint64, x uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}
