package lisp

import "sync/atomic"

// vecOwner is shared by every vector handle branched from one backing
// buffer.  gen holds the stamp of the single handle allowed to extend the
// buffer's spare capacity in place.
type vecOwner struct {
	gen uint64
}

var vecStamp uint64

func nextVecStamp() uint64 {
	return atomic.AddUint64(&vecStamp, 1)
}

const minVectorCap = 8

// Vector returns an LVal representing a vector with the given elements.
// The returned vector takes ownership of cells and of any spare capacity
// beyond its length.
func Vector(cells []*LVal) *LVal {
	stamp := nextVecStamp()
	return &LVal{
		Type:  LVector,
		Cells: cells,
		stamp: stamp,
		owner: &vecOwner{gen: stamp},
	}
}

// vectorConj returns a vector with elem appended to v.  When v is the
// unique owner of its buffer's unused tail the element is written in place
// and ownership moves to the returned handle, leaving v's view unchanged.
// Otherwise the contents are copied into a buffer roughly twice the length.
func vectorConj(v *LVal, elem *LVal) *LVal {
	if v.owner != nil && v.stamp == v.owner.gen && len(v.Cells) < cap(v.Cells) {
		cells := v.Cells[: len(v.Cells)+1 : cap(v.Cells)]
		cells[len(cells)-1] = elem
		stamp := nextVecStamp()
		v.owner.gen = stamp
		return &LVal{
			Type:  LVector,
			Cells: cells,
			stamp: stamp,
			owner: v.owner,
			Meta:  v.Meta,
		}
	}
	newcap := 2 * len(v.Cells)
	if newcap < minVectorCap {
		newcap = minVectorCap
	}
	cells := make([]*LVal, len(v.Cells)+1, newcap)
	copy(cells, v.Cells)
	cells[len(cells)-1] = elem
	cp := Vector(cells)
	cp.Meta = v.Meta
	return cp
}

// vectorAssoc returns a vector with the element at index i replaced by
// elem.  An index equal to the length appends.
func vectorAssoc(env *LEnv, v *LVal, i int64, elem *LVal) *LVal {
	n := int64(len(v.Cells))
	switch {
	case i < 0 || i > n:
		return env.IndexErrorf("vector index out of range: %d", i)
	case i == n:
		return vectorConj(v, elem)
	}
	cells := v.copyCells(0)
	cells[i] = elem
	cp := Vector(cells)
	cp.Meta = v.Meta
	return cp
}

// vectorSubVec returns a view of v between start inclusive and end
// exclusive.  The view shares v's buffer and relinquishes ownership, so
// extending it always copies.
func vectorSubVec(env *LEnv, v *LVal, start int64, end int64) *LVal {
	n := int64(len(v.Cells))
	if start < 0 || end < start || end > n {
		return env.IndexErrorf("subvec bounds out of range: [%d %d) of %d", start, end, n)
	}
	return &LVal{Type: LVector, Cells: v.Cells[start:end:end]}
}

// vectorPop returns a view of v without its last element.  The view shares
// v's buffer without owning it.
func vectorPop(env *LEnv, v *LVal) *LVal {
	n := len(v.Cells)
	if n == 0 {
		return env.ValueErrorf("cannot pop empty vector")
	}
	return &LVal{Type: LVector, Cells: v.Cells[: n-1 : n-1], Meta: v.Meta}
}

func vectorPeek(env *LEnv, v *LVal) *LVal {
	n := len(v.Cells)
	if n == 0 {
		return Nil()
	}
	return v.Cells[n-1]
}
