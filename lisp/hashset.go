package lisp

// HashSet returns an empty set that preserves insertion order.
func HashSet() *LVal {
	return &LVal{Type: LHashSet}
}

// SortedSet returns an empty set ordered by the comparator cmp.  The
// NaturalOrder sentinel selects the natural ascending order.
func SortedSet(cmp *LVal) *LVal {
	return &LVal{Type: LHashSet, Cmp: cmp}
}

// setContains reports membership by structural equality, without consulting
// a sorted set's comparator.
func setContains(s *LVal, elem *LVal) bool {
	for _, c := range s.Cells {
		if Equal(c, elem) {
			return true
		}
	}
	return false
}

// setScan returns the index of the member matching elem, or -1.  Sorted
// sets identify members by their comparator.
func setScan(env *LEnv, s *LVal, elem *LVal) (int, *LVal) {
	if s.Cmp == nil {
		for i, c := range s.Cells {
			if Equal(c, elem) {
				return i, nil
			}
		}
		return -1, nil
	}
	for i, c := range s.Cells {
		cmp, lerr := compareWith(env, s.Cmp, c, elem)
		if lerr != nil {
			return 0, lerr
		}
		if cmp == 0 {
			return i, nil
		}
	}
	return -1, nil
}

// setConj returns a set with elem added.  Adding a member the set already
// contains returns s itself.  Sorted sets insert at the comparator's
// position by stable insertion.
func setConj(env *LEnv, s *LVal, elem *LVal) *LVal {
	elem, lerr := materializeKey(env, elem)
	if lerr != nil {
		return lerr
	}
	i, lerr := setScan(env, s, elem)
	if lerr != nil {
		return lerr
	}
	if i >= 0 {
		return s
	}
	pos := len(s.Cells)
	if s.Cmp != nil {
		pos, lerr = insertSorted(env, s.Cells, s.Cmp, elem)
		if lerr != nil {
			return lerr
		}
	}
	cells := make([]*LVal, 0, len(s.Cells)+1)
	cells = append(cells, s.Cells[:pos]...)
	cells = append(cells, elem)
	cells = append(cells, s.Cells[pos:]...)
	return &LVal{Type: LHashSet, Cells: cells, Cmp: s.Cmp, Meta: s.Meta}
}

// setDisj returns a set with the member matching elem removed.  Removing an
// absent member returns s itself.
func setDisj(env *LEnv, s *LVal, elem *LVal) *LVal {
	elem, lerr := materializeKey(env, elem)
	if lerr != nil {
		return lerr
	}
	i, lerr := setScan(env, s, elem)
	if lerr != nil {
		return lerr
	}
	if i < 0 {
		return s
	}
	cells := make([]*LVal, 0, len(s.Cells)-1)
	cells = append(cells, s.Cells[:i]...)
	cells = append(cells, s.Cells[i+1:]...)
	return &LVal{Type: LHashSet, Cells: cells, Cmp: s.Cmp, Meta: s.Meta}
}
