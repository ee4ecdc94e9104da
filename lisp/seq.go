package lisp

import "unicode/utf8"

// Seq returns the sequence view of v: v itself when already a non-empty
// sequence, a list view of an aggregate's elements, a cons walk of a
// string's code points, an entry sequence of a map, or a nil value when v
// is empty.  Forcing a lazy sequence realizes exactly one step.  A value
// with no sequence view returns a type error.
func Seq(v *LVal) *LVal {
	switch v.Type {
	case LNil:
		return v
	case LList, LVector, LHashSet:
		if len(v.Cells) == 0 {
			return Nil()
		}
		if v.Type == LList {
			return v
		}
		return List(v.Cells)
	case LCons, LChunkedCons:
		return v
	case LLazySeq:
		return force(v)
	case LString:
		if v.Str == "" {
			return Nil()
		}
		return stringSeq(v.Str)
	case LArrayMap, LHashMap:
		return entrySeq(v)
	}
	return ErrorConditionf(ConditionType, "cannot seq value of type %v", v.Type)
}

// stringSeq returns a cons of the first code point of s onto its remaining
// suffix.  The suffix shares s's bytes, keeping each step O(1).
func stringSeq(s string) *LVal {
	r, size := utf8.DecodeRuneInString(s)
	return Cons(Char(r), String(s[size:]))
}

// entrySeq returns the entries of a map as a list of two-element key-value
// vectors, or a nil value for an empty map.
func entrySeq(m *LVal) *LVal {
	cells := mapEntryCells(m)
	if len(cells) == 0 {
		return Nil()
	}
	pairs := make([]*LVal, 0, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		pairs = append(pairs, Vector([]*LVal{cells[i], cells[i+1]}))
	}
	return List(pairs)
}

// First returns the first element of v's sequence view, or a nil value when
// v is empty.
func First(v *LVal) *LVal {
	s := Seq(v)
	switch s.Type {
	case LError:
		return s
	case LNil:
		return Nil()
	case LCons:
		return s.Head
	default:
		return s.Cells[0]
	}
}

// Rest returns v's sequence without its first element.  The result is never
// a nil value: an exhausted sequence yields the empty list.  The tail of a
// cons is returned without realizing it.
func Rest(v *LVal) *LVal {
	s := Seq(v)
	switch s.Type {
	case LError:
		return s
	case LNil:
		return List(nil)
	case LCons:
		return restTail(s.Tail)
	case LChunkedCons:
		if len(s.Cells) > 1 {
			return &LVal{Type: LChunkedCons, Cells: s.Cells[1:], Tail: s.Tail}
		}
		return restTail(s.Tail)
	default:
		if len(s.Cells) > 1 {
			return List(s.Cells[1:])
		}
		return List(nil)
	}
}

// restTail normalizes the continuation of a cons or chunked-cons for Rest.
// Lazy tails pass through unrealized.
func restTail(t *LVal) *LVal {
	if t.Type == LLazySeq {
		return t
	}
	s := Seq(t)
	switch s.Type {
	case LError:
		return s
	case LNil:
		return List(nil)
	}
	return s
}

// Next returns the sequence view of Rest, a nil value when fewer than two
// elements remain.
func Next(v *LVal) *LVal {
	r := Rest(v)
	if r.Type == LError {
		return r
	}
	return Seq(r)
}

// Second returns the second element of v's sequence view, or a nil value.
func Second(v *LVal) *LVal {
	return First(Rest(v))
}

// Last returns the final element of v's sequence view, or a nil value when
// v is empty.  Vectors answer in constant time.
func Last(env *LEnv, v *LVal) *LVal {
	if v.Type == LVector {
		return vectorPeek(env, v)
	}
	limit := env.eagerLimit()
	last := Nil()
	s := Seq(v)
	for n := int64(0); ; n++ {
		if s.Type == LError {
			return s
		}
		if s.IsNil() {
			return last
		}
		if n >= limit {
			return env.ValueErrorf("sequence realization exceeds limit: %d", limit)
		}
		last = First(s)
		s = Next(s)
	}
}

// Count returns the number of elements in v's sequence view.  Aggregates
// with a stored size answer in constant time.  Strings count code points.
// Counting a lazy walk longer than the eager limit is an error.
func Count(env *LEnv, v *LVal) *LVal {
	switch v.Type {
	case LNil:
		return Int(0)
	case LList, LVector, LHashSet, LChunk:
		return Int(int64(len(v.Cells)))
	case LArrayMap, LHashMap:
		return Int(int64(mapCount(v)))
	case LString:
		return Int(int64(utf8.RuneCountInString(v.Str)))
	case LCons, LLazySeq, LChunkedCons:
		limit := env.eagerLimit()
		var n int64
		s := Seq(v)
		for {
			switch {
			case s.Type == LError:
				return s
			case s.IsNil():
				return Int(n)
			case n >= limit:
				return env.ValueErrorf("sequence realization exceeds limit: %d", limit)
			}
			if s.Type == LChunkedCons {
				n += int64(len(s.Cells))
				s = Seq(s.Tail)
				continue
			}
			n++
			s = Next(s)
		}
	}
	return env.TypeErrorf("cannot count value of type %v", v.Type)
}

// seqCells materializes v's sequence view into a fresh slice that the
// caller may retain and reorder.  Realization past the runtime's eager
// limit is an error.
func seqCells(env *LEnv, v *LVal) ([]*LVal, *LVal) {
	limit := env.eagerLimit()
	switch v.Type {
	case LNil:
		return nil, nil
	case LList, LVector, LHashSet, LChunk:
		cells := make([]*LVal, len(v.Cells))
		copy(cells, v.Cells)
		return cells, nil
	case LArrayMap, LHashMap:
		entries := mapEntryCells(v)
		cells := make([]*LVal, 0, len(entries)/2)
		for i := 0; i+1 < len(entries); i += 2 {
			cells = append(cells, Vector([]*LVal{entries[i], entries[i+1]}))
		}
		return cells, nil
	case LString:
		cells := make([]*LVal, 0, len(v.Str))
		for _, r := range v.Str {
			cells = append(cells, Char(r))
		}
		return cells, nil
	}
	var cells []*LVal
	s := Seq(v)
	for {
		switch {
		case s.Type == LError:
			return nil, s
		case s.IsNil():
			return cells, nil
		case int64(len(cells)) >= limit:
			return nil, env.ValueErrorf("sequence realization exceeds limit: %d", limit)
		}
		if s.Type == LChunkedCons {
			cells = append(cells, s.Cells...)
			s = Seq(s.Tail)
			continue
		}
		cells = append(cells, First(s))
		s = Next(s)
	}
}

// SeqCells materializes the sequence view of v into a fresh slice that the
// caller may retain and reorder.  Lazy inputs are realized subject to the
// runtime's eager limit.  A non-nil second value reports the realization
// error.
func SeqCells(env *LEnv, v *LVal) ([]*LVal, *LVal) {
	return seqCells(env, v)
}

// nthSeq returns element i of v's sequence view by walking.  The def value
// stands in for an absent element, and a nil def makes absence an index
// error.
func nthSeq(env *LEnv, v *LVal, i int64, def *LVal) *LVal {
	if i >= 0 {
		s := Seq(v)
		for n := int64(0); ; n++ {
			if s.Type == LError {
				return s
			}
			if s.IsNil() {
				break
			}
			if n == i {
				return First(s)
			}
			s = Next(s)
		}
	}
	if def != nil {
		return def
	}
	return env.IndexErrorf("index out of range: %d", i)
}
