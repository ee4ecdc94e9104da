package lisp

// hashMapThreshold is the number of entries past which an unsorted
// array-map promotes to a hash-map.
const hashMapThreshold = 8

// ArrayMap returns an empty map that preserves insertion order.
func ArrayMap() *LVal {
	return &LVal{Type: LArrayMap}
}

// SortedMap returns an empty map ordered by the comparator cmp.  The
// NaturalOrder sentinel selects the natural ascending order.
func SortedMap(cmp *LVal) *LVal {
	return &LVal{Type: LArrayMap, Cmp: cmp}
}

// mapCount returns the number of entries in an array-map or hash-map.
func mapCount(m *LVal) int {
	switch m.Type {
	case LArrayMap:
		return len(m.Cells) / 2
	case LHashMap:
		return int(m.Int)
	}
	return 0
}

// mapEntryCells returns the entries of m as alternating key and value
// cells.  Array-maps return their backing cells, which must not be
// modified.  Hash-maps flatten their trie.
func mapEntryCells(m *LVal) []*LVal {
	switch m.Type {
	case LArrayMap:
		return m.Cells
	case LHashMap:
		return hashMapEntries(m)
	}
	return nil
}

// mapLookup finds the value stored under key k using structural equality.
// It does not consult a sorted map's comparator.
func mapLookup(m *LVal, k *LVal) (*LVal, bool) {
	switch m.Type {
	case LArrayMap:
		for i := 0; i+1 < len(m.Cells); i += 2 {
			if Equal(m.Cells[i], k) {
				return m.Cells[i+1], true
			}
		}
	case LHashMap:
		return hashMapGet(m, k)
	}
	return nil, false
}

// arrayMapScan returns the cell index of the key equal to k, or -1.  Sorted
// maps identify keys by their comparator so that two keys the comparator
// does not distinguish occupy one entry.
func arrayMapScan(env *LEnv, m *LVal, k *LVal) (int, *LVal) {
	if m.Cmp == nil {
		for i := 0; i+1 < len(m.Cells); i += 2 {
			if Equal(m.Cells[i], k) {
				return i, nil
			}
		}
		return -1, nil
	}
	for i := 0; i+1 < len(m.Cells); i += 2 {
		c, lerr := compareWith(env, m.Cmp, m.Cells[i], k)
		if lerr != nil {
			return 0, lerr
		}
		if c == 0 {
			return i, nil
		}
	}
	return -1, nil
}

// arrayMapAssoc returns a map with k bound to v.  Growing an unsorted map
// past the promotion threshold returns a hash-map instead, carrying any
// attached metadata.  Sorted maps insert at the comparator's position and
// never promote.
func arrayMapAssoc(env *LEnv, m *LVal, k *LVal, v *LVal) *LVal {
	i, lerr := arrayMapScan(env, m, k)
	if lerr != nil {
		return lerr
	}
	if i >= 0 {
		cells := m.copyCells(0)
		cells[i+1] = v
		return &LVal{Type: LArrayMap, Cells: cells, Cmp: m.Cmp, Meta: m.Meta}
	}
	if m.Cmp == nil && len(m.Cells)/2+1 > hashMapThreshold {
		hm := hashMapFromCells(m.Cells)
		hm.Meta = m.Meta
		return hashMapAssoc(hm, k, v)
	}
	pos := len(m.Cells)
	if m.Cmp != nil {
		var entry int
		entry, lerr = insertSortedPairs(env, m, k)
		if lerr != nil {
			return lerr
		}
		pos = entry
	}
	cells := make([]*LVal, 0, len(m.Cells)+2)
	cells = append(cells, m.Cells[:pos]...)
	cells = append(cells, k, v)
	cells = append(cells, m.Cells[pos:]...)
	return &LVal{Type: LArrayMap, Cells: cells, Cmp: m.Cmp, Meta: m.Meta}
}

// insertSortedPairs returns the cell index at which a new key k belongs in
// the sorted map m, after any keys that sort before it.
func insertSortedPairs(env *LEnv, m *LVal, k *LVal) (int, *LVal) {
	for i := 0; i+1 < len(m.Cells); i += 2 {
		c, lerr := compareWith(env, m.Cmp, k, m.Cells[i])
		if lerr != nil {
			return 0, lerr
		}
		if c < 0 {
			return i, nil
		}
	}
	return len(m.Cells), nil
}

// arrayMapDissoc returns a map without the entry stored under k.  Removing
// an absent key returns m itself.
func arrayMapDissoc(env *LEnv, m *LVal, k *LVal) *LVal {
	i, lerr := arrayMapScan(env, m, k)
	if lerr != nil {
		return lerr
	}
	if i < 0 {
		return m
	}
	cells := make([]*LVal, 0, len(m.Cells)-2)
	cells = append(cells, m.Cells[:i]...)
	cells = append(cells, m.Cells[i+2:]...)
	return &LVal{Type: LArrayMap, Cells: cells, Cmp: m.Cmp, Meta: m.Meta}
}

// mapAssoc binds k to v in an array-map or hash-map.
func mapAssoc(env *LEnv, m *LVal, k *LVal, v *LVal) *LVal {
	k, lerr := materializeKey(env, k)
	if lerr != nil {
		return lerr
	}
	switch m.Type {
	case LArrayMap:
		return arrayMapAssoc(env, m, k, v)
	case LHashMap:
		return hashMapAssoc(m, k, v)
	}
	return env.TypeErrorf("not a map: %v", m.Type)
}

// MapAssoc returns m with k bound to v, leaving m intact.  An unsorted
// array-map growing past the promotion threshold comes back as a hash-map.
func MapAssoc(env *LEnv, m *LVal, k *LVal, v *LVal) *LVal {
	return mapAssoc(env, m, k, v)
}

// mapDissoc removes the entry stored under k from an array-map or hash-map.
func mapDissoc(env *LEnv, m *LVal, k *LVal) *LVal {
	k, lerr := materializeKey(env, k)
	if lerr != nil {
		return lerr
	}
	switch m.Type {
	case LArrayMap:
		return arrayMapDissoc(env, m, k)
	case LHashMap:
		return hashMapDissoc(m, k)
	}
	return env.TypeErrorf("not a map: %v", m.Type)
}

// mapGet returns the value stored under k, or def when the key is absent.
// Sorted maps locate keys with their comparator.
func mapGet(env *LEnv, m *LVal, k *LVal, def *LVal) *LVal {
	if m.Type == LArrayMap && m.Cmp != nil {
		i, lerr := arrayMapScan(env, m, k)
		if lerr != nil {
			return lerr
		}
		if i < 0 {
			return def
		}
		return m.Cells[i+1]
	}
	v, ok := mapLookup(m, k)
	if !ok {
		return def
	}
	return v
}

// mapContains reports whether m stores an entry under k.
func mapContains(env *LEnv, m *LVal, k *LVal) *LVal {
	if m.Type == LArrayMap && m.Cmp != nil {
		i, lerr := arrayMapScan(env, m, k)
		if lerr != nil {
			return lerr
		}
		return Bool(i >= 0)
	}
	_, ok := mapLookup(m, k)
	return Bool(ok)
}

// mapMerge binds every entry of the map other into m.  Entries of other win
// conflicts, and promotion applies as it would under repeated assoc.
func mapMerge(env *LEnv, m *LVal, other *LVal) *LVal {
	cells := mapEntryCells(other)
	for i := 0; i+1 < len(cells); i += 2 {
		m = mapAssoc(env, m, cells[i], cells[i+1])
		if m.Type == LError {
			return m
		}
	}
	return m
}

// mapMergeWith merges other into m, combining the values of conflicting
// keys with fun, which receives m's value then other's value.
func mapMergeWith(env *LEnv, fun *LVal, m *LVal, other *LVal) *LVal {
	cells := mapEntryCells(other)
	for i := 0; i+1 < len(cells); i += 2 {
		k, v := cells[i], cells[i+1]
		prev := mapGet(env, m, k, nil)
		if prev != nil {
			if prev.Type == LError {
				return prev
			}
			v = env.call2(fun, prev, v)
			if v.Type == LError {
				return v
			}
		}
		m = mapAssoc(env, m, k, v)
		if m.Type == LError {
			return m
		}
	}
	return m
}

// materializeKey realizes a lazy sequence used as a map key or set element
// so that lookups can rely on structural equality without forcing.
func materializeKey(env *LEnv, k *LVal) (*LVal, *LVal) {
	if k.Type != LLazySeq {
		return k, nil
	}
	cells, lerr := seqCells(env, k)
	if lerr != nil {
		return nil, lerr
	}
	return List(cells), nil
}
