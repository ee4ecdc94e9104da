package lisp

import "math/bits"

// The hash-map trie consumes the structural hash five bits per level.
// Hashes are exhausted past maxHashShift, at which point colliding keys
// share a collision node scanned linearly.
const (
	hashBits     = 5
	hashMask     = 1<<hashBits - 1
	maxHashShift = 60
)

// mapNode is one node of a hash-map trie.  A bitmapped node holds one entry
// per set bit, in bit order.  A collision node holds key-value entries with
// identical hashes and ignores the bitmap.
type mapNode struct {
	bitmap    uint32
	entries   []mapEntry
	collision bool
}

// mapEntry is a slot of a mapNode: either a key-value leaf or a pointer to
// a deeper node.
type mapEntry struct {
	key  *LVal
	val  *LVal
	node *mapNode
}

// HashMap returns an empty hash-map.
func HashMap() *LVal {
	return &LVal{Type: LHashMap}
}

// hashMapFromCells returns a hash-map built from alternating key and value
// cells.
func hashMapFromCells(cells []*LVal) *LVal {
	m := HashMap()
	for i := 0; i+1 < len(cells); i += 2 {
		m = hashMapAssoc(m, cells[i], cells[i+1])
	}
	return m
}

// hashMapGet returns the value stored under k.
func hashMapGet(m *LVal, k *LVal) (*LVal, bool) {
	n := m.root
	if n == nil {
		return nil, false
	}
	h := hashVal(k)
	shift := uint(0)
	for {
		if n.collision {
			for _, e := range n.entries {
				if Equal(e.key, k) {
					return e.val, true
				}
			}
			return nil, false
		}
		bit := uint32(1) << ((h >> shift) & hashMask)
		if n.bitmap&bit == 0 {
			return nil, false
		}
		e := n.entries[bits.OnesCount32(n.bitmap&(bit-1))]
		if e.node == nil {
			if Equal(e.key, k) {
				return e.val, true
			}
			return nil, false
		}
		n = e.node
		shift += hashBits
	}
}

// hashMapAssoc returns a hash-map with k bound to v, sharing unmodified
// trie nodes with m.
func hashMapAssoc(m *LVal, k *LVal, v *LVal) *LVal {
	root, added := nodeAssoc(m.root, 0, hashVal(k), k, v)
	count := m.Int
	if added {
		count++
	}
	return &LVal{Type: LHashMap, root: root, Int: count, Meta: m.Meta}
}

// hashMapDissoc returns a hash-map without the entry stored under k.
// Removing an absent key returns m itself.
func hashMapDissoc(m *LVal, k *LVal) *LVal {
	root, removed := nodeDissoc(m.root, 0, hashVal(k), k)
	if !removed {
		return m
	}
	return &LVal{Type: LHashMap, root: root, Int: m.Int - 1, Meta: m.Meta}
}

// hashMapEntries flattens m into alternating key and value cells, the shape
// shared with array-maps.
func hashMapEntries(m *LVal) []*LVal {
	if m.root == nil {
		return nil
	}
	cells := make([]*LVal, 0, 2*m.Int)
	return nodeEntries(m.root, cells)
}

func nodeEntries(n *mapNode, cells []*LVal) []*LVal {
	for _, e := range n.entries {
		if e.node != nil {
			cells = nodeEntries(e.node, cells)
		} else {
			cells = append(cells, e.key, e.val)
		}
	}
	return cells
}

func nodeAssoc(n *mapNode, shift uint, h uint64, k *LVal, v *LVal) (*mapNode, bool) {
	if n == nil {
		return &mapNode{
			bitmap:  uint32(1) << ((h >> shift) & hashMask),
			entries: []mapEntry{{key: k, val: v}},
		}, true
	}
	if n.collision {
		for i, e := range n.entries {
			if Equal(e.key, k) {
				entries := copyEntries(n.entries, 0)
				entries[i] = mapEntry{key: k, val: v}
				return &mapNode{entries: entries, collision: true}, false
			}
		}
		entries := copyEntries(n.entries, 1)
		entries = append(entries, mapEntry{key: k, val: v})
		return &mapNode{entries: entries, collision: true}, true
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	if n.bitmap&bit == 0 {
		entries := make([]mapEntry, 0, len(n.entries)+1)
		entries = append(entries, n.entries[:pos]...)
		entries = append(entries, mapEntry{key: k, val: v})
		entries = append(entries, n.entries[pos:]...)
		return &mapNode{bitmap: n.bitmap | bit, entries: entries}, true
	}
	e := n.entries[pos]
	if e.node != nil {
		child, added := nodeAssoc(e.node, shift+hashBits, h, k, v)
		entries := copyEntries(n.entries, 0)
		entries[pos] = mapEntry{node: child}
		return &mapNode{bitmap: n.bitmap, entries: entries}, added
	}
	if Equal(e.key, k) {
		entries := copyEntries(n.entries, 0)
		entries[pos] = mapEntry{key: k, val: v}
		return &mapNode{bitmap: n.bitmap, entries: entries}, false
	}
	child := mergeLeaves(shift+hashBits, hashVal(e.key), e, h, mapEntry{key: k, val: v})
	entries := copyEntries(n.entries, 0)
	entries[pos] = mapEntry{node: child}
	return &mapNode{bitmap: n.bitmap, entries: entries}, true
}

// mergeLeaves builds the subtrie distinguishing two leaves whose hashes
// agree on all bits below shift.
func mergeLeaves(shift uint, h1 uint64, e1 mapEntry, h2 uint64, e2 mapEntry) *mapNode {
	if shift > maxHashShift {
		return &mapNode{entries: []mapEntry{e1, e2}, collision: true}
	}
	i1 := (h1 >> shift) & hashMask
	i2 := (h2 >> shift) & hashMask
	if i1 == i2 {
		child := mergeLeaves(shift+hashBits, h1, e1, h2, e2)
		return &mapNode{
			bitmap:  uint32(1) << i1,
			entries: []mapEntry{{node: child}},
		}
	}
	n := &mapNode{bitmap: uint32(1)<<i1 | uint32(1)<<i2}
	if i1 < i2 {
		n.entries = []mapEntry{e1, e2}
	} else {
		n.entries = []mapEntry{e2, e1}
	}
	return n
}

func nodeDissoc(n *mapNode, shift uint, h uint64, k *LVal) (*mapNode, bool) {
	if n == nil {
		return nil, false
	}
	if n.collision {
		for i, e := range n.entries {
			if Equal(e.key, k) {
				if len(n.entries) == 1 {
					return nil, true
				}
				entries := make([]mapEntry, 0, len(n.entries)-1)
				entries = append(entries, n.entries[:i]...)
				entries = append(entries, n.entries[i+1:]...)
				return &mapNode{entries: entries, collision: true}, true
			}
		}
		return n, false
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	if n.bitmap&bit == 0 {
		return n, false
	}
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	e := n.entries[pos]
	if e.node != nil {
		child, removed := nodeDissoc(e.node, shift+hashBits, h, k)
		if !removed {
			return n, false
		}
		entries := copyEntries(n.entries, 0)
		if child == nil {
			if len(entries) == 1 {
				return nil, true
			}
			entries = append(entries[:pos], entries[pos+1:]...)
			return &mapNode{bitmap: n.bitmap &^ bit, entries: entries}, true
		}
		entries[pos] = mapEntry{node: child}
		return &mapNode{bitmap: n.bitmap, entries: entries}, true
	}
	if !Equal(e.key, k) {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	entries := make([]mapEntry, 0, len(n.entries)-1)
	entries = append(entries, n.entries[:pos]...)
	entries = append(entries, n.entries[pos+1:]...)
	return &mapNode{bitmap: n.bitmap &^ bit, entries: entries}, true
}

func copyEntries(entries []mapEntry, extra int) []mapEntry {
	cp := make([]mapEntry, len(entries), len(entries)+extra)
	copy(cp, entries)
	return cp
}
