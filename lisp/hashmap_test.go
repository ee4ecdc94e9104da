package lisp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashMapAssocGet(t *testing.T) {
	m := HashMap()
	for i := 0; i < 500; i++ {
		m = hashMapAssoc(m, Int(int64(i)), Int(int64(2*i)))
	}
	require.Equal(t, 500, mapCount(m))
	for i := 0; i < 500; i++ {
		v, ok := hashMapGet(m, Int(int64(i)))
		require.True(t, ok, "key: %d", i)
		require.Equal(t, int64(2*i), v.Int, "key: %d", i)
	}
	_, ok := hashMapGet(m, Int(500))
	assert.False(t, ok)
	_, ok = hashMapGet(m, String("5"))
	assert.False(t, ok)
}

func TestHashMapReplace(t *testing.T) {
	m := hashMapFromCells([]*LVal{Keyword("a"), Int(1), Keyword("b"), Int(2)})
	m2 := hashMapAssoc(m, Keyword("a"), Int(9))
	assert.Equal(t, 2, mapCount(m2))
	v, _ := hashMapGet(m2, Keyword("a"))
	assert.Equal(t, int64(9), v.Int)
	v, _ = hashMapGet(m, Keyword("a"))
	assert.Equal(t, int64(1), v.Int)
}

func TestHashMapDissoc(t *testing.T) {
	m := HashMap()
	for i := 0; i < 64; i++ {
		m = hashMapAssoc(m, Int(int64(i)), Int(int64(i)))
	}
	// Removing an absent key returns the same handle.
	assert.Same(t, m, hashMapDissoc(m, Int(100)))
	for i := 0; i < 64; i++ {
		m = hashMapDissoc(m, Int(int64(i)))
		require.Equal(t, 64-i-1, mapCount(m), "removed: %d", i+1)
		_, ok := hashMapGet(m, Int(int64(i)))
		require.False(t, ok, "removed: %d", i)
	}
	// A drained map sheds its trie entirely.
	assert.Nil(t, m.root)
	assert.Equal(t, "{}", m.String())
}

func TestHashMapEntries(t *testing.T) {
	m := HashMap()
	for i := 0; i < 40; i++ {
		m = hashMapAssoc(m, Int(int64(i)), Int(int64(i+1)))
	}
	cells := hashMapEntries(m)
	require.Len(t, cells, 80)
	seen := make(map[int64]bool)
	for i := 0; i+1 < len(cells); i += 2 {
		k, v := cells[i], cells[i+1]
		require.Equal(t, k.Int+1, v.Int, "key: %v", k)
		seen[k.Int] = true
	}
	assert.Len(t, seen, 40)
}

func TestHashMapStringKeys(t *testing.T) {
	m := HashMap()
	for i := 0; i < 128; i++ {
		m = hashMapAssoc(m, String(fmt.Sprintf("key-%d", i)), Int(int64(i)))
	}
	require.Equal(t, 128, mapCount(m))
	for i := 0; i < 128; i++ {
		v, ok := hashMapGet(m, String(fmt.Sprintf("key-%d", i)))
		require.True(t, ok, "key-%d", i)
		require.Equal(t, int64(i), v.Int, "key-%d", i)
	}
}

func TestHashMapCompositeKeys(t *testing.T) {
	// A list and a vector with equal elements are one key.
	m := hashMapAssoc(HashMap(), List([]*LVal{Int(1), Int(2)}), String("a"))
	m = hashMapAssoc(m, Vector([]*LVal{Int(1), Int(2)}), String("b"))
	require.Equal(t, 1, mapCount(m))
	v, ok := hashMapGet(m, List([]*LVal{Int(1), Int(2)}))
	require.True(t, ok)
	assert.Equal(t, "b", v.Str)
	v, ok = hashMapGet(m, Vector([]*LVal{Int(1), Int(2)}))
	require.True(t, ok)
	assert.Equal(t, "b", v.Str)
}

func TestHashMapCollisionNodes(t *testing.T) {
	// Identical hashes exhaust the trie and land in a collision bucket.
	e1 := mapEntry{key: Keyword("a"), val: Int(1)}
	e2 := mapEntry{key: Keyword("b"), val: Int(2)}
	n := mergeLeaves(0, 7, e1, 7, e2)
	depth := 0
	for !n.collision {
		require.Len(t, n.entries, 1, "depth: %d", depth)
		require.NotNil(t, n.entries[0].node, "depth: %d", depth)
		n = n.entries[0].node
		depth++
	}
	require.Len(t, n.entries, 2)

	// Replacing and adding inside the bucket behaves like any other node.
	n2, added := nodeAssoc(n, 65, 7, Keyword("b"), Int(20))
	assert.False(t, added)
	n3, added := nodeAssoc(n2, 65, 7, Keyword("c"), Int(3))
	assert.True(t, added)
	assert.Len(t, n3.entries, 3)
	n4, removed := nodeDissoc(n3, 65, 7, Keyword("a"))
	assert.True(t, removed)
	assert.Len(t, n4.entries, 2)
}
