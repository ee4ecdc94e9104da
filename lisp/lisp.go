package lisp

import (
	"bytes"
	"fmt"
	"strconv"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	LInvalid LType = iota
	LNil
	LBool
	LInt
	LFloat
	LChar
	LString
	LSymbol
	LKeyword
	LList
	LVector
	LArrayMap
	LHashMap
	LHashSet
	LCons
	LLazySeq
	LChunkBuffer
	LChunk
	LChunkedCons
	LReduced
	LFun
	LError
)

var ltypeStrings = []string{
	LInvalid:     "INVALID",
	LNil:         "nil",
	LBool:        "bool",
	LInt:         "int",
	LFloat:       "float",
	LChar:        "char",
	LString:      "string",
	LSymbol:      "symbol",
	LKeyword:     "keyword",
	LList:        "list",
	LVector:      "vector",
	LArrayMap:    "array-map",
	LHashMap:     "hash-map",
	LHashSet:     "hash-set",
	LCons:        "cons",
	LLazySeq:     "lazy-seq",
	LChunkBuffer: "chunk-buffer",
	LChunk:       "chunk",
	LChunkedCons: "chunked-cons",
	LReduced:     "reduced",
	LFun:         "function",
	LError:       "error",
}

func (t LType) String() string {
	if int(t) >= len(ltypeStrings) {
		return ltypeStrings[LInvalid]
	}
	return ltypeStrings[t]
}

// LBuiltin is a Go function that implements a lisp function.
type LBuiltin func(env *LEnv, args *LVal) *LVal

// LVal is a lisp value
type LVal struct {
	Type LType

	// Int holds integers, booleans (0 or 1), character code points, and the
	// entry count of a hash-map.
	Int   int64
	Float float64

	// Str holds string contents, symbol and keyword names, and error
	// messages.  NS holds the namespace of a qualified symbol or keyword and
	// is empty otherwise.
	Str string
	NS  string

	// Cells holds aggregate contents.  A list or vector stores its elements,
	// an array-map alternates keys and values, a hash-set stores its unique
	// members, a chunk and a chunked-cons store realized elements, a reduced
	// value wraps its single payload, and an error stores contextual values.
	// Cells are never mutated once visible to a caller.
	Cells []*LVal

	// Head and Tail are the fields of a cons.  Tail doubles as the
	// continuation of a chunked-cons and may be any seqable value.
	Head *LVal
	Tail *LVal

	// Cmp fixes the ordering of a sorted map or set.  A nil Cmp means
	// insertion order with lookup by Equal, NaturalOrder means ascending
	// natural order, and a function value is invoked as a comparator.
	Cmp *LVal

	// Meta is optional collection metadata.  Persistent updates carry it to
	// the value they return.
	Meta *LVal

	// Fields for function values.  Builtin is non-nil for native functions.
	// Native is an opaque payload owned by the host for functions that must
	// be invoked through the runtime's FunCaller.
	FID     string
	Builtin LBuiltin
	Native  interface{}

	stamp uint64     // vector: buffer generation this handle may extend
	owner *vecOwner  // vector: ownership cell shared by the backing buffer
	root  *mapNode   // hash-map: trie root, nil for the empty map
	node  *lazyNode  // lazy-seq: suspended computation
	buf   *chunkBuf  // chunk-buffer: mutable build state
}

// NaturalOrder is the comparator sentinel stored in the Cmp field of sorted
// maps and sets ordered by Compare.
var NaturalOrder = &LVal{Type: LSymbol, Str: "natural-order"}

// Nil returns an LVal representing nil, the absent value.
func Nil() *LVal {
	return &LVal{Type: LNil}
}

// Bool returns an LVal representing the boolean b.
func Bool(b bool) *LVal {
	v := &LVal{Type: LBool}
	if b {
		v.Int = 1
	}
	return v
}

// Int returns an LVal representing the integer x.
func Int(x int64) *LVal {
	return &LVal{Type: LInt, Int: x}
}

// Float returns an LVal representing the floating point number x.
func Float(x float64) *LVal {
	return &LVal{Type: LFloat, Float: x}
}

// Char returns an LVal representing the unicode code point c.
func Char(c rune) *LVal {
	return &LVal{Type: LChar, Int: int64(c)}
}

// String returns an LVal representing the string s.
func String(s string) *LVal {
	return &LVal{Type: LString, Str: s}
}

// Symbol returns an LVal representing the unqualified symbol named s.
func Symbol(s string) *LVal {
	return &LVal{Type: LSymbol, Str: s}
}

// QSymbol returns an LVal representing the symbol named s qualified by the
// namespace ns.
func QSymbol(ns string, s string) *LVal {
	return &LVal{Type: LSymbol, NS: ns, Str: s}
}

// Keyword returns an LVal representing the unqualified keyword named s.
func Keyword(s string) *LVal {
	return &LVal{Type: LKeyword, Str: s}
}

// QKeyword returns an LVal representing the keyword named s qualified by the
// namespace ns.
func QKeyword(ns string, s string) *LVal {
	return &LVal{Type: LKeyword, NS: ns, Str: s}
}

// List returns an LVal representing a list with the given elements.  The
// returned list takes ownership of cells, which must not be modified
// afterwards.
func List(cells []*LVal) *LVal {
	return &LVal{Type: LList, Cells: cells}
}

// Cons returns an LVal with head prepended to the seqable value tail.  The
// tail is not realized.
func Cons(head *LVal, tail *LVal) *LVal {
	if tail == nil {
		tail = Nil()
	}
	return &LVal{Type: LCons, Head: head, Tail: tail}
}

// Reduced returns an LVal wrapping v to signal early termination of a
// reduction.
func Reduced(v *LVal) *LVal {
	return &LVal{Type: LReduced, Cells: []*LVal{v}}
}

// Fun returns an LVal representing a native function implemented by fn.
func Fun(fid string, fn LBuiltin) *LVal {
	return &LVal{Type: LFun, FID: fid, Builtin: fn}
}

// HostFun returns an LVal representing a function owned by the host runtime.
// Invoking the returned value requires an environment configured with a
// FunCaller that understands the native payload.
func HostFun(fid string, native interface{}) *LVal {
	return &LVal{Type: LFun, FID: fid, Native: native}
}

// IsNil returns true if v represents nil.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsNumeric returns true if v is an int or a float.
func (v *LVal) IsNumeric() bool {
	return v.Type == LInt || v.Type == LFloat
}

// IsTruthy returns the condition value of v.  Only nil and false are
// logically false.
func (v *LVal) IsTruthy() bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Int != 0
	}
	return true
}

// IsSeq returns true if v is a realized sequence type.
func (v *LVal) IsSeq() bool {
	switch v.Type {
	case LList, LCons, LLazySeq, LChunkedCons:
		return true
	}
	return false
}

// IsSeqable returns true if v can be walked with Seq, First, and Rest.
func (v *LVal) IsSeqable() bool {
	switch v.Type {
	case LNil, LList, LVector, LCons, LLazySeq, LChunkedCons,
		LString, LArrayMap, LHashMap, LHashSet:
		return true
	}
	return false
}

// Len returns the number of cells directly held by v.  Argument lists passed
// to builtin functions report their argument count this way.
func (v *LVal) Len() int {
	return len(v.Cells)
}

// Copy returns a value that callers may retag or restamp without affecting
// v.  Cell contents are shared because cells are never mutated in place.  A
// copied vector relinquishes ownership of its backing buffer and reallocates
// on its next extension.
func (v *LVal) Copy() *LVal {
	if v == nil {
		return nil
	}
	cp := &LVal{}
	*cp = *v
	cp.stamp = 0
	cp.owner = nil
	return cp
}

// copyCells returns a copy of v.Cells with extra free slots appended.
func (v *LVal) copyCells(extra int) []*LVal {
	cells := make([]*LVal, len(v.Cells), len(v.Cells)+extra)
	copy(cells, v.Cells)
	return cells
}

var charNames = map[rune]string{
	'\n':   "newline",
	' ':    "space",
	'\t':   "tab",
	'\r':   "return",
	'\b':   "backspace",
	'\f':   "formfeed",
	'\x00': "nul",
}

func (v *LVal) String() string {
	switch v.Type {
	case LNil:
		return "nil"
	case LBool:
		if v.Int != 0 {
			return "true"
		}
		return "false"
	case LInt:
		return strconv.FormatInt(v.Int, 10)
	case LFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case LChar:
		if name, ok := charNames[rune(v.Int)]; ok {
			return `\` + name
		}
		return `\` + string(rune(v.Int))
	case LString:
		return strconv.Quote(v.Str)
	case LSymbol:
		return v.qualifiedName()
	case LKeyword:
		return ":" + v.qualifiedName()
	case LList, LCons, LChunkedCons:
		return seqString(v, "(", ")")
	case LVector:
		return seqString(v, "[", "]")
	case LArrayMap, LHashMap:
		return mapString(v)
	case LHashSet:
		return seqString(v, "#{", "}")
	case LLazySeq:
		return seqString(v, "(", ")")
	case LChunkBuffer:
		return fmt.Sprintf("#<chunk-buffer %d/%d>", len(v.buf.cells), cap(v.buf.cells))
	case LChunk:
		return fmt.Sprintf("#<chunk %d>", len(v.Cells))
	case LReduced:
		return fmt.Sprintf("#<reduced %v>", v.Cells[0])
	case LFun:
		if v.FID != "" {
			return fmt.Sprintf("#<fn %s>", v.FID)
		}
		return "#<fn>"
	case LError:
		return (*ErrorVal)(v).FullMessage()
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func (v *LVal) qualifiedName() string {
	if v.NS != "" {
		return v.NS + "/" + v.Str
	}
	return v.Str
}

// seqString renders the elements of a sequence without realizing lazy
// values.  An unrealized suffix prints as an ellipsis.
func seqString(v *LVal, left string, right string) string {
	var buf bytes.Buffer
	buf.WriteString(left)
	s := v
	for i := 0; s != nil; i++ {
		if s.Type == LLazySeq && !s.node.isRealized() {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("...")
			break
		}
		s = unforcedSeq(s)
		if s == nil {
			break
		}
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(seqFirst(s).String())
		s = seqRestRaw(s)
	}
	buf.WriteString(right)
	return buf.String()
}

func mapString(m *LVal) string {
	var buf bytes.Buffer
	buf.WriteString("{")
	cells := mapEntryCells(m)
	for i := 0; i+1 < len(cells); i += 2 {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(cells[i].String())
		buf.WriteString(" ")
		buf.WriteString(cells[i+1].String())
	}
	buf.WriteString("}")
	return buf.String()
}

// unforcedSeq normalizes v for printing without triggering realization.  It
// returns nil when v is exhausted.
func unforcedSeq(v *LVal) *LVal {
	switch v.Type {
	case LNil:
		return nil
	case LList, LVector, LHashSet:
		if len(v.Cells) == 0 {
			return nil
		}
		return v
	case LCons, LChunkedCons:
		return v
	case LLazySeq:
		return unforcedSeq(v.node.realized)
	case LString:
		if v.Str == "" {
			return nil
		}
		return stringSeq(v.Str)
	case LArrayMap, LHashMap:
		return unforcedSeq(entrySeq(v))
	}
	return nil
}

func seqFirst(s *LVal) *LVal {
	switch s.Type {
	case LCons:
		return s.Head
	default:
		return s.Cells[0]
	}
}

// seqRestRaw returns the raw continuation after the first element so the
// printing loop can detect an unrealized lazy tail before normalizing it.
func seqRestRaw(s *LVal) *LVal {
	switch s.Type {
	case LCons:
		return s.Tail
	case LChunkedCons:
		if len(s.Cells) > 1 {
			return &LVal{Type: LChunkedCons, Cells: s.Cells[1:], Tail: s.Tail}
		}
		return s.Tail
	default:
		if len(s.Cells) > 1 {
			return &LVal{Type: s.Type, Cells: s.Cells[1:]}
		}
		return nil
	}
}

// GoString returns the string payload of v when v is a string.
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}

// GoInt returns the integer payload of v when v is an int.
func GoInt(v *LVal) (int64, bool) {
	if v.Type != LInt {
		return 0, false
	}
	return v.Int, true
}

// GoFloat returns the numeric payload of v converted to a float when v is an
// int or a float.
func GoFloat(v *LVal) (float64, bool) {
	switch v.Type {
	case LInt:
		return float64(v.Int), true
	case LFloat:
		return v.Float, true
	}
	return 0, false
}

// GoError returns an error value equivalent to v when v is an error.
func GoError(v *LVal) error {
	if v.Type != LError {
		return nil
	}
	return (*ErrorVal)(v)
}
