package lisp

// LBuiltinDef is a built-in function definition.
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Doc() string
	Eval(env *LEnv, args *LVal) *LVal
}

type langBuiltin struct {
	name    string
	formals *LVal
	doc     string
	fun     LBuiltin
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Doc() string {
	return fun.doc
}

func (fun *langBuiltin) Eval(env *LEnv, args *LVal) *LVal {
	return fun.fun(env, args)
}

var userBuiltins []*langBuiltin
var langBuiltins = []*langBuiltin{
	{"seq", Formals("coll"),
		"Returns the sequence view of coll, or nil when coll is empty.",
		builtinSeq},
	{"first", Formals("coll"),
		"Returns the first element of coll, or nil when coll is empty.",
		builtinFirst},
	{"rest", Formals("coll"),
		"Returns coll without its first element, an empty list when none remain.",
		builtinRest},
	{"next", Formals("coll"),
		"Returns the seq of coll without its first element, or nil.",
		builtinNext},
	{"cons", Formals("head", "coll"),
		"Returns a sequence with head prepended to coll without realizing it.",
		builtinCons},
	{"count", Formals("coll"),
		"Returns the number of elements in coll.",
		builtinCount},
	{"second", Formals("coll"),
		"Returns the second element of coll, or nil.",
		builtinSecond},
	{"last", Formals("coll"),
		"Returns the final element of coll, or nil when coll is empty.",
		builtinLast},
	{"empty?", Formals("coll"),
		"Returns true when coll has no elements.",
		builtinEmptyP},
	{"contains?", Formals("coll", "key"),
		"Returns true when coll has an entry, member, or index equal to key.",
		builtinContainsP},
	{"keys", Formals("map"),
		"Returns a list of the keys of map in entry order, or nil.",
		builtinKeys},
	{"vals", Formals("map"),
		"Returns a list of the values of map in entry order, or nil.",
		builtinVals},
	{"list", Formals(VarArgSymbol, "elems"),
		"Returns a list of the given elements.",
		builtinList},
	{"vector", Formals(VarArgSymbol, "elems"),
		"Returns a vector of the given elements.",
		builtinVector},
	{"hash-map", Formals(VarArgSymbol, "keyvals"),
		"Returns a map of the given key-value pairs.",
		builtinHashMap},
	{"hash-set", Formals(VarArgSymbol, "elems"),
		"Returns a set of the given elements, dropping duplicates.",
		builtinHashSet},
	{"conj", Formals("coll", VarArgSymbol, "elems"),
		"Returns coll with the given elements added at its natural end.",
		builtinConj},
	{"assoc", Formals("coll", "key", "value", VarArgSymbol, "keyvals"),
		"Returns coll with key bound to value.  Vectors bind indexes.",
		builtinAssoc},
	{"dissoc", Formals("map", VarArgSymbol, "keys"),
		"Returns map without the entries stored under the given keys.",
		builtinDissoc},
	{"disj", Formals("set", VarArgSymbol, "elems"),
		"Returns set without the given members.",
		builtinDisj},
	{"get", Formals("coll", "key", OptArgSymbol, "not-found"),
		"Returns the value stored under key, or not-found when absent.",
		builtinGet},
	{"nth", Formals("coll", "index", OptArgSymbol, "not-found"),
		"Returns the element of coll at index.  Absent an index and a not-found value, errors.",
		builtinNth},
	{"peek", Formals("coll"),
		"Returns the element conj addresses: a vector's last, a list's first.",
		builtinPeek},
	{"pop", Formals("coll"),
		"Returns coll without the element peek addresses.  Errors when empty.",
		builtinPop},
	{"subvec", Formals("vec", "start", OptArgSymbol, "end"),
		"Returns the vector slice between start, inclusive, and end, exclusive.",
		builtinSubVec},
	{"empty", Formals("coll"),
		"Returns the empty collection of the same category as coll.",
		builtinEmpty},
	{"merge", Formals(VarArgSymbol, "maps"),
		"Returns the given maps merged left to right, later values winning.",
		builtinMerge},
	{"merge-with", Formals("fun", VarArgSymbol, "maps"),
		"Merges maps, combining values of duplicate keys with fun.",
		builtinMergeWith},
	{"zipmap", Formals("keys", "vals"),
		"Returns a map pairing the given keys with the given values.",
		builtinZipmap},
	{"vec", Formals("coll"),
		"Returns a vector of the elements of coll.",
		builtinVec},
	{"set", Formals("coll"),
		"Returns a set of the elements of coll.",
		builtinSet},
	{"into", Formals("to", "from"),
		"Returns to with every element of from conjoined.",
		builtinInto},
	{"reverse", Formals("coll"),
		"Returns a list of the elements of coll in reverse order.",
		builtinReverse},
	{"repeat", Formals("n-or-x", OptArgSymbol, "x"),
		"Returns a lazy sequence of n copies of x, infinite when n is omitted.",
		builtinRepeat},
	{"identity", Formals("x"),
		"Returns x.",
		builtinIdentity},
	{"not", Formals("x"),
		"Returns true when x is logically false.",
		builtinNot},
	{"=", Formals("x", VarArgSymbol, "more"),
		"Returns true when all arguments are structurally equal.",
		builtinEqual},
	{"compare", Formals("a", "b"),
		"Returns -1, 0, or 1 ordering a relative to b in the natural order.",
		builtinCompare},
	{"sort", Formals("comparator-or-coll", OptArgSymbol, "coll"),
		"Returns a list of the elements of coll in sorted order.  The two-argument form takes the comparator first.",
		builtinSort},
	{"sort-by", Formals("keyfun", "comparator-or-coll", OptArgSymbol, "coll"),
		"Sorts coll by comparing the keyfun projection of each element.  A comparator, when given, precedes coll.",
		builtinSortBy},
	{"sorted-map", Formals(VarArgSymbol, "keyvals"),
		"Returns a map of the given pairs whose entries stay in natural key order.",
		builtinSortedMap},
	{"sorted-map-by", Formals("comparator", VarArgSymbol, "keyvals"),
		"Returns a map whose entries stay ordered by the given comparator.",
		builtinSortedMapBy},
	{"sorted-set", Formals(VarArgSymbol, "elems"),
		"Returns a set whose members stay in natural order.",
		builtinSortedSet},
	{"sorted-set-by", Formals("comparator", VarArgSymbol, "elems"),
		"Returns a set whose members stay ordered by the given comparator.",
		builtinSortedSetBy},
	{"subseq", Formals("coll", "test", "key", OptArgSymbol, "end-test", "end-key"),
		"Returns the entries of a sorted collection whose keys satisfy the tests.",
		builtinSubSeq},
	{"rsubseq", Formals("coll", "test", "key", OptArgSymbol, "end-test", "end-key"),
		"Like subseq with the result order reversed.",
		builtinRSubSeq},
	{"map", Formals("fun", "coll"),
		"Returns a lazy sequence applying fun to each element of coll.",
		builtinMap},
	{"filter", Formals("predicate", "coll"),
		"Returns a lazy sequence of the elements of coll satisfying predicate.",
		builtinFilter},
	{"take", Formals("n", "coll"),
		"Returns a lazy sequence of at most n elements of coll.",
		builtinTake},
	{"range", Formals("start", OptArgSymbol, "end", "step"),
		"Returns a lazy sequence of numbers from start to end by step.",
		builtinRange},
	{"iterate", Formals("fun", "seed"),
		"Returns the infinite lazy sequence seed, (fun seed), and so on.",
		builtinIterate},
	{"lazy-seq", Formals("fun"),
		"Returns a lazy sequence realized by calling fun with no arguments.",
		builtinLazySeq},
	{"reduce", Formals("fun", "init-or-coll", OptArgSymbol, "coll"),
		"Reduces coll with fun in one pass, fusing lazy transformations.  The two-argument form omits the initial value.",
		builtinReduce},
	{"reduced", Formals("x"),
		"Wraps x to terminate a reduction early with x as its result.",
		builtinReduced},
	{"reduced?", Formals("x"),
		"Returns true when x is a reduced wrapper.",
		builtinReducedP},
	{"chunk-buffer", Formals("capacity"),
		"Returns a single-use mutable buffer for building one chunk.",
		builtinChunkBuffer},
	{"chunk-append", Formals("buffer", "x"),
		"Adds x to a chunk buffer.  Errors after the buffer is finalized.",
		builtinChunkAppend},
	{"chunk", Formals("buffer"),
		"Finalizes a chunk buffer into an immutable chunk, exactly once.",
		builtinChunk},
	{"chunk-cons", Formals("chunk", "coll"),
		"Prepends a realized chunk onto coll, degenerating to coll when empty.",
		builtinChunkCons},
	{"chunk-first", Formals("coll"),
		"Returns the realized chunk at the head of a chunked sequence.",
		builtinChunkFirst},
	{"chunk-rest", Formals("coll"),
		"Returns the continuation of a chunked sequence, an empty list when exhausted.",
		builtinChunkRest},
	{"chunk-next", Formals("coll"),
		"Returns the seq of the continuation of a chunked sequence, or nil.",
		builtinChunkNext},
	{"debug-print", Formals(VarArgSymbol, "args"),
		"Writes the given values to the runtime's debugging output.",
		builtinDebugPrint},
}

// RegisterDefaultBuiltin adds the given function to the list returned by
// DefaultBuiltins.
func RegisterDefaultBuiltin(name string, formals *LVal, doc string, fn LBuiltin) {
	userBuiltins = append(userBuiltins, &langBuiltin{name, formals, doc, fn})
}

// DefaultBuiltins returns the default set of LBuiltinDefs registered by
// LEnv.AddBuiltins when called without arguments.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, 0, len(langBuiltins)+len(userBuiltins))
	for _, op := range langBuiltins {
		ops = append(ops, op)
	}
	for _, op := range userBuiltins {
		ops = append(ops, op)
	}
	return ops
}

// builtinMeta returns the metadata map attached to a registered builtin:
// its doc string and list of formal arguments.
func builtinMeta(f LBuiltinDef) *LVal {
	m := ArrayMap()
	m = arrayMapAssoc(nil, m, Keyword("doc"), String(f.Doc()))
	m = arrayMapAssoc(nil, m, Keyword("arglists"), f.Formals())
	return m
}

func builtinSeq(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("seq expects 1 argument (got %d)", args.Len())
	}
	return Seq(args.Cells[0])
}

func builtinFirst(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("first expects 1 argument (got %d)", args.Len())
	}
	return First(args.Cells[0])
}

func builtinRest(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("rest expects 1 argument (got %d)", args.Len())
	}
	return Rest(args.Cells[0])
}

func builtinNext(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("next expects 1 argument (got %d)", args.Len())
	}
	return Next(args.Cells[0])
}

func builtinCons(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("cons expects 2 arguments (got %d)", args.Len())
	}
	if !args.Cells[1].IsSeqable() {
		return env.TypeErrorf("second argument is not seqable: %v", args.Cells[1].Type)
	}
	return Cons(args.Cells[0], args.Cells[1])
}

func builtinCount(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("count expects 1 argument (got %d)", args.Len())
	}
	return Count(env, args.Cells[0])
}

func builtinSecond(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("second expects 1 argument (got %d)", args.Len())
	}
	return Second(args.Cells[0])
}

func builtinLast(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("last expects 1 argument (got %d)", args.Len())
	}
	return Last(env, args.Cells[0])
}

func builtinEmptyP(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("empty? expects 1 argument (got %d)", args.Len())
	}
	s := Seq(args.Cells[0])
	if s.Type == LError {
		return s
	}
	return Bool(s.IsNil())
}

func builtinContainsP(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("contains? expects 2 arguments (got %d)", args.Len())
	}
	coll := args.Cells[0]
	k := args.Cells[1]
	switch coll.Type {
	case LNil:
		return Bool(false)
	case LArrayMap, LHashMap:
		return mapContains(env, coll, k)
	case LHashSet:
		i, lerr := setScan(env, coll, k)
		if lerr != nil {
			return lerr
		}
		return Bool(i >= 0)
	case LVector:
		return Bool(k.Type == LInt && k.Int >= 0 && k.Int < int64(len(coll.Cells)))
	case LString:
		if k.Type != LInt {
			return Bool(false)
		}
		n := Count(env, coll)
		return Bool(k.Int >= 0 && k.Int < n.Int)
	}
	return env.TypeErrorf("first argument is not an indexed collection: %v", coll.Type)
}

func builtinKeys(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("keys expects 1 argument (got %d)", args.Len())
	}
	m := args.Cells[0]
	if m.IsNil() {
		return Nil()
	}
	if !m.isMap() {
		return env.TypeErrorf("first argument is not a map: %v", m.Type)
	}
	cells := mapEntryCells(m)
	if len(cells) == 0 {
		return Nil()
	}
	ks := make([]*LVal, 0, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		ks = append(ks, cells[i])
	}
	return List(ks)
}

func builtinVals(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("vals expects 1 argument (got %d)", args.Len())
	}
	m := args.Cells[0]
	if m.IsNil() {
		return Nil()
	}
	if !m.isMap() {
		return env.TypeErrorf("first argument is not a map: %v", m.Type)
	}
	cells := mapEntryCells(m)
	if len(cells) == 0 {
		return Nil()
	}
	vs := make([]*LVal, 0, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		vs = append(vs, cells[i+1])
	}
	return List(vs)
}

func builtinList(env *LEnv, args *LVal) *LVal {
	return List(args.Cells)
}

func builtinVector(env *LEnv, args *LVal) *LVal {
	cells := make([]*LVal, len(args.Cells))
	copy(cells, args.Cells)
	return Vector(cells)
}

func builtinHashMap(env *LEnv, args *LVal) *LVal {
	if args.Len()%2 != 0 {
		return env.ArityErrorf("hash-map expects an even number of arguments (got %d)", args.Len())
	}
	m := ArrayMap()
	for i := 0; i+1 < len(args.Cells); i += 2 {
		m = mapAssoc(env, m, args.Cells[i], args.Cells[i+1])
		if m.Type == LError {
			return m
		}
	}
	return m
}

func builtinHashSet(env *LEnv, args *LVal) *LVal {
	s := HashSet()
	for _, c := range args.Cells {
		s = setConj(env, s, c)
		if s.Type == LError {
			return s
		}
	}
	return s
}

func builtinConj(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("conj expects at least 1 argument (got %d)", args.Len())
	}
	coll := args.Cells[0]
	for _, x := range args.Cells[1:] {
		coll = conjOne(env, coll, x)
		if coll.Type == LError {
			return coll
		}
	}
	return coll
}

func conjOne(env *LEnv, coll *LVal, x *LVal) *LVal {
	switch coll.Type {
	case LNil:
		return List([]*LVal{x})
	case LList:
		cells := make([]*LVal, 0, len(coll.Cells)+1)
		cells = append(cells, x)
		cells = append(cells, coll.Cells...)
		lis := List(cells)
		lis.Meta = coll.Meta
		return lis
	case LVector:
		return vectorConj(coll, x)
	case LArrayMap, LHashMap:
		if x.isMap() {
			return mapMerge(env, coll, x)
		}
		if x.Type == LVector && len(x.Cells) == 2 {
			return mapAssoc(env, coll, x.Cells[0], x.Cells[1])
		}
		return env.TypeErrorf("cannot conj %v onto a map", x.Type)
	case LHashSet:
		return setConj(env, coll, x)
	case LCons, LLazySeq, LChunkedCons:
		return Cons(x, coll)
	}
	return env.TypeErrorf("first argument is not a collection: %v", coll.Type)
}

func builtinAssoc(env *LEnv, args *LVal) *LVal {
	if args.Len() < 3 {
		return env.ArityErrorf("assoc expects at least 3 arguments (got %d)", args.Len())
	}
	if args.Len()%2 != 1 {
		return env.ArityErrorf("assoc expects an even number of key-value arguments (got %d)", args.Len()-1)
	}
	coll := args.Cells[0]
	if coll.IsNil() {
		coll = ArrayMap()
	}
	for i := 1; i+1 < len(args.Cells); i += 2 {
		k, v := args.Cells[i], args.Cells[i+1]
		switch coll.Type {
		case LArrayMap, LHashMap:
			coll = mapAssoc(env, coll, k, v)
		case LVector:
			if k.Type != LInt {
				return env.TypeErrorf("vector index is not an int: %v", k.Type)
			}
			coll = vectorAssoc(env, coll, k.Int, v)
		default:
			return env.TypeErrorf("first argument is not associative: %v", coll.Type)
		}
		if coll.Type == LError {
			return coll
		}
	}
	return coll
}

func builtinDissoc(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("dissoc expects at least 1 argument (got %d)", args.Len())
	}
	m := args.Cells[0]
	if m.IsNil() {
		return Nil()
	}
	if !m.isMap() {
		return env.TypeErrorf("first argument is not a map: %v", m.Type)
	}
	if mapCount(m) == 0 {
		return Nil()
	}
	for _, k := range args.Cells[1:] {
		m = mapDissoc(env, m, k)
		if m.Type == LError {
			return m
		}
	}
	return m
}

func builtinDisj(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("disj expects at least 1 argument (got %d)", args.Len())
	}
	s := args.Cells[0]
	if s.IsNil() {
		return Nil()
	}
	if s.Type != LHashSet {
		return env.TypeErrorf("first argument is not a set: %v", s.Type)
	}
	if len(s.Cells) == 0 {
		return Nil()
	}
	for _, x := range args.Cells[1:] {
		s = setDisj(env, s, x)
		if s.Type == LError {
			return s
		}
	}
	return s
}

func builtinGet(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 && args.Len() != 3 {
		return env.ArityErrorf("get expects 2 or 3 arguments (got %d)", args.Len())
	}
	coll := args.Cells[0]
	k := args.Cells[1]
	def := Nil()
	if args.Len() == 3 {
		def = args.Cells[2]
	}
	switch coll.Type {
	case LArrayMap, LHashMap:
		return mapGet(env, coll, k, def)
	case LHashSet:
		i, lerr := setScan(env, coll, k)
		if lerr != nil {
			return lerr
		}
		if i < 0 {
			return def
		}
		return coll.Cells[i]
	case LVector:
		if k.Type == LInt && k.Int >= 0 && k.Int < int64(len(coll.Cells)) {
			return coll.Cells[k.Int]
		}
	case LString:
		if k.Type == LInt && k.Int >= 0 {
			return nthSeq(env, coll, k.Int, def)
		}
	}
	return def
}

func builtinNth(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 && args.Len() != 3 {
		return env.ArityErrorf("nth expects 2 or 3 arguments (got %d)", args.Len())
	}
	coll := args.Cells[0]
	i := args.Cells[1]
	if i.Type != LInt {
		return env.TypeErrorf("second argument is not an int: %v", i.Type)
	}
	var def *LVal
	if args.Len() == 3 {
		def = args.Cells[2]
	}
	switch coll.Type {
	case LNil, LList, LCons, LLazySeq, LChunkedCons, LString:
		return nthSeq(env, coll, i.Int, def)
	case LVector:
		if i.Int >= 0 && i.Int < int64(len(coll.Cells)) {
			return coll.Cells[i.Int]
		}
		if def != nil {
			return def
		}
		return env.IndexErrorf("index out of range: %d", i.Int)
	}
	return env.TypeErrorf("first argument is not indexed: %v", coll.Type)
}

func builtinPeek(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("peek expects 1 argument (got %d)", args.Len())
	}
	coll := args.Cells[0]
	switch coll.Type {
	case LNil:
		return Nil()
	case LVector:
		return vectorPeek(env, coll)
	case LList:
		if len(coll.Cells) == 0 {
			return Nil()
		}
		return coll.Cells[0]
	}
	return env.TypeErrorf("first argument is not a stack: %v", coll.Type)
}

func builtinPop(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("pop expects 1 argument (got %d)", args.Len())
	}
	coll := args.Cells[0]
	switch coll.Type {
	case LVector:
		return vectorPop(env, coll)
	case LList:
		if len(coll.Cells) == 0 {
			return env.ValueErrorf("cannot pop empty list")
		}
		lis := List(coll.Cells[1:])
		lis.Meta = coll.Meta
		return lis
	}
	return env.TypeErrorf("first argument is not a stack: %v", coll.Type)
}

func builtinSubVec(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 && args.Len() != 3 {
		return env.ArityErrorf("subvec expects 2 or 3 arguments (got %d)", args.Len())
	}
	v := args.Cells[0]
	if v.Type != LVector {
		return env.TypeErrorf("first argument is not a vector: %v", v.Type)
	}
	start := args.Cells[1]
	if start.Type != LInt {
		return env.TypeErrorf("second argument is not an int: %v", start.Type)
	}
	end := int64(len(v.Cells))
	if args.Len() == 3 {
		if args.Cells[2].Type != LInt {
			return env.TypeErrorf("third argument is not an int: %v", args.Cells[2].Type)
		}
		end = args.Cells[2].Int
	}
	return vectorSubVec(env, v, start.Int, end)
}

func builtinEmpty(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("empty expects 1 argument (got %d)", args.Len())
	}
	coll := args.Cells[0]
	var e *LVal
	switch coll.Type {
	case LList, LCons, LLazySeq, LChunkedCons:
		e = List(nil)
	case LVector:
		e = Vector(nil)
	case LArrayMap:
		e = SortedMap(coll.Cmp)
	case LHashMap:
		e = ArrayMap()
	case LHashSet:
		e = SortedSet(coll.Cmp)
	default:
		return Nil()
	}
	e.Meta = coll.Meta
	return e
}

func builtinMerge(env *LEnv, args *LVal) *LVal {
	var m *LVal
	for _, other := range args.Cells {
		if other.IsNil() {
			continue
		}
		if !other.isMap() {
			return env.TypeErrorf("argument is not a map: %v", other.Type)
		}
		if m == nil {
			m = other
			continue
		}
		m = mapMerge(env, m, other)
		if m.Type == LError {
			return m
		}
	}
	if m == nil {
		return Nil()
	}
	return m
}

func builtinMergeWith(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("merge-with expects at least 1 argument (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	var m *LVal
	for _, other := range args.Cells[1:] {
		if other.IsNil() {
			continue
		}
		if !other.isMap() {
			return env.TypeErrorf("argument is not a map: %v", other.Type)
		}
		if m == nil {
			m = other
			continue
		}
		m = mapMergeWith(env, f, m, other)
		if m.Type == LError {
			return m
		}
	}
	if m == nil {
		return Nil()
	}
	return m
}

func builtinZipmap(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("zipmap expects 2 arguments (got %d)", args.Len())
	}
	ks, lerr := seqCells(env, args.Cells[0])
	if lerr != nil {
		return lerr
	}
	vs, lerr := seqCells(env, args.Cells[1])
	if lerr != nil {
		return lerr
	}
	n := len(ks)
	if len(vs) < n {
		n = len(vs)
	}
	m := ArrayMap()
	for i := 0; i < n; i++ {
		m = mapAssoc(env, m, ks[i], vs[i])
		if m.Type == LError {
			return m
		}
	}
	return m
}

func builtinVec(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("vec expects 1 argument (got %d)", args.Len())
	}
	cells, lerr := seqCells(env, args.Cells[0])
	if lerr != nil {
		return lerr
	}
	return Vector(cells)
}

func builtinSet(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("set expects 1 argument (got %d)", args.Len())
	}
	cells, lerr := seqCells(env, args.Cells[0])
	if lerr != nil {
		return lerr
	}
	s := HashSet()
	for _, c := range cells {
		s = setConj(env, s, c)
		if s.Type == LError {
			return s
		}
	}
	return s
}

func builtinInto(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("into expects 2 arguments (got %d)", args.Len())
	}
	to := args.Cells[0]
	cells, lerr := seqCells(env, args.Cells[1])
	if lerr != nil {
		return lerr
	}
	for _, c := range cells {
		to = conjOne(env, to, c)
		if to.Type == LError {
			return to
		}
	}
	return to
}

func builtinReverse(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("reverse expects 1 argument (got %d)", args.Len())
	}
	cells, lerr := seqCells(env, args.Cells[0])
	if lerr != nil {
		return lerr
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return List(cells)
}

func builtinRepeat(env *LEnv, args *LVal) *LVal {
	switch args.Len() {
	case 1:
		return RepeatSeq(env, args.Cells[0])
	case 2:
		n := args.Cells[0]
		if n.Type != LInt {
			return env.TypeErrorf("first argument is not an int: %v", n.Type)
		}
		return LazyTake(env, n.Int, RepeatSeq(env, args.Cells[1]))
	}
	return env.ArityErrorf("repeat expects 1 or 2 arguments (got %d)", args.Len())
}

func builtinIdentity(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("identity expects 1 argument (got %d)", args.Len())
	}
	return args.Cells[0]
}

func builtinNot(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("not expects 1 argument (got %d)", args.Len())
	}
	return Bool(!args.Cells[0].IsTruthy())
}

func builtinEqual(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("= expects at least 1 argument (got %d)", args.Len())
	}
	prev, lerr := materializeKey(env, args.Cells[0])
	if lerr != nil {
		return lerr
	}
	for _, c := range args.Cells[1:] {
		cur, lerr := materializeKey(env, c)
		if lerr != nil {
			return lerr
		}
		if !Equal(prev, cur) {
			return Bool(false)
		}
		prev = cur
	}
	return Bool(true)
}

func builtinCompare(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("compare expects 2 arguments (got %d)", args.Len())
	}
	c, lerr := Compare(args.Cells[0], args.Cells[1])
	if lerr != nil {
		return lerr
	}
	return Int(int64(c))
}

func builtinSort(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 && args.Len() != 2 {
		return env.ArityErrorf("sort expects 1 or 2 arguments (got %d)", args.Len())
	}
	var cmp *LVal
	coll := args.Cells[0]
	if args.Len() == 2 {
		cmp = args.Cells[0]
		coll = args.Cells[1]
		if cmp.Type != LFun {
			return env.TypeErrorf("first argument is not a function: %v", cmp.Type)
		}
	}
	cells, lerr := seqCells(env, coll)
	if lerr != nil {
		return lerr
	}
	if lerr := sortCells(env, cells, cmp, nil); lerr != nil {
		return lerr
	}
	return List(cells)
}

func builtinSortBy(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 && args.Len() != 3 {
		return env.ArityErrorf("sort-by expects 2 or 3 arguments (got %d)", args.Len())
	}
	keyfun := args.Cells[0]
	if keyfun.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", keyfun.Type)
	}
	var cmp *LVal
	coll := args.Cells[1]
	if args.Len() == 3 {
		cmp = args.Cells[1]
		coll = args.Cells[2]
		if cmp.Type != LFun {
			return env.TypeErrorf("second argument is not a function: %v", cmp.Type)
		}
	}
	cells, lerr := seqCells(env, coll)
	if lerr != nil {
		return lerr
	}
	if lerr := sortCells(env, cells, cmp, keyfun); lerr != nil {
		return lerr
	}
	return List(cells)
}

func builtinSortedMap(env *LEnv, args *LVal) *LVal {
	if args.Len()%2 != 0 {
		return env.ArityErrorf("sorted-map expects an even number of arguments (got %d)", args.Len())
	}
	return sortedMapFromPairs(env, NaturalOrder, args.Cells)
}

func builtinSortedMapBy(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("sorted-map-by expects at least 1 argument (got %d)", args.Len())
	}
	cmp := args.Cells[0]
	if cmp.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", cmp.Type)
	}
	if (args.Len()-1)%2 != 0 {
		return env.ArityErrorf("sorted-map-by expects an even number of key-value arguments (got %d)", args.Len()-1)
	}
	return sortedMapFromPairs(env, cmp, args.Cells[1:])
}

func sortedMapFromPairs(env *LEnv, cmp *LVal, cells []*LVal) *LVal {
	m := SortedMap(cmp)
	for i := 0; i+1 < len(cells); i += 2 {
		m = mapAssoc(env, m, cells[i], cells[i+1])
		if m.Type == LError {
			return m
		}
	}
	return m
}

func builtinSortedSet(env *LEnv, args *LVal) *LVal {
	return sortedSetFromCells(env, NaturalOrder, args.Cells)
}

func builtinSortedSetBy(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 {
		return env.ArityErrorf("sorted-set-by expects at least 1 argument (got %d)", args.Len())
	}
	cmp := args.Cells[0]
	if cmp.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", cmp.Type)
	}
	return sortedSetFromCells(env, cmp, args.Cells[1:])
}

func sortedSetFromCells(env *LEnv, cmp *LVal, cells []*LVal) *LVal {
	s := SortedSet(cmp)
	for _, c := range cells {
		s = setConj(env, s, c)
		if s.Type == LError {
			return s
		}
	}
	return s
}

func builtinSubSeq(env *LEnv, args *LVal) *LVal {
	return subSeq(env, "subseq", args, false)
}

func builtinRSubSeq(env *LEnv, args *LVal) *LVal {
	return subSeq(env, "rsubseq", args, true)
}

// subSeq filters the entries of a sorted collection by one or two
// comparator tests.  Each test function receives the comparator's ordering
// of the entry key against the bound key, as an int compared against zero.
func subSeq(env *LEnv, name string, args *LVal, reversed bool) *LVal {
	if args.Len() != 3 && args.Len() != 5 {
		return env.ArityErrorf("%s expects 3 or 5 arguments (got %d)", name, args.Len())
	}
	coll := args.Cells[0]
	var keys, elems []*LVal
	switch {
	case coll.Type == LArrayMap && coll.Cmp != nil:
		cells := coll.Cells
		for i := 0; i+1 < len(cells); i += 2 {
			keys = append(keys, cells[i])
			elems = append(elems, Vector([]*LVal{cells[i], cells[i+1]}))
		}
	case coll.Type == LHashSet && coll.Cmp != nil:
		keys = coll.Cells
		elems = coll.Cells
	default:
		return env.TypeErrorf("first argument is not a sorted collection: %v", coll.Type)
	}
	var out []*LVal
	for i := range keys {
		ok, lerr := subSeqTest(env, coll.Cmp, args.Cells[1], keys[i], args.Cells[2])
		if lerr != nil {
			return lerr
		}
		if ok && args.Len() == 5 {
			ok, lerr = subSeqTest(env, coll.Cmp, args.Cells[3], keys[i], args.Cells[4])
			if lerr != nil {
				return lerr
			}
		}
		if ok {
			out = append(out, elems[i])
		}
	}
	if len(out) == 0 {
		return Nil()
	}
	if reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return List(out)
}

func subSeqTest(env *LEnv, cmp *LVal, test *LVal, k *LVal, bound *LVal) (bool, *LVal) {
	if test.Type != LFun {
		return false, env.TypeErrorf("test argument is not a function: %v", test.Type)
	}
	c, lerr := compareWith(env, cmp, k, bound)
	if lerr != nil {
		return false, lerr
	}
	r := env.call2(test, Int(int64(c)), Int(0))
	if r.Type == LError {
		return false, r
	}
	return r.IsTruthy(), nil
}

func builtinMap(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("map expects 2 arguments (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	if !args.Cells[1].IsSeqable() {
		return env.TypeErrorf("second argument is not seqable: %v", args.Cells[1].Type)
	}
	return LazyMap(env, f, args.Cells[1])
}

func builtinFilter(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("filter expects 2 arguments (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	if !args.Cells[1].IsSeqable() {
		return env.TypeErrorf("second argument is not seqable: %v", args.Cells[1].Type)
	}
	return LazyFilter(env, f, args.Cells[1])
}

func builtinTake(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("take expects 2 arguments (got %d)", args.Len())
	}
	n := args.Cells[0]
	if n.Type != LInt {
		return env.TypeErrorf("first argument is not an int: %v", n.Type)
	}
	if !args.Cells[1].IsSeqable() {
		return env.TypeErrorf("second argument is not seqable: %v", args.Cells[1].Type)
	}
	return LazyTake(env, n.Int, args.Cells[1])
}

func builtinRange(env *LEnv, args *LVal) *LVal {
	if args.Len() < 1 || args.Len() > 3 {
		return env.ArityErrorf("range expects 1 to 3 arguments (got %d)", args.Len())
	}
	for i, c := range args.Cells {
		if !c.IsNumeric() {
			return env.TypeErrorf("argument %d is not a number: %v", i+1, c.Type)
		}
	}
	start := Int(0)
	end := args.Cells[0]
	step := Int(1)
	if args.Len() >= 2 {
		start = args.Cells[0]
		end = args.Cells[1]
	}
	if args.Len() == 3 {
		step = args.Cells[2]
	}
	return RangeSeq(env, start, end, step)
}

func builtinIterate(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("iterate expects 2 arguments (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	return IterateSeq(env, f, args.Cells[1])
}

func builtinLazySeq(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("lazy-seq expects 1 argument (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	return LazySeqThunk(env, f)
}

func builtinReduce(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 && args.Len() != 3 {
		return env.ArityErrorf("reduce expects 2 or 3 arguments (got %d)", args.Len())
	}
	f := args.Cells[0]
	if f.Type != LFun {
		return env.TypeErrorf("first argument is not a function: %v", f.Type)
	}
	var init *LVal
	coll := args.Cells[1]
	if args.Len() == 3 {
		init = args.Cells[1]
		coll = args.Cells[2]
	}
	if !coll.IsSeqable() {
		return env.TypeErrorf("collection argument is not seqable: %v", coll.Type)
	}
	return fusedReduce(env, f, init, coll)
}

func builtinReduced(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("reduced expects 1 argument (got %d)", args.Len())
	}
	return Reduced(args.Cells[0])
}

func builtinReducedP(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("reduced? expects 1 argument (got %d)", args.Len())
	}
	return Bool(args.Cells[0].Type == LReduced)
}

func builtinChunkBuffer(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("chunk-buffer expects 1 argument (got %d)", args.Len())
	}
	n := args.Cells[0]
	if n.Type != LInt {
		return env.TypeErrorf("first argument is not an int: %v", n.Type)
	}
	return ChunkBuffer(n.Int)
}

func builtinChunkAppend(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("chunk-append expects 2 arguments (got %d)", args.Len())
	}
	b := args.Cells[0]
	if b.Type != LChunkBuffer {
		return env.TypeErrorf("first argument is not a chunk buffer: %v", b.Type)
	}
	return chunkAppend(env, b, args.Cells[1])
}

func builtinChunk(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("chunk expects 1 argument (got %d)", args.Len())
	}
	b := args.Cells[0]
	if b.Type != LChunkBuffer {
		return env.TypeErrorf("first argument is not a chunk buffer: %v", b.Type)
	}
	return chunkFinalize(env, b)
}

func builtinChunkCons(env *LEnv, args *LVal) *LVal {
	if args.Len() != 2 {
		return env.ArityErrorf("chunk-cons expects 2 arguments (got %d)", args.Len())
	}
	c := args.Cells[0]
	if c.Type != LChunk {
		return env.TypeErrorf("first argument is not a chunk: %v", c.Type)
	}
	if !args.Cells[1].IsSeqable() {
		return env.TypeErrorf("second argument is not seqable: %v", args.Cells[1].Type)
	}
	return chunkCons(env, c, args.Cells[1])
}

func builtinChunkFirst(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("chunk-first expects 1 argument (got %d)", args.Len())
	}
	cc := args.Cells[0]
	if cc.Type != LChunkedCons {
		return env.TypeErrorf("first argument is not a chunked sequence: %v", cc.Type)
	}
	return chunkFirst(env, cc)
}

func builtinChunkRest(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("chunk-rest expects 1 argument (got %d)", args.Len())
	}
	cc := args.Cells[0]
	if cc.Type != LChunkedCons {
		return env.TypeErrorf("first argument is not a chunked sequence: %v", cc.Type)
	}
	return chunkRest(env, cc)
}

func builtinChunkNext(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ArityErrorf("chunk-next expects 1 argument (got %d)", args.Len())
	}
	cc := args.Cells[0]
	if cc.Type != LChunkedCons {
		return env.TypeErrorf("first argument is not a chunked sequence: %v", cc.Type)
	}
	return chunkNext(env, cc)
}

func builtinDebugPrint(env *LEnv, args *LVal) *LVal {
	env.DebugPrint(args.Cells...)
	return Nil()
}
