package lisp

// lazyKind tags the annotation of a lazy sequence node.
type lazyKind uint

const (
	lazyThunk lazyKind = iota
	lazyMap
	lazyFilter
	lazyFilterChain
	lazyTake
	lazyRange
	lazyIterate
	lazyRepeat
)

// lazyNode is the suspended computation behind a lazy sequence value.  The
// kind and its operands describe the computation without performing it, so
// reductions can inspect and fuse whole chains.  Realization caches its
// result, making force idempotent and each element's computation happen at
// most once.
type lazyNode struct {
	kind lazyKind
	env  *LEnv

	fn    *LVal   // thunk, map, or iterate function
	preds []*LVal // filter predicates in application order
	src   *LVal   // upstream seqable
	n     int64   // take budget

	cur  *LVal // range cursor, iterate value, repeat constant
	end  *LVal // range bound
	step *LVal // range stride
	prev *LVal // iterate seed when cur is not yet computed

	realized *LVal
}

func (n *lazyNode) isRealized() bool {
	return n != nil && n.realized != nil
}

func lazyVal(n *lazyNode) *LVal {
	return &LVal{Type: LLazySeq, node: n}
}

// LazySeqThunk returns a lazy sequence realized by calling fn with no
// arguments and taking the sequence view of its result.
func LazySeqThunk(env *LEnv, fn *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyThunk, env: env, fn: fn})
}

// LazyMap returns a lazy sequence applying fn to each element of src.
func LazyMap(env *LEnv, fn *LVal, src *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyMap, env: env, fn: fn, src: src})
}

// LazyFilter returns a lazy sequence of the elements of src satisfying
// pred.  Filtering an unrealized filter node merges the predicates into a
// single chain node so that realization cost does not grow with the number
// of stacked filters.
func LazyFilter(env *LEnv, pred *LVal, src *LVal) *LVal {
	if src.Type == LLazySeq && !src.node.isRealized() {
		switch src.node.kind {
		case lazyFilter, lazyFilterChain:
			preds := make([]*LVal, 0, len(src.node.preds)+1)
			preds = append(preds, src.node.preds...)
			preds = append(preds, pred)
			return lazyVal(&lazyNode{
				kind:  lazyFilterChain,
				env:   env,
				preds: preds,
				src:   src.node.src,
			})
		}
	}
	return lazyVal(&lazyNode{
		kind:  lazyFilter,
		env:   env,
		fn:    pred,
		preds: []*LVal{pred},
		src:   src,
	})
}

// LazyTake returns a lazy sequence of at most n elements of src.
func LazyTake(env *LEnv, n int64, src *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyTake, env: env, n: n, src: src})
}

// RangeSeq returns a lazy sequence of numbers from start to end, exclusive,
// in increments of step.  A zero step produces an empty sequence.
func RangeSeq(env *LEnv, start *LVal, end *LVal, step *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyRange, env: env, cur: start, end: end, step: step})
}

// IterateSeq returns the infinite lazy sequence of seed, fn(seed),
// fn(fn(seed)), and so on.  Each application happens when the element after
// it is first realized.
func IterateSeq(env *LEnv, fn *LVal, seed *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyIterate, env: env, fn: fn, cur: seed})
}

// RepeatSeq returns the infinite lazy sequence repeating x.
func RepeatSeq(env *LEnv, x *LVal) *LVal {
	return lazyVal(&lazyNode{kind: lazyRepeat, env: env, cur: x})
}

// force realizes one step of the lazy sequence v, returning its cached
// sequence view: a cons, a nil value, or an error.
func force(v *LVal) *LVal {
	n := v.node
	if n.realized == nil {
		n.realized = n.stepSeq()
	}
	return n.realized
}

func (n *lazyNode) stepSeq() *LVal {
	switch n.kind {
	case lazyThunk:
		r := n.env.FunCall(n.fn, List(nil))
		if r.Type == LError {
			return r
		}
		return Seq(r)
	case lazyMap:
		s := Seq(n.src)
		if s.Type == LError || s.IsNil() {
			return s
		}
		y := n.env.call1(n.fn, First(s))
		if y.Type == LError {
			return y
		}
		return Cons(y, LazyMap(n.env, n.fn, Rest(s)))
	case lazyFilter, lazyFilterChain:
		// One loop regardless of chain length keeps realization depth
		// constant for stacked filters.
		s := Seq(n.src)
		for {
			if s.Type == LError || s.IsNil() {
				return s
			}
			x := First(s)
			ok, lerr := passPreds(n.env, n.preds, x)
			if lerr != nil {
				return lerr
			}
			if ok {
				rest := lazyVal(&lazyNode{
					kind:  n.kind,
					env:   n.env,
					fn:    n.fn,
					preds: n.preds,
					src:   Rest(s),
				})
				return Cons(x, rest)
			}
			s = Next(s)
		}
	case lazyTake:
		if n.n <= 0 {
			return Nil()
		}
		s := Seq(n.src)
		if s.Type == LError || s.IsNil() {
			return s
		}
		return Cons(First(s), LazyTake(n.env, n.n-1, Rest(s)))
	case lazyRange:
		if rangeDone(n.cur, n.end, n.step) {
			return Nil()
		}
		return Cons(n.cur, RangeSeq(n.env, numAdd(n.cur, n.step), n.end, n.step))
	case lazyIterate:
		cur := n.cur
		if cur == nil {
			cur = n.env.call1(n.fn, n.prev)
			if cur.Type == LError {
				return cur
			}
			n.cur = cur
		}
		next := lazyVal(&lazyNode{kind: lazyIterate, env: n.env, fn: n.fn, prev: cur})
		return Cons(cur, next)
	case lazyRepeat:
		return Cons(n.cur, RepeatSeq(n.env, n.cur))
	}
	return ErrorConditionf(ConditionValue, "invalid lazy sequence annotation")
}

func passPreds(env *LEnv, preds []*LVal, x *LVal) (bool, *LVal) {
	for _, pred := range preds {
		r := env.call1(pred, x)
		if r.Type == LError {
			return false, r
		}
		if !r.IsTruthy() {
			return false, nil
		}
	}
	return true, nil
}

// rangeDone reports whether the range cursor has passed its bound.  The
// emptiness rule follows the fused loop exactly: a positive step emits
// while cur < end, a negative step while cur > end, and a zero step emits
// nothing.
func rangeDone(cur *LVal, end *LVal, step *LVal) bool {
	sign := numSign(step)
	if sign == 0 {
		return true
	}
	c, lerr := Compare(cur, end)
	if lerr != nil {
		return true
	}
	if sign > 0 {
		return c >= 0
	}
	return c <= 0
}

func numSign(v *LVal) int {
	switch v.Type {
	case LInt:
		return cmpInt64(v.Int, 0)
	case LFloat:
		return cmpFloat(v.Float, 0)
	}
	return 0
}

func numAdd(a *LVal, b *LVal) *LVal {
	if a.Type == LInt && b.Type == LInt {
		return Int(a.Int + b.Int)
	}
	af, _ := GoFloat(a)
	bf, _ := GoFloat(b)
	return Float(af + bf)
}
