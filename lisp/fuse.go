package lisp

// fusedOp is one transform stage collected from a lazy annotation chain.
// Exactly one of mapFn and preds is set.
type fusedOp struct {
	mapFn *LVal
	preds []*LVal
}

// fusedChain is the result of walking an annotation chain outermost-first:
// the transform stages, an optional element budget, and the base the walk
// stopped at.  A budget of -1 means unbounded.
type fusedChain struct {
	ops    []fusedOp
	budget int64
	base   *LVal
}

// walkChain inspects the unrealized annotation chain starting at coll.  Map
// and filter nodes contribute transform stages.  A take node contributes
// the element budget, but only while the budget applies to the whole chain
// walked so far: a take below a transform, or a second take, terminates the
// walk at that node so its realization handles the budget.  Range, iterate,
// and repeat terminate the walk as directly iterable bases, and any other
// shape terminates it as a generic base.  Chains longer than the runtime's
// transform bound abandon fusion entirely.
func walkChain(env *LEnv, coll *LVal) fusedChain {
	ch := fusedChain{budget: -1}
	max := env.maxFusedTransforms()
	v := coll
	for v.Type == LLazySeq && !v.node.isRealized() {
		n := v.node
		switch n.kind {
		case lazyMap:
			ch.ops = append(ch.ops, fusedOp{mapFn: n.fn})
			v = n.src
		case lazyFilter, lazyFilterChain:
			ch.ops = append(ch.ops, fusedOp{preds: n.preds})
			v = n.src
		case lazyTake:
			if len(ch.ops) > 0 || ch.budget >= 0 {
				ch.base = v
				return ch
			}
			// Negative budget values mark the absence of a take; a take
			// of a non-positive count is an exhausted budget.
			ch.budget = n.n
			if ch.budget < 0 {
				ch.budget = 0
			}
			v = n.src
		default:
			ch.base = v
			return ch
		}
		if len(ch.ops) > max {
			return fusedChain{budget: -1, base: coll}
		}
	}
	ch.base = v
	return ch
}

// fuser carries the state of one fused reduction.  A nil acc marks a
// reduction without an initial value that has not yet absorbed its first
// element.
type fuser struct {
	env    *LEnv
	f      *LVal
	acc    *LVal
	budget int64
	ops    []fusedOp
}

// step feeds one base element through the transform stages and the reducing
// function.  It returns false when iteration must stop, with the final
// result already stored in acc.
func (fu *fuser) step(x *LVal) bool {
	for i := len(fu.ops) - 1; i >= 0; i-- {
		op := fu.ops[i]
		if op.mapFn != nil {
			y := fu.env.call1(op.mapFn, x)
			if y.Type == LError {
				fu.acc = y
				return false
			}
			x = y
			continue
		}
		ok, lerr := passPreds(fu.env, op.preds, x)
		if lerr != nil {
			fu.acc = lerr
			return false
		}
		if !ok {
			// Rejected elements do not reach the reducing function and do
			// not consume the element budget.
			return true
		}
	}
	if fu.acc == nil {
		fu.acc = x
	} else {
		r := fu.env.call2(fu.f, fu.acc, x)
		if r.Type == LError {
			fu.acc = r
			return false
		}
		if r.Type == LReduced {
			fu.acc = r.Cells[0]
			return false
		}
		fu.acc = r
	}
	if fu.budget > 0 {
		fu.budget--
		if fu.budget == 0 {
			return false
		}
	}
	return true
}

// fusedReduce reduces coll with f in a single pass, executing any
// unrealized map/filter/take annotations inline instead of materializing
// intermediate sequences.  The result is identical to realizing each lazy
// layer and reducing stepwise, including transform invocation order and
// Reduced short-circuits.  A nil init selects the no-initial-value
// contract: an empty input returns f called with no arguments and a
// one-element input returns that element uncalled.
func fusedReduce(env *LEnv, f *LVal, init *LVal, coll *LVal) *LVal {
	ch := walkChain(env, coll)
	fu := &fuser{env: env, f: f, acc: init, budget: ch.budget, ops: ch.ops}
	if fu.budget != 0 {
		base := ch.base
		if base.Type == LLazySeq && !base.node.isRealized() {
			n := base.node
			switch n.kind {
			case lazyRange:
				for cur := n.cur; !rangeDone(cur, n.end, n.step); cur = numAdd(cur, n.step) {
					if !fu.step(cur) {
						return fu.acc
					}
				}
				return fu.finish()
			case lazyIterate:
				cur := n.cur
				if cur == nil {
					cur = env.call1(n.fn, n.prev)
					if cur.Type == LError {
						return cur
					}
					n.cur = cur
				}
				for {
					if !fu.step(cur) {
						return fu.acc
					}
					cur = env.call1(n.fn, cur)
					if cur.Type == LError {
						return cur
					}
				}
			case lazyRepeat:
				for {
					if !fu.step(n.cur) {
						return fu.acc
					}
				}
			}
		}
		s := Seq(base)
		for {
			if s.Type == LError {
				return s
			}
			if s.IsNil() {
				return fu.finish()
			}
			if s.Type == LChunkedCons {
				for _, c := range s.Cells {
					if !fu.step(c) {
						return fu.acc
					}
				}
				s = Seq(s.Tail)
				continue
			}
			if !fu.step(First(s)) {
				return fu.acc
			}
			s = Next(s)
		}
	}
	return fu.finish()
}

// finish resolves a completed reduction.  A reduction without an initial
// value over an empty input invokes the reducing function with no
// arguments.
func (fu *fuser) finish() *LVal {
	if fu.acc == nil {
		return fu.env.FunCall(fu.f, List(nil))
	}
	return fu.acc
}
