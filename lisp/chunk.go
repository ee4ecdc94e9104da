package lisp

// chunkBuf is the mutable build state behind a chunk-buffer value.  It is
// single-use: finalization seals it permanently.
type chunkBuf struct {
	cells     []*LVal
	finalized bool
}

// ChunkBuffer returns a single-use mutable builder that accepts up to n
// elements before finalization.
func ChunkBuffer(n int64) *LVal {
	if n < 0 {
		n = 0
	}
	return &LVal{Type: LChunkBuffer, buf: &chunkBuf{cells: make([]*LVal, 0, n)}}
}

// chunkAppend adds one element to the buffer b.  Appending to a finalized
// buffer or past the declared capacity is an error.
func chunkAppend(env *LEnv, b *LVal, x *LVal) *LVal {
	if b.buf.finalized {
		return env.ValueErrorf("chunk buffer already finalized")
	}
	if len(b.buf.cells) == cap(b.buf.cells) {
		return env.IndexErrorf("chunk buffer capacity exceeded: %d", cap(b.buf.cells))
	}
	b.buf.cells = append(b.buf.cells, x)
	return Nil()
}

// chunkFinalize seals the buffer b and returns its contents as an immutable
// chunk.  A second finalize of the same buffer is an error and leaves the
// first chunk intact.
func chunkFinalize(env *LEnv, b *LVal) *LVal {
	if b.buf.finalized {
		return env.ValueErrorf("chunk buffer already finalized")
	}
	b.buf.finalized = true
	return &LVal{Type: LChunk, Cells: b.buf.cells}
}

// chunkCons prepends the realized chunk onto the seqable value rest.  An
// empty chunk degenerates to rest itself so that a chunked-cons always
// holds at least one element.
func chunkCons(env *LEnv, chunk *LVal, rest *LVal) *LVal {
	if len(chunk.Cells) == 0 {
		return rest
	}
	return &LVal{Type: LChunkedCons, Cells: chunk.Cells, Tail: rest}
}

// chunkFirst returns the realized chunk at the head of a chunked-cons.
func chunkFirst(env *LEnv, cc *LVal) *LVal {
	return &LVal{Type: LChunk, Cells: cc.Cells}
}

// chunkRest returns the continuation of a chunked-cons, an empty list when
// it is exhausted.
func chunkRest(env *LEnv, cc *LVal) *LVal {
	return restTail(cc.Tail)
}

// chunkNext returns the sequence view of the continuation of a
// chunked-cons, a nil value when it is exhausted.
func chunkNext(env *LEnv, cc *LVal) *LVal {
	r := chunkRest(env, cc)
	if r.Type == LError {
		return r
	}
	return Seq(r)
}
