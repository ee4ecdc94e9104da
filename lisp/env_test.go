package lisp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *LEnv {
	t.Helper()
	env := NewEnv(nil)
	lerr := InitializeUserEnv(env)
	if GoError(lerr) != nil {
		t.Fatal(GoError(lerr))
	}
	return env
}

func callBuiltin(t *testing.T, env *LEnv, name string, args ...*LVal) *LVal {
	t.Helper()
	fn := env.GetFun(Symbol(name))
	if GoError(fn) != nil {
		t.Fatalf("builtin %s: %v", name, GoError(fn))
	}
	return env.FunCall(fn, List(args))
}

func mustCells(t *testing.T, env *LEnv, v *LVal) []*LVal {
	t.Helper()
	cells, lerr := seqCells(env, v)
	if lerr != nil {
		t.Fatalf("seq of %v: %v", v.Type, GoError(lerr))
	}
	return cells
}

func TestEnvIDs(t *testing.T) {
	root := NewEnv(nil)
	child := NewEnv(root)
	assert.NotEqual(t, root.ID, child.ID)
	assert.Same(t, root.Runtime, child.Runtime)
}

func TestDefaultBuiltins(t *testing.T) {
	env := testEnv(t)
	for _, op := range DefaultBuiltins() {
		fn := env.GetFun(Symbol(op.Name()))
		require.NotEqual(t, LError, fn.Type, "builtin: %s", op.Name())
		require.NotNil(t, fn.Builtin, "builtin: %s", op.Name())
	}
}

func TestBuiltinMeta(t *testing.T) {
	env := testEnv(t)
	fn := env.GetFun(Symbol("conj"))
	require.Equal(t, LFun, fn.Type)
	require.NotNil(t, fn.Meta)
	doc, ok := mapLookup(fn.Meta, Keyword("doc"))
	require.True(t, ok)
	assert.NotEqual(t, "", doc.Str)
	formals, ok := mapLookup(fn.Meta, Keyword("arglists"))
	require.True(t, ok)
	assert.Equal(t, LList, formals.Type)
}

func TestGetFun(t *testing.T) {
	env := testEnv(t)
	assert.Equal(t, LFun, env.GetFun(Symbol("first")).Type)
	assert.Equal(t, LFun, env.GetFun(String("first")).Type)
	assert.Equal(t, LFun, env.GetFun(Keyword("first")).Type)

	lerr := env.GetFun(Symbol("no-such-function"))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionValue, Condition(lerr))

	lerr = env.GetFun(Int(1))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionType, Condition(lerr))
}

func TestBuiltinArityCheck(t *testing.T) {
	env := testEnv(t)
	lerr := callBuiltin(t, env, "first")
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionArity, Condition(lerr))
	assert.Equal(t, "first expects 1 argument (got 0)", GoError(lerr).Error())

	lerr = callBuiltin(t, env, "cons", Int(1))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionArity, Condition(lerr))
}

func TestWithStderr(t *testing.T) {
	var buf bytes.Buffer
	env := NewEnv(nil)
	lerr := InitializeUserEnv(env, WithStderr(&buf))
	require.Nil(t, GoError(lerr))
	r := callBuiltin(t, env, "debug-print", String("dump"), Int(1))
	require.Nil(t, GoError(r))
	assert.Equal(t, "dump 1\n", buf.String())
}

func TestConfigErrors(t *testing.T) {
	env := NewEnv(nil)
	lerr := InitializeUserEnv(env, WithEagerLimit(0))
	require.Error(t, GoError(lerr))
	assert.Equal(t, ConditionValue, Condition(lerr))

	env = NewEnv(nil)
	lerr = InitializeUserEnv(env, WithMaxFusedTransforms(-1))
	require.Error(t, GoError(lerr))
	assert.Equal(t, ConditionValue, Condition(lerr))
}

type testCaller struct {
	calls int
}

func (c *testCaller) Call(env *LEnv, fun *LVal, args *LVal) *LVal {
	c.calls++
	fn, ok := fun.Native.(func(*LEnv, *LVal) *LVal)
	if !ok {
		return env.Errorf("unknown function: %s", fun.FID)
	}
	return fn(env, args)
}

func TestFunCaller(t *testing.T) {
	caller := &testCaller{}
	env := NewEnv(nil)
	lerr := InitializeUserEnv(env, WithFunCaller(caller))
	require.Nil(t, GoError(lerr))

	double := HostFun("user:double", func(env *LEnv, args *LVal) *LVal {
		return Int(2 * args.Cells[0].Int)
	})
	r := env.FunCall(double, List([]*LVal{Int(21)}))
	require.Equal(t, LInt, r.Type)
	assert.Equal(t, int64(42), r.Int)
	assert.Equal(t, 1, caller.calls)

	// Host functions compose with native ones through the same dispatch.
	s := callBuiltin(t, env, "map", double, List([]*LVal{Int(1), Int(2)}))
	cells, err := seqCells(env, s)
	require.Nil(t, err)
	assert.Equal(t, "(2 4)", List(cells).String())
	assert.Equal(t, 3, caller.calls)
}

func TestFunCallErrors(t *testing.T) {
	env := testEnv(t)
	lerr := env.FunCall(Int(1), List(nil))
	require.Equal(t, LError, lerr.Type)
	assert.Equal(t, ConditionType, Condition(lerr))

	// Without a configured caller host functions cannot be invoked.
	lerr = env.FunCall(HostFun("user:f", nil), List(nil))
	require.Equal(t, LError, lerr.Type)
}
