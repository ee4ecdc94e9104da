package lisp

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var envCount uint64

func getEnvID() uint {
	return uint(atomic.AddUint64(&envCount, 1))
}

// Default limits applied by StandardRuntime.
const (
	// DefaultEagerLimit bounds the number of elements an operation will
	// realize from a lazy sequence when it must materialize its input.
	DefaultEagerLimit = 1000000

	// DefaultMaxFusedTransforms bounds the number of transformation stages
	// a reduction will fuse before falling back to stepwise realization.
	DefaultMaxFusedTransforms = 16
)

// FunCaller invokes function values that have no native implementation.
// The host evaluator implements FunCaller for the function values it
// constructs and passes into this package.
type FunCaller interface {
	// Call invokes fun with the list of arguments args and returns the
	// result.  Errors are reported as error values, not Go errors.
	Call(env *LEnv, fun *LVal, args *LVal) *LVal
}

// Runtime is the state shared by all environments in a tree.
type Runtime struct {
	// Stderr is the destination for debugging output.
	Stderr io.Writer

	// Caller invokes non-native function values.  An environment without a
	// Caller returns errors when asked to invoke one.
	Caller FunCaller

	// EagerLimit and MaxFusedTransforms bound eager materialization and
	// reduction fusion.  Zero values fall back to the package defaults.
	EagerLimit         int64
	MaxFusedTransforms int

	// Funs is the builtin function registry, keyed by name.
	Funs map[string]*LVal
}

// StandardRuntime returns a new Runtime with default configuration.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stderr:             os.Stderr,
		EagerLimit:         DefaultEagerLimit,
		MaxFusedTransforms: DefaultMaxFusedTransforms,
		Funs:               make(map[string]*LVal),
	}
}

// LEnv is a lisp environment.
type LEnv struct {
	ID      uint
	Runtime *Runtime
	Parent  *LEnv
}

// NewEnv initializes and returns a new LEnv.  A child environment shares the
// runtime of its parent while a root environment receives a standard
// runtime.
func NewEnv(parent *LEnv) *LEnv {
	var rt *Runtime
	if parent != nil {
		rt = parent.Runtime
	} else {
		rt = StandardRuntime()
	}
	return &LEnv{
		ID:      getEnvID(),
		Runtime: rt,
		Parent:  parent,
	}
}

// InitializeUserEnv registers the default builtins in env's runtime and
// applies the given configuration.  The returned LVal is nil-valued on
// success and an error value when configuration fails.
func InitializeUserEnv(env *LEnv, config ...Config) *LVal {
	env.AddBuiltins()
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

// AddBuiltins registers the given function definitions in env's runtime.
// When called with no arguments AddBuiltins registers DefaultBuiltins.
func (env *LEnv) AddBuiltins(funs ...LBuiltinDef) {
	if len(funs) == 0 {
		funs = DefaultBuiltins()
	}
	for _, f := range funs {
		id := fmt.Sprintf("<builtin ``%s''>", f.Name())
		v := Fun(id, f.Eval)
		v.Meta = builtinMeta(f)
		env.Runtime.Funs[f.Name()] = v
	}
}

// GetFun returns the function bound to the given name in env's runtime.  The
// name may be given as a string, symbol, or keyword value.  GetFun returns
// an error value when the name is unbound.
func (env *LEnv) GetFun(name *LVal) *LVal {
	var s string
	switch name.Type {
	case LString, LSymbol, LKeyword:
		s = name.Str
	default:
		return env.TypeErrorf("not a function name: %v", name.Type)
	}
	v, ok := env.Runtime.Funs[s]
	if !ok {
		return env.ValueErrorf("unbound function: %s", s)
	}
	return v
}

// FunCall invokes the function fun with the list of arguments args.  Native
// functions are called directly.  Any other function value is dispatched
// through the runtime's FunCaller.
func (env *LEnv) FunCall(fun *LVal, args *LVal) *LVal {
	if fun.Type != LFun {
		return env.TypeErrorf("cannot call non-function: %v", fun.Type)
	}
	if fun.Builtin != nil {
		return fun.Builtin(env, args)
	}
	if env.Runtime.Caller == nil {
		return env.Errorf("no function caller configured: %s", fun.FID)
	}
	return env.Runtime.Caller.Call(env, fun, args)
}

func (env *LEnv) call1(fun *LVal, a *LVal) *LVal {
	return env.FunCall(fun, List([]*LVal{a}))
}

func (env *LEnv) call2(fun *LVal, a *LVal, b *LVal) *LVal {
	return env.FunCall(fun, List([]*LVal{a, b}))
}

// DebugPrint writes the string representations of the given values to the
// runtime's Stderr.
func (env *LEnv) DebugPrint(vs ...*LVal) {
	w := env.Runtime.Stderr
	if w == nil {
		w = os.Stderr
	}
	for i, v := range vs {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		if v.Type == LString {
			fmt.Fprint(w, v.Str)
		} else {
			fmt.Fprint(w, v.String())
		}
	}
	fmt.Fprintln(w)
}

func (env *LEnv) eagerLimit() int64 {
	if env == nil || env.Runtime == nil || env.Runtime.EagerLimit == 0 {
		return DefaultEagerLimit
	}
	return env.Runtime.EagerLimit
}

func (env *LEnv) maxFusedTransforms() int {
	if env == nil || env.Runtime == nil || env.Runtime.MaxFusedTransforms == 0 {
		return DefaultMaxFusedTransforms
	}
	return env.Runtime.MaxFusedTransforms
}

// Errorf returns an error value with the generic error condition and a
// formatted message.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionError, format, v...)
}

// TypeErrorf returns an error value signaling an argument of the wrong type.
func (env *LEnv) TypeErrorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionType, format, v...)
}

// ArityErrorf returns an error value signaling a call with the wrong number
// of arguments.
func (env *LEnv) ArityErrorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionArity, format, v...)
}

// IndexErrorf returns an error value signaling an out of range index.
func (env *LEnv) IndexErrorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionIndex, format, v...)
}

// ValueErrorf returns an error value signaling an invalid argument value.
func (env *LEnv) ValueErrorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionValue, format, v...)
}

// ArithmeticErrorf returns an error value signaling an invalid arithmetic
// operation.
func (env *LEnv) ArithmeticErrorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionArithmetic, format, v...)
}
