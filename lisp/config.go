package lisp

import "io"

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) *LVal

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		return Nil()
	}
}

// WithFunCaller returns a Config that makes environments use c to invoke
// function values that have no native implementation.
func WithFunCaller(c FunCaller) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Caller = c
		return Nil()
	}
}

// WithEagerLimit returns a Config that will prevent operations which
// materialize lazy sequences from realizing more than n elements.
func WithEagerLimit(n int64) Config {
	return func(env *LEnv) *LVal {
		if n <= 0 {
			return env.ValueErrorf("eager limit is not positive: %d", n)
		}
		env.Runtime.EagerLimit = n
		return Nil()
	}
}

// WithMaxFusedTransforms returns a Config that bounds the number of
// transformation stages a reduction will fuse.
func WithMaxFusedTransforms(n int) Config {
	return func(env *LEnv) *LVal {
		if n <= 0 {
			return env.ValueErrorf("transform limit is not positive: %d", n)
		}
		env.Runtime.MaxFusedTransforms = n
		return Nil()
	}
}
