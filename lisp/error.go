package lisp

import (
	"bytes"
	"fmt"
)

// Condition symbols attached to errors raised by this package.  Errors
// constructed by callers may use any symbol.
const (
	ConditionError      = "error"
	ConditionType       = "type-error"
	ConditionArity      = "arity-error"
	ConditionIndex      = "index-error"
	ConditionValue      = "value-error"
	ConditionArithmetic = "arithmetic-error"
)

// ErrorVal implements the error interface so that errors can be first class
// lisp objects.  The condition symbol is stored in the Str field while the
// message values are stored in the Cells slice.
type ErrorVal LVal

// Error implements the error interface.  It renders the error's message
// values, separated by spaces, without the condition symbol.
func (e *ErrorVal) Error() string {
	var buf bytes.Buffer
	for i, c := range e.Cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		if c.Type == LString {
			buf.WriteString(c.Str)
		} else {
			buf.WriteString(c.String())
		}
	}
	return buf.String()
}

// Condition returns the error's condition symbol.
func (e *ErrorVal) Condition() string {
	return e.Str
}

// FullMessage renders the error with its condition symbol prefixed.
func (e *ErrorVal) FullMessage() string {
	msg := e.Error()
	if e.Str != "" {
		return e.Str + ": " + msg
	}
	return msg
}

// Error returns an LVal representing the error corresponding to err.
func Error(err error) *LVal {
	return &LVal{
		Type:  LError,
		Str:   ConditionError,
		Cells: []*LVal{String(err.Error())},
	}
}

// Errorf returns an error LVal with a formatted message and the generic
// error condition.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(ConditionError, format, v...)
}

// ErrorConditionf returns an error LVal with the given condition symbol and
// a formatted message.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Type:  LError,
		Str:   condition,
		Cells: []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// Condition returns the condition symbol of an error value and an empty
// string for any other value.
func Condition(v *LVal) string {
	if v.Type != LError {
		return ""
	}
	return v.Str
}
