package lisp

// VarArgSymbol marks the rest argument in a function's list of formal
// arguments.
const VarArgSymbol = "&rest"

// OptArgSymbol marks the beginning of the optional arguments in a
// function's list of formal arguments.
const OptArgSymbol = "&optional"

// Formals returns a list of formal argument symbols suitable for a builtin
// function definition.
func Formals(names ...string) *LVal {
	cells := make([]*LVal, len(names))
	for i := range names {
		cells[i] = Symbol(names[i])
	}
	return List(cells)
}
