// Package template implements the Template Expander and CTE (spec.md
// §4.4): evaluating type-level and value-level AST into concrete values,
// deduplicating expansions by argument tuple, and compiling/invoking
// compile-time functions via the VM.
//
// Follows a memoize-then-resolve shape analogous to trait-instance
// resolution backed by a dictionary/variant-like cache, with the
// VM-callback boundary generalized into the explicit, minimal Evaluator
// interface spec.md §9 calls for, so the core "holds an abstract handle,
// not a concrete VM type" and can be stubbed in tests.
package template

import "github.com/funvibe/funxy/internal/value"

// Evaluator is the black-box VM boundary CTE re-enters through: "CTE uses
// the VM purely as a black-box callFunc(func, args) -> value" (spec.md §1).
// Bytecode generation from IR and the VM's execution loop are explicitly
// out of scope; by the time ExpandCtFuncTemplate calls CallFunc, whatever
// owns that lowering has already made fn callable.
type Evaluator interface {
	CallFunc(fn int, args []value.Value) (value.Value, error)
}
