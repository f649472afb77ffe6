package flux

import "fmt"

// icePanic reports an internal-compiler-error: an invariant violation that
// is a bug in this front-end, never a user mistake. Per spec section 7,
// these are the only failures allowed to abort rather than accumulate as a
// Diagnostic.
func icePanic(format string, args ...any) {
	panic(fmt.Sprintf("internal compiler error: "+format, args...))
}
