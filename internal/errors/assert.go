//go:build debug

package errors

import "fmt"

// Assertf panics when cond is false. Compiled only under the debug build
// tag; release builds ship the no-op in assert_release.go, so internal
// invariant violations never crash production queries.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}
