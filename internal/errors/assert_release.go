//go:build !debug

package errors

// Assertf is a no-op in release builds; see assert.go for the debug
// implementation.
func Assertf(bool, string, ...any) {}
