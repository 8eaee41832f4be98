package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyTestMain runs the package tests and fails the binary if goroutines
// outlive them. Use it in packages that open the history database or hold
// locks:
//
//	func TestMain(m *testing.M) {
//	    testutil.VerifyTestMain(m)
//	}
func VerifyTestMain(m *testing.M, options ...goleak.Option) {
	goleak.VerifyTestMain(m, append(ignoredGoroutines(), options...)...)
}

func ignoredGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("go.uber.org/goleak.(*opts).retry"),
		goleak.IgnoreCurrent(),
	}
}
