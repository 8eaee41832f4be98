package history

import (
	"testing"

	testutil "github.com/wizzomafizzo/consolestrip/internal/testing"
)

func TestMain(m *testing.M) {
	testutil.VerifyTestMain(m)
}
