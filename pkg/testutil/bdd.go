package testutil

import "testing"

// Given, When and Then name nested subtests so a scenario reads top to
// bottom in `go test -v` output.
func Given(t *testing.T, context string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Given "+context, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("When "+action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("Then "+outcome, fn)
}
