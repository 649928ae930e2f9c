package heuristic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	boom := errors.New("remote call failed")

	t.Run("first producer wins", func(t *testing.T) {
		value, errs := FirstNonEmpty(
			Static("primary"),
			Static("fallback"),
		)
		assert.Equal(t, "primary", value)
		assert.Empty(t, errs)
	})

	t.Run("failing producer skipped, error reported", func(t *testing.T) {
		value, errs := FirstNonEmpty(
			func() (string, error) { return "", boom },
			Static("fallback"),
		)
		assert.Equal(t, "fallback", value)
		assert.Equal(t, []error{boom}, errs)
	})

	t.Run("empty result skipped", func(t *testing.T) {
		value, errs := FirstNonEmpty(
			Static("   "),
			Static("fallback"),
		)
		assert.Equal(t, "fallback", value)
		assert.Empty(t, errs)
	})

	t.Run("all producers fail", func(t *testing.T) {
		value, errs := FirstNonEmpty(
			func() (string, error) { return "", boom },
			func() (string, error) { return "", boom },
		)
		assert.Equal(t, "", value)
		assert.Len(t, errs, 2)
	})

	t.Run("no producers", func(t *testing.T) {
		value, errs := FirstNonEmpty()
		assert.Equal(t, "", value)
		assert.Empty(t, errs)
	})
}
