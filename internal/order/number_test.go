package order

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumber_Shape(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[A-Z0-9]{4}$`)
	for i := 0; i < 100; i++ {
		n, err := NewNumber()
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
	}
}

func TestNewNumber_Varies(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 50)
	for i := 0; i < 50; i++ {
		n, err := NewNumber()
		require.NoError(t, err)
		seen[n] = struct{}{}
	}
	// 50 draws from a 36^4 space collide only with negligible probability.
	assert.Greater(t, len(seen), 45)
}
