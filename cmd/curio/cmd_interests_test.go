package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	t.Parallel()

	s := "curiosité étendue sur les systèmes distribués"
	for n := 0; n <= len(s); n++ {
		got := truncate(s, n)
		assert.True(t, utf8.ValidString(got), "truncate(%q, %d) = %q", s, n, got)
		assert.LessOrEqual(t, len(got), n)
	}
	assert.Equal(t, s, truncate(s, len(s)))
}
