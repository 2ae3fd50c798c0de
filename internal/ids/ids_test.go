package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":       "hello-world",
		"Add OAuth!":        "add-oauth",
		"Multiple   Spaces": "multiple-spaces",
		"CamelCase":         "camelcase",
		"here's a test":     "heres-a-test",
		"don't stop":        "dont-stop",
		"it's working":      "its-working",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "slugify(%q)", in)
	}
}

func TestNewFormat(t *testing.T) {
	id := New("plan", "Add OAuth Authentication")
	require.True(t, Valid(id), "id %q must match canonical format", id)
	assert.Equal(t, "plan", Kind(id))
	assert.Equal(t, "add-oauth-authentication", Slug(id))
}

// TestableProperty13 checks id format and within-process monotonic prefix.
func TestableProperty13(t *testing.T) {
	var prev string
	for i := 0; i < 50; i++ {
		id := New("exec", "sample title")
		require.Regexp(t, `^[0-9a-f]{6}-[a-z]+-[a-z0-9-]+$`, id)
		hex := HexOf(id)
		if prev != "" {
			assert.GreaterOrEqual(t, hex, prev, "hex prefixes must be non-decreasing by creation order")
		}
		prev = hex
	}
}

func TestIterationLogID(t *testing.T) {
	assert.Equal(t, "abc123-exec-foo-iter-3", IterationLogID("abc123-exec-foo", 3))
}

func TestEmptyTitleFallsBackToUntitled(t *testing.T) {
	id := New("loop", "''' !!!")
	assert.Contains(t, id, "-loop-untitled")
}
