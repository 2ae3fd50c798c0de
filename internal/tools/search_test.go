package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestGlobRecursive(t *testing.T) {
	ctx := newTestContext(t)
	writeFiles(t, ctx.Worktree, map[string]string{
		"a.go":        "package a",
		"sub/b.go":    "package b",
		"sub/deep/c.go": "package c",
		"notes.txt":   "not go",
	})

	res := GlobTool{}.Execute(map[string]any{"pattern": "**/*.go"}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "sub/b.go")
	assert.Contains(t, res.Content, "sub/deep/c.go")
	assert.NotContains(t, res.Content, "notes.txt")
}

func TestGlobNoMatches(t *testing.T) {
	ctx := newTestContext(t)
	res := GlobTool{}.Execute(map[string]any{"pattern": "*.rs"}, ctx)
	require.False(t, res.IsError)
	assert.Equal(t, "No matches found", res.Content)
}

func TestGrepFindsMatchesWithContext(t *testing.T) {
	ctx := newTestContext(t)
	writeFiles(t, ctx.Worktree, map[string]string{
		"file.txt": "one\ntwo\nTARGET\nfour\nfive\n",
	})

	res := GrepTool{}.Execute(map[string]any{"pattern": "TARGET", "context_lines": 1}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "file.txt:3:TARGET")
	assert.Contains(t, res.Content, "file.txt-2-two")
	assert.Contains(t, res.Content, "file.txt-4-four")
}

func TestGrepNoMatches(t *testing.T) {
	ctx := newTestContext(t)
	writeFiles(t, ctx.Worktree, map[string]string{"file.txt": "nothing here"})
	res := GrepTool{}.Execute(map[string]any{"pattern": "ZZZ"}, ctx)
	require.False(t, res.IsError)
	assert.Equal(t, "No matches found.", res.Content)
}

func TestGrepMaxResultsTruncates(t *testing.T) {
	ctx := newTestContext(t)
	content := ""
	for i := 0; i < 10; i++ {
		content += "match\n"
	}
	writeFiles(t, ctx.Worktree, map[string]string{"file.txt": content})

	res := GrepTool{}.Execute(map[string]any{"pattern": "match", "max_results": 3, "context_lines": 0}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "truncated at 3 matches")
}

func TestGrepCaseInsensitive(t *testing.T) {
	ctx := newTestContext(t)
	writeFiles(t, ctx.Worktree, map[string]string{"file.txt": "Hello World"})
	res := GrepTool{}.Execute(map[string]any{"pattern": "hello", "case_insensitive": true}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "Hello World")
}
