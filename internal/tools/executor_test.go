package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorUnknownToolIsNonFatal(t *testing.T) {
	ctx := newTestContext(t)
	e := NewExecutor()
	res := e.Execute("does_not_exist", nil, ctx)
	require.True(t, res.IsError)
	assert.Equal(t, "Unknown tool: does_not_exist", res.Content)
}

func TestFullProfileRegistersExpectedTools(t *testing.T) {
	e := Full()
	for _, name := range []string{
		"read_file", "write_file", "edit_file", "list_directory", "glob",
		"grep", "bash", "tree", "todo", "fetch", "search", "complete_task",
		"query", "share",
	} {
		assert.True(t, e.HasTool(name), "expected Full profile to register %s", name)
	}
}

func TestReadOnlyProfileExcludesMutatingTools(t *testing.T) {
	e := ReadOnly()
	for _, name := range []string{"write_file", "edit_file", "complete_task", "share", "todo"} {
		assert.False(t, e.HasTool(name), "ReadOnly profile should not register %s", name)
	}
	for _, name := range []string{"read_file", "list_directory", "glob", "grep", "bash", "fetch", "search", "query"} {
		assert.True(t, e.HasTool(name), "ReadOnly profile should register %s", name)
	}
}

func TestDefinitionsForSkipsUnregistered(t *testing.T) {
	e := NewExecutor()
	e.AddTool(ReadFileTool{})
	defs := e.DefinitionsFor([]string{"read_file", "nonexistent"})
	require.Len(t, defs, 1)
	assert.Equal(t, "read_file", defs[0].Name)
}
