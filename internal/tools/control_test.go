package tools

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteTaskBasic(t *testing.T) {
	ctx := newTestContext(t)
	res := CompleteTaskTool{}.Execute(map[string]any{"summary": "Implemented the feature"}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "Task completed")
	assert.Contains(t, res.Content, "Implemented the feature")
}

func TestCompleteTaskWithArtifacts(t *testing.T) {
	ctx := newTestContext(t)
	res := CompleteTaskTool{}.Execute(map[string]any{
		"summary":   "Added new module",
		"artifacts": []any{"src/module.go", "src/module_test.go"},
	}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "src/module.go")
	assert.Contains(t, res.Content, "src/module_test.go")
}

func TestCompleteTaskMissingSummary(t *testing.T) {
	ctx := newTestContext(t)
	res := CompleteTaskTool{}.Execute(map[string]any{}, ctx)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content, "Missing required parameter")
}

func TestQueryRequiresCoordinator(t *testing.T) {
	ctx := newTestContext(t)
	res := QueryTool{}.Execute(map[string]any{"target_exec_id": "other", "question": "status?"}, ctx)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content, "Coordination not enabled")
}

func TestShareRequiresCoordinator(t *testing.T) {
	ctx := newTestContext(t)
	res := ShareTool{}.Execute(map[string]any{
		"target_exec_id": "other", "share_type": "api_schema", "data": "{}",
	}, ctx)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content, "Coordination not enabled")
}

type fakeCoordinator struct {
	answer    string
	err       error
	shareErr  error
	shared    []string
}

func (f *fakeCoordinator) Query(target, question string) (string, error) {
	return f.answer, f.err
}

func (f *fakeCoordinator) Share(target, shareType, data string) error {
	f.shared = append(f.shared, fmt.Sprintf("%s:%s:%s", target, shareType, data))
	return f.shareErr
}

func TestQuerySucceedsWithCoordinator(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Coordinator = &fakeCoordinator{answer: "all good"}
	res := QueryTool{}.Execute(map[string]any{"target_exec_id": "other", "question": "status?"}, ctx)
	require.False(t, res.IsError)
	assert.Equal(t, "all good", res.Content)
}

func TestShareSucceedsWithCoordinator(t *testing.T) {
	ctx := newTestContext(t)
	fc := &fakeCoordinator{}
	ctx.Coordinator = fc
	res := ShareTool{}.Execute(map[string]any{
		"target_exec_id": "other", "share_type": "api_schema", "data": "{}",
	}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "Successfully shared")
	assert.Len(t, fc.shared, 1)
}

func TestTodoLifecycle(t *testing.T) {
	ctx := newTestContext(t)
	todo := NewTodoTool()

	res := todo.Execute(map[string]any{"action": "add", "task": "Write tests"}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "#1")

	res = todo.Execute(map[string]any{"action": "list"}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "[ ]")

	res = todo.Execute(map[string]any{"action": "set_status", "task": "1", "status": "in_progress"}, ctx)
	require.False(t, res.IsError)

	res = todo.Execute(map[string]any{"action": "list"}, ctx)
	assert.Contains(t, res.Content, "[~]")

	res = todo.Execute(map[string]any{"action": "complete", "task": "1"}, ctx)
	require.False(t, res.IsError)

	res = todo.Execute(map[string]any{"action": "list"}, ctx)
	assert.Contains(t, res.Content, "[x]")

	res = todo.Execute(map[string]any{"action": "complete", "task": "999"}, ctx)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content, "not found")

	res = todo.Execute(map[string]any{"action": "clear"}, ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content, "Cleared 1")

	res = todo.Execute(map[string]any{"action": "list"}, ctx)
	assert.Equal(t, "No tasks in the list", res.Content)
}
