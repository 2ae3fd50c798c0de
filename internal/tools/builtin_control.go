package tools

import (
	"fmt"
	"strings"
	"time"
)

// CompleteTaskTool signals that the current iteration's work satisfies the
// loop's goal. The engine inspects the tool call itself (not this Result)
// to decide whether to stop the agentic inner loop (spec.md §4.1.2, §4.10).
type CompleteTaskTool struct{}

func (CompleteTaskTool) Name() string { return "complete_task" }
func (CompleteTaskTool) Description() string {
	return "Signal that the current task is complete. Use when validation passes and work is done."
}
func (CompleteTaskTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":   map[string]any{"type": "string", "description": "Brief summary of what was accomplished"},
			"artifacts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Files created or modified"},
		},
		"required": []string{"summary"},
	}
}

func (CompleteTaskTool) Execute(input map[string]any, ctx *Context) Result {
	summary, ok := stringArg(input, "summary")
	if !ok {
		return ErrorResult("Missing required parameter: summary")
	}
	artifacts := stringSliceArg(input, "artifacts")

	var b strings.Builder
	fmt.Fprintf(&b, "Task completed: %s", summary)
	if len(artifacts) > 0 {
		b.WriteString("\n\nArtifacts:\n")
		for _, a := range artifacts {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	return OKResult(strings.TrimRight(b.String(), "\n"))
}

// QueryTool sends a question to another execution via the coordinator and
// blocks for the reply (spec.md §4.9's inter-loop coordination surface).
type QueryTool struct{}

func (QueryTool) Name() string { return "query" }
func (QueryTool) Description() string {
	return "Query another loop execution for information. Sends a question and waits for a response."
}
func (QueryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_exec_id": map[string]any{"type": "string", "description": "Execution ID to query"},
			"question":       map[string]any{"type": "string", "description": "Question to ask"},
			"timeout_ms":     map[string]any{"type": "integer", "description": "Timeout in milliseconds (default: 30000)"},
		},
		"required": []string{"target_exec_id", "question"},
	}
}

func (QueryTool) Execute(input map[string]any, ctx *Context) Result {
	if ctx.Coordinator == nil {
		return ErrorResult("Coordination not enabled for this execution. Query tool requires a coordinator handle to be configured.")
	}
	target, ok := stringArg(input, "target_exec_id")
	if !ok {
		return ErrorResult("Missing required parameter: target_exec_id")
	}
	question, ok := stringArg(input, "question")
	if !ok {
		return ErrorResult("Missing required parameter: question")
	}
	var answer string
	var err error
	if tc, ok := ctx.Coordinator.(interface {
		QueryWithTimeout(target, question string, timeout time.Duration) (string, error)
	}); ok {
		timeout := time.Duration(intArg(input, "timeout_ms", 30_000)) * time.Millisecond
		answer, err = tc.QueryWithTimeout(target, question, timeout)
	} else {
		answer, err = ctx.Coordinator.Query(target, question)
	}
	if err != nil {
		return ErrorResult("Query failed: %s", err)
	}
	return OKResult(answer)
}

// ShareTool pushes data to another execution's inbox for use in its next
// iteration (spec.md §4.9).
type ShareTool struct{}

func (ShareTool) Name() string { return "share" }
func (ShareTool) Description() string {
	return "Share data with another loop execution. The target can access this in its next iteration."
}
func (ShareTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"target_exec_id": map[string]any{"type": "string", "description": "Execution ID to share with"},
			"share_type":     map[string]any{"type": "string", "description": "Type of data being shared (e.g., 'api_schema', 'test_results')"},
			"data":           map[string]any{"type": "string", "description": "Data to share (typically JSON or text)"},
		},
		"required": []string{"target_exec_id", "share_type", "data"},
	}
}

func (ShareTool) Execute(input map[string]any, ctx *Context) Result {
	if ctx.Coordinator == nil {
		return ErrorResult("Coordination not enabled for this execution. Share tool requires a coordinator handle to be configured.")
	}
	target, ok := stringArg(input, "target_exec_id")
	if !ok {
		return ErrorResult("Missing required parameter: target_exec_id")
	}
	shareType, ok := stringArg(input, "share_type")
	if !ok {
		return ErrorResult("Missing required parameter: share_type")
	}
	data, ok := stringArg(input, "data")
	if !ok {
		return ErrorResult("Missing required parameter: data")
	}
	if err := ctx.Coordinator.Share(target, shareType, data); err != nil {
		return ErrorResult("Share failed: %s", err)
	}
	return OKResult(fmt.Sprintf("Successfully shared %s data with %s", shareType, target))
}

// todoItem is one entry in a TodoTool's in-memory task list.
type todoItem struct {
	id     int
	task   string
	status string
}

// TodoTool manages a per-execution scratch task list (spec.md §4.10); it
// carries its own state across iterations within the same engine instance,
// independent of the fresh-LLM-context-per-iteration discipline.
type TodoTool struct {
	items  []todoItem
	nextID int
}

// NewTodoTool constructs an empty todo list.
func NewTodoTool() *TodoTool {
	return &TodoTool{}
}

func (t *TodoTool) Name() string { return "todo" }
func (t *TodoTool) Description() string {
	return "Manage a task list. Actions: add, complete, list, clear, set_status"
}
func (t *TodoTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{"type": "string", "enum": []string{"add", "complete", "list", "clear", "set_status"}},
			"task":   map[string]any{"type": "string", "description": "Task description (add) or task ID (complete/set_status)"},
			"status": map[string]any{"type": "string", "enum": []string{"pending", "in_progress", "completed"}},
		},
		"required": []string{"action"},
	}
}

func (t *TodoTool) Execute(input map[string]any, ctx *Context) Result {
	action, ok := stringArg(input, "action")
	if !ok {
		return ErrorResult("action is required")
	}

	switch action {
	case "add":
		task, ok := stringArg(input, "task")
		if !ok {
			return ErrorResult("task is required for add action")
		}
		t.nextID++
		t.items = append(t.items, todoItem{id: t.nextID, task: task, status: "pending"})
		return OKResult(fmt.Sprintf("Added task #%d: %s", t.nextID, task))

	case "complete":
		id, err := taskIDArg(input)
		if err != nil {
			return ErrorResult("%s", err)
		}
		for i := range t.items {
			if t.items[i].id == id {
				t.items[i].status = "completed"
				return OKResult(fmt.Sprintf("Completed task #%d: %s", id, t.items[i].task))
			}
		}
		return ErrorResult("Task #%d not found", id)

	case "set_status":
		id, err := taskIDArg(input)
		if err != nil {
			return ErrorResult("%s", err)
		}
		status, ok := stringArg(input, "status")
		if !ok {
			return ErrorResult("status is required for set_status action")
		}
		if status != "pending" && status != "in_progress" && status != "completed" {
			return ErrorResult("Invalid status: %s", status)
		}
		for i := range t.items {
			if t.items[i].id == id {
				t.items[i].status = status
				return OKResult(fmt.Sprintf("Set task #%d status to %s", id, status))
			}
		}
		return ErrorResult("Task #%d not found", id)

	case "list":
		if len(t.items) == 0 {
			return OKResult("No tasks in the list")
		}
		var b strings.Builder
		for i, item := range t.items {
			marker := "[ ]"
			switch item.status {
			case "in_progress":
				marker = "[~]"
			case "completed":
				marker = "[x]"
			}
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s #%d: %s", marker, item.id, item.task)
		}
		return OKResult(b.String())

	case "clear":
		count := len(t.items)
		t.items = nil
		return OKResult(fmt.Sprintf("Cleared %d task(s)", count))

	default:
		return ErrorResult("Unknown action: %s", action)
	}
}

func taskIDArg(input map[string]any) (int, error) {
	s, ok := stringArg(input, "task")
	if !ok {
		return 0, fmt.Errorf("task (ID) is required for this action")
	}
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("task must be a valid task ID number")
	}
	return id, nil
}
