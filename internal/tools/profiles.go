package tools

// Full registers every builtin tool available to an unrestricted loop
// execution (spec.md §4.10).
func Full() *Executor {
	e := NewExecutor()
	e.AddTool(ReadFileTool{})
	e.AddTool(WriteFileTool{})
	e.AddTool(EditFileTool{})
	e.AddTool(ListDirectoryTool{})
	e.AddTool(GlobTool{})
	e.AddTool(GrepTool{})
	e.AddTool(RunCommandTool{})
	e.AddTool(TreeTool{})
	e.AddTool(NewTodoTool())
	e.AddTool(FetchTool{})
	e.AddTool(SearchTool{})
	e.AddTool(CompleteTaskTool{})
	e.AddTool(QueryTool{})
	e.AddTool(ShareTool{})
	return e
}

// ReadOnly registers the subset of builtin tools that cannot mutate the
// worktree, with bash restricted to the mutating-verb blocklist
// (spec.md §4.10, Testable Property 10).
func ReadOnly() *Executor {
	e := NewExecutor()
	e.AddTool(ReadFileTool{})
	e.AddTool(ListDirectoryTool{})
	e.AddTool(GlobTool{})
	e.AddTool(GrepTool{})
	e.AddTool(TreeTool{})
	e.AddTool(RunCommandTool{ReadOnly: true})
	e.AddTool(FetchTool{})
	e.AddTool(SearchTool{})
	e.AddTool(QueryTool{})
	return e
}
