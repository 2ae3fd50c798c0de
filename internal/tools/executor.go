package tools

// Executor holds a name -> Tool registry and dispatches calls against it
// (spec.md §4.10, grounded on the teacher's ToolExecutor interface shape
// in pkg/agent/tool_executor.go and the original's executor.rs).
type Executor struct {
	tools map[string]Tool
}

// NewExecutor constructs an empty executor; use AddTool or one of the
// profile constructors (Full/ReadOnly) to populate it.
func NewExecutor() *Executor {
	return &Executor{tools: make(map[string]Tool)}
}

// AddTool registers t, keyed by its own name.
func (e *Executor) AddTool(t Tool) {
	e.tools[t.Name()] = t
}

// HasTool reports whether name is registered.
func (e *Executor) HasTool(name string) bool {
	_, ok := e.tools[name]
	return ok
}

// ToolNames returns every registered tool's name.
func (e *Executor) ToolNames() []string {
	out := make([]string, 0, len(e.tools))
	for name := range e.tools {
		out = append(out, name)
	}
	return out
}

// Definitions returns LLM-facing definitions for every registered tool.
func (e *Executor) Definitions() []Definition {
	out := make([]Definition, 0, len(e.tools))
	for _, t := range e.tools {
		out = append(out, Definition{Name: t.Name(), Description: t.Description(), InputSchema: t.InputSchema()})
	}
	return out
}

// DefinitionsFor returns definitions restricted to the named subset,
// silently skipping names not registered on this executor.
func (e *Executor) DefinitionsFor(names []string) []Definition {
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		if t, ok := e.tools[name]; ok {
			out = append(out, Definition{Name: t.Name(), Description: t.Description(), InputSchema: t.InputSchema()})
		}
	}
	return out
}

// Execute dispatches one call by name. An unknown name is an error
// result, not a fatal condition (spec.md §4.1.5).
func (e *Executor) Execute(name string, input map[string]any, ctx *Context) Result {
	t, ok := e.tools[name]
	if !ok {
		return ErrorResult("Unknown tool: %s", name)
	}
	return t.Execute(input, ctx)
}
