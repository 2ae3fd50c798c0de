package domain

// ExecStatus is the LoopExecution status machine (spec.md §3, §4.7).
type ExecStatus string

const (
	ExecDraft    ExecStatus = "Draft"
	ExecPending  ExecStatus = "Pending"
	ExecRunning  ExecStatus = "Running"
	ExecPaused   ExecStatus = "Paused"
	ExecRebasing ExecStatus = "Rebasing"
	ExecBlocked  ExecStatus = "Blocked"
	ExecComplete ExecStatus = "Complete"
	ExecFailed   ExecStatus = "Failed"
	ExecStopped  ExecStatus = "Stopped"
)

// Terminal reports whether the status cannot transition further.
func (s ExecStatus) Terminal() bool {
	switch s {
	case ExecComplete, ExecFailed, ExecStopped:
		return true
	default:
		return false
	}
}

// allowedExecTransitions encodes the status machine in spec.md §4.7.
var allowedExecTransitions = map[ExecStatus]map[ExecStatus]bool{
	ExecDraft:    {ExecPending: true},
	ExecPending:  {ExecRunning: true, ExecStopped: true},
	ExecRunning:  {ExecPaused: true, ExecRebasing: true, ExecComplete: true, ExecFailed: true, ExecStopped: true},
	ExecPaused:   {ExecRunning: true, ExecStopped: true},
	ExecRebasing: {ExecRunning: true, ExecBlocked: true, ExecStopped: true},
	ExecBlocked:  {ExecRunning: true, ExecStopped: true},
}

// CanTransition reports whether from -> to is an allowed transition.
func CanTransition(from, to ExecStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == ExecStopped {
		return true // any non-terminal -> Stopped (cancel)
	}
	return allowedExecTransitions[from][to]
}

// LoopExecution is the runtime state of one run of a Loop (spec.md §3).
type LoopExecution struct {
	ID       string     `json:"id"`
	LoopType string     `json:"loop_type"`
	Title    string     `json:"title,omitempty"`
	Parent   string     `json:"parent,omitempty"` // a Loop id, not an execution id
	Deps     []string   `json:"deps,omitempty"`   // execution ids
	Status   ExecStatus `json:"status"`

	Worktree  string            `json:"worktree,omitempty"`
	Iteration uint32            `json:"iteration"`
	Progress  string            `json:"progress,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	LastError string            `json:"last_error,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	TotalInputTokens  int64 `json:"total_input_tokens"`
	TotalOutputTokens int64 `json:"total_output_tokens"`
	TotalValidationMs int64 `json:"total_validation_ms"`
}

// Clone returns a deep copy safe for the caller to mutate.
func (e *LoopExecution) Clone() *LoopExecution {
	cp := *e
	cp.Deps = append([]string(nil), e.Deps...)
	if e.Context != nil {
		cp.Context = make(map[string]string, len(e.Context))
		for k, v := range e.Context {
			cp.Context[k] = v
		}
	}
	return &cp
}

// ToolCallRecord summarizes one tool invocation within an iteration.
type ToolCallRecord struct {
	Name         string `json:"name"`
	ArgsSummary  string `json:"args_summary"`
	ResultSummary string `json:"result_summary"`
	IsError      bool   `json:"is_error"`
}

// IterationLog is the persistent record of one completed iteration
// (spec.md §3).
type IterationLog struct {
	ID                string           `json:"id"`
	ExecutionID       string           `json:"execution_id"`
	Iteration         uint32           `json:"iteration"`
	ValidationCommand string           `json:"validation_command"`
	ExitCode          int              `json:"exit_code"`
	Stdout            string           `json:"stdout"`
	Stderr            string           `json:"stderr"`
	DurationMs        int64            `json:"duration_ms"`
	FilesChanged      []string         `json:"files_changed,omitempty"`
	LLMInputTokens    int64            `json:"llm_input_tokens,omitempty"`
	LLMOutputTokens   int64            `json:"llm_output_tokens,omitempty"`
	ToolCalls         []ToolCallRecord `json:"tool_calls,omitempty"`
	CreatedAt         int64            `json:"created_at"`
}
