// Package looptype resolves loop-type definitions: the YAML-configurable
// templates (prompt, validation command, caps, tool set) that every Loop
// and LoopExecution is stamped with.
package looptype

// Definition is a loop-type definition (spec.md §3, §6.2).
type Definition struct {
	Name string `yaml:"-" json:"name"`

	// Extends names another definition this one inherits scalars/lists
	// from. Distinct from Parent: this shapes configuration resolution,
	// not runtime cascade spawning.
	Extends string `yaml:"extends,omitempty" json:"extends,omitempty"`

	// Parent names the loop type that spawns this one in the cascade
	// (spec.md §4.8). Distinct from Extends.
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`

	PromptTemplate       string   `yaml:"prompt_template,omitempty" json:"prompt_template,omitempty"`
	ValidationCommand    string   `yaml:"validation_command,omitempty" json:"validation_command,omitempty"`
	SuccessExitCode      int      `yaml:"success_exit_code,omitempty" json:"success_exit_code"`
	MaxIterations        int      `yaml:"max_iterations,omitempty" json:"max_iterations"`
	IterationTimeoutMs   int64    `yaml:"iteration_timeout_ms,omitempty" json:"iteration_timeout_ms"`
	MaxTokens            int      `yaml:"max_tokens,omitempty" json:"max_tokens"`
	MaxTurnsPerIteration int      `yaml:"max_turns_per_iteration,omitempty" json:"max_turns_per_iteration"`
	Tools                []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	ProgressMaxEntries   int      `yaml:"progress_max_entries,omitempty" json:"progress_max_entries"`
	ProgressMaxChars     int      `yaml:"progress_max_chars,omitempty" json:"progress_max_chars"`
	Inputs               []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs              []string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// clone returns a deep-enough copy for safe mutation during merge.
func (d *Definition) clone() *Definition {
	if d == nil {
		return &Definition{}
	}
	cp := *d
	cp.Tools = append([]string(nil), d.Tools...)
	cp.Inputs = append([]string(nil), d.Inputs...)
	cp.Outputs = append([]string(nil), d.Outputs...)
	return &cp
}
