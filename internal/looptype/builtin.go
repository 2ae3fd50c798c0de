package looptype

// builtinDefinitions mirrors the embedded-defaults pattern of tarsy's
// config.GetBuiltinConfig: a fixed set of definitions always available,
// selectable via the "builtin" token in a loop-type search path (§6.3).
// The cascade chain below (plan -> spec -> phase -> ralph) is the example
// hierarchy spec.md §4.8 names explicitly; the engine itself is type-agnostic.
func builtinDefinitions() map[string]*Definition {
	return map[string]*Definition{
		"plan": {
			Name:                 "plan",
			PromptTemplate:       "Draft an implementation plan for: {{parent-title}}\n\nWorking directory: {{working-directory}}\n\n{{progress}}",
			ValidationCommand:    "test -s PLAN.md",
			SuccessExitCode:      0,
			MaxIterations:        5,
			IterationTimeoutMs:   120000,
			MaxTokens:            8192,
			MaxTurnsPerIteration: 20,
			Tools:                []string{"read_file", "write_file", "edit_file", "grep", "glob", "complete_task"},
			ProgressMaxEntries:   5,
			ProgressMaxChars:     2000,
			Outputs:              []string{"PLAN.md"},
		},
		"spec": {
			Name:                 "spec",
			Parent:               "plan",
			PromptTemplate:       "Write a detailed spec for phase derived from: {{plan-content}}\n\n{{progress}}",
			ValidationCommand:    "test -s SPEC.md",
			SuccessExitCode:      0,
			MaxIterations:        5,
			IterationTimeoutMs:   120000,
			MaxTokens:            8192,
			MaxTurnsPerIteration: 20,
			Tools:                []string{"read_file", "write_file", "edit_file", "grep", "glob", "complete_task"},
			ProgressMaxEntries:   5,
			ProgressMaxChars:     2000,
			Outputs:              []string{"SPEC.md"},
		},
		"phase": {
			Name:                 "phase",
			Parent:               "spec",
			PromptTemplate:       "Implement phase {{phase-number}}/{{total-phases}}: {{phase-name}}\n{{phase-description}}\n\n{{progress}}",
			ValidationCommand:    "true",
			SuccessExitCode:      0,
			MaxIterations:        10,
			IterationTimeoutMs:   300000,
			MaxTokens:            8192,
			MaxTurnsPerIteration: 30,
			Tools:                []string{"read_file", "write_file", "edit_file", "bash", "grep", "glob", "tree", "complete_task"},
			ProgressMaxEntries:   8,
			ProgressMaxChars:     3000,
		},
		"ralph": {
			Name:                 "ralph",
			Parent:               "phase",
			PromptTemplate:       "Continue implementation until validation passes.\n\n{{git-status}}\n\n{{progress}}",
			ValidationCommand:    "true",
			SuccessExitCode:      0,
			MaxIterations:        20,
			IterationTimeoutMs:   300000,
			MaxTokens:            8192,
			MaxTurnsPerIteration: 40,
			Tools:                []string{"read_file", "write_file", "edit_file", "bash", "grep", "glob", "tree", "complete_task"},
			ProgressMaxEntries:   10,
			ProgressMaxChars:     4000,
		},
	}
}
