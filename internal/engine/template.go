package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const gitDiffTruncateChars = 5000

// parentContentKeys maps an execution context's "parent-type" value to
// the template placeholder a resolved "parent-file" is copied into
// (engine.rs's populate_parent_content).
var parentContentKeys = map[string]string{
	"plan":  "plan-content",
	"spec":  "spec-content",
	"phase": "phase-content",
}

const defaultParentContentKey = "parent-content"

// buildTemplateContext assembles the key/value map render_prompt
// substitutes into the loop type's prompt template (spec.md §4.1.1).
func (e *Engine) buildTemplateContext() map[string]string {
	ctx := map[string]string{
		"working-directory": e.cfg.Worktree,
		"iteration":          strconv.FormatUint(uint64(e.iteration), 10),
		"progress":           e.progressor.Render(),
	}

	for k, v := range e.cfg.ExecutionContext {
		ctx[k] = v
	}

	e.populateParentContent(ctx)

	if status, err := e.runGit("status", "--porcelain"); err == nil {
		ctx["git-status"] = status
	}

	if diff, err := e.runGit("diff", "HEAD"); err == nil {
		if len(diff) > gitDiffTruncateChars {
			diff = diff[:gitDiffTruncateChars] + "...\n[diff truncated]"
		}
		ctx["git-diff"] = diff
	}

	return ctx
}

// populateParentContent resolves "parent-file" and "output-file" entries
// of the execution context into file contents, following engine.rs's
// populate_parent_content. A parent-file read failure is logged and an
// output-file read failure is skipped silently; neither aborts the
// iteration, a missing document only degrades the prompt.
func (e *Engine) populateParentContent(ctx map[string]string) {
	if parentFile, ok := e.cfg.ExecutionContext["parent-file"]; ok && parentFile != "" {
		path := parentFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.cfg.RepoRoot, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			e.log.Warn("failed to read parent file", "path", path, "error", err)
		} else {
			key := parentContentKeys[e.cfg.ExecutionContext["parent-type"]]
			if key == "" {
				key = defaultParentContentKey
			}
			ctx[key] = string(content)
		}
	}

	if outputFile, ok := e.cfg.ExecutionContext["output-file"]; ok && outputFile != "" {
		content, err := os.ReadFile(filepath.Join(e.cfg.Worktree, outputFile))
		if err == nil {
			ctx["current-plan"] = string(content)
		}
	}
}

// renderPrompt substitutes every "{{key}}" placeholder in the loop
// type's prompt template with ctx's values (engine.rs's render_prompt:
// simple string replacement, no templating engine).
func renderPrompt(template string, ctx map[string]string) string {
	out := template
	for k, v := range ctx {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{%s}}", k), v)
	}
	return out
}

// changedFiles returns the worktree's modified paths from `git status
// --porcelain`, stripping the two-character status code + separating
// space each line carries (engine.rs's get_changed_files).
func (e *Engine) changedFiles() []string {
	status, err := e.runGit("status", "--porcelain")
	if err != nil {
		return nil
	}
	var files []string
	for _, line := range strings.Split(status, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if len(trimmed) > 3 {
			files = append(files, trimmed[3:])
		}
	}
	return files
}
