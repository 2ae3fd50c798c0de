package tools

import (
	"fmt"
	"os"
	"strings"
)

// ReadFileTool reads a file's contents with cat -n style line numbers and
// tracks the file as read, enabling a subsequent edit.
type ReadFileTool struct{}

func (ReadFileTool) Name() string        { return "read_file" }
func (ReadFileTool) Description() string { return "Read a file's contents with line numbers. Required before editing." }
func (ReadFileTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":   map[string]any{"type": "string", "description": "File path relative to worktree"},
			"offset": map[string]any{"type": "integer", "description": "Line number to start reading from (1-indexed)"},
			"limit":  map[string]any{"type": "integer", "description": "Max lines to read (default: 2000)"},
		},
		"required": []string{"path"},
	}
}

func (ReadFileTool) Execute(input map[string]any, ctx *Context) Result {
	path, ok := stringArg(input, "path")
	if !ok {
		return ErrorResult("path is required")
	}
	offset := intArg(input, "offset", 1)
	limit := intArg(input, "limit", 2000)

	fullPath, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("%s", err)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return ErrorResult("Failed to read file: %s", err)
	}
	ctx.TrackRead(fullPath)

	lines := strings.Split(string(data), "\n")
	if offset < 1 {
		offset = 1
	}
	start := offset - 1
	if start > len(lines) {
		start = len(lines)
	}
	end := start + limit
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := lines[i]
		if len(line) > 2000 {
			line = line[:2000] + "..."
		}
		if i > start {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%6d│%s", offset+(i-start), line)
	}
	return OKResult(b.String())
}

// WriteFileTool writes content to a file, creating parent directories.
type WriteFileTool struct{}

func (WriteFileTool) Name() string        { return "write_file" }
func (WriteFileTool) Description() string { return "Write content to a file. Creates parent directories if needed." }
func (WriteFileTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":    map[string]any{"type": "string", "description": "File path relative to worktree"},
			"content": map[string]any{"type": "string", "description": "Content to write"},
		},
		"required": []string{"path", "content"},
	}
}

func (WriteFileTool) Execute(input map[string]any, ctx *Context) Result {
	path, ok := stringArg(input, "path")
	if !ok {
		return ErrorResult("path is required")
	}
	content, ok := stringArg(input, "content")
	if !ok {
		return ErrorResult("content is required")
	}

	fullPath, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("%s", err)
	}

	if err := os.MkdirAll(parentDir(fullPath), 0o755); err != nil {
		return ErrorResult("Failed to create directories: %s", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return ErrorResult("Failed to write file: %s", err)
	}

	// Track as read so edit_file can be used immediately after write.
	ctx.TrackRead(fullPath)

	return OKResult(fmt.Sprintf("Wrote %d bytes to %s", len(content), path))
}

// EditFileTool replaces a specific string in a file, requiring a prior
// read_file or write_file on the same path this iteration.
type EditFileTool struct{}

func (EditFileTool) Name() string        { return "edit_file" }
func (EditFileTool) Description() string { return "Replace a specific string in a file. Requires prior read call." }
func (EditFileTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":         map[string]any{"type": "string", "description": "File path relative to worktree"},
			"old_string":   map[string]any{"type": "string", "description": "Exact string to find and replace"},
			"new_string":   map[string]any{"type": "string", "description": "Replacement string"},
			"replace_all":  map[string]any{"type": "boolean", "description": "Replace all occurrences (default: false)"},
		},
		"required": []string{"path", "old_string", "new_string"},
	}
}

func (EditFileTool) Execute(input map[string]any, ctx *Context) Result {
	path, ok := stringArg(input, "path")
	if !ok {
		return ErrorResult("path is required")
	}
	oldString, ok := stringArg(input, "old_string")
	if !ok {
		return ErrorResult("old_string is required")
	}
	newString, ok := stringArg(input, "new_string")
	if !ok {
		return ErrorResult("new_string is required")
	}
	replaceAll := boolArg(input, "replace_all", false)

	fullPath, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("%s", err)
	}

	if !ctx.WasRead(fullPath) {
		return ErrorResult("Must read before editing. Read the file first to see current content.")
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return ErrorResult("Failed to read file: %s", err)
	}
	content := string(data)

	if !strings.Contains(content, oldString) {
		return ErrorResult("old_string not found in file. Make sure it matches exactly including whitespace.")
	}

	count := strings.Count(content, oldString)
	if !replaceAll && count > 1 {
		return ErrorResult("old_string found %d times. Use replace_all=true or provide more context.", count)
	}

	var newContent string
	replacements := 1
	if replaceAll {
		newContent = strings.ReplaceAll(content, oldString, newString)
		replacements = count
	} else {
		newContent = strings.Replace(content, oldString, newString, 1)
	}

	if err := os.WriteFile(fullPath, []byte(newContent), 0o644); err != nil {
		return ErrorResult("Failed to write file: %s", err)
	}

	return OKResult(fmt.Sprintf("Replaced %d occurrence(s) in %s", replacements, path))
}

func parentDir(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return "."
	}
	return p[:i]
}
