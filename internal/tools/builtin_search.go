package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// GlobTool finds files under a base directory matching a glob pattern
// (supporting "**" for recursive descent), restricted to worktree
// descendants and capped at 1000 results (spec.md §4.10).
type GlobTool struct{}

func (GlobTool) Name() string        { return "glob" }
func (GlobTool) Description() string { return "Find files matching a glob pattern (e.g., **/*.go)" }
func (GlobTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Glob pattern to match"},
			"path":    map[string]any{"type": "string", "description": "Base directory (default: worktree root)"},
		},
		"required": []string{"pattern"},
	}
}

func (GlobTool) Execute(input map[string]any, ctx *Context) Result {
	pattern, ok := stringArg(input, "pattern")
	if !ok {
		return ErrorResult("pattern is required")
	}
	base, _ := stringArg(input, "path")
	if base == "" {
		base = "."
	}

	basePath, err := ctx.ValidatePath(base)
	if err != nil {
		return ErrorResult("%s", err)
	}

	re, err := globToRegexp(pattern)
	if err != nil {
		return ErrorResult("Invalid glob pattern: %s", err)
	}

	var matches []string
	_ = filepath.Walk(basePath, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || len(matches) >= 1000 {
			return nil
		}
		rel, err := filepath.Rel(basePath, p)
		if err != nil {
			return nil
		}
		if re.MatchString(filepath.ToSlash(rel)) {
			worktreeRel, err := filepath.Rel(ctx.Worktree, p)
			if err == nil {
				matches = append(matches, filepath.ToSlash(worktreeRel))
			}
		}
		return nil
	})

	if len(matches) > 1000 {
		matches = matches[:1000]
	}
	if len(matches) == 0 {
		return OKResult("No matches found")
	}
	sort.Strings(matches)
	return OKResult(strings.Join(matches, "\n"))
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteRune(runes[i])
		default:
			b.WriteRune(runes[i])
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// GrepTool recursively searches files for a regex pattern with optional
// context lines, bounded by max_results (spec.md §4.10).
type GrepTool struct{}

func (GrepTool) Name() string        { return "grep" }
func (GrepTool) Description() string { return "Search for patterns in files. Returns matching lines with context." }
func (GrepTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern":          map[string]any{"type": "string", "description": "Regex pattern to search for"},
			"path":             map[string]any{"type": "string", "description": "Path to search in (default: '.')"},
			"file_pattern":     map[string]any{"type": "string", "description": "Glob pattern to filter files"},
			"context_lines":    map[string]any{"type": "integer", "description": "Lines of context (default: 2)"},
			"case_insensitive": map[string]any{"type": "boolean", "description": "Case-insensitive search"},
			"max_results":      map[string]any{"type": "integer", "description": "Max matching lines (default: 50)"},
		},
		"required": []string{"pattern"},
	}
}

func (GrepTool) Execute(input map[string]any, ctx *Context) Result {
	pattern, ok := stringArg(input, "pattern")
	if !ok {
		return ErrorResult("Missing required parameter: pattern")
	}
	path, _ := stringArg(input, "path")
	if path == "" {
		path = "."
	}
	filePattern, _ := stringArg(input, "file_pattern")
	contextLines := intArg(input, "context_lines", 2)
	caseInsensitive := boolArg(input, "case_insensitive", false)
	maxResults := intArg(input, "max_results", 50)

	searchPath, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("Invalid path: %s", err)
	}

	reSrc := pattern
	if caseInsensitive {
		reSrc = "(?i)" + reSrc
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return ErrorResult("Invalid regex pattern: %s", err)
	}

	var fileGlob *regexp.Regexp
	if filePattern != "" {
		if g, err := globToRegexp(filePattern); err == nil {
			fileGlob = g
		}
	}

	var files []string
	if info, err := os.Stat(searchPath); err == nil && !info.IsDir() {
		files = []string{searchPath}
	} else {
		_ = filepath.Walk(searchPath, func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if fileGlob != nil && !fileGlob.MatchString(filepath.Base(p)) {
				return nil
			}
			files = append(files, p)
			return nil
		})
	}

	type matchLine struct {
		file      string
		lineNum   int
		line      string
		isContext bool
	}
	var results []matchLine
	matchCount := 0

outer:
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		display, err := filepath.Rel(ctx.Worktree, f)
		if err != nil {
			display = f
		}
		display = filepath.ToSlash(display)

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			if matchCount >= maxResults {
				break outer
			}
			if re.MatchString(line) {
				start := i - contextLines
				if start < 0 {
					start = 0
				}
				end := i + contextLines
				if end >= len(lines) {
					end = len(lines) - 1
				}
				for j := start; j <= end; j++ {
					results = append(results, matchLine{file: display, lineNum: j + 1, line: strings.TrimRight(lines[j], "\r"), isContext: j != i})
				}
				matchCount++
			}
		}
	}

	if len(results) == 0 {
		return OKResult("No matches found.")
	}

	var b strings.Builder
	currentFile := ""
	for _, r := range results {
		if r.file != currentFile {
			if currentFile != "" {
				b.WriteByte('\n')
			}
			currentFile = r.file
		}
		sep := ":"
		if r.isContext {
			sep = "-"
		}
		fmt.Fprintf(&b, "%s%s%d%s%s\n", r.file, sep, r.lineNum, sep, r.line)
	}
	if matchCount >= maxResults {
		fmt.Fprintf(&b, "\n... (truncated at %d matches)", maxResults)
	}
	return OKResult(strings.TrimRight(b.String(), "\n"))
}

// ListDirectoryTool lists immediate directory entries.
type ListDirectoryTool struct{}

func (ListDirectoryTool) Name() string        { return "list_directory" }
func (ListDirectoryTool) Description() string { return "List the contents of a directory." }
func (ListDirectoryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{"type": "string", "description": "Directory path (default: '.')"},
		},
	}
}

func (ListDirectoryTool) Execute(input map[string]any, ctx *Context) Result {
	path, _ := stringArg(input, "path")
	if path == "" {
		path = "."
	}
	full, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("%s", err)
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return ErrorResult("Failed to list directory: %s", err)
	}
	var b strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(&b, "%s/\n", e.Name())
		} else {
			fmt.Fprintf(&b, "%s\n", e.Name())
		}
	}
	return OKResult(strings.TrimRight(b.String(), "\n"))
}

// TreeTool renders a directory tree, depth-limited for readability.
type TreeTool struct{}

func (TreeTool) Name() string        { return "tree" }
func (TreeTool) Description() string { return "Show a directory tree." }
func (TreeTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":      map[string]any{"type": "string", "description": "Root directory (default: '.')"},
			"max_depth": map[string]any{"type": "integer", "description": "Maximum depth (default: 3)"},
		},
	}
}

func (TreeTool) Execute(input map[string]any, ctx *Context) Result {
	path, _ := stringArg(input, "path")
	if path == "" {
		path = "."
	}
	maxDepth := intArg(input, "max_depth", 3)

	full, err := ctx.ValidatePath(path)
	if err != nil {
		return ErrorResult("%s", err)
	}

	var b strings.Builder
	var walk func(dir string, depth int, prefix string)
	walk = func(dir string, depth int, prefix string) {
		if depth > maxDepth {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if e.Name() == ".git" {
				continue
			}
			fmt.Fprintf(&b, "%s%s\n", prefix, e.Name())
			if e.IsDir() {
				walk(filepath.Join(dir, e.Name()), depth+1, prefix+"  ")
			}
		}
	}
	walk(full, 1, "")
	return OKResult(strings.TrimRight(b.String(), "\n"))
}
