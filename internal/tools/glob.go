package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GlobTool finds files by glob pattern, newest first.
type GlobTool struct{}

func (GlobTool) Name() string { return "glob" }

func (GlobTool) Description() string {
	return "Find files by glob pattern ('**/*.go', 'src/**/*.ts'). " +
		"Use when: user asks to find/search for files by name or extension."
}

func (GlobTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "The glob pattern to match files against",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "The directory to search in (default: current directory)",
			},
		},
		"required": []any{"pattern"},
	}
}

func (GlobTool) Execute(_ context.Context, input map[string]any) Result {
	pattern := stringArg(input, "pattern")
	base := stringArg(input, "path")
	if base == "" {
		base = "."
	}

	info, err := os.Stat(base)
	if err != nil {
		return Fail(fmt.Sprintf("Directory not found: %s", base))
	}
	if !info.IsDir() {
		return Fail(fmt.Sprintf("Not a directory: %s", base))
	}

	matches, err := globFiles(base, pattern)
	if err != nil {
		return Fail(fmt.Sprintf("Error searching files: %v", err))
	}
	if len(matches) == 0 {
		return Ok("No files found matching pattern.")
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].mtime.After(matches[j].mtime)
	})
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, m.path)
	}
	return Ok(strings.Join(paths, "\n"))
}

type fileMatch struct {
	path  string
	mtime time.Time
}

// globFiles walks base collecting files whose base-relative path matches
// the pattern. ** segments span directories, which filepath.Glob alone does
// not support.
func globFiles(base, pattern string) ([]fileMatch, error) {
	var matches []fileMatch
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matchGlobPattern(pattern, rel) {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			matches = append(matches, fileMatch{path: path, mtime: info.ModTime()})
		}
		return nil
	})
	return matches, err
}

// matchGlobPattern supports ** for any number of path segments and defers
// single segments to path.Match semantics.
func matchGlobPattern(pattern, rel string) bool {
	patParts := strings.Split(filepath.ToSlash(pattern), "/")
	relParts := strings.Split(rel, "/")
	return matchSegments(patParts, relParts)
}

func matchSegments(pattern, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(parts); i++ {
			if matchSegments(pattern[1:], parts[i:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], parts[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}
