package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxGrepMatches = 100

// GrepTool searches file contents with a regular expression.
type GrepTool struct{}

func (GrepTool) Name() string { return "grep" }

func (GrepTool) Description() string {
	return "Search file contents with regex, returns matches with file:line. " +
		"Use when: user asks to find code containing specific text/pattern."
}

func (GrepTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "The regex pattern to search for",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File or directory to search in",
			},
			"glob": map[string]any{
				"type":        "string",
				"description": "Glob pattern to filter files (e.g., '*.go')",
			},
			"case_insensitive": map[string]any{
				"type":        "boolean",
				"description": "Case insensitive search (default: false)",
			},
		},
		"required": []any{"pattern"},
	}
}

func (GrepTool) Execute(_ context.Context, input map[string]any) Result {
	pattern := stringArg(input, "pattern")
	if boolArg(input, "case_insensitive") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Fail(fmt.Sprintf("Invalid regex pattern: %v", err))
	}

	base := stringArg(input, "path")
	if base == "" {
		base = "."
	}
	info, err := os.Stat(base)
	if err != nil {
		return Fail(fmt.Sprintf("Path not found: %s", base))
	}

	var files []string
	if !info.IsDir() {
		files = []string{base}
	} else {
		fileGlob := stringArg(input, "glob")
		filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if fileGlob != "" {
				if ok, _ := filepath.Match(fileGlob, filepath.Base(path)); !ok {
					return nil
				}
			}
			files = append(files, path)
			return nil
		})
	}

	var matches []string
	for _, file := range files {
		matches = append(matches, grepFile(re, file)...)
	}

	if len(matches) == 0 {
		return Ok("No matches found.")
	}
	if len(matches) > maxGrepMatches {
		out := strings.Join(matches[:maxGrepMatches], "\n")
		out += fmt.Sprintf("\n... and %d more matches", len(matches)-maxGrepMatches)
		return Ok(out)
	}
	return Ok(strings.Join(matches, "\n"))
}

func grepFile(re *regexp.Regexp, path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var matches []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 && !utf8.ValidString(line) {
			return nil // binary file
		}
		if re.MatchString(line) {
			matches = append(matches, fmt.Sprintf("%s:%d:%s", path, lineNum, strings.TrimRight(line, "\r")))
		}
	}
	return matches
}
