package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// ReadTool reads file contents with line numbers.
type ReadTool struct{}

func (ReadTool) Name() string { return "read" }

func (ReadTool) Description() string {
	return "Read file contents with line numbers. " +
		"Use when: user asks to read/show/view a file, or you need to understand code before editing."
}

func (ReadTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "The absolute path to the file to read",
			},
			"offset": map[string]any{
				"type":        "integer",
				"description": "Line number to start reading from (1-based)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of lines to read",
			},
		},
		"required": []any{"file_path"},
	}
}

func (ReadTool) Execute(_ context.Context, input map[string]any) Result {
	filePath := stringArg(input, "file_path")
	offset := intArg(input, "offset", 0)
	limit := intArg(input, "limit", 0)

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Fail(fmt.Sprintf("File not found: %s", filePath))
		}
		if os.IsPermission(err) {
			return Fail(fmt.Sprintf("Permission denied: %s", filePath))
		}
		return Fail(fmt.Sprintf("Error reading file: %v", err))
	}
	if info.IsDir() {
		return Fail(fmt.Sprintf("Not a file: %s", filePath))
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsPermission(err) {
			return Fail(fmt.Sprintf("Permission denied: %s", filePath))
		}
		return Fail(fmt.Sprintf("Error reading file: %v", err))
	}
	defer f.Close()

	start := 1
	if offset > 0 {
		start = offset
	}

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	emitted := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < start {
			continue
		}
		if limit > 0 && emitted >= limit {
			break
		}
		if emitted > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%6d\t%s", lineNum, strings.TrimRight(scanner.Text(), "\r\n"))
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return Fail(fmt.Sprintf("Error reading file: %v", err))
	}

	return Ok(b.String())
}
