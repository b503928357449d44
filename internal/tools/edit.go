package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EditTool replaces an exact string in a file.
type EditTool struct{}

func (EditTool) Name() string { return "edit" }

func (EditTool) Description() string {
	return "Edit a file by replacing an exact string with new content. " +
		"The old_string must match exactly (including whitespace)."
}

func (EditTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "The absolute path to the file to edit",
			},
			"old_string": map[string]any{
				"type":        "string",
				"description": "The exact string to replace",
			},
			"new_string": map[string]any{
				"type":        "string",
				"description": "The string to replace it with",
			},
			"replace_all": map[string]any{
				"type":        "boolean",
				"description": "Replace all occurrences (default: false)",
			},
		},
		"required": []any{"file_path", "old_string", "new_string"},
	}
}

func (EditTool) ApprovalDescription(input map[string]any) string {
	return fmt.Sprintf("Edit file: %s", stringArg(input, "file_path"))
}

func (EditTool) GenerateDiff(input map[string]any) string {
	oldString := stringArg(input, "old_string")
	newString := stringArg(input, "new_string")
	var b strings.Builder
	for _, line := range splitNonEmptyTail(oldString) {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range splitNonEmptyTail(newString) {
		b.WriteString("+" + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (EditTool) Execute(_ context.Context, input map[string]any) Result {
	filePath := stringArg(input, "file_path")
	oldString := stringArg(input, "old_string")
	newString := stringArg(input, "new_string")
	replaceAll := boolArg(input, "replace_all")

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Fail(fmt.Sprintf("File not found: %s", filePath))
		}
		return Fail(fmt.Sprintf("Error editing file: %v", err))
	}
	if info.IsDir() {
		return Fail(fmt.Sprintf("Not a file: %s", filePath))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsPermission(err) {
			return Fail(fmt.Sprintf("Permission denied: %s", filePath))
		}
		return Fail(fmt.Sprintf("Error editing file: %v", err))
	}
	content := string(data)

	count := strings.Count(content, oldString)
	if count == 0 {
		return Fail(fmt.Sprintf("String not found in file: %s...", truncate(oldString, 50)))
	}
	if count > 1 && !replaceAll {
		return Fail(fmt.Sprintf(
			"Found %d occurrences of the string. Use replace_all=true to replace all, or provide more context.",
			count))
	}

	var newContent string
	replaced := count
	if replaceAll {
		newContent = strings.ReplaceAll(content, oldString, newString)
	} else {
		newContent = strings.Replace(content, oldString, newString, 1)
		replaced = 1
	}

	if err := os.WriteFile(filePath, []byte(newContent), info.Mode().Perm()); err != nil {
		return Fail(fmt.Sprintf("Error editing file: %v", err))
	}

	return Ok(fmt.Sprintf("Replaced %d occurrence(s) in %s", replaced, filePath))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
