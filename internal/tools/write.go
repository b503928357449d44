package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteTool writes full file contents, creating parent directories as
// needed.
type WriteTool struct{}

func (WriteTool) Name() string { return "write" }

func (WriteTool) Description() string {
	return "Write content to a file. Creates the file if it doesn't exist, overwrites if it does."
}

func (WriteTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "The absolute path to the file to write",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write to the file",
			},
		},
		"required": []any{"file_path", "content"},
	}
}

// ApprovalDescription requests approval for every write; the permission
// rules decide which writes auto-resolve.
func (WriteTool) ApprovalDescription(input map[string]any) string {
	return fmt.Sprintf("Write to file: %s", stringArg(input, "file_path"))
}

// GenerateDiff previews the change against the file's current contents for
// the approval prompt.
func (WriteTool) GenerateDiff(input map[string]any) string {
	filePath := stringArg(input, "file_path")
	newContent := stringArg(input, "content")

	oldContent := ""
	if data, err := os.ReadFile(filePath); err == nil {
		oldContent = string(data)
	}
	if oldContent == newContent {
		return ""
	}

	var b strings.Builder
	for _, line := range splitNonEmptyTail(oldContent) {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range splitNonEmptyTail(newContent) {
		b.WriteString("+" + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func splitNonEmptyTail(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func (WriteTool) Execute(_ context.Context, input map[string]any) Result {
	filePath := stringArg(input, "file_path")
	content := stringArg(input, "content")

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return Fail(fmt.Sprintf("Error writing file: %v", err))
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return Fail(fmt.Sprintf("Permission denied: %s", filePath))
		}
		return Fail(fmt.Sprintf("Error writing file: %v", err))
	}

	return Ok(fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), filePath))
}
