package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadToolNumbersLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644)

	result := ReadTool{}.Execute(context.Background(), map[string]any{"file_path": path})
	if !result.Success {
		t.Fatalf("read failed: %s", result.Error)
	}
	lines := strings.Split(result.Output, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "2\ttwo") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestReadToolOffsetLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644)

	result := ReadTool{}.Execute(context.Background(), map[string]any{
		"file_path": path,
		// JSON-decoded numbers arrive as float64.
		"offset": float64(2),
		"limit":  float64(2),
	})
	if !result.Success {
		t.Fatalf("read failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, "two") || !strings.Contains(result.Output, "three") {
		t.Errorf("output = %q", result.Output)
	}
	if strings.Contains(result.Output, "four") {
		t.Errorf("limit not applied: %q", result.Output)
	}
}

func TestReadToolMissingFile(t *testing.T) {
	result := ReadTool{}.Execute(context.Background(), map[string]any{
		"file_path": filepath.Join(t.TempDir(), "nope.txt"),
	})
	if result.Success || !strings.Contains(result.Error, "File not found") {
		t.Errorf("result = %+v", result)
	}
}

func TestWriteToolCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.txt")
	result := WriteTool{}.Execute(context.Background(), map[string]any{
		"file_path": path,
		"content":   "hello",
	})
	if !result.Success {
		t.Fatalf("write failed: %s", result.Error)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("file contents = %q, err = %v", data, err)
	}
}

func TestWriteToolDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("old\n"), 0o644)

	diff := WriteTool{}.GenerateDiff(map[string]any{"file_path": path, "content": "new\n"})
	if !strings.Contains(diff, "-old") || !strings.Contains(diff, "+new") {
		t.Errorf("diff = %q", diff)
	}

	same := WriteTool{}.GenerateDiff(map[string]any{"file_path": path, "content": "old\n"})
	if same != "" {
		t.Errorf("identical content should produce empty diff, got %q", same)
	}
}

func TestEditToolSingleReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.go")
	os.WriteFile(path, []byte("func old() {}\n"), 0o644)

	result := EditTool{}.Execute(context.Background(), map[string]any{
		"file_path":  path,
		"old_string": "old",
		"new_string": "renamed",
	})
	if !result.Success {
		t.Fatalf("edit failed: %s", result.Error)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "func renamed() {}\n" {
		t.Errorf("contents = %q", data)
	}
}

func TestEditToolAmbiguousWithoutReplaceAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("x x\n"), 0o644)

	result := EditTool{}.Execute(context.Background(), map[string]any{
		"file_path":  path,
		"old_string": "x",
		"new_string": "y",
	})
	if result.Success || !strings.Contains(result.Error, "2 occurrences") {
		t.Errorf("result = %+v", result)
	}

	result = EditTool{}.Execute(context.Background(), map[string]any{
		"file_path":   path,
		"old_string":  "x",
		"new_string":  "y",
		"replace_all": true,
	})
	if !result.Success {
		t.Fatalf("replace_all failed: %s", result.Error)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "y y\n" {
		t.Errorf("contents = %q", data)
	}
}

func TestEditToolStringNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("hello\n"), 0o644)

	result := EditTool{}.Execute(context.Background(), map[string]any{
		"file_path":  path,
		"old_string": "absent",
		"new_string": "y",
	})
	if result.Success || !strings.Contains(result.Error, "String not found") {
		t.Errorf("result = %+v", result)
	}
}

func TestGlobToolDoubleStar(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "src", "inner"), 0o755)
	os.WriteFile(filepath.Join(dir, "top.go"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "src", "inner", "deep.go"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "src", "readme.md"), []byte("x"), 0o644)

	result := GlobTool{}.Execute(context.Background(), map[string]any{
		"pattern": "**/*.go",
		"path":    dir,
	})
	if !result.Success {
		t.Fatalf("glob failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, "top.go") || !strings.Contains(result.Output, "deep.go") {
		t.Errorf("output = %q", result.Output)
	}
	if strings.Contains(result.Output, "readme.md") {
		t.Errorf("non-matching file listed: %q", result.Output)
	}
}

func TestGlobToolNoMatches(t *testing.T) {
	result := GlobTool{}.Execute(context.Background(), map[string]any{
		"pattern": "*.rs",
		"path":    t.TempDir(),
	})
	if !result.Success || result.Output != "No files found matching pattern." {
		t.Errorf("result = %+v", result)
	}
}

func TestGrepToolFindsMatches(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\nfunc main() {}\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte("nothing here\n"), 0o644)

	result := GrepTool{}.Execute(context.Background(), map[string]any{
		"pattern": "func \\w+",
		"path":    dir,
		"glob":    "*.go",
	})
	if !result.Success {
		t.Fatalf("grep failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, "a.go:2:func main() {}") {
		t.Errorf("output = %q", result.Output)
	}
}

func TestGrepToolInvalidRegex(t *testing.T) {
	result := GrepTool{}.Execute(context.Background(), map[string]any{"pattern": "("})
	if result.Success || !strings.Contains(result.Error, "Invalid regex") {
		t.Errorf("result = %+v", result)
	}
}

func TestGrepToolCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Hello World\n"), 0o644)

	result := GrepTool{}.Execute(context.Background(), map[string]any{
		"pattern":          "hello",
		"path":             dir,
		"case_insensitive": true,
	})
	if !result.Success || !strings.Contains(result.Output, "Hello World") {
		t.Errorf("result = %+v", result)
	}
}
