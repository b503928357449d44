package tools

import (
	"context"
	"strings"
	"testing"
)

func TestTodoWriteReplacesList(t *testing.T) {
	manager := NewTodoManager()
	tool := NewTodoWriteTool(manager)

	result := tool.Execute(context.Background(), map[string]any{
		"todos": []any{
			map[string]any{"content": "Run the build", "status": "completed"},
			map[string]any{"content": "Fix the error", "status": "in_progress"},
			map[string]any{"content": "Run tests", "status": "pending"},
		},
	})
	if !result.Success {
		t.Fatalf("todo_write failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, "1/3 completed") {
		t.Errorf("output = %q", result.Output)
	}

	todos := manager.Todos()
	if len(todos) != 3 || todos[1].Content != "Fix the error" {
		t.Errorf("todos = %v", todos)
	}
	if manager.CurrentTask() != "Fix the error" {
		t.Errorf("CurrentTask = %q", manager.CurrentTask())
	}

	summary := manager.Summary()
	if summary.Completed != 1 || summary.InProgress != 1 || summary.Pending != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestTodoWriteValidation(t *testing.T) {
	tool := NewTodoWriteTool(NewTodoManager())

	cases := []map[string]any{
		{"todos": "not a list"},
		{"todos": []any{map[string]any{"status": "pending"}}},
		{"todos": []any{map[string]any{"content": "x"}}},
		{"todos": []any{map[string]any{"content": "x", "status": "paused"}}},
	}
	for i, input := range cases {
		if result := tool.Execute(context.Background(), input); result.Success {
			t.Errorf("case %d: expected failure", i)
		}
	}
}

func TestTodoRead(t *testing.T) {
	manager := NewTodoManager()
	read := NewTodoReadTool(manager)

	result := read.Execute(context.Background(), nil)
	if !result.Success || result.Output != "No todos." {
		t.Errorf("empty list result = %+v", result)
	}

	manager.SetTodos([]TodoItem{
		{Content: "done thing", Status: TodoCompleted},
		{Content: "current thing", Status: TodoInProgress},
	})
	result = read.Execute(context.Background(), nil)
	if !strings.Contains(result.Output, "[x] done thing") || !strings.Contains(result.Output, "[>] current thing") {
		t.Errorf("output = %q", result.Output)
	}
}

func TestTodoManagerClear(t *testing.T) {
	manager := NewTodoManager()
	manager.SetTodos([]TodoItem{{Content: "x", Status: TodoPending}})
	manager.Clear()
	if len(manager.Todos()) != 0 {
		t.Error("Clear did not empty the list")
	}
}
