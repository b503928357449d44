package tools

import (
	"context"
	"fmt"
	"strings"
)

// TodoStatus values for a todo item.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// TodoItem is a single task on the agent's plan.
type TodoItem struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// TodoSummary aggregates todo counts for UI display.
type TodoSummary struct {
	Total      int
	Completed  int
	InProgress int
	Pending    int
}

// TodoManager holds the todo state for one agent. It is injected into the
// todo tools as a constructor argument rather than looked up from a
// singleton.
type TodoManager struct {
	todos []TodoItem
}

// NewTodoManager creates an empty manager.
func NewTodoManager() *TodoManager {
	return &TodoManager{}
}

// Todos returns a copy of the current list.
func (m *TodoManager) Todos() []TodoItem {
	return append([]TodoItem(nil), m.todos...)
}

// SetTodos replaces the entire list.
func (m *TodoManager) SetTodos(todos []TodoItem) {
	m.todos = append([]TodoItem(nil), todos...)
}

// Clear drops every item.
func (m *TodoManager) Clear() {
	m.todos = nil
}

// Summary counts items per status.
func (m *TodoManager) Summary() TodoSummary {
	s := TodoSummary{Total: len(m.todos)}
	for _, t := range m.todos {
		switch t.Status {
		case TodoCompleted:
			s.Completed++
		case TodoInProgress:
			s.InProgress++
		}
	}
	s.Pending = s.Total - s.Completed - s.InProgress
	return s
}

// CurrentTask returns the first in-progress item's content, or "".
func (m *TodoManager) CurrentTask() string {
	for _, t := range m.todos {
		if t.Status == TodoInProgress {
			return t.Content
		}
	}
	return ""
}

// TodoWriteTool replaces the whole todo list.
type TodoWriteTool struct {
	manager *TodoManager
}

// NewTodoWriteTool binds the tool to a manager.
func NewTodoWriteTool(manager *TodoManager) *TodoWriteTool {
	return &TodoWriteTool{manager: manager}
}

func (*TodoWriteTool) Name() string { return "todo_write" }

func (*TodoWriteTool) Description() string {
	return `Update the todo list. Replaces the entire list.

Use this tool to:
- Plan complex multi-step tasks (3+ steps)
- Track progress on multiple tasks
- Mark tasks as completed or in_progress

When NOT to use:
- Single, simple tasks
- Pure conversation/information requests

Status values:
- pending: Not yet started
- in_progress: Currently working on (only ONE at a time!)
- completed: Finished`
}

func (*TodoWriteTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"todos": map[string]any{
				"type":        "array",
				"description": "The updated todo list (replaces entire list)",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content": map[string]any{
							"type":        "string",
							"description": "Task content (e.g., 'Run the build')",
						},
						"status": map[string]any{
							"type":        "string",
							"enum":        []any{TodoPending, TodoInProgress, TodoCompleted},
							"description": "Task status",
						},
					},
					"required": []any{"content", "status"},
				},
			},
		},
		"required": []any{"todos"},
	}
}

func (t *TodoWriteTool) Execute(_ context.Context, input map[string]any) Result {
	rawTodos, ok := input["todos"].([]any)
	if !ok {
		return Fail("'todos' must be a list")
	}

	todos := make([]TodoItem, 0, len(rawTodos))
	for i, raw := range rawTodos {
		item, ok := raw.(map[string]any)
		if !ok {
			return Fail(fmt.Sprintf("Todo item %d must be an object", i))
		}
		content, ok := item["content"].(string)
		if !ok || content == "" {
			return Fail(fmt.Sprintf("Todo item %d missing 'content'", i))
		}
		status, ok := item["status"].(string)
		if !ok {
			return Fail(fmt.Sprintf("Todo item %d missing 'status'", i))
		}
		if status != TodoPending && status != TodoInProgress && status != TodoCompleted {
			return Fail(fmt.Sprintf("Todo item %d has invalid status %q", i, status))
		}
		todos = append(todos, TodoItem{Content: content, Status: status})
	}

	t.manager.SetTodos(todos)
	summary := t.manager.Summary()
	return Ok(fmt.Sprintf("Updated %d todo(s).\nStatus: %d/%d completed, %d in progress, %d pending",
		len(todos), summary.Completed, summary.Total, summary.InProgress, summary.Pending))
}

// TodoReadTool returns the current todo list.
type TodoReadTool struct {
	manager *TodoManager
}

// NewTodoReadTool binds the tool to a manager.
func NewTodoReadTool(manager *TodoManager) *TodoReadTool {
	return &TodoReadTool{manager: manager}
}

func (*TodoReadTool) Name() string { return "todo_read" }

func (*TodoReadTool) Description() string {
	return "Read the current todo list. Use to check progress before continuing a multi-step task."
}

func (*TodoReadTool) InputSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *TodoReadTool) Execute(_ context.Context, _ map[string]any) Result {
	todos := t.manager.Todos()
	if len(todos) == 0 {
		return Ok("No todos.")
	}
	var b strings.Builder
	for i, todo := range todos {
		marker := " "
		switch todo.Status {
		case TodoCompleted:
			marker = "x"
		case TodoInProgress:
			marker = ">"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, marker, todo.Content)
	}
	return Ok(strings.TrimRight(b.String(), "\n"))
}
