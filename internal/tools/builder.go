package tools

// DefaultRegistry builds the builtin tool set. The todo manager is injected
// so the caller can share it with the UI; the bash tool is passed in so its
// output cap can come from configuration.
func DefaultRegistry(todos *TodoManager, bash BashTool) *Registry {
	r := NewRegistry()
	r.MustRegister(ReadTool{})
	r.MustRegister(WriteTool{})
	r.MustRegister(EditTool{})
	r.MustRegister(GlobTool{})
	r.MustRegister(GrepTool{})
	r.MustRegister(bash)
	if todos != nil {
		r.MustRegister(NewTodoWriteTool(todos))
		r.MustRegister(NewTodoReadTool(todos))
	}
	return r
}
