package email

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateTodoCompleted corresponds to templates/emails/todo_completed.html
	TemplateTodoCompleted Template = "todo_completed"
)
