package email

// SendTodoCompletedEmail tells a user one of their todos has been marked done.
func (c *Client) SendTodoCompletedEmail(to, firstName, todoTitle string) error {
	// Data keys must match what the HTML template expects.
	data := map[string]string{
		"UserFirstName": firstName,
		"TodoTitle":     todoTitle,
	}

	return c.SendEmail(
		to,
		"Todo completed: "+todoTitle,
		TemplateTodoCompleted,
		data,
	)
}
