package email

// PreviewData contains sample template data for local preview/testing.
//
//	templateName -> (templateVariableName -> exampleValue)
var PreviewData = map[Template]map[string]string{
	TemplateTodoCompleted: {
		"UserFirstName": "John",
		"TodoTitle":     "Buy milk",
	},
}
