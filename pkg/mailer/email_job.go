package mailer

// EmailJob is the JSON payload placed on the RabbitMQ queue. Either set
// Template + Data (rendered by the worker) or a raw Subject/Text/HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email" or "welcome"
	Data     map[string]any `json:"data,omitempty"`
}
