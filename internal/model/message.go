package model

// Attachment is a local file attached to an outgoing message.
type Attachment struct {
	Filename    string
	Path        string
	ContentType string
}

// Message is a single outgoing email.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// SendResult reports what the mail transport accepted.
type SendResult struct {
	MessageID string
	Accepted  []string
}
