package models

// Notification is a push message addressed to one user.
type Notification struct {
	RecipientID string            `json:"recipientId"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data"`
}
