package models

// ReminderPayload is the body of a delayed booking reminder task.
type ReminderPayload struct {
	BookingID  string `json:"bookingId"`
	BookingRef string `json:"bookingRef"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
