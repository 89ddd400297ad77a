package model

// NotificationField represents a titled section within a notification payload.
type NotificationField struct {
	Name   string
	Value  string
	Inline bool
}

// Notification is a transport-agnostic message for downstream notifiers.
// Recipients are owned by each notifier.
type Notification struct {
	Subject string
	Body    string
	Success bool
	Fields  []NotificationField
}
