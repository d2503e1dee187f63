package ports

// NotificationKind identifies the template a notification renders with.
type NotificationKind string

const (
	NotifyVerifyEmail   NotificationKind = "verify_email"
	NotifyPasswordReset NotificationKind = "password_reset"
	NotifyBookingUpdate NotificationKind = "booking_update"
)

// Notification is a fire-and-forget message for a single recipient.
// Token carries the verification/reset token when the kind requires one.
// DedupKey, when set, suppresses repeated delivery of the same notification.
type Notification struct {
	Kind      NotificationKind
	Recipient string
	Subject   string
	Body      string
	Token     string
	DedupKey  string
}

// Notifier enqueues notifications for asynchronous delivery. Enqueue never
// blocks the caller beyond channel buffering and never returns an error;
// delivery failures are logged and counted, not surfaced.
type Notifier interface {
	Enqueue(n Notification)
}
