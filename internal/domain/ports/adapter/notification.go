package adapter

import "context"

// PushNote is one device notification. Screen is a client-side route
// hint the app opens when the note is tapped.
type PushNote struct {
	Title  string
	Body   string
	Screen string
}

// NotificationDispatcher delivers push notifications. Delivery is
// best-effort: callers log failures and move on, a lost push never
// fails a ledger operation.
type NotificationDispatcher interface {
	Send(ctx context.Context, pushToken string, note PushNote) error
}
