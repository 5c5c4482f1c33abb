package error_notificator

import "context"

type Notificator interface {
	// Notify alerts the admin about a failed turn.
	Notify(ctx context.Context, err error, details string) error
}
