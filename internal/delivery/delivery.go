// Package delivery is the outbound message channel. The scheduler only sees
// the Sender interface; the Telegram implementation lives next to it.
package delivery

import (
	"context"
	"time"
)

// Sender delivers one reminder notification. Implementations must be safe
// for concurrent use: timer callbacks for different records may overlap.
type Sender interface {
	Send(ctx context.Context, recipient, task string, scheduledAt time.Time) error
}
