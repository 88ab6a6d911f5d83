package notify

import (
	"context"
	"log/slog"
)

// RunLogSink subscribes to the broadcaster and logs every urgent record
// until the context is cancelled or the broadcaster closes. It is the
// default alert channel; richer delivery (email, SMS) would subscribe the
// same way.
func RunLogSink(ctx context.Context, b *Broadcaster) {
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-ch:
			if !ok {
				return
			}
			slog.Warn("urgent disaster alert",
				"id", r.ID,
				"type", r.DisasterType,
				"urgency", r.UrgencyLevel,
				"confidence", r.ConfidenceLevel,
				"place", r.Place,
				"title", r.Title,
			)
		}
	}
}
