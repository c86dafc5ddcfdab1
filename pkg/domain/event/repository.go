package event

import "context"

// Repository persists scored login events. Implementations must tolerate the
// backing store being unavailable: SaveEvent degrades to an in-memory buffer
// rather than failing the scoring pipeline.
type Repository interface {
	SaveEvent(ctx context.Context, record *Record) error
	RecentEvents(ctx context.Context, limit int) ([]Record, error)
	UserEvents(ctx context.Context, userID string) ([]Record, error)
	FlaggedUsers(ctx context.Context) ([]Record, error)
}
