package domain

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=mocks/mock_repositories.go -package=mocks

// ActivityRepository is the durable store for activity events.
// Implementations assign the event ID when it is empty.
type ActivityRepository interface {
	// Insert appends one event. Events are never updated or deleted.
	Insert(ctx context.Context, event *ActivityEvent) error

	// ListRecentByOwner returns up to limit events owned by ownerID,
	// newest first.
	ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]*ActivityEvent, error)
}
