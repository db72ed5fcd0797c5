package timeline

import "context"

type Repository interface {
	InsertFrames(ctx context.Context, items []ParticipantFrame) error
	InsertEvents(ctx context.Context, items []Event) error
}
