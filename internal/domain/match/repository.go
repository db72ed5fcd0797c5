package match

import "context"

type Repository interface {
	UpsertMatch(ctx context.Context, item Match) error
	UpsertTeams(ctx context.Context, items []Team) error
	UpsertParticipants(ctx context.Context, items []Participant) error
}
