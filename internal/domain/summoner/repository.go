package summoner

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Summoner) error
}
