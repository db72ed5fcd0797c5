package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DeadSpoonbill/API-lol-public/internal/domain/summoner"
	qb "github.com/DeadSpoonbill/API-lol-public/internal/platform/querybuilder"
)

// summonerUpsertSuffix merges the new raw payload into the stored document
// instead of replacing it, so fragments from different endpoints accumulate
// under one puuid.
const summonerUpsertSuffix = `ON CONFLICT (puuid)
DO UPDATE SET
    game_name = EXCLUDED.game_name,
    tag_line = EXCLUDED.tag_line,
    last_seen_at = NOW(),
    raw = COALESCE(summoner.raw, '{}'::jsonb) || EXCLUDED.raw`

type SummonerRepository struct {
	db *sqlx.DB
}

func NewSummonerRepository(db *sqlx.DB) *SummonerRepository {
	return &SummonerRepository{db: db}
}

func (r *SummonerRepository) Upsert(ctx context.Context, record summoner.Summoner) error {
	insertModel := summonerInsertModel{
		PUUID:    record.PUUID,
		GameName: record.GameName,
		TagLine:  record.TagLine,
		Raw:      record.RawJSON,
	}

	query, args, err := qb.InsertModel("lol.summoner", insertModel, summonerUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert summoner query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summoner puuid=%s: %w", record.PUUID, err)
	}

	return nil
}

type summonerInsertModel struct {
	PUUID    string  `db:"puuid"`
	GameName *string `db:"game_name"`
	TagLine  *string `db:"tag_line"`
	Raw      string  `db:"raw"`
}
