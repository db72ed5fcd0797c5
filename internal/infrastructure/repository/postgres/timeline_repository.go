package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DeadSpoonbill/API-lol-public/internal/domain/timeline"
	qb "github.com/DeadSpoonbill/API-lol-public/internal/platform/querybuilder"
)

// frameInsertSuffix skips frames already present so re-ingesting a match is
// cheap; frame contents never change for a finished match.
const frameInsertSuffix = `ON CONFLICT (match_id, frame_index, participant_id)
DO NOTHING`

type TimelineRepository struct {
	db *sqlx.DB
}

func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func (r *TimelineRepository) InsertFrames(ctx context.Context, rows []timeline.ParticipantFrame) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert frames: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := frameInsertModel{
			MatchID:             row.MatchID,
			FrameIndex:          row.FrameIndex,
			TimestampMS:         row.TimestampMS,
			ParticipantID:       row.ParticipantID,
			TotalGold:           row.TotalGold,
			CurrentGold:         row.CurrentGold,
			XP:                  row.XP,
			Level:               row.Level,
			MinionsKilled:       row.MinionsKilled,
			JungleMinionsKilled: row.JungleMinionsKilled,
			PositionX:           row.PositionX,
			PositionY:           row.PositionY,
			DamageStats:         jsonOrNull(row.DamageStatsJSON),
		}

		query, args, err := qb.InsertModel("lol.participant_frame", insertModel, frameInsertSuffix)
		if err != nil {
			return fmt.Errorf("build insert frame query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert frame match=%s idx=%d: %w", row.MatchID, row.FrameIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert frames tx: %w", err)
	}

	return nil
}

func (r *TimelineRepository) InsertEvents(ctx context.Context, rows []timeline.Event) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := eventInsertModel{
			MatchID:        row.MatchID,
			TimestampMS:    row.TimestampMS,
			EventType:      row.Type,
			ParticipantID:  row.ParticipantID,
			KillerID:       row.KillerID,
			VictimID:       row.VictimID,
			TeamID:         row.TeamID,
			AssistingIDs:   pq.Int64Array(row.AssistingIDs),
			PositionX:      row.PositionX,
			PositionY:      row.PositionY,
			ItemID:         row.ItemID,
			AfterID:        row.AfterID,
			BeforeID:       row.BeforeID,
			SkillSlot:      row.SkillSlot,
			LevelUpType:    row.LevelUpType,
			WardType:       row.WardType,
			BuildingType:   row.BuildingType,
			TowerType:      row.TowerType,
			MonsterType:    row.MonsterType,
			MonsterSubType: row.MonsterSubType,
			Bounty:         row.Bounty,
			GoldGain:       row.GoldGain,
			Other:          jsonOrNull(row.OtherJSON),
		}

		query, args, err := qb.InsertModel("lol.timeline_event", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert event match=%s: %w", row.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert events tx: %w", err)
	}

	return nil
}

type frameInsertModel struct {
	MatchID             string  `db:"match_id"`
	FrameIndex          int     `db:"frame_index"`
	TimestampMS         *int64  `db:"ts_ms"`
	ParticipantID       int     `db:"participant_id"`
	TotalGold           *int64  `db:"total_gold"`
	CurrentGold         *int64  `db:"current_gold"`
	XP                  *int64  `db:"xp"`
	Level               *int64  `db:"level"`
	MinionsKilled       *int64  `db:"minions_killed"`
	JungleMinionsKilled *int64  `db:"jungle_minions_killed"`
	PositionX           *int64  `db:"position_x"`
	PositionY           *int64  `db:"position_y"`
	DamageStats         *string `db:"damage_stats"`
}

type eventInsertModel struct {
	MatchID        string        `db:"match_id"`
	TimestampMS    *int64        `db:"ts_ms"`
	EventType      *string       `db:"event_type"`
	ParticipantID  *int64        `db:"participant_id"`
	KillerID       *int64        `db:"killer_id"`
	VictimID       *int64        `db:"victim_id"`
	TeamID         *int64        `db:"team_id"`
	AssistingIDs   pq.Int64Array `db:"assisting_ids"`
	PositionX      *int64        `db:"position_x"`
	PositionY      *int64        `db:"position_y"`
	ItemID         *int64        `db:"item_id"`
	AfterID        *int64        `db:"after_id"`
	BeforeID       *int64        `db:"before_id"`
	SkillSlot      *int64        `db:"skill_slot"`
	LevelUpType    *string       `db:"level_up_type"`
	WardType       *string       `db:"ward_type"`
	BuildingType   *string       `db:"building_type"`
	TowerType      *string       `db:"tower_type"`
	MonsterType    *string       `db:"monster_type"`
	MonsterSubType *string       `db:"monster_sub_type"`
	Bounty         *int64        `db:"bounty"`
	GoldGain       *int64        `db:"gold_gain"`
	Other          *string       `db:"other"`
}
