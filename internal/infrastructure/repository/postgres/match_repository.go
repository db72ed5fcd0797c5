package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DeadSpoonbill/API-lol-public/internal/domain/match"
	qb "github.com/DeadSpoonbill/API-lol-public/internal/platform/querybuilder"
)

// Conflict policies: a re-ingested match only refreshes its raw payload, a
// team only its win flag, a participant only the perks and stats documents.
const (
	matchUpsertSuffix = `ON CONFLICT (match_id)
DO UPDATE SET raw = EXCLUDED.raw`

	teamUpsertSuffix = `ON CONFLICT (match_id, team_id)
DO UPDATE SET win = EXCLUDED.win`

	participantUpsertSuffix = `ON CONFLICT (match_id, participant_id)
DO UPDATE SET
    perks = EXCLUDED.perks,
    stats = EXCLUDED.stats`
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) UpsertMatch(ctx context.Context, row match.Match) error {
	insertModel := matchInsertModel{
		MatchID:        row.MatchID,
		DataVersion:    row.DataVersion,
		GameVersion:    row.GameVersion,
		Patch:          row.Patch,
		QueueID:        row.QueueID,
		GameCreationMS: row.GameCreationMS,
		GameStartMS:    row.GameStartMS,
		GameEndMS:      row.GameEndMS,
		GameDurationS:  row.GameDurationS,
		MapID:          row.MapID,
		PlatformID:     row.PlatformID,
		TournamentCode: row.TournamentCode,
		RegionRouter:   row.RegionRouter,
		Raw:            row.RawJSON,
	}

	query, args, err := qb.InsertModel("lol.match", insertModel, matchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match id=%s: %w", row.MatchID, err)
	}

	return nil
}

func (r *MatchRepository) UpsertTeams(ctx context.Context, rows []match.Team) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert teams: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := teamInsertModel{
			MatchID:         row.MatchID,
			TeamID:          row.TeamID,
			Win:             row.Win,
			BaronKills:      row.BaronKills,
			DragonKills:     row.DragonKills,
			RiftHeraldKills: row.RiftHeraldKills,
			InhibitorKills:  row.InhibitorKills,
			TowerKills:      row.TowerKills,
			Ban0:            row.Bans[0],
			Ban1:            row.Bans[1],
			Ban2:            row.Bans[2],
			Ban3:            row.Bans[3],
			Ban4:            row.Bans[4],
		}

		query, args, err := qb.InsertModel("lol.team", insertModel, teamUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert team match=%s: %w", row.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert teams tx: %w", err)
	}

	return nil
}

func (r *MatchRepository) UpsertParticipants(ctx context.Context, rows []match.Participant) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert participants: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		insertModel := participantInsertModel{
			MatchID:              row.MatchID,
			ParticipantID:        row.ParticipantID,
			PUUID:                row.PUUID,
			TeamID:               row.TeamID,
			ChampionID:           row.ChampionID,
			ChampionName:         row.ChampionName,
			RiotIDGameName:       row.RiotIDGameName,
			RiotIDTagline:        row.RiotIDTagline,
			IndividualPosition:   row.IndividualPosition,
			Lane:                 row.Lane,
			Role:                 row.Role,
			Summoner1ID:          row.Summoner1ID,
			Summoner2ID:          row.Summoner2ID,
			Item0:                row.Items[0],
			Item1:                row.Items[1],
			Item2:                row.Items[2],
			Item3:                row.Items[3],
			Item4:                row.Items[4],
			Item5:                row.Items[5],
			Item6:                row.Items[6],
			Kills:                row.Kills,
			Deaths:               row.Deaths,
			Assists:              row.Assists,
			TotalDamageToChamps:  row.TotalDamageToChamps,
			TotalDamageTaken:     row.TotalDamageTaken,
			DamageSelfMitigated:  row.DamageSelfMitigated,
			GoldEarned:           row.GoldEarned,
			VisionScore:          row.VisionScore,
			WardsPlaced:          row.WardsPlaced,
			WardsKilled:          row.WardsKilled,
			DetectorWardsPlaced:  row.DetectorWardsPlaced,
			ChampLevel:           row.ChampLevel,
			TotalMinionsKilled:   row.TotalMinionsKilled,
			NeutralMinionsKilled: row.NeutralMinionsKilled,
			TimeCCingOthers:      row.TimeCCingOthers,
			Win:                  row.Win,
			Perks:                jsonOrNull(row.PerksJSON),
			Stats:                jsonOrNull(row.StatsJSON),
		}

		query, args, err := qb.InsertModel("lol.participant", insertModel, participantUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert participant query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert participant match=%s: %w", row.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert participants tx: %w", err)
	}

	return nil
}

type matchInsertModel struct {
	MatchID        string  `db:"match_id"`
	DataVersion    *string `db:"data_version"`
	GameVersion    *string `db:"game_version"`
	Patch          *string `db:"patch"`
	QueueID        *int64  `db:"queue_id"`
	GameCreationMS *int64  `db:"game_creation_ms"`
	GameStartMS    *int64  `db:"game_start_ms"`
	GameEndMS      *int64  `db:"game_end_ms"`
	GameDurationS  *int64  `db:"game_duration_s"`
	MapID          *int64  `db:"map_id"`
	PlatformID     *string `db:"platform_id"`
	TournamentCode *string `db:"tournament_code"`
	RegionRouter   string  `db:"region_router"`
	Raw            string  `db:"raw"`
}

type teamInsertModel struct {
	MatchID         string `db:"match_id"`
	TeamID          *int64 `db:"team_id"`
	Win             *bool  `db:"win"`
	BaronKills      *int64 `db:"baron_kills"`
	DragonKills     *int64 `db:"dragon_kills"`
	RiftHeraldKills *int64 `db:"rift_herald_kills"`
	InhibitorKills  *int64 `db:"inhibitor_kills"`
	TowerKills      *int64 `db:"tower_kills"`
	Ban0            *int64 `db:"ban0"`
	Ban1            *int64 `db:"ban1"`
	Ban2            *int64 `db:"ban2"`
	Ban3            *int64 `db:"ban3"`
	Ban4            *int64 `db:"ban4"`
}

type participantInsertModel struct {
	MatchID              string   `db:"match_id"`
	ParticipantID        *int64   `db:"participant_id"`
	PUUID                *string  `db:"puuid"`
	TeamID               *int64   `db:"team_id"`
	ChampionID           *int64   `db:"champion_id"`
	ChampionName         *string  `db:"champion_name"`
	RiotIDGameName       *string  `db:"riot_id_game_name"`
	RiotIDTagline        *string  `db:"riot_id_tagline"`
	IndividualPosition   *string  `db:"individual_position"`
	Lane                 *string  `db:"lane"`
	Role                 *string  `db:"role"`
	Summoner1ID          *int64   `db:"summoner1_id"`
	Summoner2ID          *int64   `db:"summoner2_id"`
	Item0                *int64   `db:"item0"`
	Item1                *int64   `db:"item1"`
	Item2                *int64   `db:"item2"`
	Item3                *int64   `db:"item3"`
	Item4                *int64   `db:"item4"`
	Item5                *int64   `db:"item5"`
	Item6                *int64   `db:"item6"`
	Kills                *int64   `db:"kills"`
	Deaths               *int64   `db:"deaths"`
	Assists              *int64   `db:"assists"`
	TotalDamageToChamps  *int64   `db:"total_damage_to_champs"`
	TotalDamageTaken     *int64   `db:"total_damage_taken"`
	DamageSelfMitigated  *int64   `db:"damage_self_mitigated"`
	GoldEarned           *int64   `db:"gold_earned"`
	VisionScore          *float64 `db:"vision_score"`
	WardsPlaced          *int64   `db:"wards_placed"`
	WardsKilled          *int64   `db:"wards_killed"`
	DetectorWardsPlaced  *int64   `db:"detector_wards_placed"`
	ChampLevel           *int64   `db:"champ_level"`
	TotalMinionsKilled   *int64   `db:"total_minions_killed"`
	NeutralMinionsKilled *int64   `db:"neutral_minions_killed"`
	TimeCCingOthers      *int64   `db:"time_ccing_others"`
	Win                  *bool    `db:"win"`
	Perks                *string  `db:"perks"`
	Stats                *string  `db:"stats"`
}
