package postgres

import (
	"strings"
	"testing"

	qb "github.com/DeadSpoonbill/API-lol-public/internal/platform/querybuilder"
)

func TestSummonerUpsertSQL(t *testing.T) {
	t.Parallel()

	name := "Hide on bush"
	tag := "KR1"
	query, args, err := qb.InsertModel("lol.summoner", summonerInsertModel{
		PUUID:    "puuid-1",
		GameName: &name,
		TagLine:  &tag,
		Raw:      `{"puuid":"puuid-1"}`,
	}, summonerUpsertSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(query, "INSERT INTO lol.summoner (puuid, game_name, tag_line, raw) VALUES ($1, $2, $3, $4)") {
		t.Fatalf("unexpected insert shape: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (puuid)") {
		t.Fatalf("expected conflict target on puuid: %s", query)
	}
	if !strings.Contains(query, "COALESCE(summoner.raw, '{}'::jsonb) || EXCLUDED.raw") {
		t.Fatalf("expected accumulating raw merge: %s", query)
	}
	if !strings.Contains(query, "last_seen_at = NOW()") {
		t.Fatalf("expected last_seen_at refresh: %s", query)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got=%d", len(args))
	}
}

func TestMatchUpsertSQL_OnlyRefreshesRaw(t *testing.T) {
	t.Parallel()

	query, _, err := qb.InsertModel("lol.match", matchInsertModel{
		MatchID:      "EUW1_7001",
		RegionRouter: "europe",
		Raw:          "{}",
	}, matchUpsertSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "ON CONFLICT (match_id)") {
		t.Fatalf("expected conflict target on match_id: %s", query)
	}
	update := query[strings.Index(query, "DO UPDATE SET"):]
	if !strings.Contains(update, "raw = EXCLUDED.raw") {
		t.Fatalf("expected raw refresh: %s", update)
	}
	if strings.Contains(update, "game_version") || strings.Contains(update, "patch") {
		t.Fatalf("conflict update must touch raw only: %s", update)
	}
}

func TestTeamUpsertSQL_OnlyRefreshesWin(t *testing.T) {
	t.Parallel()

	teamID := int64(100)
	query, _, err := qb.InsertModel("lol.team", teamInsertModel{
		MatchID: "EUW1_7001",
		TeamID:  &teamID,
	}, teamUpsertSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "ON CONFLICT (match_id, team_id)") {
		t.Fatalf("expected composite conflict target: %s", query)
	}
	update := query[strings.Index(query, "DO UPDATE SET"):]
	if !strings.Contains(update, "win = EXCLUDED.win") {
		t.Fatalf("expected win refresh: %s", update)
	}
	if strings.Contains(update, "kills") || strings.Contains(update, "ban") {
		t.Fatalf("conflict update must touch win only: %s", update)
	}
}

func TestParticipantUpsertSQL_RefreshesPerksAndStats(t *testing.T) {
	t.Parallel()

	participantID := int64(1)
	query, _, err := qb.InsertModel("lol.participant", participantInsertModel{
		MatchID:       "EUW1_7001",
		ParticipantID: &participantID,
	}, participantUpsertSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "ON CONFLICT (match_id, participant_id)") {
		t.Fatalf("expected composite conflict target: %s", query)
	}
	update := query[strings.Index(query, "DO UPDATE SET"):]
	if !strings.Contains(update, "perks = EXCLUDED.perks") || !strings.Contains(update, "stats = EXCLUDED.stats") {
		t.Fatalf("expected perks and stats refresh: %s", update)
	}
	if strings.Contains(update, "kills = ") {
		t.Fatalf("conflict update must not touch counters: %s", update)
	}
}

func TestFrameInsertSQL_SkipsConflicts(t *testing.T) {
	t.Parallel()

	query, _, err := qb.InsertModel("lol.participant_frame", frameInsertModel{
		MatchID:       "EUW1_7001",
		FrameIndex:    3,
		ParticipantID: 7,
	}, frameInsertSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "ON CONFLICT (match_id, frame_index, participant_id)") {
		t.Fatalf("expected triple conflict target: %s", query)
	}
	if !strings.Contains(query, "DO NOTHING") {
		t.Fatalf("expected DO NOTHING policy: %s", query)
	}
}

func TestEventInsertSQL_HasNoConflictClause(t *testing.T) {
	t.Parallel()

	query, args, err := qb.InsertModel("lol.timeline_event", eventInsertModel{
		MatchID: "EUW1_7001",
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(query, "ON CONFLICT") {
		t.Fatalf("events are append-only, no conflict clause expected: %s", query)
	}
	if !strings.Contains(query, "assisting_ids") {
		t.Fatalf("expected assisting_ids column: %s", query)
	}
	if len(args) != 23 {
		t.Fatalf("expected one arg per event column, got=%d", len(args))
	}
}

func TestJSONOrNull(t *testing.T) {
	t.Parallel()

	if got := jsonOrNull(""); got != nil {
		t.Fatalf("expected nil for empty document, got=%q", *got)
	}
	if got := jsonOrNull("  "); got != nil {
		t.Fatalf("expected nil for blank document, got=%q", *got)
	}
	if got := jsonOrNull("{}"); got == nil || *got != "{}" {
		t.Fatalf("expected document preserved, got=%v", got)
	}
}
