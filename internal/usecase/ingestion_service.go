package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/DeadSpoonbill/API-lol-public/internal/domain/match"
	"github.com/DeadSpoonbill/API-lol-public/internal/domain/summoner"
	"github.com/DeadSpoonbill/API-lol-public/internal/domain/timeline"
	"github.com/DeadSpoonbill/API-lol-public/internal/platform/logging"
)

// matchSource is the slice of the Riot client the ingestion flow needs.
// Absent resources come back as (nil, nil).
type matchSource interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (map[string]any, error)
	CollectMatchIDs(ctx context.Context, puuid string, total int, queues []int, matchType string) ([]string, error)
	Match(ctx context.Context, matchID string) (map[string]any, error)
	Timeline(ctx context.Context, matchID string) (map[string]any, error)
}

// IngestionConfig carries the listing filters and the router tag stamped
// onto every match row.
type IngestionConfig struct {
	Router    string
	Queues    []int
	MatchType string
}

// Summary reports what one ingestion run did.
type Summary struct {
	MatchesIngested int
	MatchesSkipped  int
}

// IngestionService pulls a player's recent match history from the provider
// and persists it. Matches are processed strictly one at a time so the
// provider's rate limits stay predictable.
type IngestionService struct {
	source       matchSource
	summonerRepo summoner.Repository
	matchRepo    match.Repository
	timelineRepo timeline.Repository
	cfg          IngestionConfig
	logger       *logging.Logger
}

func NewIngestionService(
	source matchSource,
	summonerRepo summoner.Repository,
	matchRepo match.Repository,
	timelineRepo timeline.Repository,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		source:       source,
		summonerRepo: summonerRepo,
		matchRepo:    matchRepo,
		timelineRepo: timelineRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// IngestPlayer resolves a Riot ID, stores the account, enumerates the
// player's recent match ids and ingests each match with its timeline. A
// match the provider no longer has is counted as skipped; an account the
// provider does not know fails the run with ErrNotFound.
func (s *IngestionService) IngestPlayer(ctx context.Context, gameName, tagLine string, count int) (Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestPlayer")
	defer span.End()

	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimSpace(tagLine)
	if gameName == "" || tagLine == "" {
		return Summary{}, fmt.Errorf("%w: game name and tag line are required", ErrInvalidInput)
	}
	if count <= 0 {
		return Summary{}, fmt.Errorf("%w: match count must be greater than zero", ErrInvalidInput)
	}

	account, err := s.source.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve account %s#%s: %w", gameName, tagLine, err)
	}
	if account == nil {
		return Summary{}, fmt.Errorf("%w: account %s#%s", ErrNotFound, gameName, tagLine)
	}

	puuid := stringField(account, "puuid")
	if puuid == nil || strings.TrimSpace(*puuid) == "" {
		return Summary{}, fmt.Errorf("account %s#%s: provider payload has no puuid", gameName, tagLine)
	}

	rawAccount, err := encodeDocument(account)
	if err != nil {
		return Summary{}, fmt.Errorf("encode account payload: %w", err)
	}
	record := summoner.Summoner{
		PUUID:    *puuid,
		GameName: stringField(account, "gameName"),
		TagLine:  stringField(account, "tagLine"),
		RawJSON:  rawAccount,
	}
	if err := s.summonerRepo.Upsert(ctx, record); err != nil {
		return Summary{}, fmt.Errorf("upsert summoner %s: %w", *puuid, err)
	}

	matchIDs, err := s.source.CollectMatchIDs(ctx, *puuid, count, s.cfg.Queues, s.cfg.MatchType)
	if err != nil {
		return Summary{}, fmt.Errorf("list matches for %s: %w", *puuid, err)
	}
	s.logger.InfoContext(ctx, "match ids collected",
		"puuid", *puuid,
		"requested", count,
		"found", len(matchIDs),
	)

	var summary Summary
	for _, matchID := range matchIDs {
		ingested, err := s.ingestMatch(ctx, matchID)
		if err != nil {
			return summary, err
		}
		if ingested {
			summary.MatchesIngested++
		} else {
			summary.MatchesSkipped++
		}
	}

	return summary, nil
}

func (s *IngestionService) ingestMatch(ctx context.Context, matchID string) (bool, error) {
	doc, err := s.source.Match(ctx, matchID)
	if err != nil {
		return false, fmt.Errorf("fetch match %s: %w", matchID, err)
	}
	if doc == nil {
		s.logger.WarnContext(ctx, "match no longer available, skipping", "match_id", matchID)
		return false, nil
	}

	row, teams, participants, err := normalizeMatch(doc, matchID, s.cfg.Router)
	if err != nil {
		return false, err
	}

	if err := s.matchRepo.UpsertMatch(ctx, row); err != nil {
		return false, fmt.Errorf("upsert match %s: %w", row.MatchID, err)
	}
	if err := s.matchRepo.UpsertTeams(ctx, teams); err != nil {
		return false, fmt.Errorf("upsert teams for %s: %w", row.MatchID, err)
	}
	if err := s.matchRepo.UpsertParticipants(ctx, participants); err != nil {
		return false, fmt.Errorf("upsert participants for %s: %w", row.MatchID, err)
	}

	if err := s.ingestTimeline(ctx, row.MatchID); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "match ingested",
		"match_id", row.MatchID,
		"teams", len(teams),
		"participants", len(participants),
	)
	return true, nil
}

func (s *IngestionService) ingestTimeline(ctx context.Context, matchID string) error {
	doc, err := s.source.Timeline(ctx, matchID)
	if err != nil {
		return fmt.Errorf("fetch timeline %s: %w", matchID, err)
	}
	if doc == nil {
		s.logger.WarnContext(ctx, "timeline not available", "match_id", matchID)
		return nil
	}

	frames, events, err := normalizeTimeline(doc, matchID)
	if err != nil {
		return err
	}
	if err := s.timelineRepo.InsertFrames(ctx, frames); err != nil {
		return fmt.Errorf("insert frames for %s: %w", matchID, err)
	}
	if err := s.timelineRepo.InsertEvents(ctx, events); err != nil {
		return fmt.Errorf("insert events for %s: %w", matchID, err)
	}
	return nil
}
