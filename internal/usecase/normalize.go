package usecase

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/DeadSpoonbill/API-lol-public/internal/domain/match"
	"github.com/DeadSpoonbill/API-lol-public/internal/domain/timeline"
)

// normalizeMatch flattens one match document into its relational rows.
// fallbackID is the enumerated match id, used when the document's own
// metadata does not carry one.
func normalizeMatch(doc map[string]any, fallbackID, router string) (match.Match, []match.Team, []match.Participant, error) {
	metadata := subMap(doc, "metadata")
	info := subMap(doc, "info")
	if info == nil {
		return match.Match{}, nil, nil, fmt.Errorf("match %s: payload has no info block", fallbackID)
	}

	matchID := fallbackID
	if id := stringField(metadata, "matchId"); id != nil && *id != "" {
		matchID = *id
	}
	if matchID == "" {
		return match.Match{}, nil, nil, fmt.Errorf("match payload has no match id")
	}

	rawJSON, err := encodeDocument(doc)
	if err != nil {
		return match.Match{}, nil, nil, fmt.Errorf("match %s: encode raw payload: %w", matchID, err)
	}

	gameVersion := stringField(info, "gameVersion")
	row := match.Match{
		MatchID:        matchID,
		DataVersion:    stringField(metadata, "dataVersion"),
		GameVersion:    gameVersion,
		Patch:          derivePatch(gameVersion),
		QueueID:        intField(info, "queueId"),
		GameCreationMS: intField(info, "gameCreation"),
		GameStartMS:    intField(info, "gameStartTimestamp"),
		GameEndMS:      intField(info, "gameEndTimestamp"),
		GameDurationS:  intField(info, "gameDuration"),
		MapID:          intField(info, "mapId"),
		PlatformID:     stringField(info, "platformId"),
		TournamentCode: stringField(info, "tournamentCode"),
		RegionRouter:   router,
		RawJSON:        rawJSON,
	}

	var teams []match.Team
	for _, item := range subSlice(info, "teams") {
		teamDoc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		teams = append(teams, normalizeTeam(matchID, teamDoc))
	}

	var participants []match.Participant
	for _, item := range subSlice(info, "participants") {
		participantDoc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		participant, err := normalizeParticipant(matchID, participantDoc)
		if err != nil {
			return match.Match{}, nil, nil, err
		}
		participants = append(participants, participant)
	}

	return row, teams, participants, nil
}

func normalizeTeam(matchID string, doc map[string]any) match.Team {
	objectives := subMap(doc, "objectives")
	team := match.Team{
		MatchID:         matchID,
		TeamID:          intField(doc, "teamId"),
		Win:             boolField(doc, "win"),
		BaronKills:      objectiveKills(objectives, "baron"),
		DragonKills:     objectiveKills(objectives, "dragon"),
		RiftHeraldKills: objectiveKills(objectives, "riftHerald"),
		InhibitorKills:  objectiveKills(objectives, "inhibitor"),
		TowerKills:      objectiveKills(objectives, "tower"),
	}
	for idx, banItem := range subSlice(doc, "bans") {
		if idx >= len(team.Bans) {
			break
		}
		banDoc, ok := banItem.(map[string]any)
		if !ok {
			continue
		}
		team.Bans[idx] = intField(banDoc, "championId")
	}
	return team
}

func objectiveKills(objectives map[string]any, name string) *int64 {
	objective := subMap(objectives, name)
	if objective == nil {
		return nil
	}
	return intField(objective, "kills")
}

func normalizeParticipant(matchID string, doc map[string]any) (match.Participant, error) {
	participant := match.Participant{
		MatchID:              matchID,
		ParticipantID:        intField(doc, "participantId"),
		PUUID:                stringField(doc, "puuid"),
		TeamID:               intField(doc, "teamId"),
		ChampionID:           intField(doc, "championId"),
		ChampionName:         stringField(doc, "championName"),
		RiotIDGameName:       stringField(doc, "riotIdGameName"),
		RiotIDTagline:        stringField(doc, "riotIdTagline"),
		IndividualPosition:   stringField(doc, "individualPosition"),
		Lane:                 stringField(doc, "lane"),
		Role:                 stringField(doc, "role"),
		Summoner1ID:          intField(doc, "summoner1Id"),
		Summoner2ID:          intField(doc, "summoner2Id"),
		Kills:                intField(doc, "kills"),
		Deaths:               intField(doc, "deaths"),
		Assists:              intField(doc, "assists"),
		TotalDamageToChamps:  intField(doc, "totalDamageDealtToChampions"),
		TotalDamageTaken:     intField(doc, "totalDamageTaken"),
		DamageSelfMitigated:  intField(doc, "damageSelfMitigated"),
		GoldEarned:           intField(doc, "goldEarned"),
		VisionScore:          floatField(doc, "visionScore"),
		WardsPlaced:          intField(doc, "wardsPlaced"),
		WardsKilled:          intField(doc, "wardsKilled"),
		DetectorWardsPlaced:  intField(doc, "detectorWardsPlaced"),
		ChampLevel:           intField(doc, "champLevel"),
		TotalMinionsKilled:   intField(doc, "totalMinionsKilled"),
		NeutralMinionsKilled: intField(doc, "neutralMinionsKilled"),
		TimeCCingOthers:      intField(doc, "timeCCingOthers"),
		Win:                  boolField(doc, "win"),
	}
	for slot := range participant.Items {
		participant.Items[slot] = intField(doc, "item"+strconv.Itoa(slot))
	}

	if perks := subMap(doc, "perks"); perks != nil {
		perksJSON, err := encodeDocument(perks)
		if err != nil {
			return match.Participant{}, fmt.Errorf("match %s: encode perks: %w", matchID, err)
		}
		participant.PerksJSON = perksJSON
	}

	statsJSON, err := encodeDocument(overflowDocument(doc, participantKnownFields))
	if err != nil {
		return match.Participant{}, fmt.Errorf("match %s: encode participant overflow: %w", matchID, err)
	}
	participant.StatsJSON = statsJSON

	return participant, nil
}

// normalizeTimeline flattens a timeline document into frame and event rows.
// Frames are iterated in participant-id order so re-runs produce rows in a
// stable order.
func normalizeTimeline(doc map[string]any, matchID string) ([]timeline.ParticipantFrame, []timeline.Event, error) {
	info := subMap(doc, "info")
	if info == nil {
		return nil, nil, fmt.Errorf("timeline %s: payload has no info block", matchID)
	}

	var frames []timeline.ParticipantFrame
	var events []timeline.Event
	for frameIndex, item := range subSlice(info, "frames") {
		frameDoc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		frameTS := intField(frameDoc, "timestamp")

		participantFrames := subMap(frameDoc, "participantFrames")
		for _, participantID := range sortedParticipantIDs(participantFrames) {
			snapshot, ok := participantFrames[strconv.Itoa(participantID)].(map[string]any)
			if !ok {
				continue
			}
			frame, err := normalizeFrame(matchID, frameIndex, frameTS, participantID, snapshot)
			if err != nil {
				return nil, nil, err
			}
			frames = append(frames, frame)
		}

		for _, eventItem := range subSlice(frameDoc, "events") {
			eventDoc, ok := eventItem.(map[string]any)
			if !ok {
				continue
			}
			event, err := normalizeEvent(matchID, eventDoc)
			if err != nil {
				return nil, nil, err
			}
			events = append(events, event)
		}
	}

	return frames, events, nil
}

func normalizeFrame(matchID string, frameIndex int, frameTS *int64, participantID int, doc map[string]any) (timeline.ParticipantFrame, error) {
	position := subMap(doc, "position")
	frame := timeline.ParticipantFrame{
		MatchID:             matchID,
		FrameIndex:          frameIndex,
		TimestampMS:         frameTS,
		ParticipantID:       participantID,
		TotalGold:           intField(doc, "totalGold"),
		CurrentGold:         intField(doc, "currentGold"),
		XP:                  intField(doc, "xp"),
		Level:               intField(doc, "level"),
		MinionsKilled:       intField(doc, "minionsKilled"),
		JungleMinionsKilled: intField(doc, "jungleMinionsKilled"),
		PositionX:           intField(position, "x"),
		PositionY:           intField(position, "y"),
	}

	if damageStats := subMap(doc, "damageStats"); damageStats != nil {
		damageJSON, err := encodeDocument(damageStats)
		if err != nil {
			return timeline.ParticipantFrame{}, fmt.Errorf("timeline %s frame %d: encode damage stats: %w", matchID, frameIndex, err)
		}
		frame.DamageStatsJSON = damageJSON
	}

	return frame, nil
}

func normalizeEvent(matchID string, doc map[string]any) (timeline.Event, error) {
	position := subMap(doc, "position")
	event := timeline.Event{
		MatchID:        matchID,
		TimestampMS:    intField(doc, "timestamp"),
		Type:           stringField(doc, "type"),
		ParticipantID:  intField(doc, "participantId"),
		KillerID:       intField(doc, "killerId"),
		VictimID:       intField(doc, "victimId"),
		TeamID:         intField(doc, "teamId"),
		AssistingIDs:   int64List(subSlice(doc, "assistingParticipantIds")),
		PositionX:      intField(position, "x"),
		PositionY:      intField(position, "y"),
		ItemID:         intField(doc, "itemId"),
		AfterID:        intField(doc, "afterId"),
		BeforeID:       intField(doc, "beforeId"),
		SkillSlot:      intField(doc, "skillSlot"),
		LevelUpType:    stringField(doc, "levelUpType"),
		WardType:       stringField(doc, "wardType"),
		BuildingType:   stringField(doc, "buildingType"),
		TowerType:      stringField(doc, "towerType"),
		MonsterType:    stringField(doc, "monsterType"),
		MonsterSubType: stringField(doc, "monsterSubType"),
		Bounty:         intField(doc, "bounty"),
		GoldGain:       intField(doc, "goldGain"),
	}

	otherJSON, err := encodeDocument(overflowDocument(doc, eventKnownFields))
	if err != nil {
		return timeline.Event{}, fmt.Errorf("timeline %s: encode event overflow: %w", matchID, err)
	}
	event.OtherJSON = otherJSON

	return event, nil
}

func sortedParticipantIDs(participantFrames map[string]any) []int {
	ids := make([]int, 0, len(participantFrames))
	for key := range participantFrames {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func encodeDocument(doc map[string]any) (string, error) {
	if len(doc) == 0 {
		return "{}", nil
	}
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
