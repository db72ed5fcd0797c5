package usecase

import (
	"strconv"
	"strings"
)

// Field accessors for the provider's dynamic match and timeline documents.
// Every accessor returns a pointer so an absent or malformed field survives
// as nil all the way into a SQL NULL, and every numeric accessor tolerates
// string-encoded numbers since the provider is not consistent about them.

func stringField(doc map[string]any, key string) *string {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil
	}
	if s, ok := value.(string); ok {
		return &s
	}
	return nil
}

func intField(doc map[string]any, key string) *int64 {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil
	}
	switch t := value.(type) {
	case float64:
		n := int64(t)
		return &n
	case int64:
		n := t
		return &n
	case int:
		n := int64(t)
		return &n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if ferr != nil {
				return nil
			}
			n = int64(f)
		}
		return &n
	default:
		return nil
	}
}

func floatField(doc map[string]any, key string) *float64 {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil
	}
	switch t := value.(type) {
	case float64:
		f := t
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func boolField(doc map[string]any, key string) *bool {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil
	}
	switch t := value.(type) {
	case bool:
		b := t
		return &b
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}

func subMap(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	return nil
}

func subSlice(doc map[string]any, key string) []any {
	if s, ok := doc[key].([]any); ok {
		return s
	}
	return nil
}

// int64List converts a JSON array of numbers, dropping entries that are not
// numeric.
func int64List(items []any) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case float64:
			out = append(out, int64(t))
		case int64:
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// derivePatch reduces a full game version like "14.3.558.1422" to its patch
// "14.3". Versions with fewer than two dot segments yield nil.
func derivePatch(gameVersion *string) *string {
	if gameVersion == nil {
		return nil
	}
	parts := strings.Split(*gameVersion, ".")
	if len(parts) < 2 {
		return nil
	}
	patch := parts[0] + "." + parts[1]
	return &patch
}

// overflowDocument returns the fields of doc outside the known set. New
// provider fields land here instead of being dropped.
func overflowDocument(doc map[string]any, known map[string]struct{}) map[string]any {
	out := make(map[string]any)
	for key, value := range doc {
		if _, ok := known[key]; ok {
			continue
		}
		out[key] = value
	}
	return out
}

func fieldSet(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out
}

// participantKnownFields are the participant fields mapped to dedicated
// columns; everything else goes to the stats overflow document.
var participantKnownFields = fieldSet(
	"participantId", "puuid", "teamId",
	"championId", "championName",
	"riotIdGameName", "riotIdTagline",
	"individualPosition", "lane", "role",
	"summoner1Id", "summoner2Id",
	"item0", "item1", "item2", "item3", "item4", "item5", "item6",
	"kills", "deaths", "assists",
	"totalDamageDealtToChampions", "totalDamageTaken", "damageSelfMitigated",
	"goldEarned", "visionScore",
	"wardsPlaced", "wardsKilled", "detectorWardsPlaced",
	"champLevel", "totalMinionsKilled", "neutralMinionsKilled",
	"timeCCingOthers", "win", "perks",
)

// eventKnownFields are the timeline event fields mapped to dedicated
// columns; everything else goes to the other overflow document.
var eventKnownFields = fieldSet(
	"timestamp", "type",
	"participantId", "killerId", "victimId", "teamId",
	"assistingParticipantIds", "position",
	"itemId", "afterId", "beforeId",
	"skillSlot", "levelUpType",
	"wardType", "buildingType", "towerType",
	"monsterType", "monsterSubType",
	"bounty", "goldGain",
)
