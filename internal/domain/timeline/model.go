// Package timeline holds the per-minute snapshot rows of a match: one
// ParticipantFrame per (frame, participant) and one Event per discrete
// timeline event.
package timeline

// ParticipantFrame is one row of lol.participant_frame. Conflicting keys
// are skipped on insert, never updated.
type ParticipantFrame struct {
	MatchID             string
	FrameIndex          int
	TimestampMS         *int64
	ParticipantID       int
	TotalGold           *int64
	CurrentGold         *int64
	XP                  *int64
	Level               *int64
	MinionsKilled       *int64
	JungleMinionsKilled *int64
	PositionX           *int64
	PositionY           *int64
	DamageStatsJSON     string
}

// Event is one row of lol.timeline_event. The column set is the union of
// all known event-type fields; most are nil for any given event. OtherJSON
// captures the fields outside the known set. Events carry no key, so
// re-ingesting a match re-inserts its events.
type Event struct {
	MatchID        string
	TimestampMS    *int64
	Type           *string
	ParticipantID  *int64
	KillerID       *int64
	VictimID       *int64
	TeamID         *int64
	AssistingIDs   []int64
	PositionX      *int64
	PositionY      *int64
	ItemID         *int64
	AfterID        *int64
	BeforeID       *int64
	SkillSlot      *int64
	LevelUpType    *string
	WardType       *string
	BuildingType   *string
	TowerType      *string
	MonsterType    *string
	MonsterSubType *string
	Bounty         *int64
	GoldGain       *int64
	OtherJSON      string
}
