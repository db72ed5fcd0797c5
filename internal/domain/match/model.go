// Package match holds the relational shape of one fetched match: the match
// row itself plus its team and participant children. Nullable columns are
// pointers so that "field absent in the payload" survives as SQL NULL
// rather than a zero value.
package match

// Match is one row of lol.match. RawJSON is the full provider payload; it
// is the only column refreshed when the same match id is ingested again.
type Match struct {
	MatchID        string
	DataVersion    *string
	GameVersion    *string
	Patch          *string
	QueueID        *int64
	GameCreationMS *int64
	GameStartMS    *int64
	GameEndMS      *int64
	GameDurationS  *int64
	MapID          *int64
	PlatformID     *string
	TournamentCode *string
	RegionRouter   string
	RawJSON        string
}

// Team is one row of lol.team. Bans holds the five ban slots in order;
// missing slots stay nil.
type Team struct {
	MatchID         string
	TeamID          *int64
	Win             *bool
	BaronKills      *int64
	DragonKills     *int64
	RiftHeraldKills *int64
	InhibitorKills  *int64
	TowerKills      *int64
	Bans            [5]*int64
}

// Participant is one row of lol.participant. PerksJSON is the provider's
// rune payload verbatim; StatsJSON is the overflow document holding every
// participant field outside the known set.
type Participant struct {
	MatchID              string
	ParticipantID        *int64
	PUUID                *string
	TeamID               *int64
	ChampionID           *int64
	ChampionName         *string
	RiotIDGameName       *string
	RiotIDTagline        *string
	IndividualPosition   *string
	Lane                 *string
	Role                 *string
	Summoner1ID          *int64
	Summoner2ID          *int64
	Items                [7]*int64
	Kills                *int64
	Deaths               *int64
	Assists              *int64
	TotalDamageToChamps  *int64
	TotalDamageTaken     *int64
	DamageSelfMitigated  *int64
	GoldEarned           *int64
	VisionScore          *float64
	WardsPlaced          *int64
	WardsKilled          *int64
	DetectorWardsPlaced  *int64
	ChampLevel           *int64
	TotalMinionsKilled   *int64
	NeutralMinionsKilled *int64
	TimeCCingOthers      *int64
	Win                  *bool
	PerksJSON            string
	StatsJSON            string
}
