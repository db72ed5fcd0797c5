package summoner

// Summoner is the player identity row keyed by the provider's stable puuid.
// RawJSON accumulates API response fragments across ingestion runs; the
// store merges it into the existing document instead of replacing it.
type Summoner struct {
	PUUID    string
	GameName *string
	TagLine  *string
	RawJSON  string
}
