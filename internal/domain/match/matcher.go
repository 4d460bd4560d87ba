// Package match implements replay-to-schedule reconciliation: an exact
// boolean matcher over normalized names and a batch resolver that applies it
// across an upload, in input order, against a week window of candidates.
package match

import (
	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/internal/domain/normalize"
)

// Matcher decides whether one replay's metadata identifies a scheduled set.
type Matcher interface {
	Matches(replay model.ReplayMetadata, candidate model.ScheduledSet) bool
}

// RuleMatcher is the exact-after-normalization matcher. Not a similarity
// score: a set either is or is not the game in the replay.
type RuleMatcher struct{}

// NewRuleMatcher builds the stateless exact matcher.
func NewRuleMatcher() *RuleMatcher { return &RuleMatcher{} }

// pairing is an ordered (name, race, name, race) comparison key.
type pairing [4]string

// Matches reports whether the replay is a recording of the candidate set.
// The map must agree after normalization, and the two replay players must
// equal the candidate's home/away pairing in either order. Replays do not
// encode which side is home, so both orderings are tried.
func (RuleMatcher) Matches(replay model.ReplayMetadata, candidate model.ScheduledSet) bool {
	if normalize.MapName(replay.MapName) != normalize.MapName(candidate.MapName) {
		return false
	}

	got := pairing{
		normalize.PlayerName(replay.Players[0].Name), raceLetter(replay.Players[0].Race),
		normalize.PlayerName(replay.Players[1].Name), raceLetter(replay.Players[1].Race),
	}

	homeName := normalize.PlayerName(candidate.HomePlayer)
	awayName := normalize.PlayerName(candidate.AwayPlayer)
	homeRace := string(candidate.HomeRace)
	awayRace := string(candidate.AwayRace)

	return got == pairing{homeName, homeRace, awayName, awayRace} ||
		got == pairing{awayName, awayRace, homeName, homeRace}
}

// raceLetter reduces a parser faction string ("Protoss") to the single-letter
// code the schedule stores.
func raceLetter(race string) string {
	if race == "" {
		return ""
	}
	return race[:1]
}
