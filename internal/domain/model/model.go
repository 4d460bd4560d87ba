// Package model contains domain models passed between layers.
package model

import (
	"fmt"
)

// Number of sets in a match; set 5 is the ace decider.
const (
	SetsPerMatch = 5
	AceSetNumber = 5
	LineupSets   = 4
)

// Race is an in-game faction encoded as a single letter.
type Race string

// Recognized races.
const (
	RaceTerran  Race = "T"
	RaceZerg    Race = "Z"
	RaceProtoss Race = "P"
	RaceRandom  Race = "R"
)

// ParseRace validates a single-letter race code.
func ParseRace(s string) (Race, error) {
	switch Race(s) {
	case RaceTerran, RaceZerg, RaceProtoss, RaceRandom:
		return Race(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRace, s)
}

// Winner designates which side won a set, or that the set was not played.
type Winner string

// Recognized winner designations.
const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerNone Winner = "none"
)

// ParseWinner validates a winner designation.
func ParseWinner(s string) (Winner, error) {
	switch Winner(s) {
	case WinnerHome, WinnerAway, WinnerNone:
		return Winner(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWinner, s)
}

// Flags returns the (home, away) win flags for the designation.
func (w Winner) Flags() (home, away bool) {
	switch w {
	case WinnerHome:
		return true, false
	case WinnerAway:
		return false, true
	default:
		return false, false
	}
}

// SetKey identifies one scheduled set: league week, match number, set number.
type SetKey struct {
	Week        int `json:"week"`
	MatchNumber int `json:"match_number"`
	SetNumber   int `json:"set_number"`
}

// NewSetKey validates and builds a set identity.
func NewSetKey(week, matchNumber, setNumber int) (SetKey, error) {
	k := SetKey{Week: week, MatchNumber: matchNumber, SetNumber: setNumber}
	if err := k.Validate(); err != nil {
		return SetKey{}, err
	}
	return k, nil
}

// Validate checks the key components.
func (k SetKey) Validate() error {
	switch {
	case k.Week < 1:
		return fmt.Errorf("%w: week %d", ErrInvalidKey, k.Week)
	case k.MatchNumber < 1:
		return fmt.Errorf("%w: match %d", ErrInvalidKey, k.MatchNumber)
	case k.SetNumber < 1 || k.SetNumber > SetsPerMatch:
		return fmt.Errorf("%w: set %d", ErrInvalidKey, k.SetNumber)
	}
	return nil
}

func (k SetKey) String() string {
	return fmt.Sprintf("%d,%d,%d", k.Week, k.MatchNumber, k.SetNumber)
}

// ScheduledSet is one candidate game from the published schedule: the map for
// the week's set slot plus the two lined-up players. Owned by the scheduling
// store; read-only here.
type ScheduledSet struct {
	SetKey

	HomeTeamID int    `json:"home_team_id"`
	HomeTeam   string `json:"home_team"`
	HomePlayer string `json:"home_player"`
	HomeRace   Race   `json:"home_race"`

	AwayTeamID int    `json:"away_team_id"`
	AwayTeam   string `json:"away_team"`
	AwayPlayer string `json:"away_player"`
	AwayRace   Race   `json:"away_race"`

	MapName string `json:"map_name"`
}

// Validate checks a scheduled set read from the store.
func (s ScheduledSet) Validate() error {
	if err := s.SetKey.Validate(); err != nil {
		return err
	}
	if s.HomePlayer == "" || s.AwayPlayer == "" {
		return fmt.Errorf("%w: missing player name", ErrInvalidScheduledSet)
	}
	if s.MapName == "" {
		return fmt.Errorf("%w: missing map name", ErrInvalidScheduledSet)
	}
	if _, err := ParseRace(string(s.HomeRace)); err != nil {
		return fmt.Errorf("%w: home %w", ErrInvalidScheduledSet, err)
	}
	if _, err := ParseRace(string(s.AwayRace)); err != nil {
		return fmt.Errorf("%w: away %w", ErrInvalidScheduledSet, err)
	}
	return nil
}

// PlayerEntry is one player slot in parsed replay metadata. Race carries the
// parser's full faction string, e.g. "Protoss".
type PlayerEntry struct {
	Name string `json:"name"`
	Race string `json:"srace"`
}

// ReplayMetadata is the structured output of the replay parser. The order of
// the two player entries carries no home/away meaning.
type ReplayMetadata struct {
	MapName string         `json:"map_name"`
	Players [2]PlayerEntry `json:"players"`
}

// Validate checks parser output before matching.
func (m ReplayMetadata) Validate() error {
	if m.MapName == "" {
		return fmt.Errorf("%w: missing map name", ErrInvalidMetadata)
	}
	for i, p := range m.Players {
		if p.Name == "" || p.Race == "" {
			return fmt.Errorf("%w: player %d incomplete", ErrInvalidMetadata, i)
		}
	}
	return nil
}

// SetResult records the outcome of one set. At most one exists per SetKey,
// enforced by the store's uniqueness constraint.
type SetResult struct {
	SetKey

	HomeWinner bool   `json:"home_winner"`
	AwayWinner bool   `json:"away_winner"`
	Forfeit    bool   `json:"forfeit"`
	ReplayHash string `json:"replay_hash,omitempty"`
}

// NewSetResult builds a result row from a winner designation. The replay hash
// may be empty for unplayed or unrecorded sets.
func NewSetResult(key SetKey, winner Winner, forfeit bool, replayHash string) (SetResult, error) {
	if err := key.Validate(); err != nil {
		return SetResult{}, err
	}
	if _, err := ParseWinner(string(winner)); err != nil {
		return SetResult{}, err
	}
	home, away := winner.Flags()
	return SetResult{
		SetKey:     key,
		HomeWinner: home,
		AwayWinner: away,
		Forfeit:    forfeit,
		ReplayHash: replayHash,
	}, nil
}

// Played reports whether either side was awarded the set.
func (r SetResult) Played() bool { return r.HomeWinner || r.AwayWinner }

// AceMatchRecord names the live-picked players of a decider set. At most one
// exists per (week, match).
type AceMatchRecord struct {
	Week        int    `json:"week"`
	MatchNumber int    `json:"match_number"`
	HomePlayer  string `json:"home_player"`
	AwayPlayer  string `json:"away_player"`
	HomeRace    Race   `json:"home_race"`
	AwayRace    Race   `json:"away_race"`
}

// Validate checks an ace pairing before it is written.
func (a AceMatchRecord) Validate() error {
	if a.Week < 1 || a.MatchNumber < 1 {
		return fmt.Errorf("%w: week %d match %d", ErrInvalidKey, a.Week, a.MatchNumber)
	}
	if a.HomePlayer == "" || a.AwayPlayer == "" {
		return fmt.Errorf("%w: missing ace player", ErrInvalidAcePairing)
	}
	if _, err := ParseRace(string(a.HomeRace)); err != nil {
		return fmt.Errorf("%w: home %w", ErrInvalidAcePairing, err)
	}
	if _, err := ParseRace(string(a.AwayRace)); err != nil {
		return fmt.Errorf("%w: away %w", ErrInvalidAcePairing, err)
	}
	return nil
}

// Team is a roster read model.
type Team struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Player is a roster read model.
type Player struct {
	ID     int    `db:"id" json:"id"`
	TeamID int    `db:"team_id" json:"team_id"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}

// LineupEntry assigns a player and race to one of the four regular sets.
type LineupEntry struct {
	SetNumber int  `json:"set_number"`
	PlayerID  int  `json:"player_id"`
	Race      Race `json:"race"`
}

// LineupSubmission is a team's lineup for a week: one entry per regular set.
// The ace set has no pre-scheduled player.
type LineupSubmission struct {
	Week    int           `json:"week"`
	TeamID  int           `json:"team_id"`
	Entries []LineupEntry `json:"entries"`
}

// Validate checks structural rules the store cannot express: four entries for
// sets 1-4, no duplicate players, recognized races.
func (l LineupSubmission) Validate() error {
	if l.Week < 1 {
		return fmt.Errorf("%w: week %d", ErrInvalidLineup, l.Week)
	}
	if len(l.Entries) != LineupSets {
		return fmt.Errorf("%w: need %d entries, got %d", ErrInvalidLineup, LineupSets, len(l.Entries))
	}
	seenSets := map[int]bool{}
	seenPlayers := map[int]bool{}
	for _, e := range l.Entries {
		if e.SetNumber < 1 || e.SetNumber > LineupSets {
			return fmt.Errorf("%w: set %d out of range", ErrInvalidLineup, e.SetNumber)
		}
		if seenSets[e.SetNumber] {
			return fmt.Errorf("%w: duplicate set %d", ErrInvalidLineup, e.SetNumber)
		}
		seenSets[e.SetNumber] = true
		if seenPlayers[e.PlayerID] {
			return fmt.Errorf("%w: duplicate player %d", ErrInvalidLineup, e.PlayerID)
		}
		seenPlayers[e.PlayerID] = true
		if _, err := ParseRace(string(e.Race)); err != nil {
			return fmt.Errorf("%w: set %d: %w", ErrInvalidLineup, e.SetNumber, err)
		}
	}
	return nil
}
