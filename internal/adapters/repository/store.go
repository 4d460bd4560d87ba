// Package repository persists league state in PostgreSQL: the published
// schedule, confirmed set results, ace pairings, and weekly lineups.
package repository

import (
	"context"

	"github.com/example/leaguedesk/internal/domain/model"
)

// ScheduleStore reads the published schedule. The reconciliation engine does
// not own this data; it only joins it.
type ScheduleStore interface {
	// ListScheduledSets returns every scheduled set in the inclusive week
	// window, ordered by (week, match, set) ascending.
	ListScheduledSets(ctx context.Context, weekMin, weekMax int) ([]model.ScheduledSet, error)

	// ListWeeks returns every week with at least one scheduled match.
	ListWeeks(ctx context.Context) ([]int, error)
}

// ResultStore records confirmed outcomes.
type ResultStore interface {
	// CheckSlot reports ErrNotFound for an unscheduled slot and
	// ErrConflict when a result already exists. Advisory only: ConfirmSet
	// re-checks inside its transaction.
	CheckSlot(ctx context.Context, key model.SetKey) error

	// ConfirmSet writes one result row. ErrNotFound when the slot is not
	// on the schedule, ErrConflict when a result already exists.
	ConfirmSet(ctx context.Context, result model.SetResult) error

	// ConfirmMatch writes a full match's results and the optional ace
	// pairing in one transaction. Any duplicate aborts the whole write
	// with ErrConflict.
	ConfirmMatch(ctx context.Context, results []model.SetResult, ace *model.AceMatchRecord) error

	// MissingResults lists every (week, match, set) among the given
	// matches that still lacks a result row.
	MissingResults(ctx context.Context, week int, matchNumbers []int) ([]model.SetKey, error)
}

// LineupRow is one slot of a week's submitted lineups, joined with roster
// names for display.
type LineupRow struct {
	TeamID    int        `db:"team_id" json:"team_id"`
	Team      string     `db:"team" json:"team"`
	SetNumber int        `db:"set_number" json:"set_number"`
	PlayerID  int        `db:"player_id" json:"player_id"`
	Player    string     `db:"player" json:"player"`
	Race      model.Race `db:"race" json:"race"`
}

// LineupStore manages weekly lineups and roster reads.
type LineupStore interface {
	// SubmitLineup replaces a team's lineup for a week. ErrNotFound when
	// the team or a player is unknown or not on the team.
	SubmitLineup(ctx context.Context, lineup model.LineupSubmission) error

	// ListLineups returns the submitted lineups for a week, ordered by
	// (team, set).
	ListLineups(ctx context.Context, week int) ([]LineupRow, error)

	ListTeams(ctx context.Context) ([]model.Team, error)
	ListPlayers(ctx context.Context, teamID int) ([]model.Player, error)
}

// Store aggregates every persistence concern plus lifecycle.
type Store interface {
	ScheduleStore
	ResultStore
	LineupStore

	Ping(ctx context.Context) error
	Close() error
}
