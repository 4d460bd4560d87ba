package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/pkg/logger"
	"github.com/example/leaguedesk/pkg/metrics"
)

const uniqueViolation = pq.ErrorCode("23505")

// SQLStore implements Store on PostgreSQL via sqlx.
type SQLStore struct {
	db  *sqlx.DB
	log logger.Logger
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{log: logger.Named("repository")}
	for _, opt := range opts {
		opt(s)
	}

	if s.db == nil {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
		s.db = db
	}
	return s, nil
}

// Ping verifies the connection is still usable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// observe records per-operation latency and error counts. Deferred with a
// pointer to the named return so the final error is seen.
func observe(op string, start time.Time, errp *error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
	if err := *errp; err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
		metrics.RecordStoreError(op)
	}
}

type scheduledSetRow struct {
	Week        int    `db:"week"`
	MatchNumber int    `db:"match_number"`
	SetNumber   int    `db:"set_number"`
	HomeTeamID  int    `db:"home_team_id"`
	HomeTeam    string `db:"home_team"`
	HomePlayer  string `db:"home_player"`
	HomeRace    string `db:"home_race"`
	AwayTeamID  int    `db:"away_team_id"`
	AwayTeam    string `db:"away_team"`
	AwayPlayer  string `db:"away_player"`
	AwayRace    string `db:"away_race"`
	MapName     string `db:"map_name"`
}

const listScheduledSetsQuery = `
SELECT m.week, m.match_number, mp.set_number,
       m.home_team_id, th.name AS home_team, ph.name AS home_player, lh.race AS home_race,
       m.away_team_id, ta.name AS away_team, pa.name AS away_player, la.race AS away_race,
       mp.map_name
FROM matches m
JOIN maps mp ON mp.week = m.week
JOIN teams th ON th.id = m.home_team_id
JOIN teams ta ON ta.id = m.away_team_id
JOIN lineup lh ON lh.week = m.week AND lh.team_id = m.home_team_id AND lh.set_number = mp.set_number
JOIN lineup la ON la.week = m.week AND la.team_id = m.away_team_id AND la.set_number = mp.set_number
JOIN players ph ON ph.id = lh.player_id
JOIN players pa ON pa.id = la.player_id
WHERE m.week BETWEEN $1 AND $2
ORDER BY m.week, m.match_number, mp.set_number`

// ListScheduledSets joins schedule, map pool, lineups, and rosters into
// candidate sets. The ace set has no lineup row, so it never appears here.
func (s *SQLStore) ListScheduledSets(ctx context.Context, weekMin, weekMax int) (_ []model.ScheduledSet, err error) {
	defer observe("list_scheduled_sets", time.Now(), &err)

	var rows []scheduledSetRow
	if err = s.db.SelectContext(ctx, &rows, listScheduledSetsQuery, weekMin, weekMax); err != nil {
		return nil, fmt.Errorf("%w: list scheduled sets: %w", ErrStore, err)
	}

	sets := make([]model.ScheduledSet, 0, len(rows))
	for _, r := range rows {
		set := model.ScheduledSet{
			SetKey:     model.SetKey{Week: r.Week, MatchNumber: r.MatchNumber, SetNumber: r.SetNumber},
			HomeTeamID: r.HomeTeamID,
			HomeTeam:   r.HomeTeam,
			HomePlayer: r.HomePlayer,
			HomeRace:   model.Race(r.HomeRace),
			AwayTeamID: r.AwayTeamID,
			AwayTeam:   r.AwayTeam,
			AwayPlayer: r.AwayPlayer,
			AwayRace:   model.Race(r.AwayRace),
			MapName:    r.MapName,
		}
		if vErr := set.Validate(); vErr != nil {
			s.log.Warn(ctx, "skipping malformed scheduled set",
				logger.String("key", set.SetKey.String()),
				logger.Error(vErr))
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// ListWeeks returns the distinct scheduled weeks in ascending order.
func (s *SQLStore) ListWeeks(ctx context.Context) (_ []int, err error) {
	defer observe("list_weeks", time.Now(), &err)

	weeks := []int{}
	if err = s.db.SelectContext(ctx, &weeks,
		`SELECT DISTINCT week FROM matches ORDER BY week`); err != nil {
		return nil, fmt.Errorf("%w: list weeks: %w", ErrStore, err)
	}
	return weeks, nil
}

// CheckSlot reports the state of a slot without writing. Used when an
// operation must distinguish unknown-game from already-recorded before it can
// even validate its own input.
func (s *SQLStore) CheckSlot(ctx context.Context, key model.SetKey) (err error) {
	defer observe("check_slot", time.Now(), &err)

	var known int
	err = s.db.GetContext(ctx, &known,
		`SELECT COUNT(*) FROM matches m
		 JOIN maps mp ON mp.week = m.week AND mp.set_number = $3
		 WHERE m.week = $1 AND m.match_number = $2`,
		key.Week, key.MatchNumber, key.SetNumber)
	if err != nil {
		return fmt.Errorf("%w: check slot: %w", ErrStore, err)
	}
	if known == 0 {
		return fmt.Errorf("%w: unknown game %s", ErrNotFound, key)
	}

	var recorded int
	err = s.db.GetContext(ctx, &recorded,
		`SELECT COUNT(*) FROM set_results
		 WHERE week = $1 AND match_number = $2 AND set_number = $3`,
		key.Week, key.MatchNumber, key.SetNumber)
	if err != nil {
		return fmt.Errorf("%w: check result: %w", ErrStore, err)
	}
	if recorded > 0 {
		return fmt.Errorf("%w: result for %s", ErrConflict, key)
	}
	return nil
}

// ConfirmSet writes one result row inside a transaction. Slot existence is
// checked first so an unknown game reports ErrNotFound rather than a foreign
// key failure; the UNIQUE constraint turns double-writes into ErrConflict.
func (s *SQLStore) ConfirmSet(ctx context.Context, result model.SetResult) (err error) {
	defer observe("confirm_set", time.Now(), &err)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = s.insertResult(ctx, tx, result); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	metrics.RecordConfirmation()
	return nil
}

// ConfirmMatch writes all supplied results and the optional ace pairing
// atomically. One duplicate rolls back everything.
func (s *SQLStore) ConfirmMatch(ctx context.Context, results []model.SetResult, ace *model.AceMatchRecord) (err error) {
	defer observe("confirm_match", time.Now(), &err)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, result := range results {
		if err = s.insertResult(ctx, tx, result); err != nil {
			return err
		}
	}

	if ace != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ace_matches (week, match_number, home_player, away_player, home_race, away_race)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ace.Week, ace.MatchNumber, ace.HomePlayer, ace.AwayPlayer, string(ace.HomeRace), string(ace.AwayRace))
		if err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("%w: ace pairing for week %d match %d", ErrConflict, ace.Week, ace.MatchNumber)
				return err
			}
			return fmt.Errorf("%w: insert ace pairing: %w", ErrStore, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	for range results {
		metrics.RecordConfirmation()
	}
	return nil
}

// insertResult checks the slot is scheduled, then inserts. Must run inside tx.
func (s *SQLStore) insertResult(ctx context.Context, tx *sqlx.Tx, result model.SetResult) error {
	var known int
	err := tx.GetContext(ctx, &known,
		`SELECT COUNT(*) FROM matches m
		 JOIN maps mp ON mp.week = m.week AND mp.set_number = $3
		 WHERE m.week = $1 AND m.match_number = $2`,
		result.Week, result.MatchNumber, result.SetNumber)
	if err != nil {
		return fmt.Errorf("%w: check slot: %w", ErrStore, err)
	}
	if known == 0 {
		return fmt.Errorf("%w: unknown game %s", ErrNotFound, result.SetKey)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO set_results (week, match_number, set_number, home_winner, away_winner, forfeit, replay_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		result.Week, result.MatchNumber, result.SetNumber,
		result.HomeWinner, result.AwayWinner, result.Forfeit, result.ReplayHash)
	if err != nil {
		if isUniqueViolation(err) {
			metrics.RecordConfirmationConflict()
			return fmt.Errorf("%w: result for %s", ErrConflict, result.SetKey)
		}
		return fmt.Errorf("%w: insert result: %w", ErrStore, err)
	}
	return nil
}

// MissingResults lists unrecorded slots for the given matches, ordered by
// (match, set).
func (s *SQLStore) MissingResults(ctx context.Context, week int, matchNumbers []int) (_ []model.SetKey, err error) {
	defer observe("missing_results", time.Now(), &err)

	if len(matchNumbers) == 0 {
		return []model.SetKey{}, nil
	}

	var rows []struct {
		MatchNumber int `db:"match_number"`
		SetNumber   int `db:"set_number"`
	}
	err = s.db.SelectContext(ctx, &rows,
		`SELECT m.match_number, s.set_number
		 FROM matches m
		 CROSS JOIN generate_series(1, $3) AS s(set_number)
		 WHERE m.week = $1 AND m.match_number = ANY($2)
		   AND NOT EXISTS (
		       SELECT 1 FROM set_results r
		       WHERE r.week = m.week AND r.match_number = m.match_number AND r.set_number = s.set_number)
		 ORDER BY m.match_number, s.set_number`,
		week, pq.Array(matchNumbers), model.SetsPerMatch)
	if err != nil {
		return nil, fmt.Errorf("%w: missing results: %w", ErrStore, err)
	}

	keys := make([]model.SetKey, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, model.SetKey{Week: week, MatchNumber: r.MatchNumber, SetNumber: r.SetNumber})
	}
	return keys, nil
}

// SubmitLineup replaces a team's lineup for the week. Player membership is
// verified against the roster before any write.
func (s *SQLStore) SubmitLineup(ctx context.Context, lineup model.LineupSubmission) (err error) {
	defer observe("submit_lineup", time.Now(), &err)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var teamCount int
	if err = tx.GetContext(ctx, &teamCount,
		`SELECT COUNT(*) FROM teams WHERE id = $1`, lineup.TeamID); err != nil {
		return fmt.Errorf("%w: check team: %w", ErrStore, err)
	}
	if teamCount == 0 {
		return fmt.Errorf("%w: team %d", ErrNotFound, lineup.TeamID)
	}

	ids := make([]int, 0, len(lineup.Entries))
	for _, e := range lineup.Entries {
		ids = append(ids, e.PlayerID)
	}
	var rostered int
	err = tx.GetContext(ctx, &rostered,
		`SELECT COUNT(*) FROM players WHERE team_id = $1 AND active AND id = ANY($2)`,
		lineup.TeamID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("%w: check roster: %w", ErrStore, err)
	}
	if rostered != len(ids) {
		return fmt.Errorf("%w: player not on team %d roster", ErrNotFound, lineup.TeamID)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM lineup WHERE week = $1 AND team_id = $2`,
		lineup.Week, lineup.TeamID); err != nil {
		return fmt.Errorf("%w: clear lineup: %w", ErrStore, err)
	}

	for _, e := range lineup.Entries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO lineup (week, team_id, set_number, player_id, race)
			 VALUES ($1, $2, $3, $4, $5)`,
			lineup.Week, lineup.TeamID, e.SetNumber, e.PlayerID, string(e.Race)); err != nil {
			return fmt.Errorf("%w: insert lineup entry: %w", ErrStore, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}
	return nil
}

// ListLineups returns a week's lineups joined with roster names.
func (s *SQLStore) ListLineups(ctx context.Context, week int) (_ []LineupRow, err error) {
	defer observe("list_lineups", time.Now(), &err)

	rows := []LineupRow{}
	err = s.db.SelectContext(ctx, &rows,
		`SELECT l.team_id, t.name AS team, l.set_number, l.player_id, p.name AS player, l.race
		 FROM lineup l
		 JOIN teams t ON t.id = l.team_id
		 JOIN players p ON p.id = l.player_id
		 WHERE l.week = $1
		 ORDER BY t.name, l.set_number`, week)
	if err != nil {
		return nil, fmt.Errorf("%w: list lineups: %w", ErrStore, err)
	}
	return rows, nil
}

// ListTeams returns every team ordered by name.
func (s *SQLStore) ListTeams(ctx context.Context) (_ []model.Team, err error) {
	defer observe("list_teams", time.Now(), &err)

	teams := []model.Team{}
	if err = s.db.SelectContext(ctx, &teams,
		`SELECT id, name FROM teams ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrStore, err)
	}
	return teams, nil
}

// ListPlayers returns a team's active roster ordered by name.
func (s *SQLStore) ListPlayers(ctx context.Context, teamID int) (_ []model.Player, err error) {
	defer observe("list_players", time.Now(), &err)

	players := []model.Player{}
	err = s.db.SelectContext(ctx, &players,
		`SELECT id, team_id, name, active FROM players WHERE team_id = $1 AND active ORDER BY name`,
		teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %w", ErrStore, err)
	}
	return players, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
