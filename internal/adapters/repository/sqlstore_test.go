package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/example/leaguedesk/internal/domain/model"
)

type SQLStoreTestSuite struct {
	suite.Suite
	db    *sqlx.DB
	mock  sqlmock.Sqlmock
	store *SQLStore
}

func (s *SQLStoreTestSuite) SetupTest() {
	mockDB, mock, err := sqlmock.New()
	require.NoError(s.T(), err)

	s.db = sqlx.NewDb(mockDB, "sqlmock")
	s.mock = mock

	store, err := New(context.Background(), "", WithDB(s.db))
	require.NoError(s.T(), err)
	s.store = store
}

func (s *SQLStoreTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *SQLStoreTestSuite) TestListScheduledSets() {
	rows := sqlmock.NewRows([]string{
		"week", "match_number", "set_number",
		"home_team_id", "home_team", "home_player", "home_race",
		"away_team_id", "away_team", "away_player", "away_race",
		"map_name",
	}).
		AddRow(1, 1, 1, 10, "Team Liquid", "implausible.931", "P", 20, "Root", "ShamWOW.657", "Z", "Xel'Naga Caverns").
		AddRow(1, 1, 2, 10, "Team Liquid", "Fredo", "T", 20, "Root", "gg.Tosh", "P", "Metalopolis")

	s.mock.ExpectQuery(`SELECT m\.week, m\.match_number, mp\.set_number`).
		WithArgs(1, 2).
		WillReturnRows(rows)

	sets, err := s.store.ListScheduledSets(context.Background(), 1, 2)

	assert.NoError(s.T(), err)
	require.Len(s.T(), sets, 2)
	assert.Equal(s.T(), "implausible.931", sets[0].HomePlayer)
	assert.Equal(s.T(), model.RaceZerg, sets[0].AwayRace)
	assert.Equal(s.T(), 2, sets[1].SetNumber)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestListScheduledSets_SkipsMalformedRow() {
	rows := sqlmock.NewRows([]string{
		"week", "match_number", "set_number",
		"home_team_id", "home_team", "home_player", "home_race",
		"away_team_id", "away_team", "away_player", "away_race",
		"map_name",
	}).
		AddRow(1, 1, 1, 10, "Team Liquid", "implausible.931", "X", 20, "Root", "ShamWOW.657", "Z", "Xel'Naga Caverns")

	s.mock.ExpectQuery(`SELECT m\.week, m\.match_number, mp\.set_number`).
		WithArgs(1, 1).
		WillReturnRows(rows)

	sets, err := s.store.ListScheduledSets(context.Background(), 1, 1)

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), sets)
}

func (s *SQLStoreTestSuite) TestConfirmSet_Success() {
	result, err := model.NewSetResult(model.SetKey{Week: 1, MatchNumber: 1, SetNumber: 1}, model.WinnerHome, false, "deadbeef")
	require.NoError(s.T(), err)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectExec(`INSERT INTO set_results`).
		WithArgs(1, 1, 1, true, false, false, "deadbeef").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err = s.store.ConfirmSet(context.Background(), result)

	assert.NoError(s.T(), err)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestConfirmSet_UnknownGame() {
	result, err := model.NewSetResult(model.SetKey{Week: 9, MatchNumber: 9, SetNumber: 1}, model.WinnerHome, false, "")
	require.NoError(s.T(), err)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(9, 9, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectRollback()

	err = s.store.ConfirmSet(context.Background(), result)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestConfirmSet_DuplicateIsConflict() {
	result, err := model.NewSetResult(model.SetKey{Week: 1, MatchNumber: 1, SetNumber: 1}, model.WinnerAway, false, "")
	require.NoError(s.T(), err)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectExec(`INSERT INTO set_results`).
		WithArgs(1, 1, 1, false, true, false, "").
		WillReturnError(&pq.Error{Code: "23505"})
	s.mock.ExpectRollback()

	err = s.store.ConfirmSet(context.Background(), result)

	assert.ErrorIs(s.T(), err, ErrConflict)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestConfirmMatch_RollsBackOnConflict() {
	first, err := model.NewSetResult(model.SetKey{Week: 1, MatchNumber: 2, SetNumber: 1}, model.WinnerHome, false, "")
	require.NoError(s.T(), err)
	second, err := model.NewSetResult(model.SetKey{Week: 1, MatchNumber: 2, SetNumber: 2}, model.WinnerAway, false, "")
	require.NoError(s.T(), err)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectExec(`INSERT INTO set_results`).
		WithArgs(1, 2, 1, true, false, false, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectExec(`INSERT INTO set_results`).
		WithArgs(1, 2, 2, false, true, false, "").
		WillReturnError(&pq.Error{Code: "23505"})
	s.mock.ExpectRollback()

	err = s.store.ConfirmMatch(context.Background(), []model.SetResult{first, second}, nil)

	assert.ErrorIs(s.T(), err, ErrConflict)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestConfirmMatch_WithAcePairing() {
	decider, err := model.NewSetResult(model.SetKey{Week: 1, MatchNumber: 3, SetNumber: 5}, model.WinnerHome, false, "cafe")
	require.NoError(s.T(), err)
	ace := &model.AceMatchRecord{
		Week: 1, MatchNumber: 3,
		HomePlayer: "IdrA", AwayPlayer: "Huk",
		HomeRace: model.RaceZerg, AwayRace: model.RaceProtoss,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 3, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectExec(`INSERT INTO set_results`).
		WithArgs(1, 3, 5, true, false, false, "cafe").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO ace_matches`).
		WithArgs(1, 3, "IdrA", "Huk", "Z", "P").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err = s.store.ConfirmMatch(context.Background(), []model.SetResult{decider}, ace)

	assert.NoError(s.T(), err)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestCheckSlot() {
	key := model.SetKey{Week: 1, MatchNumber: 1, SetNumber: 1}

	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(1, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM set_results`).
		WithArgs(1, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := s.store.CheckSlot(context.Background(), key)

	assert.ErrorIs(s.T(), err, ErrConflict)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestCheckSlot_Unknown() {
	key := model.SetKey{Week: 7, MatchNumber: 1, SetNumber: 1}

	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches m`).
		WithArgs(7, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := s.store.CheckSlot(context.Background(), key)

	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *SQLStoreTestSuite) TestMissingResults() {
	rows := sqlmock.NewRows([]string{"match_number", "set_number"}).
		AddRow(1, 2).
		AddRow(1, 3).
		AddRow(1, 4).
		AddRow(1, 5)

	s.mock.ExpectQuery(`SELECT m\.match_number, s\.set_number`).
		WithArgs(1, pq.Array([]int{1}), model.SetsPerMatch).
		WillReturnRows(rows)

	keys, err := s.store.MissingResults(context.Background(), 1, []int{1})

	assert.NoError(s.T(), err)
	require.Len(s.T(), keys, 4)
	assert.Equal(s.T(), model.SetKey{Week: 1, MatchNumber: 1, SetNumber: 2}, keys[0])
	assert.Equal(s.T(), model.SetKey{Week: 1, MatchNumber: 1, SetNumber: 5}, keys[3])
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestMissingResults_NoMatches() {
	keys, err := s.store.MissingResults(context.Background(), 1, nil)

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), keys)
}

func (s *SQLStoreTestSuite) TestSubmitLineup() {
	lineup := model.LineupSubmission{
		Week:   2,
		TeamID: 10,
		Entries: []model.LineupEntry{
			{SetNumber: 1, PlayerID: 101, Race: model.RaceTerran},
			{SetNumber: 2, PlayerID: 102, Race: model.RaceZerg},
			{SetNumber: 3, PlayerID: 103, Race: model.RaceProtoss},
			{SetNumber: 4, PlayerID: 104, Race: model.RaceRandom},
		},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teams WHERE id = \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players WHERE team_id = \$1`).
		WithArgs(10, pq.Array([]int{101, 102, 103, 104})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	s.mock.ExpectExec(`DELETE FROM lineup WHERE week = \$1 AND team_id = \$2`).
		WithArgs(2, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, e := range lineup.Entries {
		s.mock.ExpectExec(`INSERT INTO lineup`).
			WithArgs(2, 10, e.SetNumber, e.PlayerID, string(e.Race)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	s.mock.ExpectCommit()

	err := s.store.SubmitLineup(context.Background(), lineup)

	assert.NoError(s.T(), err)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestSubmitLineup_PlayerNotOnRoster() {
	lineup := model.LineupSubmission{
		Week:   2,
		TeamID: 10,
		Entries: []model.LineupEntry{
			{SetNumber: 1, PlayerID: 101, Race: model.RaceTerran},
			{SetNumber: 2, PlayerID: 102, Race: model.RaceZerg},
			{SetNumber: 3, PlayerID: 103, Race: model.RaceProtoss},
			{SetNumber: 4, PlayerID: 999, Race: model.RaceRandom},
		},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teams WHERE id = \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players WHERE team_id = \$1`).
		WithArgs(10, pq.Array([]int{101, 102, 103, 999})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	s.mock.ExpectRollback()

	err := s.store.SubmitLineup(context.Background(), lineup)

	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *SQLStoreTestSuite) TestListWeeks() {
	s.mock.ExpectQuery(`SELECT DISTINCT week FROM matches ORDER BY week`).
		WillReturnRows(sqlmock.NewRows([]string{"week"}).AddRow(1).AddRow(2).AddRow(3))

	weeks, err := s.store.ListWeeks(context.Background())

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []int{1, 2, 3}, weeks)
}

func (s *SQLStoreTestSuite) TestListLineups() {
	rows := sqlmock.NewRows([]string{"team_id", "team", "set_number", "player_id", "player", "race"}).
		AddRow(10, "Team Liquid", 1, 101, "implausible", "P").
		AddRow(10, "Team Liquid", 2, 102, "Fredo", "T")

	s.mock.ExpectQuery(`SELECT l\.team_id, t\.name AS team`).
		WithArgs(2).
		WillReturnRows(rows)

	lineups, err := s.store.ListLineups(context.Background(), 2)

	assert.NoError(s.T(), err)
	require.Len(s.T(), lineups, 2)
	assert.Equal(s.T(), "Team Liquid", lineups[0].Team)
	assert.Equal(s.T(), model.RaceTerran, lineups[1].Race)
}

func TestSQLStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLStoreTestSuite))
}
