package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchRoundInvalid       = errors.New("match references an unknown round")
	ErrMatchTeamInvalid        = errors.New("match references an unknown team")
	ErrMatchPredecessorInvalid = errors.New("match references an unknown predecessor")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetStopID(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	ListByStop(ctx context.Context, exec SQLExecutor, stopID int) ([]*models.Match, error)
	ListLiveByStop(ctx context.Context, stopID int) ([]*models.Match, error)
	UpdateDerivedState(ctx context.Context, exec SQLExecutor, match *models.Match) error
	SetForfeit(ctx context.Context, exec SQLExecutor, matchID int, side *models.Side) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, round_id, team_a_id, team_b_id, seed_a, seed_b,
	predecessor_a_id, predecessor_b_id, position, is_bye, forfeit_side,
	winner_id, tiebreak_status, tiebreak_winner_id, finals_state`

func scanMatch(scanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	err := scanner.Scan(
		&match.ID,
		&match.RoundID,
		&match.TeamAID,
		&match.TeamBID,
		&match.SeedA,
		&match.SeedB,
		&match.PredecessorAID,
		&match.PredecessorBID,
		&match.Position,
		&match.IsBye,
		&match.ForfeitSide,
		&match.WinnerID,
		&match.TiebreakStatus,
		&match.TiebreakWinnerID,
		&match.FinalsState,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(round_id, team_a_id, team_b_id, seed_a, seed_b,
			 predecessor_a_id, predecessor_b_id, position, is_bye,
			 winner_id, tiebreak_status, finals_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.RoundID,
		match.TeamAID,
		match.TeamBID,
		match.SeedA,
		match.SeedB,
		match.PredecessorAID,
		match.PredecessorBID,
		match.Position,
		match.IsBye,
		match.WinnerID,
		match.TiebreakStatus,
		match.FinalsState,
	).Scan(&match.ID)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// GetByIDForUpdate читает матч с блокировкой строки (SELECT ... FOR UPDATE).
// Конкурентные мутации одного матча сериализуются на этой блокировке ещё до
// чтения игр: второй писатель дожидается коммита первого и пересчитывает
// исход уже по его зафиксированному счёту.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	match, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// GetStopID возвращает этап, которому принадлежит матч.
func (r *postgresMatchRepository) GetStopID(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	query := `
		SELECT r.stop_id
		FROM matches m
		JOIN rounds r ON r.id = m.round_id
		WHERE m.id = $1`

	var stopID int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, matchID).Scan(&stopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMatchNotFound
		}
		return 0, fmt.Errorf("failed to resolve stop for match %d: %w", matchID, err)
	}
	return stopID, nil
}

// ListByStop возвращает все матчи этапа в топологическом порядке
// (по sequence раунда, затем по позиции).
func (r *postgresMatchRepository) ListByStop(ctx context.Context, exec SQLExecutor, stopID int) ([]*models.Match, error) {
	query := `
		SELECT ` + prefixedMatchColumns("m") + `
		FROM matches m
		JOIN rounds r ON r.id = m.round_id
		WHERE r.stop_id = $1
		ORDER BY r.sequence ASC, m.position ASC`

	return r.queryMatches(ctx, r.getExecutor(exec), query, stopID)
}

// ListLiveByStop возвращает матчи, в которые можно вносить счёт: оба
// участника известны, победителя ещё нет, не bye, и это не спящий
// reset-финал.
func (r *postgresMatchRepository) ListLiveByStop(ctx context.Context, stopID int) ([]*models.Match, error) {
	query := `
		SELECT ` + prefixedMatchColumns("m") + `
		FROM matches m
		JOIN rounds r ON r.id = m.round_id
		WHERE r.stop_id = $1
		  AND m.team_a_id IS NOT NULL
		  AND m.team_b_id IS NOT NULL
		  AND m.winner_id IS NULL
		  AND NOT m.is_bye
		  AND (m.finals_state IS NULL OR m.finals_state <> 'reset_pending')
		ORDER BY r.sequence ASC, m.position ASC`

	return r.queryMatches(ctx, r.db, query, stopID)
}

// UpdateDerivedState сохраняет поля, которые пересчитывает движок:
// слоты участников, победителя и состояние тай-брейка/финала.
func (r *postgresMatchRepository) UpdateDerivedState(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET team_a_id = $1,
		    team_b_id = $2,
		    winner_id = $3,
		    tiebreak_status = $4,
		    tiebreak_winner_id = $5,
		    finals_state = $6
		WHERE id = $7`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.TeamAID,
		match.TeamBID,
		match.WinnerID,
		match.TiebreakStatus,
		match.TiebreakWinnerID,
		match.FinalsState,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetForfeit(ctx context.Context, exec SQLExecutor, matchID int, side *models.Side) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET forfeit_side = $1 WHERE id = $2`, side, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func prefixedMatchColumns(alias string) string {
	return alias + `.id, ` + alias + `.round_id, ` + alias + `.team_a_id, ` + alias + `.team_b_id, ` +
		alias + `.seed_a, ` + alias + `.seed_b, ` + alias + `.predecessor_a_id, ` + alias + `.predecessor_b_id, ` +
		alias + `.position, ` + alias + `.is_bye, ` + alias + `.forfeit_side, ` + alias + `.winner_id, ` +
		alias + `.tiebreak_status, ` + alias + `.tiebreak_winner_id, ` + alias + `.finals_state`
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_round_id_fkey":
			return ErrMatchRoundInvalid
		case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_winner_id_fkey", "matches_tiebreak_winner_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_predecessor_a_id_fkey", "matches_predecessor_b_id_fkey":
			return ErrMatchPredecessorInvalid
		}
	}
	return err
}
