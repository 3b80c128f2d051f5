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
	ErrGameNotFound     = errors.New("game not found")
	ErrGameMatchInvalid = errors.New("game references an unknown match")
	ErrGameSlotConflict = errors.New("game slot already exists for the match")
)

type GameRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, games []*models.Game) error
	GetByMatchAndSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.GameSlot) (*models.Game, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Game, error)
	ListByStop(ctx context.Context, exec SQLExecutor, stopID int) (map[int][]models.Game, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, gameID int, teamAScore, teamBScore *int, isComplete bool) error
	Delete(ctx context.Context, exec SQLExecutor, gameID int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGameRepository) CreateBatch(ctx context.Context, exec SQLExecutor, games []*models.Game) error {
	query := `
		INSERT INTO games (match_id, slot, team_a_score, team_b_score, is_complete)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	executor := r.getExecutor(exec)
	for _, game := range games {
		err := executor.QueryRowContext(ctx, query,
			game.MatchID,
			game.Slot,
			game.TeamAScore,
			game.TeamBScore,
			game.IsComplete,
		).Scan(&game.ID)
		if err != nil {
			return r.handleGameError(err)
		}
	}
	return nil
}

func (r *postgresGameRepository) GetByMatchAndSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.GameSlot) (*models.Game, error) {
	query := `
		SELECT id, match_id, slot, team_a_score, team_b_score, is_complete
		FROM games
		WHERE match_id = $1 AND slot = $2`

	game := &models.Game{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, matchID, slot).Scan(
		&game.ID,
		&game.MatchID,
		&game.Slot,
		&game.TeamAScore,
		&game.TeamBScore,
		&game.IsComplete,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game for match %d slot %s: %w", matchID, slot, err)
	}
	return game, nil
}

func (r *postgresGameRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Game, error) {
	query := `
		SELECT id, match_id, slot, team_a_score, team_b_score, is_complete
		FROM games
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListByStop возвращает игры всех матчей этапа, сгруппированные по матчу.
func (r *postgresGameRepository) ListByStop(ctx context.Context, exec SQLExecutor, stopID int) (map[int][]models.Game, error) {
	query := `
		SELECT g.id, g.match_id, g.slot, g.team_a_score, g.team_b_score, g.is_complete
		FROM games g
		JOIN matches m ON m.id = g.match_id
		JOIN rounds r ON r.id = m.round_id
		WHERE r.stop_id = $1
		ORDER BY g.match_id ASC, g.id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, stopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games, err := scanGames(rows)
	if err != nil {
		return nil, err
	}
	byMatch := make(map[int][]models.Game)
	for _, game := range games {
		byMatch[game.MatchID] = append(byMatch[game.MatchID], game)
	}
	return byMatch, nil
}

func (r *postgresGameRepository) UpdateScore(ctx context.Context, exec SQLExecutor, gameID int, teamAScore, teamBScore *int, isComplete bool) error {
	query := `
		UPDATE games
		SET team_a_score = $1, team_b_score = $2, is_complete = $3
		WHERE id = $4`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, teamAScore, teamBScore, isComplete, gameID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, exec SQLExecutor, gameID int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func scanGames(rows *sql.Rows) ([]models.Game, error) {
	games := make([]models.Game, 0)
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(
			&game.ID,
			&game.MatchID,
			&game.Slot,
			&game.TeamAScore,
			&game.TeamBScore,
			&game.IsComplete,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "games_match_id_fkey":
			return ErrGameMatchInvalid
		case "games_match_id_slot_key":
			return ErrGameSlotConflict
		}
	}
	return err
}
