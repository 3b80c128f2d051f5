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
	ErrRoundNotFound    = errors.New("round not found")
	ErrRoundStopInvalid = errors.New("round references an unknown stop")
)

type RoundRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, rounds []*models.Round) error
	ListByStop(ctx context.Context, exec SQLExecutor, stopID int) ([]*models.Round, error)
	DeleteByStop(ctx context.Context, exec SQLExecutor, stopID int) (int64, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch вставляет раунды по одному в порядке Sequence, заполняя ID.
// Генерация и так выполняется в одной транзакции, пакетная вставка с
// RETURNING по нескольким строкам выигрыша не даёт.
func (r *postgresRoundRepository) CreateBatch(ctx context.Context, exec SQLExecutor, rounds []*models.Round) error {
	query := `
		INSERT INTO rounds (stop_id, segment, depth, sequence)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	executor := r.getExecutor(exec)
	for _, round := range rounds {
		err := executor.QueryRowContext(ctx, query,
			round.StopID,
			round.Segment,
			round.Depth,
			round.Sequence,
		).Scan(&round.ID)
		if err != nil {
			return r.handleRoundError(err)
		}
	}
	return nil
}

func (r *postgresRoundRepository) ListByStop(ctx context.Context, exec SQLExecutor, stopID int) ([]*models.Round, error) {
	query := `
		SELECT id, stop_id, segment, depth, sequence
		FROM rounds
		WHERE stop_id = $1
		ORDER BY sequence ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, stopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round := &models.Round{}
		if err := rows.Scan(
			&round.ID,
			&round.StopID,
			&round.Segment,
			&round.Depth,
			&round.Sequence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// DeleteByStop удаляет все раунды этапа; матчи и игры уходят каскадом по
// внешним ключам.
func (r *postgresRoundRepository) DeleteByStop(ctx context.Context, exec SQLExecutor, stopID int) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM rounds WHERE stop_id = $1`, stopID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "rounds_stop_id_fkey" {
			return ErrRoundStopInvalid
		}
	}
	return err
}
