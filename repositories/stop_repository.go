package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside-dev/bracket-engine/models"
)

var ErrStopNotFound = errors.New("stop not found")

type StopRepository interface {
	Create(ctx context.Context, stop *models.Stop) error
	GetByID(ctx context.Context, id int) (*models.Stop, error)
	List(ctx context.Context) ([]*models.Stop, error)
}

type postgresStopRepository struct {
	db *sql.DB
}

func NewPostgresStopRepository(db *sql.DB) StopRepository {
	return &postgresStopRepository{db: db}
}

func (r *postgresStopRepository) Create(ctx context.Context, stop *models.Stop) error {
	query := `
		INSERT INTO stops (name)
		VALUES ($1)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, stop.Name).Scan(&stop.ID, &stop.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stop: %w", err)
	}
	return nil
}

func (r *postgresStopRepository) GetByID(ctx context.Context, id int) (*models.Stop, error) {
	query := `
		SELECT id, name, created_at
		FROM stops
		WHERE id = $1`

	stop := &models.Stop{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&stop.ID, &stop.Name, &stop.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStopNotFound
		}
		return nil, fmt.Errorf("failed to scan stop by id %d: %w", id, err)
	}
	return stop, nil
}

func (r *postgresStopRepository) List(ctx context.Context) ([]*models.Stop, error) {
	query := `
		SELECT id, name, created_at
		FROM stops
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]*models.Stop, 0)
	for rows.Next() {
		stop := &models.Stop{}
		if err := rows.Scan(&stop.ID, &stop.Name, &stop.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stop row: %w", err)
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}
