package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/repositories"
)

var (
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameConflict = errors.New("team name is already in use")
	ErrTeamSeedConflict = errors.New("seed is already assigned to another team")
)

type TeamService interface {
	Create(ctx context.Context, stopID int, name string, seed *int, club *string) (*models.Team, error)
	Update(ctx context.Context, teamID int, name string, seed *int, club *string) (*models.Team, error)
	Delete(ctx context.Context, teamID int) error
	ListByStop(ctx context.Context, stopID int) ([]*models.Team, error)
}

type teamService struct {
	db       *sql.DB
	teamRepo repositories.TeamRepository
}

func NewTeamService(db *sql.DB, teamRepo repositories.TeamRepository) TeamService {
	return &teamService{db: db, teamRepo: teamRepo}
}

func (s *teamService) Create(ctx context.Context, stopID int, name string, seed *int, club *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{StopID: stopID, Name: name, Seed: seed, Club: club}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) Update(ctx context.Context, teamID int, name string, seed *int, club *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	team.Name = name
	team.Seed = seed
	team.Club = club
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, teamID int) error {
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) ListByStop(ctx context.Context, stopID int) ([]*models.Team, error) {
	return s.teamRepo.ListByStop(ctx, stopID)
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamSeedConflict):
		return ErrTeamSeedConflict
	case errors.Is(err, repositories.ErrTeamStopInvalid):
		return ErrStopNotFound
	default:
		return err
	}
}
