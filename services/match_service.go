package services

import (
	"context"
	"errors"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/repositories"
)

type MatchService interface {
	ListLive(ctx context.Context, stopID int) ([]*models.Match, error)
	GetWithGames(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	gameRepo  repositories.GameRepository
}

func NewMatchService(matchRepo repositories.MatchRepository, gameRepo repositories.GameRepository) MatchService {
	return &matchService{matchRepo: matchRepo, gameRepo: gameRepo}
}

// ListLive возвращает матчи, готовые к внесению счёта: оба участника
// известны, победителя нет, спящий reset-финал не показывается.
func (s *matchService) ListLive(ctx context.Context, stopID int) ([]*models.Match, error) {
	return s.matchRepo.ListLiveByStop(ctx, stopID)
}

func (s *matchService) GetWithGames(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	games, err := s.gameRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	match.Games = games
	return match, nil
}
