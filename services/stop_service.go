package services

import (
	"context"
	"errors"
	"strings"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/repositories"
)

var ErrStopNameRequired = errors.New("stop name is required")

type StopService interface {
	Create(ctx context.Context, name string) (*models.Stop, error)
	GetByID(ctx context.Context, stopID int) (*models.Stop, error)
	List(ctx context.Context) ([]*models.Stop, error)
}

type stopService struct {
	stopRepo repositories.StopRepository
}

func NewStopService(stopRepo repositories.StopRepository) StopService {
	return &stopService{stopRepo: stopRepo}
}

func (s *stopService) Create(ctx context.Context, name string) (*models.Stop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrStopNameRequired
	}
	stop := &models.Stop{Name: name}
	if err := s.stopRepo.Create(ctx, stop); err != nil {
		return nil, err
	}
	return stop, nil
}

func (s *stopService) GetByID(ctx context.Context, stopID int) (*models.Stop, error) {
	stop, err := s.stopRepo.GetByID(ctx, stopID)
	if err != nil {
		if errors.Is(err, repositories.ErrStopNotFound) {
			return nil, ErrStopNotFound
		}
		return nil, err
	}
	return stop, nil
}

func (s *stopService) List(ctx context.Context) ([]*models.Stop, error) {
	return s.stopRepo.List(ctx)
}
