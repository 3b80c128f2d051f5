package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside-dev/bracket-engine/brackets"
	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/repositories"
	"github.com/courtside-dev/bracket-engine/storage"
	"github.com/courtside-dev/bracket-engine/ws"
	"golang.org/x/sync/errgroup"
)

// GenerationSummary возвращается после генерации сетки этапа.
type GenerationSummary struct {
	StopID       int    `json:"stop_id"`
	TeamCount    int    `json:"team_count"`
	ByeCount     int    `json:"bye_count"`
	RoundCount   int    `json:"round_count"`
	MatchCount   int    `json:"match_count"`
	WinnerRounds int    `json:"winner_rounds"`
	LoserRounds  int    `json:"loser_rounds"`
	ArchiveURL   string `json:"archive_url,omitempty"`
}

// StopBracket - полная сетка этапа для выдачи наружу.
type StopBracket struct {
	StopID  int             `json:"stop_id"`
	Teams   []*models.Team  `json:"teams"`
	Rounds  []*models.Round `json:"rounds"`
	Matches []*models.Match `json:"matches"`
}

type BracketService interface {
	Generate(ctx context.Context, stopID int) (*GenerationSummary, error)
	GetStopBracket(ctx context.Context, stopID int) (*StopBracket, error)
}

type bracketService struct {
	db        *sql.DB
	teamRepo  repositories.TeamRepository
	roundRepo repositories.RoundRepository
	matchRepo repositories.MatchRepository
	gameRepo  repositories.GameRepository
	archiver  *storage.BracketArchiver
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	gameRepo repositories.GameRepository,
	archiver *storage.BracketArchiver,
	hub *ws.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:        db,
		teamRepo:  teamRepo,
		roundRepo: roundRepo,
		matchRepo: matchRepo,
		gameRepo:  gameRepo,
		archiver:  archiver,
		hub:       hub,
		logger:    logger,
	}
}

// Generate строит сетку double elimination для этапа с нуля. Существующая
// сетка перед удалением архивируется в объектное хранилище: регенерация
// уничтожает внесённые результаты, и архив - единственный путь назад.
// Вся запись идёт в одной транзакции; bye первого раунда решаются при
// генерации, их каскад выполняет тот же Propagate, что и живой путь.
func (s *bracketService) Generate(ctx context.Context, stopID int) (*GenerationSummary, error) {
	teams, err := s.teamRepo.ListByStop(ctx, stopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stop %d: %w", stopID, err)
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	teamIDs := make([]int, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	topology, err := brackets.GenerateDoubleElimination(teamIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughTeams
		}
		return nil, fmt.Errorf("failed to generate topology for stop %d: %w", stopID, err)
	}

	archiveURL, err := s.archiveExisting(ctx, stopID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after generation error",
					"stop_id", stopID, "error", txErr, "rollback_error", rbErr)
			}
		}
	}()

	if _, txErr = s.roundRepo.DeleteByStop(ctx, tx, stopID); txErr != nil {
		return nil, fmt.Errorf("failed to clear previous bracket for stop %d: %w", stopID, txErr)
	}

	rounds, matches, txErr := s.insertTopology(ctx, tx, stopID, topology)
	if txErr != nil {
		return nil, txErr
	}

	// Добить каскад bye: сгенерированные победители первого раунда должны
	// дойти до слотов преемников тем же путём, что и живые результаты.
	graph, txErr := brackets.NewGraph(rounds, matches)
	if txErr != nil {
		return nil, fmt.Errorf("generated bracket is not a valid graph: %w", txErr)
	}
	for _, m := range matches {
		if m.WinnerID == nil {
			continue
		}
		prop, propErr := brackets.Propagate(graph, m.ID)
		if propErr != nil {
			txErr = propErr
			return nil, txErr
		}
		if len(prop.Conflicts) > 0 {
			txErr = fmt.Errorf("generation produced conflicting slots: %v", prop.Conflicts)
			return nil, txErr
		}
		for _, id := range prop.Updated {
			if txErr = s.matchRepo.UpdateDerivedState(ctx, tx, graph.Match(id)); txErr != nil {
				return nil, txErr
			}
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit bracket for stop %d: %w", stopID, txErr)
	}

	summary := &GenerationSummary{
		StopID:       stopID,
		TeamCount:    len(teams),
		ByeCount:     topology.ByeCount,
		RoundCount:   len(rounds),
		MatchCount:   len(matches),
		WinnerRounds: topology.WinnerRounds,
		LoserRounds:  topology.LoserRounds,
		ArchiveURL:   archiveURL,
	}
	s.logger.Info("bracket generated",
		"stop_id", stopID, "teams", summary.TeamCount, "byes", summary.ByeCount,
		"rounds", summary.RoundCount, "matches", summary.MatchCount)
	s.hub.BroadcastToRoom(ws.StopRoom(stopID), ws.Event{
		Type:    ws.EventBracketGenerated,
		Payload: summary,
	})
	return summary, nil
}

// archiveExisting выгружает текущую сетку этапа в объектное хранилище.
// Отсутствие сетки - не ошибка; недоступное хранилище - ошибка, без
// архива регенерацию выполнять нельзя.
func (s *bracketService) archiveExisting(ctx context.Context, stopID int) (string, error) {
	existing, err := s.GetStopBracket(ctx, stopID)
	if err != nil {
		if errors.Is(err, ErrBracketNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load existing bracket for stop %d: %w", stopID, err)
	}

	games, err := s.gameRepo.ListByStop(ctx, nil, stopID)
	if err != nil {
		return "", fmt.Errorf("failed to load games for archive of stop %d: %w", stopID, err)
	}
	for _, m := range existing.Matches {
		m.Games = games[m.ID]
	}

	url, err := s.archiver.Archive(ctx, stopID, existing)
	if err != nil {
		return "", fmt.Errorf("failed to archive bracket for stop %d: %w", stopID, err)
	}
	s.logger.Info("previous bracket archived", "stop_id", stopID, "url", url)
	return url, nil
}

func (s *bracketService) insertTopology(ctx context.Context, tx *sql.Tx, stopID int, t *brackets.Topology) ([]*models.Round, []*models.Match, error) {
	rounds := make([]*models.Round, len(t.Rounds))
	for i, tr := range t.Rounds {
		rounds[i] = &models.Round{
			StopID:   stopID,
			Segment:  tr.Segment,
			Depth:    tr.Depth,
			Sequence: tr.Sequence,
		}
	}
	if err := s.roundRepo.CreateBatch(ctx, tx, rounds); err != nil {
		return nil, nil, fmt.Errorf("failed to insert rounds for stop %d: %w", stopID, err)
	}

	// Матчи вставляются в топологическом порядке, поэтому ID предшественника
	// всегда известен к моменту вставки преемника.
	matches := make([]*models.Match, len(t.Matches))
	for i := range t.Matches {
		tm := &t.Matches[i]
		match := &models.Match{
			RoundID:        rounds[tm.RoundIdx].ID,
			TeamAID:        tm.TeamAID,
			TeamBID:        tm.TeamBID,
			SeedA:          tm.SeedA,
			SeedB:          tm.SeedB,
			Position:       tm.Position,
			IsBye:          tm.IsBye,
			WinnerID:       tm.WinnerID,
			TiebreakStatus: models.TiebreakNone,
			FinalsState:    tm.FinalsState,
		}
		if tm.PredA != nil {
			predID := matches[*tm.PredA].ID
			match.PredecessorAID = &predID
		}
		if tm.PredB != nil {
			predID := matches[*tm.PredB].ID
			match.PredecessorBID = &predID
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, nil, fmt.Errorf("failed to insert match %d for stop %d: %w", i, stopID, err)
		}
		matches[i] = match

		// Играбельный матч получает стандартные слоты сразу; bye и спящий
		// reset-финал игр не имеют.
		if !tm.IsBye && !isDormantReset(match) {
			games := make([]*models.Game, len(models.StandardSlots))
			for j, slot := range models.StandardSlots {
				games[j] = &models.Game{MatchID: match.ID, Slot: slot}
			}
			if err := s.gameRepo.CreateBatch(ctx, tx, games); err != nil {
				return nil, nil, fmt.Errorf("failed to insert games for match %d: %w", match.ID, err)
			}
		}
	}
	return rounds, matches, nil
}

func isDormantReset(m *models.Match) bool {
	return m.FinalsState != nil && *m.FinalsState == models.FinalsResetPending
}

// GetStopBracket загружает команды, раунды и матчи этапа параллельно.
func (s *bracketService) GetStopBracket(ctx context.Context, stopID int) (*StopBracket, error) {
	bracket := &StopBracket{StopID: stopID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.teamRepo.ListByStop(gCtx, stopID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		bracket.Teams = teams
		return nil
	})
	g.Go(func() error {
		rounds, err := s.roundRepo.ListByStop(gCtx, nil, stopID)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		bracket.Rounds = rounds
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByStop(gCtx, nil, stopID)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		bracket.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(bracket.Rounds) == 0 {
		return nil, ErrBracketNotFound
	}
	return bracket, nil
}
