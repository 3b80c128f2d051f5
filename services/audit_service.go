package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/courtside-dev/bracket-engine/brackets"
	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/repositories"
	"github.com/courtside-dev/bracket-engine/ws"
)

// AuditReport - результат проверки этапа. Apply=false: только находки.
type AuditReport struct {
	StopID     int                     `json:"stop_id"`
	Drifts     []brackets.Drift        `json:"drifts"`
	Repaired   []int                   `json:"repaired_match_ids,omitempty"`
	Conflicts  []brackets.SlotConflict `json:"conflicts,omitempty"`
	ChampionID *int                    `json:"champion_id,omitempty"`
}

type AuditService interface {
	Run(ctx context.Context, stopID int, apply bool) (*AuditReport, error)
}

type auditService struct {
	db        *sql.DB
	roundRepo repositories.RoundRepository
	matchRepo repositories.MatchRepository
	gameRepo  repositories.GameRepository
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewAuditService(
	db *sql.DB,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	gameRepo repositories.GameRepository,
	hub *ws.Hub,
	logger *slog.Logger,
) AuditService {
	return &auditService{
		db:        db,
		roundRepo: roundRepo,
		matchRepo: matchRepo,
		gameRepo:  gameRepo,
		hub:       hub,
		logger:    logger,
	}
}

// Run перепроверяет этап: каждое производное поле выводится заново из игр
// и графа предшественников. С apply=true выводимые расхождения сразу
// чинятся в одной транзакции; конфликтные слоты остаются нетронутыми и
// попадают в отчёт.
func (s *auditService) Run(ctx context.Context, stopID int, apply bool) (*AuditReport, error) {
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
				s.logger.Error("rollback failed after audit error",
					"stop_id", stopID, "error", txErr, "rollback_error", rbErr)
			}
		}
	}()

	rounds, txErr := s.roundRepo.ListByStop(ctx, tx, stopID)
	if txErr != nil {
		return nil, txErr
	}
	if len(rounds) == 0 {
		txErr = ErrBracketNotFound
		return nil, txErr
	}
	matches, txErr := s.matchRepo.ListByStop(ctx, tx, stopID)
	if txErr != nil {
		return nil, txErr
	}
	gamesByMatch, txErr := s.gameRepo.ListByStop(ctx, tx, stopID)
	if txErr != nil {
		return nil, txErr
	}

	graph, txErr := brackets.NewGraph(rounds, matches)
	if txErr != nil {
		return nil, fmt.Errorf("stop %d bracket is not a valid graph: %w", stopID, txErr)
	}

	report := &AuditReport{
		StopID: stopID,
		Drifts: brackets.Audit(graph, gamesByMatch),
	}

	if !apply {
		if txErr = tx.Commit(); txErr != nil {
			return nil, txErr
		}
		return report, nil
	}

	repair, txErr := brackets.Repair(graph, gamesByMatch)
	if txErr != nil {
		return nil, txErr
	}
	for _, id := range repair.Updated {
		if txErr = s.matchRepo.UpdateDerivedState(ctx, tx, graph.Match(id)); txErr != nil {
			return nil, txErr
		}
	}
	for _, matchID := range repair.CreateTiebreakGames {
		tb := &models.Game{MatchID: matchID, Slot: models.SlotTiebreak}
		if txErr = s.gameRepo.CreateBatch(ctx, tx, []*models.Game{tb}); txErr != nil {
			return nil, txErr
		}
	}
	for _, gameID := range repair.DeleteGameIDs {
		if txErr = s.gameRepo.Delete(ctx, tx, gameID); txErr != nil {
			return nil, txErr
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit repair for stop %d: %w", stopID, txErr)
	}

	report.Repaired = repair.Updated
	report.Conflicts = repair.Conflicts
	report.ChampionID = repair.ChampionID

	if len(report.Repaired) > 0 {
		s.logger.Info("bracket repaired",
			"stop_id", stopID, "drifts", len(report.Drifts), "repaired", len(report.Repaired))
		s.hub.BroadcastToRoom(ws.StopRoom(stopID), ws.Event{
			Type:    ws.EventBracketRepaired,
			Payload: report,
		})
	}
	return report, nil
}
