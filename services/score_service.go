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
	"github.com/courtside-dev/bracket-engine/ws"
)

// ScoreUpdate описывает исход применения счёта: что изменилось и чем
// закончилось продвижение.
type ScoreUpdate struct {
	Match          *models.Match           `json:"match"`
	Games          []models.Game           `json:"games"`
	UpdatedMatches []*models.Match         `json:"updated_matches,omitempty"`
	Conflicts      []brackets.SlotConflict `json:"conflicts,omitempty"`
	ResetTriggered bool                    `json:"reset_triggered"`
	ChampionID     *int                    `json:"champion_id,omitempty"`
}

type ScoreService interface {
	SubmitScore(ctx context.Context, matchID int, slot models.GameSlot, teamAScore, teamBScore int) (*ScoreUpdate, error)
	SetForfeit(ctx context.Context, matchID int, side *models.Side) (*ScoreUpdate, error)
}

type scoreService struct {
	db        *sql.DB
	roundRepo repositories.RoundRepository
	matchRepo repositories.MatchRepository
	gameRepo  repositories.GameRepository
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewScoreService(
	db *sql.DB,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	gameRepo repositories.GameRepository,
	hub *ws.Hub,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		db:        db,
		roundRepo: roundRepo,
		matchRepo: matchRepo,
		gameRepo:  gameRepo,
		hub:       hub,
		logger:    logger,
	}
}

// SubmitScore вносит счёт одной игры и переинтерпретирует матч с нуля:
// большинство, тай-брейк, продвижение. Коррекция счёта уже решённого матча
// допустима и проходит тем же путём. Конфликт слота преемника не
// откатывает счёт: транзакция фиксируется, каскад за конфликтом
// останавливается, наружу уходит StructuralInconsistencyError.
func (s *scoreService) SubmitScore(ctx context.Context, matchID int, slot models.GameSlot, teamAScore, teamBScore int) (*ScoreUpdate, error) {
	if teamAScore < 0 || teamBScore < 0 {
		return nil, ErrScoreDataInvalid
	}

	return s.withMatchTx(ctx, matchID, func(tx *sql.Tx, match *models.Match) error {
		game, err := s.gameRepo.GetByMatchAndSlot(ctx, tx, matchID, slot)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				// Слот TIEBREAK существует только когда матч его требует.
				return ErrGameNotFound
			}
			return err
		}
		a, b := teamAScore, teamBScore
		return s.gameRepo.UpdateScore(ctx, tx, game.ID, &a, &b, true)
	})
}

// SetForfeit ставит или снимает (side == nil) неявку стороны матча.
func (s *scoreService) SetForfeit(ctx context.Context, matchID int, side *models.Side) (*ScoreUpdate, error) {
	if side != nil && *side != models.SideA && *side != models.SideB {
		return nil, ErrForfeitSideInvalid
	}

	return s.withMatchTx(ctx, matchID, func(tx *sql.Tx, match *models.Match) error {
		match.ForfeitSide = side
		return s.matchRepo.SetForfeit(ctx, tx, matchID, side)
	})
}

// withMatchTx выполняет мутацию матча и общий хвост: переинтерпретацию,
// согласование тай-брейка, продвижение и рассылку событий - в одной
// транзакции. Строка матча блокируется (FOR UPDATE) до чтения игр, поэтому
// конкурентные внесения счёта одного матча сериализуются: второй писатель
// ждёт коммита первого и переинтерпретирует матч по его свежему счёту.
func (s *scoreService) withMatchTx(ctx context.Context, matchID int, mutate func(tx *sql.Tx, match *models.Match) error) (*ScoreUpdate, error) {
	stopID, err := s.matchRepo.GetStopID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
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
				s.logger.Error("rollback failed after score error",
					"match_id", matchID, "error", txErr, "rollback_error", rbErr)
			}
		}
	}()

	match, txErr := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrMatchNotFound) {
			txErr = ErrMatchNotFound
		}
		return nil, txErr
	}
	if txErr = checkMatchWritable(match); txErr != nil {
		return nil, txErr
	}

	if txErr = mutate(tx, match); txErr != nil {
		return nil, txErr
	}

	update, txErr := s.reinterpret(ctx, tx, stopID, match)
	if txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit score for match %d: %w", matchID, txErr)
	}

	s.broadcast(stopID, update)

	if len(update.Conflicts) > 0 {
		return update, &StructuralInconsistencyError{MatchID: matchID, Conflicts: update.Conflicts}
	}
	return update, nil
}

func checkMatchWritable(m *models.Match) error {
	if m.IsBye {
		return ErrMatchNotLive
	}
	if m.FinalsState != nil && *m.FinalsState == models.FinalsResetPending {
		return ErrResetFinalDormant
	}
	if m.TeamAID == nil || m.TeamBID == nil {
		return ErrMatchNotLive
	}
	return nil
}

// reinterpret - общий хвост любой мутации счёта: заново вывести исход из
// игр, привести тай-брейк в соответствие, продвинуть результат по графу.
func (s *scoreService) reinterpret(ctx context.Context, tx *sql.Tx, stopID int, match *models.Match) (*ScoreUpdate, error) {
	games, err := s.gameRepo.ListByMatch(ctx, tx, match.ID)
	if err != nil {
		return nil, err
	}

	out := brackets.Evaluate(match, games)

	action := brackets.ReconcileTiebreak(match, games, out)
	if action.Changed {
		match.TiebreakStatus = action.Status
		match.TiebreakWinnerID = action.WinnerID
		if action.CreateGame {
			tb := &models.Game{MatchID: match.ID, Slot: models.SlotTiebreak}
			if err := s.gameRepo.CreateBatch(ctx, tx, []*models.Game{tb}); err != nil {
				return nil, err
			}
			games = append(games, *tb)
		}
		if action.DeleteGameID != nil {
			if err := s.gameRepo.Delete(ctx, tx, *action.DeleteGameID); err != nil {
				return nil, err
			}
			games = dropGame(games, *action.DeleteGameID)
		}
	}

	update := &ScoreUpdate{Match: match, Games: games}

	switch out.Status {
	case brackets.OutcomeDecided:
		if match.WinnerID == nil || *match.WinnerID != *out.WinnerID {
			match.WinnerID = out.WinnerID
			if err := s.propagate(ctx, tx, stopID, match, update); err != nil {
				return nil, err
			}
			return update, nil
		}
	default:
		// Коррекция сняла победителя. Слоты ниже по сетке не трогаем:
		// это дрейф, его находит аудит и чинит repair.
		if match.WinnerID != nil {
			match.WinnerID = nil
		}
	}

	if err := s.matchRepo.UpdateDerivedState(ctx, tx, match); err != nil {
		return nil, err
	}
	return update, nil
}

func (s *scoreService) propagate(ctx context.Context, tx *sql.Tx, stopID int, match *models.Match, update *ScoreUpdate) error {
	rounds, err := s.roundRepo.ListByStop(ctx, tx, stopID)
	if err != nil {
		return err
	}
	matches, err := s.matchRepo.ListByStop(ctx, tx, stopID)
	if err != nil {
		return err
	}

	// Граф строится на загруженных копиях; решённый матч подменяется
	// актуальной версией, чтобы продвижение видело новый результат.
	for i, m := range matches {
		if m.ID == match.ID {
			matches[i] = match
		}
	}
	graph, err := brackets.NewGraph(rounds, matches)
	if err != nil {
		return fmt.Errorf("stop %d bracket is not a valid graph: %w", stopID, err)
	}

	prop, err := brackets.Propagate(graph, match.ID)
	if err != nil {
		return err
	}

	if err := s.matchRepo.UpdateDerivedState(ctx, tx, match); err != nil {
		return err
	}
	for _, id := range prop.Updated {
		updated := graph.Match(id)
		if err := s.matchRepo.UpdateDerivedState(ctx, tx, updated); err != nil {
			return err
		}
		if id != match.ID {
			update.UpdatedMatches = append(update.UpdatedMatches, updated)
		}
		// Активировавшийся reset-финал впервые становится играбельным и
		// получает стандартные слоты.
		if prop.ResetTriggered && updated.FinalsState != nil && *updated.FinalsState == models.FinalsResetActive {
			if err := s.ensureStandardGames(ctx, tx, updated.ID); err != nil {
				return err
			}
		}
	}

	update.Conflicts = prop.Conflicts
	update.ResetTriggered = prop.ResetTriggered
	update.ChampionID = prop.ChampionID
	return nil
}

func (s *scoreService) ensureStandardGames(ctx context.Context, tx *sql.Tx, matchID int) error {
	existing, err := s.gameRepo.ListByMatch(ctx, tx, matchID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	games := make([]*models.Game, len(models.StandardSlots))
	for i, slot := range models.StandardSlots {
		games[i] = &models.Game{MatchID: matchID, Slot: slot}
	}
	return s.gameRepo.CreateBatch(ctx, tx, games)
}

func (s *scoreService) broadcast(stopID int, update *ScoreUpdate) {
	room := ws.StopRoom(stopID)
	s.hub.BroadcastToRoom(room, ws.Event{Type: ws.EventMatchUpdated, Payload: update})
	if len(update.Conflicts) > 0 {
		s.hub.BroadcastToRoom(room, ws.Event{Type: ws.EventStructuralInconsistency, Payload: update.Conflicts})
		s.logger.Warn("advancement halted on structural conflict",
			"match_id", update.Match.ID, "conflicts", len(update.Conflicts))
	}
	if update.ChampionID != nil {
		s.hub.BroadcastToRoom(room, ws.Event{Type: ws.EventChampionDecided, Payload: map[string]int{
			"stop_id": stopID, "team_id": *update.ChampionID,
		}})
	}
}

func dropGame(games []models.Game, id int) []models.Game {
	out := games[:0]
	for _, g := range games {
		if g.ID != id {
			out = append(out, g)
		}
	}
	return out
}
