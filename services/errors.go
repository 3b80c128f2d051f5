package services

import (
	"errors"
	"fmt"

	"github.com/courtside-dev/bracket-engine/brackets"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotEnoughTeams     = errors.New("at least two teams are required to generate a bracket")
	ErrScoreDataInvalid   = errors.New("score data is invalid")
	ErrMatchNotLive       = errors.New("match is not accepting scores")
	ErrForfeitSideInvalid = errors.New("forfeit side must be A or B")
	ErrResetFinalDormant  = errors.New("reset final is not active")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrStopNotFound    = errors.New("stop not found")
	ErrBracketNotFound = errors.New("stop has no generated bracket")
	ErrMatchNotFound   = errors.New("match not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrTeamNotFound    = errors.New("team not found")
)

// StructuralInconsistencyError сообщает, что внесённый счёт сохранён, но
// автоматическое продвижение остановилось: слот преемника уже занят другой
// командой. Каскад за конфликтом не выполняется; исправление - явный
// repair, не перезапись.
type StructuralInconsistencyError struct {
	MatchID   int
	Conflicts []brackets.SlotConflict
}

func (e *StructuralInconsistencyError) Error() string {
	return fmt.Sprintf("score for match %d committed, but advancement hit %d structural conflict(s)",
		e.MatchID, len(e.Conflicts))
}
