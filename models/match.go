package models

// Side - сторона матча (слот участника A или B).
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// TiebreakStatus - состояние подпротокола тай-брейка матча.
type TiebreakStatus string

const (
	TiebreakNone     TiebreakStatus = "NONE"
	TiebreakRequired TiebreakStatus = "REQUIRES_TIEBREAK"
	TiebreakResolved TiebreakStatus = "RESOLVED"
)

// FinalsState - вариантное состояние финальных матчей.
// Второй финал (bracket reset) существует в топологии с момента генерации,
// но считается "живым" только после перехода в FinalsResetActive.
type FinalsState string

const (
	FinalsDecisive     FinalsState = "decisive"
	FinalsResetPending FinalsState = "reset_pending"
	FinalsResetActive  FinalsState = "reset_active"
)

// Match - одна встреча двух участников внутри раунда.
//
// PredecessorAID/PredecessorBID ссылаются на матч, победитель которого
// (а для ребра WINNER→LOSER - проигравший) занимает слот A/B. Инварианты:
//   - Winner, если задан, равен TeamAID или TeamBID;
//   - матч с IsBye и единственным известным участником получает Winner
//     сразу, без игр;
//   - Winner не может быть задан, пока оба участника неизвестны.
type Match struct {
	ID      int `json:"id" db:"id"`
	RoundID int `json:"round_id" db:"round_id"`

	TeamAID *int `json:"team_a_id" db:"team_a_id"`
	TeamBID *int `json:"team_b_id" db:"team_b_id"`

	SeedA *int `json:"seed_a,omitempty" db:"seed_a"`
	SeedB *int `json:"seed_b,omitempty" db:"seed_b"`

	PredecessorAID *int `json:"predecessor_a_id" db:"predecessor_a_id"`
	PredecessorBID *int `json:"predecessor_b_id" db:"predecessor_b_id"`

	// Position - порядковый номер матча внутри раунда, фиксирует
	// геометрию сетки при генерации.
	Position int `json:"position" db:"position"`

	IsBye       bool  `json:"is_bye" db:"is_bye"`
	ForfeitSide *Side `json:"forfeit_side,omitempty" db:"forfeit_side"`

	WinnerID *int `json:"winner_id" db:"winner_id"`

	TiebreakStatus   TiebreakStatus `json:"tiebreak_status" db:"tiebreak_status"`
	TiebreakWinnerID *int           `json:"tiebreak_winner_id,omitempty" db:"tiebreak_winner_id"`

	FinalsState *FinalsState `json:"finals_state,omitempty" db:"finals_state"`

	// Опциональные связанные сущности (не мапятся напрямую).
	Round *Round `json:"round,omitempty" db:"-"`
	Games []Game `json:"games,omitempty" db:"-"`
}

// SideOf сообщает, на какой стороне матча стоит команда.
func (m *Match) SideOf(teamID int) (Side, bool) {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return SideA, true
	}
	if m.TeamBID != nil && *m.TeamBID == teamID {
		return SideB, true
	}
	return "", false
}

// LoserID возвращает проигравшего решённого матча. Для bye проигравшего
// не существует.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.IsBye {
		return nil
	}
	if m.TeamAID != nil && *m.TeamAID != *m.WinnerID {
		return m.TeamAID
	}
	if m.TeamBID != nil && *m.TeamBID != *m.WinnerID {
		return m.TeamBID
	}
	return nil
}
