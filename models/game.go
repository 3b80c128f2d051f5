package models

// GameSlot - фиксированный набор слотов игр внутри матча.
// TIEBREAK никогда не участвует в подсчёте большинства по стандартным слотам.
type GameSlot string

const (
	SlotMensDoubles   GameSlot = "MENS_DOUBLES"
	SlotWomensDoubles GameSlot = "WOMENS_DOUBLES"
	SlotMixed1        GameSlot = "MIXED_1"
	SlotMixed2        GameSlot = "MIXED_2"
	SlotTiebreak      GameSlot = "TIEBREAK"
)

// StandardSlots - порядок создания стандартных слотов при генерации.
var StandardSlots = []GameSlot{
	SlotMensDoubles,
	SlotWomensDoubles,
	SlotMixed1,
	SlotMixed2,
}

// Game - одна игра внутри матча. Очки null до внесения.
type Game struct {
	ID         int      `json:"id" db:"id"`
	MatchID    int      `json:"match_id" db:"match_id"`
	Slot       GameSlot `json:"slot" db:"slot"`
	TeamAScore *int     `json:"team_a_score" db:"team_a_score"`
	TeamBScore *int     `json:"team_b_score" db:"team_b_score"`
	IsComplete bool     `json:"is_complete" db:"is_complete"`
}

// Scored - у игры внесены обе стороны счёта. Игра с одной внесённой
// стороной считается невнесённой и не даёт победы никому.
func (g *Game) Scored() bool {
	return g.TeamAScore != nil && g.TeamBScore != nil
}
