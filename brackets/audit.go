// bracket-engine/brackets/audit.go
package brackets

import (
	"fmt"

	"github.com/courtside-dev/bracket-engine/models"
)

// DriftKind names a class of divergence between stored bracket state and
// what the predecessor graph plus recorded games imply.
type DriftKind string

const (
	// DriftWinnerMismatch: stored winner disagrees with the games.
	DriftWinnerMismatch DriftKind = "winner_mismatch"
	// DriftMissingAdvancement: a decided match whose participant never
	// reached a successor slot.
	DriftMissingAdvancement DriftKind = "missing_advancement"
	// DriftSlotMismatch: a successor slot holds a different team than the
	// predecessor implies.
	DriftSlotMismatch DriftKind = "slot_mismatch"
	// DriftPrematureParticipant: a slot is populated while its
	// predecessor is still undecided.
	DriftPrematureParticipant DriftKind = "premature_participant"
	// DriftTiebreakState: tiebreak status and the TIEBREAK game violate
	// the status-iff-game invariant, or the status itself is stale.
	DriftTiebreakState DriftKind = "tiebreak_state"
	// DriftByeUnresolved: a bye with its sole participant known but no
	// winner recorded.
	DriftByeUnresolved DriftKind = "bye_unresolved"
	// DriftFinalsState: the reset final's liveness disagrees with the
	// decisive final's result.
	DriftFinalsState DriftKind = "finals_state"
)

// Drift is one detected divergence. Expected/Actual carry team IDs where the
// drift is about a participant or winner; Detail is always human-readable.
type Drift struct {
	Kind     DriftKind    `json:"kind"`
	MatchID  int          `json:"match_id"`
	Slot     *models.Side `json:"slot,omitempty"`
	Expected *int         `json:"expected_team_id,omitempty"`
	Actual   *int         `json:"actual_team_id,omitempty"`
	Detail   string       `json:"detail"`
}

// Audit re-derives every match's expected state from games and predecessor
// links and reports each divergence. It never mutates the graph; Repair is
// the writing counterpart.
func Audit(g *Graph, gamesByMatch map[int][]models.Game) []Drift {
	var drifts []Drift

	for _, m := range g.Matches() {
		games := gamesByMatch[m.ID]
		out := Evaluate(m, games)

		drifts = append(drifts, auditWinner(m, out)...)
		drifts = append(drifts, auditTiebreak(m, games, out)...)

		if m.WinnerID != nil && !isDecisiveFinal(m) && !isResetFinal(m) {
			drifts = append(drifts, auditSuccessors(g, m)...)
		}
		if isDecisiveFinal(m) {
			drifts = append(drifts, auditFinals(g, m)...)
		}
	}

	drifts = append(drifts, auditPremature(g)...)
	return drifts
}

func auditWinner(m *models.Match, out Outcome) []Drift {
	if m.IsBye {
		if out.Status == OutcomeDecided && m.WinnerID == nil {
			return []Drift{{
				Kind:     DriftByeUnresolved,
				MatchID:  m.ID,
				Expected: out.WinnerID,
				Detail:   fmt.Sprintf("bye match %d has its participant but no winner", m.ID),
			}}
		}
		return nil
	}

	switch {
	case out.Status == OutcomeDecided:
		if m.WinnerID == nil || *m.WinnerID != *out.WinnerID {
			return []Drift{{
				Kind:     DriftWinnerMismatch,
				MatchID:  m.ID,
				Expected: out.WinnerID,
				Actual:   m.WinnerID,
				Detail:   fmt.Sprintf("games of match %d imply winner %d", m.ID, *out.WinnerID),
			}}
		}
	default:
		if m.WinnerID != nil {
			return []Drift{{
				Kind:    DriftWinnerMismatch,
				MatchID: m.ID,
				Actual:  m.WinnerID,
				Detail:  fmt.Sprintf("match %d has a winner but its games do not decide it", m.ID),
			}}
		}
	}
	return nil
}

func auditTiebreak(m *models.Match, games []models.Game, out Outcome) []Drift {
	action := ReconcileTiebreak(m, games, out)
	if !action.Changed {
		return nil
	}
	return []Drift{{
		Kind:    DriftTiebreakState,
		MatchID: m.ID,
		Detail: fmt.Sprintf("match %d tiebreak status %s, derived %s (create game: %v, stale game: %v)",
			m.ID, m.TiebreakStatus, action.Status, action.CreateGame, action.DeleteGameID != nil),
	}}
}

// auditSuccessors checks that a decided match's winner and loser reached the
// slots its successor links promise them.
func auditSuccessors(g *Graph, m *models.Match) []Drift {
	var drifts []Drift
	for _, succ := range g.successors(m.ID) {
		target := g.Match(succ.matchID)
		if isResetFinal(target) {
			continue
		}

		expected := m.WinnerID
		if g.carriesLoser(target, succ.slot, m) {
			expected = m.LoserID()
			if expected == nil {
				continue
			}
		}

		slot := succ.slot
		current := slotValue(target, slot)
		switch {
		case current == nil:
			drifts = append(drifts, Drift{
				Kind:     DriftMissingAdvancement,
				MatchID:  target.ID,
				Slot:     &slot,
				Expected: expected,
				Detail: fmt.Sprintf("match %d decided but team %d never reached match %d slot %s",
					m.ID, *expected, target.ID, slot),
			})
		case *current != *expected:
			drifts = append(drifts, Drift{
				Kind:     DriftSlotMismatch,
				MatchID:  target.ID,
				Slot:     &slot,
				Expected: expected,
				Actual:   current,
				Detail: fmt.Sprintf("match %d slot %s holds team %d, predecessor %d implies team %d",
					target.ID, slot, *current, m.ID, *expected),
			})
		}
	}
	return drifts
}

// auditPremature flags slots populated ahead of their predecessor's result.
func auditPremature(g *Graph) []Drift {
	var drifts []Drift
	check := func(m *models.Match, slot models.Side, predID *int) {
		if predID == nil || slotValue(m, slot) == nil {
			return
		}
		pred := g.Match(*predID)
		if pred.WinnerID == nil {
			s := slot
			drifts = append(drifts, Drift{
				Kind:    DriftPrematureParticipant,
				MatchID: m.ID,
				Slot:    &s,
				Actual:  slotValue(m, slot),
				Detail: fmt.Sprintf("match %d slot %s populated while predecessor %d is undecided",
					m.ID, slot, pred.ID),
			})
		}
	}
	for _, m := range g.Matches() {
		if isResetFinal(m) {
			continue
		}
		check(m, models.SideA, m.PredecessorAID)
		if m.PredecessorBID != nil && m.PredecessorAID != nil && *m.PredecessorBID == *m.PredecessorAID {
			continue
		}
		check(m, models.SideB, m.PredecessorBID)
	}
	return drifts
}

// auditFinals verifies the bracket-reset rule from the decisive final's side.
func auditFinals(g *Graph, decisive *models.Match) []Drift {
	var reset *models.Match
	for _, succ := range g.successors(decisive.ID) {
		if s := g.Match(succ.matchID); isResetFinal(s) {
			reset = s
			break
		}
	}
	if reset == nil {
		return nil
	}

	lbWon := decisive.WinnerID != nil && decisive.TeamBID != nil && *decisive.WinnerID == *decisive.TeamBID
	active := *reset.FinalsState == models.FinalsResetActive

	switch {
	case lbWon && !active:
		return []Drift{{
			Kind:    DriftFinalsState,
			MatchID: reset.ID,
			Detail: fmt.Sprintf("decisive final %d won from the loser bracket but reset final %d is not active",
				decisive.ID, reset.ID),
		}}
	case !lbWon && active:
		return []Drift{{
			Kind:    DriftFinalsState,
			MatchID: reset.ID,
			Detail: fmt.Sprintf("reset final %d is active without a loser-bracket win in final %d",
				reset.ID, decisive.ID),
		}}
	case !lbWon && (reset.TeamAID != nil || reset.TeamBID != nil || reset.WinnerID != nil):
		return []Drift{{
			Kind:    DriftFinalsState,
			MatchID: reset.ID,
			Detail:  fmt.Sprintf("inactive reset final %d carries participants or a result", reset.ID),
		}}
	}
	return nil
}

// RepairResult reports what a repair pass rewrote.
type RepairResult struct {
	Updated   []int
	Conflicts []SlotConflict
	// CreateTiebreakGames lists match IDs whose TIEBREAK game must be
	// inserted; DeleteGameIDs lists stale TIEBREAK games to remove. Game
	// rows live outside the graph, so the caller applies these.
	CreateTiebreakGames []int
	DeleteGameIDs       []int
	ChampionID          *int
}

// Repair rewrites every derivable field from scratch: winners from games,
// successor slots from winners, tiebreak state from outcomes, finals state
// from the decisive final. Matches are visited in topological order so
// upstream corrections feed downstream ones within a single pass. Conflicts
// (a slot whose stored team matches neither emptiness nor the derived team)
// are reported untouched, same as the live path.
func Repair(g *Graph, gamesByMatch map[int][]models.Game) (*RepairResult, error) {
	res := &RepairResult{}

	for _, m := range g.Matches() {
		games := gamesByMatch[m.ID]
		out := Evaluate(m, games)

		action := ReconcileTiebreak(m, games, out)
		if action.Changed {
			m.TiebreakStatus = action.Status
			m.TiebreakWinnerID = action.WinnerID
			markRepaired(res, m.ID)
			if action.CreateGame {
				res.CreateTiebreakGames = append(res.CreateTiebreakGames, m.ID)
			}
			if action.DeleteGameID != nil {
				res.DeleteGameIDs = append(res.DeleteGameIDs, *action.DeleteGameID)
			}
		}

		switch {
		case out.Status == OutcomeDecided:
			if m.WinnerID == nil || *m.WinnerID != *out.WinnerID {
				m.WinnerID = out.WinnerID
				markRepaired(res, m.ID)
			}
		default:
			if m.WinnerID != nil {
				m.WinnerID = nil
				markRepaired(res, m.ID)
			}
		}

		if m.WinnerID == nil {
			continue
		}
		prop, err := Propagate(g, m.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range prop.Updated {
			markRepaired(res, id)
		}
		res.Conflicts = append(res.Conflicts, prop.Conflicts...)
		if prop.ChampionID != nil {
			res.ChampionID = prop.ChampionID
		}
	}

	return res, nil
}

func markRepaired(res *RepairResult, id int) {
	for _, u := range res.Updated {
		if u == id {
			return
		}
	}
	res.Updated = append(res.Updated, id)
}
