// bracket-engine/brackets/propagation.go
package brackets

import (
	"errors"
	"fmt"

	"github.com/courtside-dev/bracket-engine/models"
)

var ErrMatchNotDecidable = errors.New("match has no winner yet; nothing to propagate")

// SlotConflict is a structural inconsistency: a successor slot already holds
// a participant different from what the predecessor graph implies. It is
// reported, never silently overwritten; correction is an explicit repair
// operation.
type SlotConflict struct {
	MatchID      int         `json:"match_id"`
	Slot         models.Side `json:"slot"`
	ExistingTeam int         `json:"existing_team_id"`
	IncomingTeam int         `json:"incoming_team_id"`
	SourceMatch  int         `json:"source_match_id"`
}

func (c SlotConflict) String() string {
	return fmt.Sprintf("match %d slot %s holds team %d, propagation from match %d would write team %d",
		c.MatchID, c.Slot, c.ExistingTeam, c.SourceMatch, c.IncomingTeam)
}

// PropagationResult reports what a propagation pass changed.
type PropagationResult struct {
	// Updated lists IDs of matches mutated in the graph, in mutation order.
	Updated []int
	// Conflicts lists slots that could not be written. Automated
	// advancement stops at each conflict; nothing past it is cascaded.
	Conflicts []SlotConflict
	// ResetTriggered is set when the loser-bracket champion took the
	// decisive final and the reset final went live.
	ResetTriggered bool
	// ChampionID is set once the bracket has an overall winner.
	ChampionID *int
}

func (r *PropagationResult) markUpdated(id int) {
	for _, u := range r.Updated {
		if u == id {
			return
		}
	}
	r.Updated = append(r.Updated, id)
}

// Propagate walks successor links from a decided match and writes the winner
// (and, for winner-segment matches, the loser) into the correct slots,
// auto-completing byes as they gain their sole participant and cascading
// further. It mutates the graph's matches and reports every changed match.
//
// The walk is idempotent: re-running it over already-propagated state changes
// nothing. A slot already holding the exact participant is a no-op; a slot
// holding a different participant is reported as a SlotConflict and the
// cascade does not continue through that successor.
func Propagate(g *Graph, matchID int) (*PropagationResult, error) {
	start := g.Match(matchID)
	if start == nil {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMatch, matchID)
	}
	if start.WinnerID == nil {
		return nil, fmt.Errorf("%w: match %d", ErrMatchNotDecidable, matchID)
	}

	res := &PropagationResult{}
	queue := []int{matchID}
	processed := make(map[int]bool)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if processed[id] {
			continue
		}
		processed[id] = true

		m := g.Match(id)
		if m.WinnerID == nil {
			continue
		}

		if isDecisiveFinal(m) {
			propagateDecisiveFinal(g, m, res)
			continue
		}
		if isResetFinal(m) {
			if *m.FinalsState == models.FinalsResetActive {
				res.ChampionID = m.WinnerID
			}
			continue
		}

		for _, succ := range g.successors(id) {
			target := g.Match(succ.matchID)
			if isResetFinal(target) {
				// The reset final is fed by the reset rule on the
				// decisive final, never by ordinary slot flow.
				continue
			}

			flowing := m.WinnerID
			if g.carriesLoser(target, succ.slot, m) {
				flowing = m.LoserID()
				if flowing == nil {
					// A bye has no loser; the slot stays empty and the
					// successor's bye marking covers it.
					continue
				}
			}

			if !writeSlot(g, target, succ.slot, *flowing, id, res) {
				continue
			}

			if completeBye(target, res) {
				queue = append(queue, target.ID)
			}
		}
	}

	return res, nil
}

// propagateDecisiveFinal applies the bracket-reset rule. If the
// winner-bracket champion (slot A) wins, the bracket is over and the reset
// final stays a permanent no-op. If the loser-bracket champion (slot B)
// wins, both teams replay in the reset final, which becomes live.
func propagateDecisiveFinal(g *Graph, m *models.Match, res *PropagationResult) {
	var reset *models.Match
	for _, succ := range g.successors(m.ID) {
		s := g.Match(succ.matchID)
		if isResetFinal(s) {
			reset = s
			break
		}
	}

	if m.TeamBID != nil && *m.WinnerID == *m.TeamBID {
		if reset == nil {
			return
		}
		if *reset.FinalsState != models.FinalsResetActive {
			active := models.FinalsResetActive
			reset.FinalsState = &active
			res.markUpdated(reset.ID)
		}
		res.ResetTriggered = true
		if m.TeamAID != nil {
			writeSlot(g, reset, models.SideA, *m.TeamAID, m.ID, res)
		}
		writeSlot(g, reset, models.SideB, *m.TeamBID, m.ID, res)
		if reset.WinnerID != nil {
			res.ChampionID = reset.WinnerID
		}
		return
	}

	// Winner-bracket champion held: tournament decided in one final.
	res.ChampionID = m.WinnerID
}

// writeSlot enforces the idempotence rule: same participant is a no-op,
// empty slot is written, different participant is a conflict.
func writeSlot(g *Graph, target *models.Match, slot models.Side, teamID, sourceID int, res *PropagationResult) bool {
	current := slotValue(target, slot)
	if current != nil {
		if *current == teamID {
			return true
		}
		res.Conflicts = append(res.Conflicts, SlotConflict{
			MatchID:      target.ID,
			Slot:         slot,
			ExistingTeam: *current,
			IncomingTeam: teamID,
			SourceMatch:  sourceID,
		})
		return false
	}
	setSlot(target, slot, teamID)
	res.markUpdated(target.ID)
	return true
}

// completeBye decides a bye match as soon as its sole participant is known.
// Returns true when the match just became decided and must itself propagate.
func completeBye(m *models.Match, res *PropagationResult) bool {
	if !m.IsBye || m.WinnerID != nil {
		return false
	}
	var sole *int
	switch {
	case m.TeamAID != nil && m.TeamBID == nil:
		sole = m.TeamAID
	case m.TeamBID != nil && m.TeamAID == nil:
		sole = m.TeamBID
	default:
		return false
	}
	w := *sole
	m.WinnerID = &w
	res.markUpdated(m.ID)
	return true
}
