// bracket-engine/brackets/graph.go
package brackets

import (
	"errors"
	"fmt"

	"github.com/courtside-dev/bracket-engine/models"
)

var ErrUnknownMatch = errors.New("match is not part of the bracket graph")

type successorRef struct {
	matchID int
	slot    models.Side
}

// Graph is the in-memory predecessor graph of one stop's bracket. The engine
// mutates matches through it; callers persist whatever PropagationResult
// reports as changed. The same graph serves the live score path and the
// audit/repair pass.
type Graph struct {
	rounds  map[int]*models.Round
	matches map[int]*models.Match
	order   []int
	succs   map[int][]successorRef
}

// NewGraph indexes rounds and matches. Matches keep their storage identity;
// the graph never copies them.
func NewGraph(rounds []*models.Round, matches []*models.Match) (*Graph, error) {
	g := &Graph{
		rounds:  make(map[int]*models.Round, len(rounds)),
		matches: make(map[int]*models.Match, len(matches)),
		succs:   make(map[int][]successorRef, len(matches)),
	}
	for _, r := range rounds {
		g.rounds[r.ID] = r
	}
	for _, m := range matches {
		if _, ok := g.rounds[m.RoundID]; !ok {
			return nil, fmt.Errorf("match %d references round %d outside the graph", m.ID, m.RoundID)
		}
		g.matches[m.ID] = m
		g.order = append(g.order, m.ID)
	}
	for _, m := range matches {
		if m.PredecessorAID != nil {
			if _, ok := g.matches[*m.PredecessorAID]; !ok {
				return nil, fmt.Errorf("match %d: predecessor A %d outside the graph", m.ID, *m.PredecessorAID)
			}
			g.succs[*m.PredecessorAID] = append(g.succs[*m.PredecessorAID], successorRef{m.ID, models.SideA})
		}
		if m.PredecessorBID != nil {
			if _, ok := g.matches[*m.PredecessorBID]; !ok {
				return nil, fmt.Errorf("match %d: predecessor B %d outside the graph", m.ID, *m.PredecessorBID)
			}
			g.succs[*m.PredecessorBID] = append(g.succs[*m.PredecessorBID], successorRef{m.ID, models.SideB})
		}
	}
	return g, nil
}

// Match returns the stored match, or nil.
func (g *Graph) Match(id int) *models.Match {
	return g.matches[id]
}

// Matches iterates in insertion order (callers load rounds/matches in
// sequence order, which is topological).
func (g *Graph) Matches() []*models.Match {
	out := make([]*models.Match, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.matches[id])
	}
	return out
}

// SegmentOf resolves the bracket segment of a match via its round.
func (g *Graph) SegmentOf(m *models.Match) models.Segment {
	return g.rounds[m.RoundID].Segment
}

func (g *Graph) successors(id int) []successorRef {
	return g.succs[id]
}

// isResetFinal reports whether the match is the conditional second final.
func isResetFinal(m *models.Match) bool {
	return m.FinalsState != nil && *m.FinalsState != models.FinalsDecisive
}

// isDecisiveFinal reports whether the match is the first FINALS match.
func isDecisiveFinal(m *models.Match) bool {
	return m.FinalsState != nil && *m.FinalsState == models.FinalsDecisive
}

// carriesLoser reports whether the predecessor edge into the given slot of
// succ carries the predecessor's loser rather than its winner. Losers flow
// from the winner segment into the loser segment; the only other loser edge
// is the 2-team bracket, where both slots of the decisive final are fed by
// the single winner-bracket match and slot B takes its loser.
func (g *Graph) carriesLoser(succ *models.Match, slot models.Side, pred *models.Match) bool {
	succSeg := g.SegmentOf(succ)
	predSeg := g.SegmentOf(pred)

	if succSeg == models.SegmentLoser && predSeg == models.SegmentWinner {
		return true
	}
	if succSeg == models.SegmentFinals && slot == models.SideB && isDecisiveFinal(succ) &&
		succ.PredecessorAID != nil && succ.PredecessorBID != nil &&
		*succ.PredecessorAID == *succ.PredecessorBID {
		return true
	}
	return false
}

func slotValue(m *models.Match, slot models.Side) *int {
	if slot == models.SideA {
		return m.TeamAID
	}
	return m.TeamBID
}

func setSlot(m *models.Match, slot models.Side, teamID int) {
	v := teamID
	if slot == models.SideA {
		m.TeamAID = &v
	} else {
		m.TeamBID = &v
	}
}
