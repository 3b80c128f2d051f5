// bracket-engine/brackets/topology.go
package brackets

import (
	"errors"
	"fmt"
	"math"

	"github.com/courtside-dev/bracket-engine/models"
)

var (
	ErrNotEnoughTeams = errors.New("at least 2 teams are required to generate a bracket")
	ErrDuplicateTeam  = errors.New("seeding list contains a duplicate team")
)

// TopologyRound is a round blueprint. Sequence is assigned globally across
// segments; Depth counts down to 0 within each segment independently.
type TopologyRound struct {
	Segment  models.Segment
	Depth    int
	Sequence int
}

// TopologyMatch is a match blueprint. PredA/PredB are indices into
// Topology.Matches (never depth-based lookups); the slice is topologically
// ordered, every predecessor precedes its successors.
type TopologyMatch struct {
	RoundIdx int
	Position int

	TeamAID *int
	TeamBID *int
	SeedA   *int
	SeedB   *int

	PredA *int
	PredB *int

	IsBye bool

	// WinnerID is set at generation time only for winner-bracket byes:
	// there is no opponent to wait for, so the present seed advances
	// immediately.
	WinnerID *int

	FinalsState *models.FinalsState
}

// Topology is the full double-elimination blueprint for one stop.
type Topology struct {
	Rounds  []TopologyRound
	Matches []TopologyMatch

	WinnerRounds int
	LoserRounds  int
	ByeCount     int
}

// GenerateDoubleElimination builds the complete round/match graph for an
// ordered (seeded) list of team IDs: a ceil(log2(N))-round winner bracket,
// a 2*(winnerRounds-1)-round loser bracket, and two FINALS matches: the
// decisive final and the bracket-reset final, the latter created
// reset_pending and activated only if the loser-bracket champion takes the
// decisive final.
func GenerateDoubleElimination(teamIDs []int) (*Topology, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}
	seen := make(map[int]struct{}, n)
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: team %d", ErrDuplicateTeam, id)
		}
		seen[id] = struct{}{}
	}

	winnerRounds := int(math.Ceil(math.Log2(float64(n))))
	size := 1 << uint(winnerRounds)
	loserRounds := 2 * (winnerRounds - 1)

	t := &Topology{
		WinnerRounds: winnerRounds,
		LoserRounds:  loserRounds,
		ByeCount:     size - n,
	}

	seq := 0

	// Winner bracket. winnerIdx[r][i] is the Matches index of round r+1
	// match i.
	winnerIdx := make([][]int, winnerRounds)
	for r := 1; r <= winnerRounds; r++ {
		t.Rounds = append(t.Rounds, TopologyRound{
			Segment:  models.SegmentWinner,
			Depth:    winnerRounds - r,
			Sequence: seq,
		})
		roundIdx := len(t.Rounds) - 1
		seq++

		count := size >> uint(r)
		winnerIdx[r-1] = make([]int, count)
		pairs := firstRoundPairs(size)

		for i := 0; i < count; i++ {
			m := TopologyMatch{RoundIdx: roundIdx, Position: i}

			if r == 1 {
				seedTeam(&m, teamIDs, pairs[i])
			} else {
				m.PredA = intPtr(winnerIdx[r-2][2*i])
				m.PredB = intPtr(winnerIdx[r-2][2*i+1])
			}

			t.Matches = append(t.Matches, m)
			winnerIdx[r-1][i] = len(t.Matches) - 1
		}
	}

	// Loser bracket. Round 1 pairs the fresh drops of winner round 1
	// against each other; even rounds pair the previous loser-round
	// survivor against the drop from the next winner round; odd rounds
	// (from 3 on) pair two loser-round survivors.
	loserIdx := make([][]int, loserRounds)
	for k := 1; k <= loserRounds; k++ {
		t.Rounds = append(t.Rounds, TopologyRound{
			Segment:  models.SegmentLoser,
			Depth:    loserRounds - k,
			Sequence: seq,
		})
		roundIdx := len(t.Rounds) - 1
		seq++

		count := size >> uint((k+1)/2+1)
		loserIdx[k-1] = make([]int, count)

		for i := 0; i < count; i++ {
			m := TopologyMatch{RoundIdx: roundIdx, Position: i}

			switch {
			case k == 1:
				m.PredA = intPtr(winnerIdx[0][2*i])
				m.PredB = intPtr(winnerIdx[0][2*i+1])
			case k%2 == 0:
				m.PredA = intPtr(loserIdx[k-2][i])
				m.PredB = intPtr(winnerIdx[k/2][i])
			default:
				m.PredA = intPtr(loserIdx[k-2][2*i])
				m.PredB = intPtr(loserIdx[k-2][2*i+1])
			}

			t.Matches = append(t.Matches, m)
			loserIdx[k-1][i] = len(t.Matches) - 1
		}
	}

	// Finals. The decisive final takes the winner-bracket champion as A and
	// the loser-bracket champion as B. With 2 teams there is no loser
	// bracket at all: slot B takes the loser of the winner final directly.
	winnerFinal := winnerIdx[winnerRounds-1][0]
	loserFinal := winnerFinal
	if loserRounds > 0 {
		loserFinal = loserIdx[loserRounds-1][0]
	}

	t.Rounds = append(t.Rounds, TopologyRound{
		Segment:  models.SegmentFinals,
		Depth:    1,
		Sequence: seq,
	})
	seq++
	decisive := models.FinalsDecisive
	t.Matches = append(t.Matches, TopologyMatch{
		RoundIdx:    len(t.Rounds) - 1,
		Position:    0,
		PredA:       intPtr(winnerFinal),
		PredB:       intPtr(loserFinal),
		FinalsState: &decisive,
	})
	finals1 := len(t.Matches) - 1

	t.Rounds = append(t.Rounds, TopologyRound{
		Segment:  models.SegmentFinals,
		Depth:    0,
		Sequence: seq,
	})
	resetPending := models.FinalsResetPending
	t.Matches = append(t.Matches, TopologyMatch{
		RoundIdx:    len(t.Rounds) - 1,
		Position:    0,
		PredA:       intPtr(finals1),
		PredB:       intPtr(finals1),
		FinalsState: &resetPending,
	})

	markByes(t)

	return t, nil
}

func seedTeam(m *TopologyMatch, teamIDs []int, pair [2]int) {
	n := len(teamIDs)
	if pair[0] < n {
		m.TeamAID = intPtr(teamIDs[pair[0]])
		m.SeedA = intPtr(pair[0] + 1)
	}
	if pair[1] < n {
		m.TeamBID = intPtr(teamIDs[pair[1]])
		m.SeedB = intPtr(pair[1] + 1)
	} else {
		// Standard seeding never leaves both positions of a first-round
		// pair beyond the team count, so the bye is always on side B.
		m.IsBye = true
		m.WinnerID = m.TeamAID
	}
}

// markByes walks the blueprint once (it is topologically ordered) and counts,
// for every match, the slots that can ever receive a participant. A slot fed
// by the winner of a match that can produce one is fillable; a slot fed by
// the loser of a bye can never be filled. Matches left with at most one
// fillable slot are byes themselves: the propagation engine completes them
// as soon as their sole participant is known.
func markByes(t *Topology) {
	fillable := make([]int, len(t.Matches))

	for i := range t.Matches {
		m := &t.Matches[i]

		if m.FinalsState != nil && *m.FinalsState == models.FinalsResetPending {
			// The reset final is populated by the reset rule, not by
			// ordinary slot feeding.
			fillable[i] = 2
			continue
		}

		count := 0
		if slotFillable(t, fillable, m.TeamAID, m.PredA, i, models.SideA) {
			count++
		}
		if slotFillable(t, fillable, m.TeamBID, m.PredB, i, models.SideB) {
			count++
		}
		fillable[i] = count

		if (m.PredA != nil || m.PredB != nil) && count <= 1 {
			m.IsBye = true
		}
	}
}

func slotFillable(t *Topology, fillable []int, team *int, pred *int, matchIdx int, side models.Side) bool {
	if team != nil {
		return true
	}
	if pred == nil {
		return false
	}
	if loserEdge(t, matchIdx, *pred, side) {
		// A loser only exists when the predecessor is a real contest.
		return fillable[*pred] == 2
	}
	return fillable[*pred] >= 1
}

// loserEdge reports whether the given predecessor edge carries the loser.
// Losers flow only from the winner segment into the loser segment, plus the
// 2-team corner where the decisive final's slot B is fed by the loser of the
// winner final.
func loserEdge(t *Topology, matchIdx, predIdx int, side models.Side) bool {
	succSeg := t.Rounds[t.Matches[matchIdx].RoundIdx].Segment
	predSeg := t.Rounds[t.Matches[predIdx].RoundIdx].Segment

	if succSeg == models.SegmentLoser && predSeg == models.SegmentWinner {
		return true
	}
	if succSeg == models.SegmentFinals && side == models.SideB {
		m := &t.Matches[matchIdx]
		if m.FinalsState != nil && *m.FinalsState == models.FinalsDecisive &&
			m.PredA != nil && m.PredB != nil && *m.PredA == *m.PredB {
			return true
		}
	}
	return false
}

func intPtr(v int) *int { return &v }
