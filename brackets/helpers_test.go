package brackets

import (
	"testing"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

// scored returns a game with both scores recorded.
func scored(slot models.GameSlot, a, b int) models.Game {
	return models.Game{Slot: slot, TeamAScore: &a, TeamBScore: &b, IsComplete: true}
}

// unscored returns a game without any score.
func unscored(slot models.GameSlot) models.Game {
	return models.Game{Slot: slot}
}

// halfScored returns a game with only side A entered. The interpreter must
// treat it as unscored.
func halfScored(slot models.GameSlot, a int) models.Game {
	return models.Game{Slot: slot, TeamAScore: &a}
}

// standardGames builds the four standard-slot games from per-slot winners:
// 'A' scores 11-5 for side A, 'B' the reverse, 0 leaves the slot unscored.
func standardGames(results [4]byte) []models.Game {
	games := make([]models.Game, 0, 4)
	for i, slot := range models.StandardSlots {
		switch results[i] {
		case 'A':
			games = append(games, scored(slot, 11, 5))
		case 'B':
			games = append(games, scored(slot, 5, 11))
		default:
			games = append(games, unscored(slot))
		}
	}
	return games
}

// materialize turns a topology blueprint into stored rounds and matches the
// way bracket generation persists them, assigning sequential IDs.
func materialize(t *testing.T, topo *Topology) ([]*models.Round, []*models.Match) {
	t.Helper()

	rounds := make([]*models.Round, len(topo.Rounds))
	for i, tr := range topo.Rounds {
		rounds[i] = &models.Round{
			ID:       i + 1,
			StopID:   1,
			Segment:  tr.Segment,
			Depth:    tr.Depth,
			Sequence: tr.Sequence,
		}
	}

	matches := make([]*models.Match, len(topo.Matches))
	for i, tm := range topo.Matches {
		m := &models.Match{
			ID:             i + 1,
			RoundID:        tm.RoundIdx + 1,
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
			id := *tm.PredA + 1
			m.PredecessorAID = &id
		}
		if tm.PredB != nil {
			id := *tm.PredB + 1
			m.PredecessorBID = &id
		}
		matches[i] = m
	}
	return rounds, matches
}

// buildGraph generates a bracket for the given teams, materializes it and
// cascades the generation-time bye winners, mirroring what generation does
// before the first score arrives.
func buildGraph(t *testing.T, teamIDs []int) *Graph {
	t.Helper()

	topo, err := GenerateDoubleElimination(teamIDs)
	require.NoError(t, err)

	rounds, matches := materialize(t, topo)
	g, err := NewGraph(rounds, matches)
	require.NoError(t, err)

	for _, m := range matches {
		if m.WinnerID != nil {
			_, err := Propagate(g, m.ID)
			require.NoError(t, err)
		}
	}
	return g
}

// decide records a winner on a match and propagates it, failing the test on
// any structural conflict.
func decide(t *testing.T, g *Graph, matchID, winnerID int) *PropagationResult {
	t.Helper()

	m := g.Match(matchID)
	require.NotNil(t, m, "match %d not in graph", matchID)
	w := winnerID
	m.WinnerID = &w

	res, err := Propagate(g, matchID)
	require.NoError(t, err)
	require.Empty(t, res.Conflicts, "unexpected conflicts deciding match %d", matchID)
	return res
}

// matchesInSegment returns the graph's matches belonging to a segment, in
// topological order.
func matchesInSegment(g *Graph, seg models.Segment) []*models.Match {
	var out []*models.Match
	for _, m := range g.Matches() {
		if g.SegmentOf(m) == seg {
			out = append(out, m)
		}
	}
	return out
}

// finals returns the decisive and reset finals of the graph.
func finals(t *testing.T, g *Graph) (decisive, reset *models.Match) {
	t.Helper()
	for _, m := range matchesInSegment(g, models.SegmentFinals) {
		if isDecisiveFinal(m) {
			decisive = m
		} else {
			reset = m
		}
	}
	require.NotNil(t, decisive)
	require.NotNil(t, reset)
	return decisive, reset
}
