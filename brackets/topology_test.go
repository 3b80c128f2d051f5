package brackets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamList(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 101 + i
	}
	return ids
}

func TestBracketOrder(t *testing.T) {
	testCases := []struct {
		size     int
		expected []int
	}{
		{size: 1, expected: []int{0}},
		{size: 2, expected: []int{0, 1}},
		{size: 4, expected: []int{0, 3, 1, 2}},
		{size: 8, expected: []int{0, 7, 3, 4, 1, 6, 2, 5}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("size %d", tc.size), func(t *testing.T) {
			assert.Equal(t, tc.expected, bracketOrder(tc.size))
		})
	}
}

func TestGenerateDoubleEliminationShape(t *testing.T) {
	testCases := []struct {
		numTeams     int
		winnerRounds int
		loserRounds  int
		totalRounds  int
		totalMatches int
		byeCount     int
	}{
		{numTeams: 2, winnerRounds: 1, loserRounds: 0, totalRounds: 3, totalMatches: 3, byeCount: 0},
		{numTeams: 3, winnerRounds: 2, loserRounds: 2, totalRounds: 6, totalMatches: 7, byeCount: 1},
		{numTeams: 4, winnerRounds: 2, loserRounds: 2, totalRounds: 6, totalMatches: 7, byeCount: 0},
		{numTeams: 5, winnerRounds: 3, loserRounds: 4, totalRounds: 9, totalMatches: 15, byeCount: 3},
		{numTeams: 8, winnerRounds: 3, loserRounds: 4, totalRounds: 9, totalMatches: 15, byeCount: 0},
		{numTeams: 9, winnerRounds: 4, loserRounds: 6, totalRounds: 12, totalMatches: 31, byeCount: 7},
		{numTeams: 16, winnerRounds: 4, loserRounds: 6, totalRounds: 12, totalMatches: 31, byeCount: 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.numTeams), func(t *testing.T) {
			topo, err := GenerateDoubleElimination(teamList(tc.numTeams))
			require.NoError(t, err)

			assert.Equal(t, tc.winnerRounds, topo.WinnerRounds)
			assert.Equal(t, tc.loserRounds, topo.LoserRounds)
			assert.Equal(t, tc.byeCount, topo.ByeCount)
			assert.Len(t, topo.Rounds, tc.totalRounds)
			assert.Len(t, topo.Matches, tc.totalMatches)
		})
	}
}

func TestGenerateLoserRoundSizes(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(16))
	require.NoError(t, err)

	counts := make(map[int]int)
	for _, m := range topo.Matches {
		counts[m.RoundIdx]++
	}

	var loserCounts []int
	for i, r := range topo.Rounds {
		if r.Segment == models.SegmentLoser {
			loserCounts = append(loserCounts, counts[i])
		}
	}
	assert.Equal(t, []int{4, 4, 2, 2, 1, 1}, loserCounts)
}

func TestGenerateRoundNumbering(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(8))
	require.NoError(t, err)

	for i, r := range topo.Rounds {
		assert.Equal(t, i, r.Sequence, "sequence must be dense and global")
	}

	// Depth counts down to 0 inside each segment independently.
	last := make(map[models.Segment]int)
	for _, r := range topo.Rounds {
		last[r.Segment] = r.Depth
	}
	assert.Equal(t, 0, last[models.SegmentWinner])
	assert.Equal(t, 0, last[models.SegmentLoser])
	assert.Equal(t, 0, last[models.SegmentFinals])
}

func TestGenerateTopologicalOrder(t *testing.T) {
	for _, n := range []int{2, 3, 5, 9, 16} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			topo, err := GenerateDoubleElimination(teamList(n))
			require.NoError(t, err)

			for i, m := range topo.Matches {
				if m.PredA != nil {
					assert.Less(t, *m.PredA, i, "predecessor A of match %d must precede it", i)
				}
				if m.PredB != nil {
					assert.Less(t, *m.PredB, i, "predecessor B of match %d must precede it", i)
				}
			}
		})
	}
}

func TestGenerateFirstRoundSeeding(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(8))
	require.NoError(t, err)

	// Standard layout: 1v8, 4v5, 2v7, 3v6 so the top seeds can only meet in
	// late rounds.
	expected := [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}
	for i, pair := range expected {
		m := topo.Matches[i]
		require.NotNil(t, m.SeedA)
		require.NotNil(t, m.SeedB)
		assert.Equal(t, pair[0], *m.SeedA)
		assert.Equal(t, pair[1], *m.SeedB)
		assert.Equal(t, 100+pair[0], *m.TeamAID)
		assert.Equal(t, 100+pair[1], *m.TeamBID)
	}
}

func TestGenerateByePlacement(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(5))
	require.NoError(t, err)

	// Size 8 layout (0,7)(3,4)(1,6)(2,5) with 5 teams: the three top seeds
	// draw the absent positions, always on side B.
	byes := 0
	for i := 0; i < 4; i++ {
		m := topo.Matches[i]
		if !m.IsBye {
			continue
		}
		byes++
		require.NotNil(t, m.TeamAID)
		assert.Nil(t, m.TeamBID)
		require.NotNil(t, m.WinnerID, "a first-round bye advances its seed at generation time")
		assert.Equal(t, *m.TeamAID, *m.WinnerID)
	}
	assert.Equal(t, 3, byes)

	seedsWithBye := make(map[int]bool)
	for i := 0; i < 4; i++ {
		if m := topo.Matches[i]; m.IsBye && m.SeedA != nil {
			seedsWithBye[*m.SeedA] = true
		}
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seedsWithBye)
}

func TestGenerateDerivedLoserByes(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(5))
	require.NoError(t, err)

	// Loser round 1 pairs the drops of winner round 1; drops from byes never
	// materialize, so slots fed by them make the match a bye in turn.
	total := 0
	for _, m := range topo.Matches {
		if m.IsBye {
			total++
		}
	}
	assert.Equal(t, 6, total, "3 seeded byes plus 3 structurally starved loser matches")
}

func TestGenerateFinalsWiring(t *testing.T) {
	topo, err := GenerateDoubleElimination(teamList(4))
	require.NoError(t, err)

	decisiveIdx := len(topo.Matches) - 2
	resetIdx := len(topo.Matches) - 1

	decisive := topo.Matches[decisiveIdx]
	require.NotNil(t, decisive.FinalsState)
	assert.Equal(t, models.FinalsDecisive, *decisive.FinalsState)
	require.NotNil(t, decisive.PredA)
	require.NotNil(t, decisive.PredB)
	assert.Equal(t, models.SegmentWinner, topo.Rounds[topo.Matches[*decisive.PredA].RoundIdx].Segment)
	assert.Equal(t, models.SegmentLoser, topo.Rounds[topo.Matches[*decisive.PredB].RoundIdx].Segment)

	reset := topo.Matches[resetIdx]
	require.NotNil(t, reset.FinalsState)
	assert.Equal(t, models.FinalsResetPending, *reset.FinalsState)
	require.NotNil(t, reset.PredA)
	require.NotNil(t, reset.PredB)
	assert.Equal(t, decisiveIdx, *reset.PredA)
	assert.Equal(t, decisiveIdx, *reset.PredB)
}

func TestGenerateTwoTeams(t *testing.T) {
	topo, err := GenerateDoubleElimination([]int{101, 102})
	require.NoError(t, err)

	// No loser bracket exists: both finals slots are fed by the single
	// winner-bracket match, slot B carrying its loser.
	decisive := topo.Matches[1]
	require.NotNil(t, decisive.PredA)
	require.NotNil(t, decisive.PredB)
	assert.Equal(t, 0, *decisive.PredA)
	assert.Equal(t, 0, *decisive.PredB)
	assert.True(t, loserEdge(topo, 1, 0, models.SideB))
	assert.False(t, loserEdge(topo, 1, 0, models.SideA))
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := GenerateDoubleElimination(nil)
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	_, err = GenerateDoubleElimination([]int{7})
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	_, err = GenerateDoubleElimination([]int{1, 2, 3, 2})
	assert.ErrorIs(t, err, ErrDuplicateTeam)
}

func TestGenerateDuplicateErrorNamesTeam(t *testing.T) {
	_, err := GenerateDoubleElimination([]int{5, 9, 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateTeam))
	assert.Contains(t, err.Error(), "team 5")
}
