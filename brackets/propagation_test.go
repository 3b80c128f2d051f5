package brackets

import (
	"testing"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Four-team bracket after materialization, by match ID:
//
//	1: WB r1, 101 v 104       4: LB r1, losers of 1 and 2
//	2: WB r1, 102 v 103       5: LB r2, winner of 4 v loser of 3
//	3: WB final, w1 v w2      6: decisive final, 7: reset final
func fourTeamGraph(t *testing.T) *Graph {
	t.Helper()
	return buildGraph(t, []int{101, 102, 103, 104})
}

func TestPropagateRoutesWinnerAndLoser(t *testing.T) {
	g := fourTeamGraph(t)

	res := decide(t, g, 1, 101)
	assert.ElementsMatch(t, []int{3, 4}, res.Updated)

	final := g.Match(3)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, 101, *final.TeamAID)
	assert.Nil(t, final.TeamBID)

	loserMatch := g.Match(4)
	require.NotNil(t, loserMatch.TeamAID)
	assert.Equal(t, 104, *loserMatch.TeamAID, "loser drops into the loser bracket")

	decide(t, g, 2, 103)
	assert.Equal(t, 103, *g.Match(3).TeamBID)
	assert.Equal(t, 102, *g.Match(4).TeamBID)
}

func TestPropagateIsIdempotent(t *testing.T) {
	g := fourTeamGraph(t)
	decide(t, g, 1, 101)

	res, err := Propagate(g, 1)
	require.NoError(t, err)
	assert.Empty(t, res.Updated, "re-running over settled state changes nothing")
	assert.Empty(t, res.Conflicts)
}

func TestPropagateReportsConflictAndHalts(t *testing.T) {
	g := fourTeamGraph(t)
	g.Match(3).TeamAID = ip(999)

	m := g.Match(1)
	m.WinnerID = ip(101)
	res, err := Propagate(g, 1)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, 3, c.MatchID)
	assert.Equal(t, models.SideA, c.Slot)
	assert.Equal(t, 999, c.ExistingTeam)
	assert.Equal(t, 101, c.IncomingTeam)
	assert.Equal(t, 1, c.SourceMatch)

	assert.Equal(t, 999, *g.Match(3).TeamAID, "occupied slot is never overwritten")
	assert.Equal(t, 104, *g.Match(4).TeamAID, "the unconflicted loser edge still flows")
}

func TestPropagateForfeitWithoutGames(t *testing.T) {
	g := fourTeamGraph(t)

	m := g.Match(1)
	side := models.SideB
	m.ForfeitSide = &side

	out := Evaluate(m, nil)
	require.Equal(t, OutcomeDecided, out.Status)
	require.True(t, out.ByForfeit)
	require.NotNil(t, out.WinnerID)
	m.WinnerID = out.WinnerID

	res, err := Propagate(g, 1)
	require.NoError(t, err)
	require.Empty(t, res.Conflicts)
	assert.ElementsMatch(t, []int{3, 4}, res.Updated)

	require.NotNil(t, g.Match(3).TeamAID)
	assert.Equal(t, 101, *g.Match(3).TeamAID, "forfeit winner advances with zero scored games")
	require.NotNil(t, g.Match(4).TeamAID)
	assert.Equal(t, 104, *g.Match(4).TeamAID, "forfeiting side still drops to the loser bracket")
}

func TestPropagateRequiresWinner(t *testing.T) {
	g := fourTeamGraph(t)

	_, err := Propagate(g, 1)
	assert.ErrorIs(t, err, ErrMatchNotDecidable)

	_, err = Propagate(g, 1000)
	assert.ErrorIs(t, err, ErrUnknownMatch)
}

func TestPropagateByeCascade(t *testing.T) {
	// Three teams: seed 1 has a first-round bye, and the loser-round match
	// fed by that bye is itself a bye waiting for the other drop.
	g := buildGraph(t, []int{101, 102, 103})

	// Generation already advanced the bye winner into the winner final.
	final := g.Match(3)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, 101, *final.TeamAID)

	lbBye := g.Match(4)
	assert.True(t, lbBye.IsBye)
	assert.Nil(t, lbBye.TeamAID, "a bye produces no loser to drop")
	assert.Nil(t, lbBye.WinnerID)

	res := decide(t, g, 2, 102)
	assert.Equal(t, 102, *final.TeamBID)
	assert.Equal(t, 103, *lbBye.TeamBID)
	require.NotNil(t, lbBye.WinnerID)
	assert.Equal(t, 103, *lbBye.WinnerID, "the sole participant auto-advances")
	assert.Equal(t, 103, *g.Match(5).TeamAID, "the cascade continues past the bye")
	assert.Contains(t, res.Updated, 4)
	assert.Contains(t, res.Updated, 5)
}

func TestPropagateFullBracketWinnerSideChampion(t *testing.T) {
	g := fourTeamGraph(t)

	decide(t, g, 1, 101)
	decide(t, g, 2, 103)
	decide(t, g, 4, 104)
	decide(t, g, 3, 101)
	decide(t, g, 5, 104)

	decisive, reset := finals(t, g)
	require.NotNil(t, decisive.TeamAID)
	require.NotNil(t, decisive.TeamBID)
	assert.Equal(t, 101, *decisive.TeamAID)
	assert.Equal(t, 104, *decisive.TeamBID)

	res := decide(t, g, decisive.ID, 101)
	require.NotNil(t, res.ChampionID)
	assert.Equal(t, 101, *res.ChampionID)
	assert.False(t, res.ResetTriggered)

	assert.Equal(t, models.FinalsResetPending, *reset.FinalsState, "an unbeaten champion leaves the reset final dormant")
	assert.Nil(t, reset.TeamAID)
	assert.Nil(t, reset.TeamBID)
}

func TestPropagateBracketReset(t *testing.T) {
	g := fourTeamGraph(t)

	decide(t, g, 1, 101)
	decide(t, g, 2, 103)
	decide(t, g, 4, 104)
	decide(t, g, 3, 101)
	decide(t, g, 5, 104)

	decisive, reset := finals(t, g)
	res := decide(t, g, decisive.ID, 104)
	assert.True(t, res.ResetTriggered)
	assert.Nil(t, res.ChampionID, "one more match decides everything")
	assert.Contains(t, res.Updated, reset.ID)

	assert.Equal(t, models.FinalsResetActive, *reset.FinalsState)
	require.NotNil(t, reset.TeamAID)
	require.NotNil(t, reset.TeamBID)
	assert.Equal(t, 101, *reset.TeamAID)
	assert.Equal(t, 104, *reset.TeamBID)

	final := decide(t, g, reset.ID, 104)
	require.NotNil(t, final.ChampionID)
	assert.Equal(t, 104, *final.ChampionID)
}

func TestPropagateTwoTeamBracket(t *testing.T) {
	// With two teams there is no loser bracket: the decisive final takes
	// both the winner and the loser of the single opening match.
	g := buildGraph(t, []int{101, 102})

	decide(t, g, 1, 101)
	decisive, reset := finals(t, g)
	require.NotNil(t, decisive.TeamAID)
	require.NotNil(t, decisive.TeamBID)
	assert.Equal(t, 101, *decisive.TeamAID)
	assert.Equal(t, 102, *decisive.TeamBID)

	res := decide(t, g, decisive.ID, 102)
	assert.True(t, res.ResetTriggered)
	assert.Equal(t, models.FinalsResetActive, *reset.FinalsState)

	final := decide(t, g, reset.ID, 101)
	require.NotNil(t, final.ChampionID)
	assert.Equal(t, 101, *final.ChampionID)
}

func TestPropagateResetFinalIgnoredByOrdinaryFlow(t *testing.T) {
	g := fourTeamGraph(t)

	decide(t, g, 1, 101)
	decide(t, g, 2, 103)
	decide(t, g, 4, 104)
	decide(t, g, 3, 101)
	decide(t, g, 5, 104)

	_, reset := finals(t, g)
	assert.Nil(t, reset.TeamAID, "the reset final is fed only by the reset rule")
	assert.Nil(t, reset.TeamBID)
	assert.Equal(t, models.FinalsResetPending, *reset.FinalsState)
}
