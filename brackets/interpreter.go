// bracket-engine/brackets/interpreter.go
package brackets

import "github.com/courtside-dev/bracket-engine/models"

// OutcomeStatus classifies the state of a match after interpreting its games.
type OutcomeStatus string

const (
	// OutcomePending: not enough scored games to settle the match.
	OutcomePending OutcomeStatus = "PENDING"
	// OutcomeDecided: a winner is known (majority, forfeit, bye or tiebreak).
	OutcomeDecided OutcomeStatus = "DECIDED"
	// OutcomeTied: all standard slots scored, game wins split evenly, and
	// no decisive tiebreak game yet. The tiebreak sub-protocol takes over.
	OutcomeTied OutcomeStatus = "TIED"
)

// Outcome is the result of interpreting a match's recorded games.
type Outcome struct {
	Status   OutcomeStatus
	WinnerID *int
	LoserID  *int

	WinsA int
	WinsB int

	StandardTotal  int
	StandardScored int

	ByForfeit  bool
	ByTiebreak bool
	ByBye      bool
}

// Evaluate determines whether a match is decided and by whom, from its
// recorded games and forfeit marker. It is a pure function of the latest
// committed state: callers re-run it after every score mutation rather than
// caching prior interpretations.
//
// A game with a score on only one side is treated as unscored. The TIEBREAK
// slot never counts toward the standard majority.
func Evaluate(m *models.Match, games []models.Game) Outcome {
	if m.ForfeitSide != nil {
		return evaluateForfeit(m)
	}

	if m.IsBye {
		if m.TeamAID != nil && m.TeamBID == nil {
			return Outcome{Status: OutcomeDecided, WinnerID: m.TeamAID, ByBye: true}
		}
		if m.TeamBID != nil && m.TeamAID == nil {
			return Outcome{Status: OutcomeDecided, WinnerID: m.TeamBID, ByBye: true}
		}
		return Outcome{Status: OutcomePending, ByBye: true}
	}

	out := Outcome{Status: OutcomePending}
	var tiebreak *models.Game

	for i := range games {
		g := &games[i]
		if g.Slot == models.SlotTiebreak {
			tiebreak = g
			continue
		}
		out.StandardTotal++
		if !g.Scored() {
			continue
		}
		out.StandardScored++
		switch {
		case *g.TeamAScore > *g.TeamBScore:
			out.WinsA++
		case *g.TeamBScore > *g.TeamAScore:
			out.WinsB++
		}
	}

	if out.StandardTotal == 0 {
		return out
	}

	// Strict majority decides, even before every slot is scored.
	if out.WinsA*2 > out.StandardTotal {
		return decided(out, m.TeamAID, m.TeamBID)
	}
	if out.WinsB*2 > out.StandardTotal {
		return decided(out, m.TeamBID, m.TeamAID)
	}

	if out.StandardScored < out.StandardTotal {
		return out
	}

	// All standard slots scored without a majority: the tiebreak game, if
	// present and scored with unequal sides, settles the match.
	if tiebreak != nil && tiebreak.Scored() && *tiebreak.TeamAScore != *tiebreak.TeamBScore {
		out.ByTiebreak = true
		if *tiebreak.TeamAScore > *tiebreak.TeamBScore {
			return decided(out, m.TeamAID, m.TeamBID)
		}
		return decided(out, m.TeamBID, m.TeamAID)
	}

	out.Status = OutcomeTied
	return out
}

// decided finalizes an outcome, refusing to declare a winner that is not an
// actual participant of the match.
func decided(out Outcome, winner, loser *int) Outcome {
	if winner == nil {
		out.Status = OutcomePending
		return out
	}
	out.Status = OutcomeDecided
	out.WinnerID = winner
	out.LoserID = loser
	return out
}

func evaluateForfeit(m *models.Match) Outcome {
	out := Outcome{ByForfeit: true, Status: OutcomePending}
	switch *m.ForfeitSide {
	case models.SideA:
		out.WinnerID = m.TeamBID
		out.LoserID = m.TeamAID
	case models.SideB:
		out.WinnerID = m.TeamAID
		out.LoserID = m.TeamBID
	}
	// A forfeit against an unknown opponent cannot decide anything yet.
	if out.WinnerID != nil {
		out.Status = OutcomeDecided
	}
	return out
}
