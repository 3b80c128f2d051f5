// bracket-engine/brackets/tiebreak.go
package brackets

import "github.com/courtside-dev/bracket-engine/models"

// TiebreakAction is the set of mutations needed to bring a match's tiebreak
// state in line with its games. Invariant enforced here: a TIEBREAK game
// exists if and only if tiebreakStatus != NONE. Stale artifacts (a majority
// flipped by a score correction while the extra game still exists, or a
// status without its game) are derivable, non-ambiguous repairs and are
// corrected opportunistically on every interpretation.
type TiebreakAction struct {
	Status   models.TiebreakStatus
	WinnerID *int

	// CreateGame asks the caller to insert the TIEBREAK-slot game.
	CreateGame bool
	// DeleteGameID asks the caller to delete the stale TIEBREAK game.
	DeleteGameID *int

	// Changed reports whether any persisted field differs from the match.
	Changed bool
}

// ReconcileTiebreak computes the tiebreak transition for a match given the
// interpreter's outcome over the same games. Every write path that touches
// standard-slot scores must run this after Evaluate, never append a tiebreak
// game reactively.
func ReconcileTiebreak(m *models.Match, games []models.Game, out Outcome) TiebreakAction {
	var tiebreak *models.Game
	for i := range games {
		if games[i].Slot == models.SlotTiebreak {
			tiebreak = &games[i]
			break
		}
	}

	action := TiebreakAction{Status: models.TiebreakNone}

	switch {
	case out.Status == OutcomeTied:
		action.Status = models.TiebreakRequired
		if tiebreak == nil {
			action.CreateGame = true
		}
	case out.Status == OutcomeDecided && out.ByTiebreak:
		action.Status = models.TiebreakResolved
		action.WinnerID = out.WinnerID
	default:
		// Pending, or decided by majority/forfeit/bye: no tiebreak may
		// exist. This also deletes the extra game when a score correction
		// flips a former 2-2 split into a clean majority.
		if tiebreak != nil {
			action.DeleteGameID = &tiebreak.ID
		}
	}

	action.Changed = m.TiebreakStatus != action.Status ||
		!intPtrEq(m.TiebreakWinnerID, action.WinnerID) ||
		action.CreateGame || action.DeleteGameID != nil

	return action
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
