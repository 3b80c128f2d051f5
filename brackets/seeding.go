// bracket-engine/brackets/seeding.go
package brackets

// bracketOrder returns the standard seeding order for a bracket of the given
// size (a power of two): the sequence of 0-based seed positions laid out so
// that consecutive pairs form the first-round matchups (0 vs size-1,
// 3 vs size-4, ...) and top seeds can only meet in late rounds.
func bracketOrder(size int) []int {
	if size < 1 {
		return nil
	}

	order := []int{0}
	for len(order) < size {
		doubled := len(order) * 2
		next := make([]int, 0, doubled)
		for _, seed := range order {
			next = append(next, seed)
			next = append(next, doubled-1-seed)
		}
		order = next
	}
	return order
}

// firstRoundPairs groups the seeding order into matchup pairs of 0-based
// seed positions. Positions >= participant count become byes.
func firstRoundPairs(size int) [][2]int {
	order := bracketOrder(size)
	pairs := make([][2]int, 0, size/2)
	for i := 0; i+1 < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}
