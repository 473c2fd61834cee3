package prize

import "sort"

// Winner is one entry of the winner ledger.
type Winner struct {
	ID           string `json:"id"`
	ClaimantName string `json:"name"`
	PrizeLabel   string `json:"prize"`

	// Timestamp is the commit time in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// SortWinners orders winners newest first. IDs break timestamp ties.
func SortWinners(winners []Winner) {
	sort.SliceStable(winners, func(i, j int) bool {
		if winners[i].Timestamp != winners[j].Timestamp {
			return winners[i].Timestamp > winners[j].Timestamp
		}

		return winners[i].ID > winners[j].ID
	})
}
