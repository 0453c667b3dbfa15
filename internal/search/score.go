package search

import "time"

// scoreCandidate ranks a candidate leg by counted kilometers per minute
// spent, waiting included. A candidate where no time passes at all is
// invalid rather than a division fault; ok is false in that case.
// Higher scores rank better. The heuristic is local and never looks
// beyond the immediate leg.
func scoreCandidate(countedKm float64, waiting, travel time.Duration) (float64, bool) {
	total := waiting + travel
	if total <= 0 {
		return 0, false
	}
	return countedKm / total.Minutes(), true
}
