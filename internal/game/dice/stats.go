package dice

import "math"

// Stats aggregates d20 rolls from a history.
type Stats struct {
	TotalRolls int     `json:"totalRolls"` // every entry in the history
	D20Rolls   int     `json:"d20Rolls"`
	Average    float64 `json:"average"` // mean d20 total, rounded to 2 decimals
	Highest    int     `json:"highest"`
	Lowest     int     `json:"lowest"`
	Criticals  int     `json:"criticals"`
	Fumbles    int     `json:"fumbles"`
}

// ComputeStats summarizes the entries whose Sides == 20, regardless of quantity.
//
// Postcondition: ok is false when no entry qualifies; Stats is then the zero value.
func ComputeStats(entries []RollResult) (stats Stats, ok bool) {
	sum := 0
	for _, r := range entries {
		if r.Sides != CriticalSides {
			continue
		}
		if stats.D20Rolls == 0 || r.Total > stats.Highest {
			stats.Highest = r.Total
		}
		if stats.D20Rolls == 0 || r.Total < stats.Lowest {
			stats.Lowest = r.Total
		}
		stats.D20Rolls++
		sum += r.Total
		if r.Critical {
			stats.Criticals++
		}
		if r.Fumble {
			stats.Fumbles++
		}
	}
	if stats.D20Rolls == 0 {
		return Stats{}, false
	}
	stats.TotalRolls = len(entries)
	stats.Average = math.Round(float64(sum)/float64(stats.D20Rolls)*100) / 100
	return stats, true
}
