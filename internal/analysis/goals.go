package analysis

import "sort"

// CheckBadges returns the names of the trophy goals reached by the latest
// entry of history, sorted by name.
func CheckBadges(history []int, goals map[string]int) []string {
	current := 0
	if len(history) > 0 {
		current = history[len(history)-1]
	}
	var achieved []string
	for name, target := range goals {
		if current >= target {
			achieved = append(achieved, name)
		}
	}
	sort.Strings(achieved)
	return achieved
}

// RemainingGoals returns a copy of goals without the ones already met at
// the given trophy count.
func RemainingGoals(goals map[string]int, trophies int) map[string]int {
	out := make(map[string]int, len(goals))
	for name, target := range goals {
		if trophies < target {
			out[name] = target
		}
	}
	return out
}
