package analysis

import (
	"reflect"
	"testing"
)

func TestCheckBadges(t *testing.T) {
	goals := map[string]int{"Legendary": 9000, "Arena 15": 7500, "Challenger": 5000}
	got := CheckBadges([]int{4000, 6000, 7600}, goals)
	want := []string{"Arena 15", "Challenger"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

// TestCheckBadges_LatestOnly: an earlier peak does not count.
func TestCheckBadges_LatestOnly(t *testing.T) {
	got := CheckBadges([]int{9100, 4000}, map[string]int{"Legendary": 9000})
	if len(got) != 0 {
		t.Errorf("want none, got %v", got)
	}
	if got := CheckBadges(nil, map[string]int{"Start": 0}); len(got) != 1 {
		t.Errorf("empty history counts as 0 trophies: got %v", got)
	}
}

func TestRemainingGoals(t *testing.T) {
	goals := map[string]int{"Legendary": 9000, "Arena 15": 7500}
	got := RemainingGoals(goals, 7500)
	if !reflect.DeepEqual(got, map[string]int{"Legendary": 9000}) {
		t.Errorf("unexpected remaining goals %v", got)
	}
	if len(goals) != 2 {
		t.Error("input map must not be modified")
	}
}
