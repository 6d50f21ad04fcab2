package data

import (
	"reflect"
	"testing"
)

func TestTrophyDelta(t *testing.T) {
	cases := map[Outcome]int{Win: 30, Loss: -20, Draw: 0, Outcome("bogus"): 0}
	for o, want := range cases {
		if got := TrophyDelta(o); got != want {
			t.Errorf("TrophyDelta(%s) = %d, want %d", o, got, want)
		}
	}
}

func TestMedalsFor(t *testing.T) {
	cases := []struct {
		name   string
		before Profile
		result Result
		want   []string
	}{
		{
			name:   "first win untouched",
			result: Result{Outcome: Win, OwnHealth: 1},
			want:   []string{"first_win", "flawless"},
		},
		{
			name:   "later win in sudden death",
			before: Profile{Wins: 3, Medals: []string{"first_win"}},
			result: Result{Outcome: Win, OwnHealth: 0.4, SuddenDeath: true},
			want:   []string{"overtime"},
		},
		{
			name:   "already held",
			before: Profile{Wins: 3, Medals: []string{"first_win", "flawless"}},
			result: Result{Outcome: Win, OwnHealth: 1},
			want:   nil,
		},
		{
			name:   "draw",
			result: Result{Outcome: Draw, SuddenDeath: true},
			want:   []string{"stalemate"},
		},
		{
			name:   "loss earns nothing",
			result: Result{Outcome: Loss, OwnHealth: 1},
			want:   nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := medalsFor(tc.before, tc.result)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("medalsFor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEveryAwardedMedalHasMetadata(t *testing.T) {
	results := []Result{
		{Outcome: Win, OwnHealth: 1, SuddenDeath: true},
		{Outcome: Draw},
	}
	for _, r := range results {
		for _, id := range medalsFor(Profile{}, r) {
			if _, ok := Medals[id]; !ok {
				t.Errorf("medal %s has no metadata", id)
			}
		}
	}
}

func TestTally(t *testing.T) {
	w, l, d := Result{Outcome: Draw}.tally()
	if w != 0 || l != 0 || d != 1 {
		t.Fatalf("tally = %d/%d/%d", w, l, d)
	}
}
