package models

import (
	"testing"
	"time"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestResolveMealWindow(t *testing.T) {
	tests := []struct {
		name string
		hour int
		min  int
		want MealType
	}{
		{"early morning", 6, 30, MealBreakfast},
		{"just before lunch window", 9, 59, MealBreakfast},
		{"lunch window opens", 10, 0, MealLunch},
		{"midday", 13, 15, MealLunch},
		{"last lunch minute", 14, 59, MealLunch},
		{"dinner window opens", 15, 0, MealDinner},
		{"evening", 20, 30, MealDinner},
		{"just before midnight", 23, 59, MealDinner},
		{"midnight", 0, 0, MealBreakfast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Date(2025, 7, 14, tt.hour, tt.min, 0, 0, ist)
			if got := ResolveMealWindow(ts, ist); got != tt.want {
				t.Errorf("ResolveMealWindow(%02d:%02d) = %s, want %s", tt.hour, tt.min, got, tt.want)
			}
		})
	}
}

func TestResolveMealWindowConvertsZone(t *testing.T) {
	// 05:30 UTC is 11:00 IST, inside the lunch window.
	ts := time.Date(2025, 7, 14, 5, 30, 0, 0, time.UTC)
	if got := ResolveMealWindow(ts, ist); got != MealLunch {
		t.Errorf("ResolveMealWindow(05:30 UTC) = %s, want %s", got, MealLunch)
	}
}
