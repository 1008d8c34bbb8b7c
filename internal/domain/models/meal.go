package models

import "time"

// MealType enumerates the meals served by the mess.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// Meal window boundaries in local wall-clock hours. Scans before 10:00 count as
// breakfast, 10:00 up to 15:00 as lunch, and everything later as dinner.
const (
	lunchStartHour  = 10
	dinnerStartHour = 15
)

// ResolveMealWindow classifies a timestamp into the meal window that contains it.
// The timestamp is interpreted in the mess local time zone; the caller-claimed meal
// type is never trusted. Total over all timestamps.
func ResolveMealWindow(t time.Time, loc *time.Location) MealType {
	local := t.In(loc)
	switch {
	case local.Hour() < lunchStartHour:
		return MealBreakfast
	case local.Hour() < dinnerStartHour:
		return MealLunch
	default:
		return MealDinner
	}
}
