package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceRecord marks one student eating one meal on one date. At most one
// record exists per (student, date, meal) tuple; duplicate scans return the
// existing record instead of creating a second one.
type AttendanceRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessNo   string             `bson:"mess_no" json:"mess_no"`
	Date     time.Time          `bson:"date" json:"date"`
	Meal     MealType           `bson:"meal" json:"meal"`
	MarkedAt time.Time          `bson:"marked_at" json:"marked_at"`
	StaffID  string             `bson:"staff_id" json:"staff_id"`
}
