package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

// AttendanceRepository persists meal-attendance events. The unique index on
// (mess_no, date, meal) collapses concurrent duplicate scans into one record.
type AttendanceRepository interface {
	InsertAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error)
}

// InsertAttendance writes the record, returning created=false together with the
// existing record when the (student, date, meal) slot is already marked.
func (r *Repository) InsertAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error) {
	record.Date = models.DateOnly(record.Date)

	res, err := r.collection(attendanceColl).InsertOne(ctx, record)
	if err == nil {
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			record.ID = oid
		}
		return record, true, nil
	}

	if !mongo.IsDuplicateKeyError(err) {
		return models.AttendanceRecord{}, false, fmt.Errorf("insert attendance: %w", err)
	}

	var existing models.AttendanceRecord
	findErr := r.collection(attendanceColl).FindOne(ctx, bson.M{
		"mess_no": record.MessNo,
		"date":    record.Date,
		"meal":    record.Meal,
	}).Decode(&existing)
	if findErr != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("load existing attendance: %w", findErr)
	}
	return existing, false, nil
}
