package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

// StudentRepository defines the student lookups and lifecycle writes used by the
// services.
type StudentRepository interface {
	InsertStudent(ctx context.Context, student models.Student) (models.Student, error)
	GetStudent(ctx context.Context, messNo string) (models.Student, error)
	DecideStudent(ctx context.Context, messNo string, decision models.ApprovalStatus, decidedBy string, at time.Time) (models.Student, error)
	ListStudents(ctx context.Context, includeSaharaInmates bool) ([]models.Student, error)
}

// InsertStudent registers a student. The unique mess_no index rejects duplicates.
func (r *Repository) InsertStudent(ctx context.Context, student models.Student) (models.Student, error) {
	res, err := r.collection(studentsColl).InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Student{}, models.ErrStudentExists
		}
		return models.Student{}, fmt.Errorf("insert student: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		student.ID = oid
	}
	return student, nil
}

// GetStudent looks a student up by canonical mess number.
func (r *Repository) GetStudent(ctx context.Context, messNo string) (models.Student, error) {
	var student models.Student
	err := r.collection(studentsColl).FindOne(ctx, bson.M{"mess_no": messNo}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Student{}, models.ErrStudentNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("find student %s: %w", messNo, err)
	}
	return student, nil
}

// DecideStudent applies the one-shot admin approval decision. Only a pending
// registration can be decided; the conditional filter makes the transition atomic.
func (r *Repository) DecideStudent(ctx context.Context, messNo string, decision models.ApprovalStatus, decidedBy string, at time.Time) (models.Student, error) {
	var student models.Student
	err := r.collection(studentsColl).FindOneAndUpdate(ctx,
		bson.M{"mess_no": messNo, "approval": models.ApprovalPending},
		bson.M{"$set": bson.M{"approval": decision, "decided_by": decidedBy, "decided_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, lookupErr := r.GetStudent(ctx, messNo); lookupErr != nil {
			return models.Student{}, lookupErr
		}
		return models.Student{}, models.ErrAlreadyDecided
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("decide student %s: %w", messNo, err)
	}
	return student, nil
}

// ListStudents returns the bill-run candidate set, optionally excluding
// day-scholar ("Sahara") inmates. Approval filtering stays in the engine so the
// run summary can name who was skipped and why.
func (r *Repository) ListStudents(ctx context.Context, includeSaharaInmates bool) ([]models.Student, error) {
	filter := bson.M{}
	if !includeSaharaInmates {
		filter["sahara_inmate"] = false
	}
	cursor, err := r.collection(studentsColl).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "mess_no", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cursor.Close(ctx)

	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}
