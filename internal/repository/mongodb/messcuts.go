package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

// MessCutRepository covers the mess-cut ledger and the per-student monthly quota
// record. ReserveQuota and ReleaseQuota are the serialization point the quota
// invariant depends on: two concurrent applications for the same student cannot
// both pass the cap check.
type MessCutRepository interface {
	ReserveQuota(ctx context.Context, messNo, month string, days, cap int) error
	ReleaseQuota(ctx context.Context, messNo, month string, days int) error
	QuotaUsed(ctx context.Context, messNo, month string) (int, error)
	InsertMessCut(ctx context.Context, cut models.MessCutApplication) (models.MessCutApplication, error)
	ActiveMessCut(ctx context.Context, messNo string, date time.Time) (*models.MessCutApplication, error)
	SumGrantedIntersecting(ctx context.Context, messNo string, monthStart, monthEnd time.Time) (int, error)
}

type quotaRecord struct {
	MessNo   string `bson:"mess_no"`
	Month    string `bson:"month"`
	UsedDays int    `bson:"used_days"`
}

// ReserveQuota atomically adds days to the student's month-to-date usage, but only
// when the result stays within cap. A conditional $inc carries both the check and
// the increment, so concurrent applications serialize on the quota document.
func (r *Repository) ReserveQuota(ctx context.Context, messNo, month string, days, cap int) error {
	if days > cap {
		return &models.QuotaExceededError{Remaining: remainingDays(ctx, r, messNo, month, cap)}
	}

	coll := r.collection(quotaColl)
	filter := bson.M{"mess_no": messNo, "month": month, "used_days": bson.M{"$lte": cap - days}}
	update := bson.M{"$inc": bson.M{"used_days": days}}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve quota: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// No matching ledger row: either the month has no record yet, or the cap would
	// be exceeded. Try to create the row; the unique (mess_no, month) index turns a
	// racing insert into a duplicate-key error, after which one retry of the
	// conditional update settles it.
	_, err = coll.InsertOne(ctx, quotaRecord{MessNo: messNo, Month: month, UsedDays: days})
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create quota record: %w", err)
	}

	res, err = coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve quota retry: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	return &models.QuotaExceededError{Remaining: remainingDays(ctx, r, messNo, month, cap)}
}

// ReleaseQuota hands reserved days back after a failed application persist.
func (r *Repository) ReleaseQuota(ctx context.Context, messNo, month string, days int) error {
	_, err := r.collection(quotaColl).UpdateOne(ctx,
		bson.M{"mess_no": messNo, "month": month},
		bson.M{"$inc": bson.M{"used_days": -days}},
	)
	if err != nil {
		return fmt.Errorf("release quota: %w", err)
	}
	return nil
}

// QuotaUsed returns the granted days already consumed in the month.
func (r *Repository) QuotaUsed(ctx context.Context, messNo, month string) (int, error) {
	var record quotaRecord
	err := r.collection(quotaColl).FindOne(ctx, bson.M{"mess_no": messNo, "month": month}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read quota: %w", err)
	}
	return record.UsedDays, nil
}

func remainingDays(ctx context.Context, r *Repository, messNo, month string, cap int) int {
	used, err := r.QuotaUsed(ctx, messNo, month)
	if err != nil {
		return 0
	}
	if used > cap {
		return 0
	}
	return cap - used
}

// InsertMessCut appends the application to the audit trail.
func (r *Repository) InsertMessCut(ctx context.Context, cut models.MessCutApplication) (models.MessCutApplication, error) {
	res, err := r.collection(messCutsColl).InsertOne(ctx, cut)
	if err != nil {
		return models.MessCutApplication{}, fmt.Errorf("insert mess cut: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cut.ID = oid
	}
	return cut, nil
}

// ActiveMessCut finds a granted application covering the date, or nil.
func (r *Repository) ActiveMessCut(ctx context.Context, messNo string, date time.Time) (*models.MessCutApplication, error) {
	day := models.DateOnly(date)
	var cut models.MessCutApplication
	err := r.collection(messCutsColl).FindOne(ctx, bson.M{
		"mess_no":      messNo,
		"from_date":    bson.M{"$lte": day},
		"to_date":      bson.M{"$gte": day},
		"granted_days": bson.M{"$gt": 0},
	}).Decode(&cut)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active mess cut: %w", err)
	}
	return &cut, nil
}

// SumGrantedIntersecting totals granted days over applications whose range touches
// the [monthStart, monthEnd] window, clipping each application to the days it
// actually covers inside the window. Billing subtracts this from the month length.
func (r *Repository) SumGrantedIntersecting(ctx context.Context, messNo string, monthStart, monthEnd time.Time) (int, error) {
	cursor, err := r.collection(messCutsColl).Find(ctx, bson.M{
		"mess_no":   messNo,
		"from_date": bson.M{"$lte": models.DateOnly(monthEnd)},
		"to_date":   bson.M{"$gte": models.DateOnly(monthStart)},
	})
	if err != nil {
		return 0, fmt.Errorf("list intersecting mess cuts: %w", err)
	}
	defer cursor.Close(ctx)

	var cuts []models.MessCutApplication
	if err := cursor.All(ctx, &cuts); err != nil {
		return 0, fmt.Errorf("decode intersecting mess cuts: %w", err)
	}

	total := 0
	for _, c := range cuts {
		total += c.GrantedWithin(monthStart, monthEnd)
	}
	return total, nil
}
