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

// BillRepository persists bills and payment submissions. Status transitions are
// conditional updates filtered on the expected current status, so racing admin and
// student actions cannot skip a state.
type BillRepository interface {
	InsertBill(ctx context.Context, bill models.Bill) (models.Bill, error)
	GetBill(ctx context.Context, id primitive.ObjectID) (models.Bill, error)
	GetBillForMonth(ctx context.Context, messNo, month string) (models.Bill, error)
	ListBills(ctx context.Context, month string) ([]models.Bill, error)
	PublishBills(ctx context.Context, month string) ([]models.Bill, error)
	TransitionBill(ctx context.Context, id primitive.ObjectID, from, to models.BillStatus, paidAt *time.Time) error
	AppendFine(ctx context.Context, id primitive.ObjectID, fine models.Fine) (models.Bill, error)
	InsertSubmission(ctx context.Context, sub models.PaymentSubmission) (models.PaymentSubmission, error)
	PendingSubmission(ctx context.Context, billID primitive.ObjectID) (models.PaymentSubmission, error)
	ResolveSubmission(ctx context.Context, id primitive.ObjectID, outcome models.VerificationOutcome, verifiedBy string, at time.Time) error
}

// InsertBill creates the month's bill; the unique (mess_no, month) index makes a
// re-run report ErrBillExists instead of duplicating the bill.
func (r *Repository) InsertBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	res, err := r.collection(billsColl).InsertOne(ctx, bill)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Bill{}, models.ErrBillExists
		}
		return models.Bill{}, fmt.Errorf("insert bill: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		bill.ID = oid
	}
	return bill, nil
}

// GetBill loads a bill by id.
func (r *Repository) GetBill(ctx context.Context, id primitive.ObjectID) (models.Bill, error) {
	var bill models.Bill
	err := r.collection(billsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Bill{}, models.ErrBillNotFound
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("find bill: %w", err)
	}
	return bill, nil
}

// GetBillForMonth loads a student's bill for one month.
func (r *Repository) GetBillForMonth(ctx context.Context, messNo, month string) (models.Bill, error) {
	var bill models.Bill
	err := r.collection(billsColl).FindOne(ctx, bson.M{"mess_no": messNo, "month": month}).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Bill{}, models.ErrBillNotFound
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("find bill for %s/%s: %w", messNo, month, err)
	}
	return bill, nil
}

// ListBills returns all bills of a month.
func (r *Repository) ListBills(ctx context.Context, month string) ([]models.Bill, error) {
	cursor, err := r.collection(billsColl).Find(ctx, bson.M{"month": month}, options.Find().SetSort(bson.D{{Key: "mess_no", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer cursor.Close(ctx)

	var bills []models.Bill
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}
	return bills, nil
}

// PublishBills flips the published flag on every unpublished bill of the month and
// returns the bills that were newly published.
func (r *Repository) PublishBills(ctx context.Context, month string) ([]models.Bill, error) {
	cursor, err := r.collection(billsColl).Find(ctx, bson.M{"month": month, "published": false})
	if err != nil {
		return nil, fmt.Errorf("list unpublished bills: %w", err)
	}
	defer cursor.Close(ctx)

	var bills []models.Bill
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("decode unpublished bills: %w", err)
	}

	if _, err := r.collection(billsColl).UpdateMany(ctx,
		bson.M{"month": month, "published": false},
		bson.M{"$set": bson.M{"published": true}},
	); err != nil {
		return nil, fmt.Errorf("publish bills: %w", err)
	}

	return bills, nil
}

// TransitionBill moves a bill between payment states, guarded by the expected
// current status. A missed match means either the bill is unknown or another
// transition won the race.
func (r *Repository) TransitionBill(ctx context.Context, id primitive.ObjectID, from, to models.BillStatus, paidAt *time.Time) error {
	set := bson.M{"status": to}
	if paidAt != nil {
		set["paid_at"] = *paidAt
	}

	res, err := r.collection(billsColl).UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("transition bill %s -> %s: %w", from, to, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if _, err := r.GetBill(ctx, id); err != nil {
		return err
	}
	return models.ErrInvalidTransition
}

// AppendFine pushes a ledger entry and bumps the derived total in one update,
// refused once the bill is paid.
func (r *Repository) AppendFine(ctx context.Context, id primitive.ObjectID, fine models.Fine) (models.Bill, error) {
	var bill models.Bill
	err := r.collection(billsColl).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.BillPaid}},
		bson.M{
			"$push": bson.M{"fines": fine},
			"$inc":  bson.M{"total_amount": fine.Amount},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&bill)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, lookupErr := r.GetBill(ctx, id); lookupErr != nil {
			return models.Bill{}, lookupErr
		}
		return models.Bill{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("append fine: %w", err)
	}
	return bill, nil
}

// InsertSubmission records the student's payment claim. The partial unique index
// on pending submissions rejects a second outstanding claim for the same bill.
func (r *Repository) InsertSubmission(ctx context.Context, sub models.PaymentSubmission) (models.PaymentSubmission, error) {
	res, err := r.collection(submissionsColl).InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.PaymentSubmission{}, models.ErrInvalidTransition
		}
		return models.PaymentSubmission{}, fmt.Errorf("insert payment submission: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid
	}
	return sub, nil
}

// PendingSubmission fetches the outstanding claim on a bill.
func (r *Repository) PendingSubmission(ctx context.Context, billID primitive.ObjectID) (models.PaymentSubmission, error) {
	var sub models.PaymentSubmission
	err := r.collection(submissionsColl).FindOne(ctx, bson.M{
		"bill_id":      billID,
		"verification": models.VerificationPending,
	}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PaymentSubmission{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.PaymentSubmission{}, fmt.Errorf("find pending submission: %w", err)
	}
	return sub, nil
}

// ResolveSubmission stamps the admin decision on a submission. Rejected records
// are retained for audit.
func (r *Repository) ResolveSubmission(ctx context.Context, id primitive.ObjectID, outcome models.VerificationOutcome, verifiedBy string, at time.Time) error {
	res, err := r.collection(submissionsColl).UpdateOne(ctx,
		bson.M{"_id": id, "verification": models.VerificationPending},
		bson.M{"$set": bson.M{"verification": outcome, "verified_by": verifiedBy, "verified_at": at}},
	)
	if err != nil {
		return fmt.Errorf("resolve submission: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}
