package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
	"github.com/akhilrajps/sahara-mess/pkg/clients/push"
)

// Decision is the admin verdict on a payment submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Service runs the bill payment lifecycle: unpaid -> payment_submitted -> paid,
// with rejection sending the bill back to unpaid. A submission is a claim, not
// proof; only the admin verification step can mark a bill paid.
type Service struct {
	bills    mongodb.BillRepository
	notifier push.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a payments service instance.
func NewService(bills mongodb.BillRepository, notifier push.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bills:    bills,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit records a student's payment claim on an unpaid bill and moves it to
// payment_submitted. The transaction reference is opaque but required.
func (s *Service) Submit(ctx context.Context, billID primitive.ObjectID, method, transactionRef string) (models.Bill, models.PaymentSubmission, error) {
	if strings.TrimSpace(transactionRef) == "" {
		return models.Bill{}, models.PaymentSubmission{}, models.ErrMissingReference
	}

	if err := s.bills.TransitionBill(ctx, billID, models.BillUnpaid, models.BillPaymentSubmitted, nil); err != nil {
		return models.Bill{}, models.PaymentSubmission{}, err
	}

	sub := models.PaymentSubmission{
		BillID:         billID,
		Method:         method,
		TransactionRef: strings.TrimSpace(transactionRef),
		SubmittedAt:    s.now(),
		Verification:   models.VerificationPending,
	}

	sub, err := s.bills.InsertSubmission(ctx, sub)
	if err != nil {
		// Roll the status back so a failed persist leaves no half-submitted bill.
		if revertErr := s.bills.TransitionBill(ctx, billID, models.BillPaymentSubmitted, models.BillUnpaid, nil); revertErr != nil {
			s.logger.Error("failed reverting bill after submission insert failure",
				zap.String("bill_id", billID.Hex()), zap.Error(revertErr))
		}
		return models.Bill{}, models.PaymentSubmission{}, err
	}

	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return models.Bill{}, models.PaymentSubmission{}, err
	}

	s.logger.Info("payment submitted",
		zap.String("bill_id", billID.Hex()),
		zap.String("method", method))

	return bill, sub, nil
}

// Verify applies the admin decision to the outstanding submission. Approve makes
// the bill paid, which is terminal; reject returns it to unpaid and keeps the
// rejected submission on record.
func (s *Service) Verify(ctx context.Context, billID primitive.ObjectID, decision Decision, verifiedBy string) (models.Bill, error) {
	sub, err := s.bills.PendingSubmission(ctx, billID)
	if err != nil {
		return models.Bill{}, err
	}

	now := s.now()

	switch decision {
	case DecisionApprove:
		if err := s.bills.TransitionBill(ctx, billID, models.BillPaymentSubmitted, models.BillPaid, &now); err != nil {
			return models.Bill{}, err
		}
		if err := s.bills.ResolveSubmission(ctx, sub.ID, models.VerificationApproved, verifiedBy, now); err != nil {
			// Roll the bill back so the pending submission stays verifiable; a
			// paid bill with a pending claim would block the student forever.
			s.revertTransition(ctx, billID, models.BillPaid)
			return models.Bill{}, err
		}
		s.notify(ctx, billID, push.EventPaymentApproved, "Payment verified",
			"Your mess bill payment has been verified. The bill is settled.")
	case DecisionReject:
		if err := s.bills.TransitionBill(ctx, billID, models.BillPaymentSubmitted, models.BillUnpaid, nil); err != nil {
			return models.Bill{}, err
		}
		if err := s.bills.ResolveSubmission(ctx, sub.ID, models.VerificationRejected, verifiedBy, now); err != nil {
			// An unpaid bill with a still-pending submission would reject every
			// resubmission, so undo the transition and let the admin retry.
			s.revertTransition(ctx, billID, models.BillUnpaid)
			return models.Bill{}, err
		}
		s.notify(ctx, billID, push.EventPaymentRejected, "Payment rejected",
			"Your payment submission was rejected. The bill is unpaid; please submit again.")
	default:
		return models.Bill{}, fmt.Errorf("%w: unknown decision %q", models.ErrInvalidTransition, decision)
	}

	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return models.Bill{}, err
	}

	s.logger.Info("payment verified",
		zap.String("bill_id", billID.Hex()),
		zap.String("decision", string(decision)),
		zap.String("verified_by", verifiedBy))

	return bill, nil
}

func (s *Service) revertTransition(ctx context.Context, billID primitive.ObjectID, from models.BillStatus) {
	if err := s.bills.TransitionBill(ctx, billID, from, models.BillPaymentSubmitted, nil); err != nil {
		s.logger.Error("failed reverting bill after submission resolve failure",
			zap.String("bill_id", billID.Hex()), zap.Error(err))
	}
}

// ApplyFine appends a fine to any bill that is not yet paid and recomputes the
// derived total.
func (s *Service) ApplyFine(ctx context.Context, billID primitive.ObjectID, amount float64, reason string) (models.Bill, error) {
	if amount <= 0 {
		return models.Bill{}, models.ErrInvalidAmount
	}

	fine := models.Fine{Amount: amount, Reason: reason, AppliedAt: s.now()}
	bill, err := s.bills.AppendFine(ctx, billID, fine)
	if err != nil {
		return models.Bill{}, err
	}

	s.logger.Info("fine applied",
		zap.String("bill_id", billID.Hex()),
		zap.Float64("amount", amount),
		zap.String("reason", reason))

	return bill, nil
}

func (s *Service) notify(ctx context.Context, billID primitive.ObjectID, event, title, body string) {
	if s.notifier == nil {
		return
	}
	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		s.logger.Warn("skipping payment notification, bill lookup failed",
			zap.String("bill_id", billID.Hex()), zap.Error(err))
		return
	}
	if err := s.notifier.Notify(ctx, push.Notification{MessNo: bill.MessNo, Event: event, Title: title, Body: body}); err != nil {
		s.logger.Warn("payment notification failed", zap.String("mess_no", bill.MessNo), zap.Error(err))
	}
}
