package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationOutcome is the admin decision on a payment submission.
type VerificationOutcome string

const (
	VerificationPending  VerificationOutcome = "pending"
	VerificationApproved VerificationOutcome = "approved"
	VerificationRejected VerificationOutcome = "rejected"
)

// PaymentSubmission is a student's claim of having paid a bill. The transaction
// reference is opaque and student-supplied; verification is a separate admin step.
// Rejected submissions stay on record for audit, only one may be pending per bill.
type PaymentSubmission struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BillID         primitive.ObjectID  `bson:"bill_id" json:"bill_id"`
	Method         string              `bson:"method" json:"method"`
	TransactionRef string              `bson:"transaction_ref" json:"transaction_ref"`
	SubmittedAt    time.Time           `bson:"submitted_at" json:"submitted_at"`
	Verification   VerificationOutcome `bson:"verification" json:"verification"`
	VerifiedBy     string              `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	VerifiedAt     *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}
