package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalStatus tracks the one-shot admin decision on a registration.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Student is a mess member. The mess number is the canonical identifier and is
// immutable once assigned. Only approved students are eligible for attendance,
// mess cuts and billing.
type Student struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessNo       string             `bson:"mess_no" json:"mess_no"`
	Name         string             `bson:"name" json:"name"`
	Room         string             `bson:"room" json:"room"`
	SaharaInmate bool               `bson:"sahara_inmate" json:"sahara_inmate"`
	Approval     ApprovalStatus     `bson:"approval" json:"approval"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registered_at"`
	DecidedAt    *time.Time         `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy    string             `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
}

// Approved reports whether the student may attend meals and be billed.
func (s Student) Approved() bool {
	return s.Approval == ApprovalApproved
}
