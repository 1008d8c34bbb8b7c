package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillStatus is the payment-lifecycle state of a monthly bill.
type BillStatus string

const (
	BillUnpaid           BillStatus = "unpaid"
	BillPaymentSubmitted BillStatus = "payment_submitted"
	BillPaid             BillStatus = "paid"
)

// Fine is one entry in a bill's fine ledger.
type Fine struct {
	Amount    float64   `bson:"amount" json:"amount"`
	Reason    string    `bson:"reason" json:"reason"`
	AppliedAt time.Time `bson:"applied_at" json:"applied_at"`
}

// Bill is the monthly charge for one student. Exactly one bill exists per
// (student, month); the total is derived and recomputed whenever a fine lands.
type Bill struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessNo              string             `bson:"mess_no" json:"mess_no"`
	Month               string             `bson:"month" json:"month"`
	BillableDays        int                `bson:"billable_days" json:"billable_days"`
	PerDayCharge        float64            `bson:"per_day_charge" json:"per_day_charge"`
	EstablishmentCharge float64            `bson:"establishment_charge" json:"establishment_charge"`
	FeastCharge         float64            `bson:"feast_charge" json:"feast_charge"`
	SpecialCharge       float64            `bson:"special_charge" json:"special_charge"`
	Fines               []Fine             `bson:"fines" json:"fines"`
	TotalAmount         float64            `bson:"total_amount" json:"total_amount"`
	Status              BillStatus         `bson:"status" json:"status"`
	Published           bool               `bson:"published" json:"published"`
	GeneratedAt         time.Time          `bson:"generated_at" json:"generated_at"`
	PaidAt              *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

// BillableDays nets the calendar month against approved mess-cut days. The result
// never goes below zero no matter how many cut days accumulated.
func BillableDays(daysInMonth, approvedCutDays int) int {
	if approvedCutDays > daysInMonth {
		return 0
	}
	return daysInMonth - approvedCutDays
}

// BillAmount computes the pre-fine total for a bill.
func BillAmount(billableDays int, perDay, establishment, feast, special float64) float64 {
	return float64(billableDays)*perDay + establishment + feast + special
}

// RecomputeTotal rebuilds the derived total from billable days, flat charges and
// the fine ledger.
func (b *Bill) RecomputeTotal() {
	total := BillAmount(b.BillableDays, b.PerDayCharge, b.EstablishmentCharge, b.FeastCharge, b.SpecialCharge)
	for _, f := range b.Fines {
		total += f.Amount
	}
	b.TotalAmount = total
}
