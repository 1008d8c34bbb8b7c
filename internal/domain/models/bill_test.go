package models

import (
	"testing"
	"time"
)

func TestBillableDays(t *testing.T) {
	tests := []struct {
		name        string
		daysInMonth int
		cutDays     int
		want        int
	}{
		{"no cuts", 31, 0, 31},
		{"five day cut in january", 31, 5, 26},
		{"cut equals month", 30, 30, 0},
		{"cut exceeds month clamps at zero", 28, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BillableDays(tt.daysInMonth, tt.cutDays); got != tt.want {
				t.Errorf("BillableDays(%d, %d) = %d, want %d", tt.daysInMonth, tt.cutDays, got, tt.want)
			}
		})
	}
}

func TestRecomputeTotal(t *testing.T) {
	bill := Bill{
		BillableDays:        26,
		PerDayCharge:        85,
		EstablishmentCharge: 500,
		FeastCharge:         120,
		SpecialCharge:       30,
	}

	bill.RecomputeTotal()
	want := 26*85.0 + 500 + 120 + 30
	if bill.TotalAmount != want {
		t.Fatalf("TotalAmount = %v, want %v", bill.TotalAmount, want)
	}

	bill.Fines = append(bill.Fines, Fine{Amount: 50, Reason: "late payment", AppliedAt: time.Now()})
	bill.RecomputeTotal()
	if bill.TotalAmount != want+50 {
		t.Fatalf("TotalAmount with fine = %v, want %v", bill.TotalAmount, want+50)
	}
}
