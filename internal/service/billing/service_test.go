package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

type fakeStudents struct {
	list []models.Student
}

func (f *fakeStudents) InsertStudent(ctx context.Context, s models.Student) (models.Student, error) {
	return s, nil
}
func (f *fakeStudents) GetStudent(ctx context.Context, messNo string) (models.Student, error) {
	return models.Student{}, models.ErrStudentNotFound
}
func (f *fakeStudents) DecideStudent(ctx context.Context, messNo string, decision models.ApprovalStatus, decidedBy string, at time.Time) (models.Student, error) {
	return models.Student{}, nil
}
func (f *fakeStudents) ListStudents(ctx context.Context, includeSaharaInmates bool) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.list {
		if !includeSaharaInmates && s.SaharaInmate {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeCuts struct {
	cuts    []models.MessCutApplication
	failFor string
}

func (f *fakeCuts) ReserveQuota(ctx context.Context, messNo, month string, days, cap int) error {
	return nil
}
func (f *fakeCuts) ReleaseQuota(ctx context.Context, messNo, month string, days int) error {
	return nil
}
func (f *fakeCuts) QuotaUsed(ctx context.Context, messNo, month string) (int, error) { return 0, nil }
func (f *fakeCuts) InsertMessCut(ctx context.Context, cut models.MessCutApplication) (models.MessCutApplication, error) {
	return cut, nil
}
func (f *fakeCuts) ActiveMessCut(ctx context.Context, messNo string, date time.Time) (*models.MessCutApplication, error) {
	return nil, nil
}
func (f *fakeCuts) SumGrantedIntersecting(ctx context.Context, messNo string, monthStart, monthEnd time.Time) (int, error) {
	if messNo == f.failFor {
		return 0, errors.New("mongo down")
	}
	total := 0
	for _, c := range f.cuts {
		if c.MessNo == messNo {
			total += c.GrantedWithin(monthStart, monthEnd)
		}
	}
	return total, nil
}

func grantedCut(messNo, from, to string, granted int) models.MessCutApplication {
	f, _ := time.Parse(models.DateLayout, from)
	t, _ := time.Parse(models.DateLayout, to)
	return models.MessCutApplication{MessNo: messNo, FromDate: f, ToDate: t, GrantedDays: granted}
}

type billKey struct{ messNo, month string }

type fakeBills struct {
	bills         map[billKey]models.Bill
	failInsertFor string
}

func newFakeBills() *fakeBills {
	return &fakeBills{bills: map[billKey]models.Bill{}}
}

func (f *fakeBills) InsertBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	if bill.MessNo == f.failInsertFor {
		return models.Bill{}, errors.New("mongo down")
	}
	key := billKey{bill.MessNo, bill.Month}
	if _, ok := f.bills[key]; ok {
		return models.Bill{}, models.ErrBillExists
	}
	bill.ID = primitive.NewObjectID()
	f.bills[key] = bill
	return bill, nil
}

func (f *fakeBills) GetBill(ctx context.Context, id primitive.ObjectID) (models.Bill, error) {
	for _, b := range f.bills {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Bill{}, models.ErrBillNotFound
}

func (f *fakeBills) GetBillForMonth(ctx context.Context, messNo, month string) (models.Bill, error) {
	b, ok := f.bills[billKey{messNo, month}]
	if !ok {
		return models.Bill{}, models.ErrBillNotFound
	}
	return b, nil
}

func (f *fakeBills) ListBills(ctx context.Context, month string) ([]models.Bill, error) {
	var out []models.Bill
	for _, b := range f.bills {
		if b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBills) PublishBills(ctx context.Context, month string) ([]models.Bill, error) {
	var published []models.Bill
	for key, b := range f.bills {
		if b.Month == month && !b.Published {
			published = append(published, b)
			b.Published = true
			f.bills[key] = b
		}
	}
	return published, nil
}

func (f *fakeBills) TransitionBill(ctx context.Context, id primitive.ObjectID, from, to models.BillStatus, paidAt *time.Time) error {
	return nil
}

func (f *fakeBills) AppendFine(ctx context.Context, id primitive.ObjectID, fine models.Fine) (models.Bill, error) {
	return models.Bill{}, nil
}

func (f *fakeBills) InsertSubmission(ctx context.Context, sub models.PaymentSubmission) (models.PaymentSubmission, error) {
	return sub, nil
}

func (f *fakeBills) PendingSubmission(ctx context.Context, billID primitive.ObjectID) (models.PaymentSubmission, error) {
	return models.PaymentSubmission{}, models.ErrInvalidTransition
}

func (f *fakeBills) ResolveSubmission(ctx context.Context, id primitive.ObjectID, outcome models.VerificationOutcome, verifiedBy string, at time.Time) error {
	return nil
}

func januaryParams() GenerateParams {
	return GenerateParams{
		Month:                "2025-01",
		DaysInMonth:          31,
		PerDayCharge:         85,
		EstablishmentCharge:  500,
		FeastCharge:          0,
		SpecialCharge:        0,
		IncludeSaharaInmates: true,
		ApprovedOnly:         true,
	}
}

func approved(messNo string) models.Student {
	return models.Student{MessNo: messNo, Approval: models.ApprovalApproved}
}

func TestGenerateNetsMessCutDays(t *testing.T) {
	students := &fakeStudents{list: []models.Student{approved("MC1234")}}
	cuts := &fakeCuts{cuts: []models.MessCutApplication{
		grantedCut("MC1234", "2025-01-10", "2025-01-14", 5),
	}}
	bills := newFakeBills()
	svc := NewService(students, cuts, bills, nil, nil, nil)

	summary, err := svc.Generate(context.Background(), januaryParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Generated != 1 {
		t.Fatalf("generated = %d, want 1", summary.Generated)
	}

	bill := bills.bills[billKey{"MC1234", "2025-01"}]
	if bill.BillableDays != 26 {
		t.Errorf("billable days = %d, want 26", bill.BillableDays)
	}
	want := 26*85.0 + 500
	if bill.TotalAmount != want {
		t.Errorf("total = %v, want %v", bill.TotalAmount, want)
	}
	if bill.Status != models.BillUnpaid {
		t.Errorf("status = %s, want unpaid", bill.Status)
	}
	if summary.TotalAmount != want {
		t.Errorf("summary total = %v, want %v", summary.TotalAmount, want)
	}
}

func TestGenerateClipsCutsSpanningMonths(t *testing.T) {
	students := &fakeStudents{list: []models.Student{approved("MC1234")}}
	cuts := &fakeCuts{cuts: []models.MessCutApplication{
		grantedCut("MC1234", "2025-01-30", "2025-02-03", 5),
	}}
	bills := newFakeBills()
	svc := NewService(students, cuts, bills, nil, nil, nil)

	if _, err := svc.Generate(context.Background(), januaryParams()); err != nil {
		t.Fatalf("january run: %v", err)
	}

	feb := januaryParams()
	feb.Month = "2025-02"
	feb.DaysInMonth = 28
	if _, err := svc.Generate(context.Background(), feb); err != nil {
		t.Fatalf("february run: %v", err)
	}

	// The 5-day cut covers Jan 30-31 and Feb 1-3; each bill discounts only the
	// days inside its own month, 5 in total across the two bills.
	jan := bills.bills[billKey{"MC1234", "2025-01"}]
	if jan.BillableDays != 29 {
		t.Errorf("january billable days = %d, want 29", jan.BillableDays)
	}
	febBill := bills.bills[billKey{"MC1234", "2025-02"}]
	if febBill.BillableDays != 25 {
		t.Errorf("february billable days = %d, want 25", febBill.BillableDays)
	}
	discounted := (31 - jan.BillableDays) + (28 - febBill.BillableDays)
	if discounted != 5 {
		t.Errorf("total discounted days = %d, want 5", discounted)
	}
}

func TestGenerateSkipsUnapproved(t *testing.T) {
	students := &fakeStudents{list: []models.Student{
		approved("MC1234"),
		{MessNo: "MC5678", Approval: models.ApprovalPending},
	}}
	svc := NewService(students, &fakeCuts{}, newFakeBills(), nil, nil, nil)

	summary, err := svc.Generate(context.Background(), januaryParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Generated != 1 {
		t.Errorf("generated = %d, want 1", summary.Generated)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].MessNo != "MC5678" {
		t.Fatalf("skipped = %+v, want MC5678", summary.Skipped)
	}
	if summary.Skipped[0].Reason != "student not approved" {
		t.Errorf("reason = %q", summary.Skipped[0].Reason)
	}
}

func TestGenerateRerunSkipsExistingBills(t *testing.T) {
	students := &fakeStudents{list: []models.Student{approved("MC1234")}}
	bills := newFakeBills()
	svc := NewService(students, &fakeCuts{}, bills, nil, nil, nil)

	if _, err := svc.Generate(context.Background(), januaryParams()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	summary, err := svc.Generate(context.Background(), januaryParams())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Generated != 0 {
		t.Errorf("second run generated = %d, want 0", summary.Generated)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].Reason != "bill already generated" {
		t.Fatalf("skipped = %+v, want existing-bill skip", summary.Skipped)
	}
	if len(bills.bills) != 1 {
		t.Errorf("bills stored = %d, want 1", len(bills.bills))
	}
}

func TestGenerateIsolatesPerStudentFailures(t *testing.T) {
	students := &fakeStudents{list: []models.Student{
		approved("MC0001"), approved("MC0002"), approved("MC0003"),
	}}
	cuts := &fakeCuts{failFor: "MC0002"}
	bills := newFakeBills()
	svc := NewService(students, cuts, bills, nil, nil, nil)

	summary, err := svc.Generate(context.Background(), januaryParams())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Generated != 2 {
		t.Errorf("generated = %d, want 2", summary.Generated)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].MessNo != "MC0002" {
		t.Fatalf("skipped = %+v, want MC0002", summary.Skipped)
	}
}

func TestGenerateExcludesSaharaInmates(t *testing.T) {
	students := &fakeStudents{list: []models.Student{
		approved("MC0001"),
		{MessNo: "MC0002", Approval: models.ApprovalApproved, SaharaInmate: true},
	}}
	svc := NewService(students, &fakeCuts{}, newFakeBills(), nil, nil, nil)

	params := januaryParams()
	params.IncludeSaharaInmates = false

	summary, err := svc.Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Generated != 1 {
		t.Errorf("generated = %d, want 1", summary.Generated)
	}
}

func TestGenerateCutCannotGoNegative(t *testing.T) {
	students := &fakeStudents{list: []models.Student{approved("MC1234")}}
	cuts := &fakeCuts{cuts: []models.MessCutApplication{
		grantedCut("MC1234", "2025-01-01", "2025-01-31", 31),
		grantedCut("MC1234", "2025-01-01", "2025-01-20", 20),
	}}
	bills := newFakeBills()
	svc := NewService(students, cuts, bills, nil, nil, nil)

	if _, err := svc.Generate(context.Background(), januaryParams()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	bill := bills.bills[billKey{"MC1234", "2025-01"}]
	if bill.BillableDays != 0 {
		t.Errorf("billable days = %d, want 0", bill.BillableDays)
	}
	if bill.TotalAmount != 500 {
		t.Errorf("total = %v, want flat charges only", bill.TotalAmount)
	}
}

func TestPublish(t *testing.T) {
	students := &fakeStudents{list: []models.Student{approved("MC1234"), approved("MC5678")}}
	bills := newFakeBills()
	svc := NewService(students, &fakeCuts{}, bills, nil, nil, nil)

	if _, err := svc.Generate(context.Background(), januaryParams()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	count, err := svc.Publish(context.Background(), "2025-01")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if count != 2 {
		t.Errorf("published = %d, want 2", count)
	}

	count, err = svc.Publish(context.Background(), "2025-01")
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if count != 0 {
		t.Errorf("second publish = %d, want 0", count)
	}
}
