package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeStudents struct {
	students map[string]models.Student
}

func (f *fakeStudents) InsertStudent(ctx context.Context, s models.Student) (models.Student, error) {
	f.students[s.MessNo] = s
	return s, nil
}

func (f *fakeStudents) GetStudent(ctx context.Context, messNo string) (models.Student, error) {
	s, ok := f.students[messNo]
	if !ok {
		return models.Student{}, models.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStudents) DecideStudent(ctx context.Context, messNo string, decision models.ApprovalStatus, decidedBy string, at time.Time) (models.Student, error) {
	return models.Student{}, nil
}

func (f *fakeStudents) ListStudents(ctx context.Context, includeSaharaInmates bool) ([]models.Student, error) {
	return nil, nil
}

type fakeCuts struct {
	cuts []models.MessCutApplication
}

func (f *fakeCuts) ReserveQuota(ctx context.Context, messNo, month string, days, cap int) error {
	return nil
}
func (f *fakeCuts) ReleaseQuota(ctx context.Context, messNo, month string, days int) error {
	return nil
}
func (f *fakeCuts) QuotaUsed(ctx context.Context, messNo, month string) (int, error) { return 0, nil }
func (f *fakeCuts) InsertMessCut(ctx context.Context, cut models.MessCutApplication) (models.MessCutApplication, error) {
	f.cuts = append(f.cuts, cut)
	return cut, nil
}
func (f *fakeCuts) ActiveMessCut(ctx context.Context, messNo string, date time.Time) (*models.MessCutApplication, error) {
	for i := range f.cuts {
		if f.cuts[i].MessNo == messNo && f.cuts[i].Covers(date) {
			return &f.cuts[i], nil
		}
	}
	return nil, nil
}
func (f *fakeCuts) SumGrantedIntersecting(ctx context.Context, messNo string, monthStart, monthEnd time.Time) (int, error) {
	return 0, nil
}

type attendanceKey struct {
	messNo string
	date   time.Time
	meal   models.MealType
}

type fakeAttendance struct {
	records map[attendanceKey]models.AttendanceRecord
	inserts int
}

func (f *fakeAttendance) InsertAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error) {
	key := attendanceKey{record.MessNo, models.DateOnly(record.Date), record.Meal}
	if existing, ok := f.records[key]; ok {
		return existing, false, nil
	}
	f.records[key] = record
	f.inserts++
	return record, true, nil
}

func newTestService(cuts *fakeCuts, records *fakeAttendance, now time.Time) *Service {
	students := &fakeStudents{students: map[string]models.Student{
		"MC1234": {MessNo: "MC1234", Approval: models.ApprovalApproved},
		"MC5678": {MessNo: "MC5678", Approval: models.ApprovalPending},
	}}
	svc := NewService(students, cuts, records, ist, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestMarkResolvesMealFromScanTime(t *testing.T) {
	records := &fakeAttendance{records: map[attendanceKey]models.AttendanceRecord{}}
	now := time.Date(2025, 3, 10, 12, 30, 0, 0, ist)
	svc := newTestService(&fakeCuts{}, records, now)

	record, created, err := svc.Mark(context.Background(), "MC1234", "STAFF01")
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if !created {
		t.Error("first scan should create a record")
	}
	if record.Meal != models.MealLunch {
		t.Errorf("meal = %s, want lunch", record.Meal)
	}
	if record.StaffID != "STAFF01" {
		t.Errorf("staff = %q, want STAFF01", record.StaffID)
	}
}

func TestMarkIsIdempotentPerMeal(t *testing.T) {
	records := &fakeAttendance{records: map[attendanceKey]models.AttendanceRecord{}}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, ist)
	svc := newTestService(&fakeCuts{}, records, now)

	first, created, err := svc.Mark(context.Background(), "MC1234", "STAFF01")
	if err != nil || !created {
		t.Fatalf("first Mark: created=%v err=%v", created, err)
	}

	second, created, err := svc.Mark(context.Background(), "MC1234", "STAFF02")
	if err != nil {
		t.Fatalf("second Mark: %v", err)
	}
	if created {
		t.Error("duplicate scan must not create a second record")
	}
	if second.StaffID != first.StaffID {
		t.Error("duplicate scan should return the original record")
	}
	if records.inserts != 1 {
		t.Errorf("inserts = %d, want 1", records.inserts)
	}
}

func TestMarkBlockedByActiveMessCut(t *testing.T) {
	cuts := &fakeCuts{cuts: []models.MessCutApplication{{
		MessNo:      "MC1234",
		FromDate:    time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		ToDate:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		GrantedDays: 3,
	}}}
	records := &fakeAttendance{records: map[attendanceKey]models.AttendanceRecord{}}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, ist)
	svc := newTestService(cuts, records, now)

	_, _, err := svc.Mark(context.Background(), "MC1234", "STAFF01")
	if !errors.Is(err, models.ErrMessCutActive) {
		t.Fatalf("err = %v, want ErrMessCutActive", err)
	}
	if records.inserts != 0 {
		t.Error("no record must be written while a mess cut is active")
	}
}

func TestMarkUnapprovedStudent(t *testing.T) {
	records := &fakeAttendance{records: map[attendanceKey]models.AttendanceRecord{}}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, ist)
	svc := newTestService(&fakeCuts{}, records, now)

	_, _, err := svc.Mark(context.Background(), "MC5678", "STAFF01")
	if !errors.Is(err, models.ErrStudentNotApproved) {
		t.Fatalf("err = %v, want ErrStudentNotApproved", err)
	}
}

func TestMarkUnknownStudent(t *testing.T) {
	records := &fakeAttendance{records: map[attendanceKey]models.AttendanceRecord{}}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, ist)
	svc := newTestService(&fakeCuts{}, records, now)

	_, _, err := svc.Mark(context.Background(), "MC0000", "STAFF01")
	if !errors.Is(err, models.ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
}
