package attendance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/domain/models"
	"github.com/akhilrajps/sahara-mess/internal/repository/mongodb"
)

// Service records meal attendance at scan time. The meal is always derived from
// the scan timestamp, never from a client claim, and a student on an active mess
// cut cannot be marked present so billing and attendance stay consistent.
type Service struct {
	students mongodb.StudentRepository
	cuts     mongodb.MessCutRepository
	records  mongodb.AttendanceRepository
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an attendance service instance.
func NewService(students mongodb.StudentRepository, cuts mongodb.MessCutRepository, records mongodb.AttendanceRepository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		students: students,
		cuts:     cuts,
		records:  records,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Mark records a meal attendance for the student. Duplicate scans of the same
// (student, date, meal) are benign: the existing record comes back with
// created=false and no second record is written.
func (s *Service) Mark(ctx context.Context, messNo, staffID string) (models.AttendanceRecord, bool, error) {
	now := s.now().In(s.loc)
	meal := models.ResolveMealWindow(now, s.loc)
	date := models.DateOnly(now)

	cut, err := s.cuts.ActiveMessCut(ctx, messNo, date)
	if err != nil {
		return models.AttendanceRecord{}, false, err
	}
	if cut != nil {
		return models.AttendanceRecord{}, false, models.ErrMessCutActive
	}

	student, err := s.students.GetStudent(ctx, messNo)
	if err != nil {
		return models.AttendanceRecord{}, false, err
	}
	if !student.Approved() {
		return models.AttendanceRecord{}, false, models.ErrStudentNotApproved
	}

	record := models.AttendanceRecord{
		MessNo:   messNo,
		Date:     date,
		Meal:     meal,
		MarkedAt: now,
		StaffID:  staffID,
	}

	record, created, err := s.records.InsertAttendance(ctx, record)
	if err != nil {
		return models.AttendanceRecord{}, false, err
	}

	if created {
		s.logger.Info("attendance marked",
			zap.String("mess_no", messNo),
			zap.String("meal", string(meal)),
			zap.String("staff", staffID))
	} else {
		s.logger.Debug("duplicate attendance scan ignored",
			zap.String("mess_no", messNo), zap.String("meal", string(meal)))
	}

	return record, created, nil
}
