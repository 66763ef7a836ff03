package service

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxTransitionRetries bounds re-reads after a lost compare-and-set
const maxTransitionRetries = 3

// maxSequenceRetries bounds re-seeds after a sequence was taken by another writer
const maxSequenceRetries = 5

// AbsenceLedger creates absence reports and moves them through their lifecycle
type AbsenceLedger struct {
	reports   repository.AbsenceReportRepositoryInterface
	staff     repository.StaffDirectoryInterface
	validator *validator.Validate
	sequence  atomic.Int64
	now       func() time.Time
}

// NewAbsenceLedger creates a ledger whose sequence continues after the highest stored one
func NewAbsenceLedger(reports repository.AbsenceReportRepositoryInterface, staff repository.StaffDirectoryInterface, validator *validator.Validate, now func() time.Time) (*AbsenceLedger, error) {
	if now == nil {
		now = time.Now
	}
	maxSequence, err := reports.MaxSequence()
	if err != nil {
		return nil, fmt.Errorf("failed to seed report sequence: %w", err)
	}

	l := &AbsenceLedger{
		reports:   reports,
		staff:     staff,
		validator: validator,
		now:       now,
	}
	l.sequence.Store(maxSequence)
	return l, nil
}

// CreateReport records a new absence for a known staff member
func (l *AbsenceLedger) CreateReport(staffID string, fields classifier.AbsenceFields, rawText string) (*models.AbsenceReport, error) {
	staff, err := l.staff.GetByID(staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to look up staff: %w", err)
	}

	now := l.now()
	report := &models.AbsenceReport{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		StaffID:     staff.ID,
		StaffName:   staff.Name,
		AbsenceDate: fields.Date,
		TimeRange:   fields.TimeRange,
		Reason:      fields.Reason,
		RawText:     rawText,
		Status:      models.ReportStatusReported,
	}
	if err := l.validator.Struct(report); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// another replica may have taken the sequence; catch up with the store and retry
	for attempt := 0; attempt < maxSequenceRetries; attempt++ {
		report.Sequence = l.sequence.Add(1)
		err := l.reports.Create(report)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create absence report: %w", err)
		}
		if err := l.reseed(); err != nil {
			return nil, err
		}
	}

	return nil, apperrors.ErrReportExists
}

// reseed moves the sequence forward to the highest stored one
func (l *AbsenceLedger) reseed() error {
	maxSequence, err := l.reports.MaxSequence()
	if err != nil {
		return fmt.Errorf("failed to seed report sequence: %w", err)
	}
	for {
		current := l.sequence.Load()
		if maxSequence <= current || l.sequence.CompareAndSwap(current, maxSequence) {
			return nil
		}
	}
}

// Transition moves a report to status to. Only reported->recruiting and
// recruiting->{filled,unfilled} are allowed; concurrent callers are
// serialized by the store's compare-and-set.
func (l *AbsenceLedger) Transition(id uuid.UUID, to models.ReportStatus) (*models.AbsenceReport, error) {
	if !to.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		report, err := l.Get(id)
		if err != nil {
			return nil, err
		}
		if !report.Status.CanTransitionTo(to) {
			return nil, apperrors.NewTransitionError(string(report.Status), string(to))
		}

		err = l.reports.UpdateStatus(id, report.Status, to)
		switch {
		case err == nil:
			report.Status = to
			return report, nil
		case errors.Is(err, apperrors.ErrStatusConflict):
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrReportNotFound
		default:
			return nil, fmt.Errorf("failed to update report status: %w", err)
		}
	}

	return nil, apperrors.ErrStatusConflict
}

// Get retrieves a report by ID
func (l *AbsenceLedger) Get(id uuid.UUID) (*models.AbsenceReport, error) {
	report, err := l.reports.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get absence report: %w", err)
	}
	return report, nil
}

// List retrieves every report ordered by sequence
func (l *AbsenceLedger) List() ([]models.AbsenceReport, error) {
	reports, err := l.reports.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list absence reports: %w", err)
	}
	return reports, nil
}

// Staff returns the staff directory the ledger validates senders against
func (l *AbsenceLedger) Staff() repository.StaffDirectoryInterface {
	return l.staff
}
