package repository

import (
	"time"

	"staff-absence-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// StaffDirectoryInterface defines the read operations on the staff directory
type StaffDirectoryInterface interface {
	GetByID(id string) (*models.StaffProfile, error)
	List() ([]models.StaffProfile, error)
}

// AbsenceReportRepositoryInterface defines the interface for absence report repository operations
type AbsenceReportRepositoryInterface interface {
	Create(report *models.AbsenceReport) error
	GetByID(id uuid.UUID) (*models.AbsenceReport, error)
	GetAll() ([]models.AbsenceReport, error)
	UpdateStatus(id uuid.UUID, from, to models.ReportStatus) error
	MaxSequence() (int64, error)
}

// SubstituteRequestRepositoryInterface defines the interface for substitute request repository operations
type SubstituteRequestRepositoryInterface interface {
	CreateBatch(requests []models.SubstituteRequest) error
	Get(reportID uuid.UUID, candidateID string) (*models.SubstituteRequest, error)
	GetByReportID(reportID uuid.UUID) ([]models.SubstituteRequest, error)
	GetByCandidateID(candidateID string) ([]models.SubstituteRequest, error)
	GetAll() ([]models.SubstituteRequest, error)
	ResolveRecruitment(resolution *Resolution) error
}

// RequestUpdate moves one substitute request from one status to another.
// RespondedAt is written only when non-nil.
type RequestUpdate struct {
	RequestID   uuid.UUID
	From        models.RequestStatus
	To          models.RequestStatus
	RespondedAt *time.Time
}

// Resolution is a set of request updates plus an optional report transition
// that must be applied together or not at all.
type Resolution struct {
	ReportID   uuid.UUID
	ReportFrom models.ReportStatus
	ReportTo   models.ReportStatus // empty leaves the report untouched
	Updates    []RequestUpdate
}

// TransitionsReport reports whether the resolution changes the report status
func (r *Resolution) TransitionsReport() bool {
	return r.ReportTo != ""
}
