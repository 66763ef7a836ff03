package repository

import (
	"errors"

	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AbsenceReportRepository handles database operations for absence reports
type AbsenceReportRepository struct {
	db *gorm.DB
}

// NewAbsenceReportRepository creates a new absence report repository
func NewAbsenceReportRepository(db *gorm.DB) *AbsenceReportRepository {
	return &AbsenceReportRepository{db: db}
}

// Create creates a new absence report
func (r *AbsenceReportRepository) Create(report *models.AbsenceReport) error {
	return r.db.Create(report).Error
}

// GetByID retrieves an absence report by ID
func (r *AbsenceReportRepository) GetByID(id uuid.UUID) (*models.AbsenceReport, error) {
	var report models.AbsenceReport
	err := r.db.First(&report, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetAll retrieves every absence report ordered by sequence
func (r *AbsenceReportRepository) GetAll() ([]models.AbsenceReport, error) {
	var reports []models.AbsenceReport
	err := r.db.Order("sequence ASC").Find(&reports).Error
	return reports, err
}

// UpdateStatus moves a report from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (r *AbsenceReportRepository) UpdateStatus(id uuid.UUID, from, to models.ReportStatus) error {
	result := r.db.Model(&models.AbsenceReport{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Distinguish a missing report from a lost race
	if _, err := r.GetByID(id); err != nil {
		return err
	}
	return apperrors.ErrStatusConflict
}

// MaxSequence returns the highest sequence stored, or zero for an empty table
func (r *AbsenceReportRepository) MaxSequence() (int64, error) {
	var maxSequence int64
	err := r.db.Model(&models.AbsenceReport{}).Select("COALESCE(MAX(sequence), 0)").Scan(&maxSequence).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return maxSequence, nil
}
