package repository

import (
	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubstituteRequestRepository handles database operations for substitute requests
type SubstituteRequestRepository struct {
	db *gorm.DB
}

// NewSubstituteRequestRepository creates a new substitute request repository
func NewSubstituteRequestRepository(db *gorm.DB) *SubstituteRequestRepository {
	return &SubstituteRequestRepository{db: db}
}

// CreateBatch inserts all requests in one statement
func (r *SubstituteRequestRepository) CreateBatch(requests []models.SubstituteRequest) error {
	if len(requests) == 0 {
		return nil
	}
	return r.db.Create(&requests).Error
}

// Get retrieves the request sent to candidateID for reportID
func (r *SubstituteRequestRepository) Get(reportID uuid.UUID, candidateID string) (*models.SubstituteRequest, error) {
	var request models.SubstituteRequest
	err := r.db.Where("report_id = ? AND candidate_id = ?", reportID, candidateID).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByReportID retrieves all requests for a report
func (r *SubstituteRequestRepository) GetByReportID(reportID uuid.UUID) ([]models.SubstituteRequest, error) {
	var requests []models.SubstituteRequest
	err := r.db.Where("report_id = ?", reportID).Order("requested_at ASC, candidate_id ASC").Find(&requests).Error
	return requests, err
}

// GetByCandidateID retrieves all requests sent to a candidate
func (r *SubstituteRequestRepository) GetByCandidateID(candidateID string) ([]models.SubstituteRequest, error) {
	var requests []models.SubstituteRequest
	err := r.db.Where("candidate_id = ?", candidateID).Order("requested_at ASC").Find(&requests).Error
	return requests, err
}

// GetAll retrieves every substitute request
func (r *SubstituteRequestRepository) GetAll() ([]models.SubstituteRequest, error) {
	var requests []models.SubstituteRequest
	err := r.db.Order("requested_at ASC, candidate_id ASC").Find(&requests).Error
	return requests, err
}

// ResolveRecruitment applies the resolution in a single transaction. Every
// row is guarded by its expected status; a mismatch rolls everything back
// with ErrStatusConflict.
func (r *SubstituteRequestRepository) ResolveRecruitment(resolution *Resolution) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if resolution.TransitionsReport() {
			result := tx.Model(&models.AbsenceReport{}).
				Where("id = ? AND status = ?", resolution.ReportID, resolution.ReportFrom).
				Update("status", resolution.ReportTo)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrStatusConflict
			}
		}

		for _, update := range resolution.Updates {
			values := map[string]interface{}{"status": update.To}
			if update.RespondedAt != nil {
				values["responded_at"] = *update.RespondedAt
			}
			result := tx.Model(&models.SubstituteRequest{}).
				Where("id = ? AND report_id = ? AND status = ?", update.RequestID, resolution.ReportID, update.From).
				Updates(values)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrStatusConflict
			}
		}

		return nil
	})
}
