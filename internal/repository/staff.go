package repository

import (
	"staff-absence-backend/internal/database/models"

	"gorm.io/gorm"
)

// StaffRepository handles database operations for the staff directory
type StaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create creates a new staff profile
func (r *StaffRepository) Create(staff *models.StaffProfile) error {
	return r.db.Create(staff).Error
}

// GetByID retrieves a staff profile by its messaging user id
func (r *StaffRepository) GetByID(id string) (*models.StaffProfile, error) {
	var staff models.StaffProfile
	err := r.db.First(&staff, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// List retrieves the whole directory in creation order
func (r *StaffRepository) List() ([]models.StaffProfile, error) {
	var staff []models.StaffProfile
	err := r.db.Order("created_at ASC, id ASC").Find(&staff).Error
	return staff, err
}
