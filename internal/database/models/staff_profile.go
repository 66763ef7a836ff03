package models

import "time"

// StaffProfile is a staff directory entry keyed by the messaging platform user id
type StaffProfile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64" yaml:"id" validate:"required,max=64"`
	Name      string    `json:"name" gorm:"size:100;not null" yaml:"name" validate:"required,max=100"`
	Role      string    `json:"role" gorm:"size:50" yaml:"role" validate:"max=50"`
	Phone     string    `json:"phone" gorm:"size:30" yaml:"phone" validate:"max=30"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// TableName returns the table name for StaffProfile
func (StaffProfile) TableName() string {
	return "staff_profiles"
}
