package models

import (
	"time"

	"github.com/google/uuid"
)

// SubstituteRequest invites one candidate to cover one absence report
type SubstituteRequest struct {
	BaseModel
	ReportID      uuid.UUID     `json:"report_id" gorm:"type:uuid;not null;uniqueIndex:idx_substitute_requests_report_candidate" validate:"required"`
	CandidateID   string        `json:"candidate_id" gorm:"size:64;not null;uniqueIndex:idx_substitute_requests_report_candidate;index" validate:"required"`
	CandidateName string        `json:"candidate_name" gorm:"size:100;not null"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index" validate:"required"`
	RequestedAt   time.Time     `json:"requested_at" gorm:"not null"`
	RespondedAt   *time.Time    `json:"responded_at,omitempty"`
}

// TableName returns the table name for SubstituteRequest
func (SubstituteRequest) TableName() string {
	return "substitute_requests"
}

// Answered reports whether the candidate has replied to this request
func (r *SubstituteRequest) Answered() bool {
	return r.RespondedAt != nil
}
