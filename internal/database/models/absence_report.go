package models

// AbsenceReport records an unplanned absence declared by a staff member
type AbsenceReport struct {
	BaseModel
	StaffID     string       `json:"staff_id" gorm:"size:64;not null;index" validate:"required"`
	StaffName   string       `json:"staff_name" gorm:"size:100;not null"`
	AbsenceDate string       `json:"absence_date" gorm:"type:varchar(10);not null;index" validate:"required,datetime=2006-01-02"`
	TimeRange   string       `json:"time_range" gorm:"type:varchar(11);not null" validate:"required"`
	Reason      string       `json:"reason" gorm:"size:100;not null" validate:"required"`
	RawText     string       `json:"raw_text" gorm:"type:text"`
	Status      ReportStatus `json:"status" gorm:"type:varchar(20);not null;default:'reported';index" validate:"required"`
	Sequence    int64        `json:"sequence" gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for AbsenceReport
func (AbsenceReport) TableName() string {
	return "absence_reports"
}
