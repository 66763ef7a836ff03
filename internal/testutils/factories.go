package testutils

import (
	"sync/atomic"
	"time"

	"staff-absence-backend/internal/database/models"

	"github.com/google/uuid"
)

// StaffFactory provides methods to create test StaffProfile data
type StaffFactory struct{}

// NewStaffFactory creates a new StaffFactory
func NewStaffFactory() *StaffFactory {
	return &StaffFactory{}
}

// Create creates a test StaffProfile with a unique id
func (f *StaffFactory) Create() *models.StaffProfile {
	id := "U" + uuid.New().String()[:10]
	return &models.StaffProfile{
		ID:    id,
		Name:  "Test Staff " + id[1:5],
		Role:  "美容師",
		Phone: "090-0000-0000",
	}
}

// WithID sets a custom id for the staff profile
func (f *StaffFactory) WithID(id string) *models.StaffProfile {
	staff := f.Create()
	staff.ID = id
	return staff
}

// Directory returns n distinct staff profiles
func (f *StaffFactory) Directory(n int) []models.StaffProfile {
	staff := make([]models.StaffProfile, 0, n)
	for i := 0; i < n; i++ {
		staff = append(staff, *f.Create())
	}
	return staff
}

// AbsenceReportFactory provides methods to create test AbsenceReport data
type AbsenceReportFactory struct {
	sequence atomic.Int64
}

// NewAbsenceReportFactory creates a new AbsenceReportFactory
func NewAbsenceReportFactory() *AbsenceReportFactory {
	return &AbsenceReportFactory{}
}

// Create creates a test AbsenceReport with the next sequence number
func (f *AbsenceReportFactory) Create() *models.AbsenceReport {
	return &models.AbsenceReport{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		StaffID:     "U1234567890",
		StaffName:   "田中 美咲",
		AbsenceDate: "2026-10-18",
		TimeRange:   "10:00-18:00",
		Reason:      "発熱",
		RawText:     "今日熱で欠勤します",
		Status:      models.ReportStatusReported,
		Sequence:    f.sequence.Add(1),
	}
}

// ForStaff sets the absent staff member
func (f *AbsenceReportFactory) ForStaff(staff *models.StaffProfile) *models.AbsenceReport {
	report := f.Create()
	report.StaffID = staff.ID
	report.StaffName = staff.Name
	return report
}

// WithStatus sets a custom status for the report
func (f *AbsenceReportFactory) WithStatus(status models.ReportStatus) *models.AbsenceReport {
	report := f.Create()
	report.Status = status
	return report
}

// SubstituteRequestFactory provides methods to create test SubstituteRequest data
type SubstituteRequestFactory struct{}

// NewSubstituteRequestFactory creates a new SubstituteRequestFactory
func NewSubstituteRequestFactory() *SubstituteRequestFactory {
	return &SubstituteRequestFactory{}
}

// Create creates a pending SubstituteRequest for the given report and candidate
func (f *SubstituteRequestFactory) Create(reportID uuid.UUID, candidateID string) models.SubstituteRequest {
	return models.SubstituteRequest{
		BaseModel: models.BaseModel{
			ID: uuid.New(),
		},
		ReportID:      reportID,
		CandidateID:   candidateID,
		CandidateName: "Candidate " + candidateID,
		Status:        models.RequestStatusPending,
		RequestedAt:   time.Now(),
	}
}

// ForCandidates creates one pending request per candidate
func (f *SubstituteRequestFactory) ForCandidates(reportID uuid.UUID, candidates []models.StaffProfile) []models.SubstituteRequest {
	requests := make([]models.SubstituteRequest, 0, len(candidates))
	for _, candidate := range candidates {
		request := f.Create(reportID, candidate.ID)
		request.CandidateName = candidate.Name
		requests = append(requests, request)
	}
	return requests
}

// FactorySet provides access to all factories
type FactorySet struct {
	Staff             *StaffFactory
	AbsenceReport     *AbsenceReportFactory
	SubstituteRequest *SubstituteRequestFactory
}

// NewFactorySet creates a new FactorySet with all factories initialized
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Staff:             NewStaffFactory(),
		AbsenceReport:     NewAbsenceReportFactory(),
		SubstituteRequest: NewSubstituteRequestFactory(),
	}
}

// CreateRecruitment creates an absent staff member, a report for them and
// one pending request for each of the other candidates
func (fs *FactorySet) CreateRecruitment(candidates int) (*models.StaffProfile, *models.AbsenceReport, []models.StaffProfile, []models.SubstituteRequest) {
	absent := fs.Staff.Create()
	report := fs.AbsenceReport.ForStaff(absent)
	others := fs.Staff.Directory(candidates)
	requests := fs.SubstituteRequest.ForCandidates(report.ID, others)
	return absent, report, others, requests
}
