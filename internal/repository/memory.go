package repository

import (
	"sort"
	"sync"
	"time"

	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryStore keeps the workflow state in process memory. It returns the
// same gorm sentinel errors as the database repositories so callers map
// failures identically for both backends.
type MemoryStore struct {
	mu       sync.RWMutex
	staff    []models.StaffProfile
	reports  map[uuid.UUID]*models.AbsenceReport
	requests map[uuid.UUID]*models.SubstituteRequest
	now      func() time.Time

	Staff    *MemoryStaffDirectory
	Reports  *MemoryAbsenceReportRepository
	Requests *MemorySubstituteRequestRepository
}

// MemoryStaffDirectory is the staff view of a MemoryStore
type MemoryStaffDirectory struct{ store *MemoryStore }

// MemoryAbsenceReportRepository is the absence report view of a MemoryStore
type MemoryAbsenceReportRepository struct{ store *MemoryStore }

// MemorySubstituteRequestRepository is the substitute request view of a MemoryStore
type MemorySubstituteRequestRepository struct{ store *MemoryStore }

// NewMemoryStore creates a store whose staff directory is fixed to staff
func NewMemoryStore(staff []models.StaffProfile) *MemoryStore {
	s := &MemoryStore{
		staff:    append([]models.StaffProfile(nil), staff...),
		reports:  make(map[uuid.UUID]*models.AbsenceReport),
		requests: make(map[uuid.UUID]*models.SubstituteRequest),
		now:      time.Now,
	}
	s.Staff = &MemoryStaffDirectory{store: s}
	s.Reports = &MemoryAbsenceReportRepository{store: s}
	s.Requests = &MemorySubstituteRequestRepository{store: s}
	return s
}

// GetByID retrieves a staff profile by its messaging user id
func (d *MemoryStaffDirectory) GetByID(id string) (*models.StaffProfile, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	for _, staff := range d.store.staff {
		if staff.ID == id {
			found := staff
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List retrieves the whole directory in configuration order
func (d *MemoryStaffDirectory) List() ([]models.StaffProfile, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	return append([]models.StaffProfile(nil), d.store.staff...), nil
}

// Create stores a new absence report
func (r *MemoryAbsenceReportRepository) Create(report *models.AbsenceReport) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if _, exists := s.reports[report.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range s.reports {
		if existing.Sequence == report.Sequence {
			return gorm.ErrDuplicatedKey
		}
	}
	if report.Status == "" {
		report.Status = models.ReportStatusReported
	}
	now := s.now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	stored := *report
	s.reports[report.ID] = &stored
	return nil
}

// GetByID retrieves an absence report by ID
func (r *MemoryAbsenceReportRepository) GetByID(id uuid.UUID) (*models.AbsenceReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	report, ok := r.store.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *report
	return &found, nil
}

// GetAll retrieves every absence report ordered by sequence
func (r *MemoryAbsenceReportRepository) GetAll() ([]models.AbsenceReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	reports := make([]models.AbsenceReport, 0, len(r.store.reports))
	for _, report := range r.store.reports {
		reports = append(reports, *report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Sequence < reports[j].Sequence })
	return reports, nil
}

// UpdateStatus moves a report from one status to another, failing with
// ErrStatusConflict when the stored status is no longer from
func (r *MemoryAbsenceReportRepository) UpdateStatus(id uuid.UUID, from, to models.ReportStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateReportStatus(id, from, to)
}

// MaxSequence returns the highest sequence stored, or zero when empty
func (r *MemoryAbsenceReportRepository) MaxSequence() (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var maxSequence int64
	for _, report := range r.store.reports {
		if report.Sequence > maxSequence {
			maxSequence = report.Sequence
		}
	}
	return maxSequence, nil
}

// CreateBatch stores all requests or none of them
func (r *MemorySubstituteRequestRepository) CreateBatch(requests []models.SubstituteRequest) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	type pair struct {
		reportID    uuid.UUID
		candidateID string
	}
	taken := make(map[pair]bool, len(s.requests)+len(requests))
	for _, existing := range s.requests {
		taken[pair{existing.ReportID, existing.CandidateID}] = true
	}
	for i := range requests {
		key := pair{requests[i].ReportID, requests[i].CandidateID}
		if taken[key] {
			return gorm.ErrDuplicatedKey
		}
		taken[key] = true
	}

	now := s.now()
	for i := range requests {
		request := &requests[i]
		if request.ID == uuid.Nil {
			request.ID = uuid.New()
		}
		if request.Status == "" {
			request.Status = models.RequestStatusPending
		}
		if request.RequestedAt.IsZero() {
			request.RequestedAt = now
		}
		request.CreatedAt = now
		request.UpdatedAt = now

		stored := *request
		s.requests[request.ID] = &stored
	}
	return nil
}

// Get retrieves the request sent to candidateID for reportID
func (r *MemorySubstituteRequestRepository) Get(reportID uuid.UUID, candidateID string) (*models.SubstituteRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, request := range r.store.requests {
		if request.ReportID == reportID && request.CandidateID == candidateID {
			found := copyRequest(request)
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// GetByReportID retrieves all requests for a report
func (r *MemorySubstituteRequestRepository) GetByReportID(reportID uuid.UUID) ([]models.SubstituteRequest, error) {
	return r.filter(func(request *models.SubstituteRequest) bool { return request.ReportID == reportID }), nil
}

// GetByCandidateID retrieves all requests sent to a candidate
func (r *MemorySubstituteRequestRepository) GetByCandidateID(candidateID string) ([]models.SubstituteRequest, error) {
	return r.filter(func(request *models.SubstituteRequest) bool { return request.CandidateID == candidateID }), nil
}

// GetAll retrieves every substitute request
func (r *MemorySubstituteRequestRepository) GetAll() ([]models.SubstituteRequest, error) {
	return r.filter(func(*models.SubstituteRequest) bool { return true }), nil
}

// ResolveRecruitment validates every guard before applying any change
func (r *MemorySubstituteRequestRepository) ResolveRecruitment(resolution *Resolution) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if resolution.TransitionsReport() {
		report, ok := s.reports[resolution.ReportID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if report.Status != resolution.ReportFrom {
			return apperrors.ErrStatusConflict
		}
	}
	for _, update := range resolution.Updates {
		request, ok := s.requests[update.RequestID]
		if !ok || request.ReportID != resolution.ReportID || request.Status != update.From {
			return apperrors.ErrStatusConflict
		}
	}

	now := s.now()
	if resolution.TransitionsReport() {
		report := s.reports[resolution.ReportID]
		report.Status = resolution.ReportTo
		report.UpdatedAt = now
	}
	for _, update := range resolution.Updates {
		request := s.requests[update.RequestID]
		request.Status = update.To
		if update.RespondedAt != nil {
			respondedAt := *update.RespondedAt
			request.RespondedAt = &respondedAt
		}
		request.UpdatedAt = now
	}
	return nil
}

func (r *MemorySubstituteRequestRepository) filter(keep func(*models.SubstituteRequest) bool) []models.SubstituteRequest {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	requests := make([]models.SubstituteRequest, 0)
	for _, request := range r.store.requests {
		if keep(request) {
			requests = append(requests, copyRequest(request))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].RequestedAt.Equal(requests[j].RequestedAt) {
			return requests[i].RequestedAt.Before(requests[j].RequestedAt)
		}
		return requests[i].CandidateID < requests[j].CandidateID
	})
	return requests
}

func (s *MemoryStore) updateReportStatus(id uuid.UUID, from, to models.ReportStatus) error {
	report, ok := s.reports[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if report.Status != from {
		return apperrors.ErrStatusConflict
	}
	report.Status = to
	report.UpdatedAt = s.now()
	return nil
}

func copyRequest(request *models.SubstituteRequest) models.SubstituteRequest {
	out := *request
	if request.RespondedAt != nil {
		respondedAt := *request.RespondedAt
		out.RespondedAt = &respondedAt
	}
	return out
}
