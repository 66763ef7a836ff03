package models

// ReportStatus is the lifecycle state of an absence report
type ReportStatus string

const (
	ReportStatusReported   ReportStatus = "reported"
	ReportStatusRecruiting ReportStatus = "recruiting"
	ReportStatusFilled     ReportStatus = "filled"
	ReportStatusUnfilled   ReportStatus = "unfilled"
)

// RequestStatus is the state of a single substitute request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusDeclined   RequestStatus = "declined"
	RequestStatusSuperseded RequestStatus = "superseded"
)

// IsValid checks if the ReportStatus is valid
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusReported, ReportStatusRecruiting, ReportStatusFilled, ReportStatusUnfilled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusFilled || s == ReportStatusUnfilled
}

// CanTransitionTo enforces reported -> recruiting -> {filled, unfilled}
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	switch s {
	case ReportStatusReported:
		return next == ReportStatusRecruiting
	case ReportStatusRecruiting:
		return next == ReportStatusFilled || next == ReportStatusUnfilled
	}
	return false
}

// IsValid checks if the RequestStatus is valid
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusDeclined, RequestStatusSuperseded:
		return true
	}
	return false
}
