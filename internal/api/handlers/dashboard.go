package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"staff-absence-backend/internal/auth"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DashboardHandler serves the read-only dashboard API and the test endpoint
type DashboardHandler struct {
	workflow service.WorkflowServiceInterface
	now      func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(workflow service.WorkflowServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		workflow: workflow,
		now:      time.Now,
	}
}

// TestAbsenceReportRequest is the body of the test endpoint
type TestAbsenceReportRequest struct {
	StaffID string `json:"staff_id" binding:"required" example:"U1234567890"`
	Message string `json:"message" binding:"required" example:"明日、体調不良のため欠勤させていただきます。"`
}

// TestAbsenceReportResponse is returned by the test endpoint
type TestAbsenceReportResponse struct {
	Success bool                 `json:"success" example:"true"`
	Message string               `json:"message" example:"absence_reported"`
	Result  *service.EventResult `json:"result,omitempty"`
}

// GetStats returns the dashboard counters
// @Summary Dashboard statistics
// @Description Count absence reports, substitute requests and their answers
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.StatsResponse "Counters"
// @Failure 500 {object} ErrorResponse "Failed to load statistics"
// @Security BearerAuth
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.workflow.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAbsenceReports returns every absence report, oldest first
// @Summary List absence reports
// @Description List absence reports with their status
// @Tags dashboard
// @Produce json
// @Success 200 {array} service.AbsenceReportResponse "Absence reports"
// @Failure 500 {object} ErrorResponse "Failed to list absence reports"
// @Security BearerAuth
// @Router /api/v1/dashboard/absence-reports [get]
func (h *DashboardHandler) ListAbsenceReports(c *gin.Context) {
	reports, err := h.workflow.ListReports()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list absence reports"})
		return
	}
	if reports == nil {
		reports = []service.AbsenceReportResponse{}
	}

	c.JSON(http.StatusOK, reports)
}

// ListSubstituteRequests returns every substitute request
// @Summary List substitute requests
// @Description List the requests sent to candidates and their answers
// @Tags dashboard
// @Produce json
// @Success 200 {array} service.SubstituteRequestResponse "Substitute requests"
// @Failure 500 {object} ErrorResponse "Failed to list substitute requests"
// @Security BearerAuth
// @Router /api/v1/dashboard/substitute-requests [get]
func (h *DashboardHandler) ListSubstituteRequests(c *gin.Context) {
	requests, err := h.workflow.ListRequests()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list substitute requests"})
		return
	}
	if requests == nil {
		requests = []service.SubstituteRequestResponse{}
	}

	c.JSON(http.StatusOK, requests)
}

// TestAbsenceReport runs a message through the workflow as if staffID had sent it
// @Summary Run a test message
// @Description Process a message synchronously on behalf of a staff member and return the workflow result.
// @Description Notifications are sent exactly as for a real message.
// @Tags test
// @Accept json
// @Produce json
// @Param request body TestAbsenceReportRequest true "Sender and message"
// @Success 200 {object} TestAbsenceReportResponse "Workflow result"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 404 {object} TestAbsenceReportResponse "Report or request vanished"
// @Failure 409 {object} TestAbsenceReportResponse "Report could not be stored"
// @Failure 500 {object} TestAbsenceReportResponse "Workflow failed"
// @Security BearerAuth
// @Router /api/v1/test/absence-report [post]
func (h *DashboardHandler) TestAbsenceReport(c *gin.Context) {
	var req TestAbsenceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := service.InboundEvent{
		EventID:      "test-" + uuid.New().String(),
		SourceUserID: strings.TrimSpace(req.StaffID),
		RawText:      req.Message,
		ReceivedAt:   h.now(),
	}

	fields := map[string]interface{}{"staff_id": event.SourceUserID, "event_id": event.EventID}
	if username, ok := auth.GetUsername(c); ok {
		fields["admin"] = username
	}
	if claims, ok := auth.GetAuthClaims(c); ok {
		fields["role"] = claims.Role
	}
	logger.WithContext(c.Request.Context()).WithFields(fields).Info("Running test message")

	result, err := h.workflow.HandleEvent(c.Request.Context(), event)
	if err != nil {
		status := http.StatusInternalServerError
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs) || apperrors.IsValidation(err):
			status = http.StatusBadRequest
		case apperrors.IsNotFound(err):
			status = http.StatusNotFound
		case apperrors.IsAlreadyExists(err):
			status = http.StatusConflict
		}
		c.JSON(status, TestAbsenceReportResponse{Success: false, Message: err.Error(), Result: result})
		return
	}

	c.JSON(http.StatusOK, TestAbsenceReportResponse{
		Success: true,
		Message: string(result.Outcome),
		Result:  result,
	})
}
