package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staff-absence-backend/internal/api/handlers"
	"staff-absence-backend/internal/auth"
	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/mocks"
	"staff-absence-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// DashboardHandlerTestSuite defines the test suite for DashboardHandler
type DashboardHandlerTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	workflow *mocks.MockWorkflowServiceInterface
	router   *gin.Engine
}

// SetupTest sets up the test suite
func (suite *DashboardHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctrl = gomock.NewController(suite.T())
	suite.workflow = mocks.NewMockWorkflowServiceInterface(suite.ctrl)

	handler := handlers.NewDashboardHandler(suite.workflow)
	suite.router = gin.New()
	suite.router.GET("/dashboard/stats", handler.GetStats)
	suite.router.GET("/dashboard/absence-reports", handler.ListAbsenceReports)
	suite.router.GET("/dashboard/substitute-requests", handler.ListSubstituteRequests)
	suite.router.POST("/test/absence-report", handler.TestAbsenceReport)
}

// TearDownTest cleans up after each test
func (suite *DashboardHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *DashboardHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DashboardHandlerTestSuite) postTest(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test/absence-report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DashboardHandlerTestSuite) TestGetStats() {
	suite.workflow.EXPECT().Stats().Return(&service.StatsResponse{
		TotalAbsenceReports:     1,
		TotalSubstituteRequests: 2,
		AcceptedSubstitutes:     1,
		DeclinedSubstitutes:     1,
	}, nil)

	w := suite.get("/dashboard/stats")

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{
		"total_absence_reports": 1,
		"total_substitute_requests": 2,
		"accepted_substitutes": 1,
		"declined_substitutes": 1
	}`, w.Body.String())
}

func (suite *DashboardHandlerTestSuite) TestGetStatsError() {
	suite.workflow.EXPECT().Stats().Return(nil, errors.New("store unavailable"))

	w := suite.get("/dashboard/stats")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "Failed to load statistics")
}

func (suite *DashboardHandlerTestSuite) TestListAbsenceReports() {
	id := uuid.New()
	suite.workflow.EXPECT().ListReports().Return([]service.AbsenceReportResponse{{
		ID:        id,
		StaffName: "田中 美咲",
		Date:      "2026-10-18",
		Time:      "10:00-18:00",
		Reason:    "発熱",
		Timestamp: "2026-10-17T18:00:00+09:00",
		Status:    models.ReportStatusRecruiting,
	}}, nil)

	w := suite.get("/dashboard/absence-reports")

	suite.Equal(http.StatusOK, w.Code)
	var got []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Require().Len(got, 1)
	suite.Equal(id.String(), got[0]["id"])
	suite.Equal("田中 美咲", got[0]["staff_name"])
	suite.Equal("recruiting", got[0]["status"])
}

func (suite *DashboardHandlerTestSuite) TestListsAreNeverNull() {
	suite.workflow.EXPECT().ListReports().Return(nil, nil)
	suite.workflow.EXPECT().ListRequests().Return(nil, nil)

	suite.Equal("[]", suite.get("/dashboard/absence-reports").Body.String())
	suite.Equal("[]", suite.get("/dashboard/substitute-requests").Body.String())
}

func (suite *DashboardHandlerTestSuite) TestListSubstituteRequests() {
	reportID := uuid.New()
	suite.workflow.EXPECT().ListRequests().Return([]service.SubstituteRequestResponse{
		{ReportID: reportID, StaffName: "佐藤 健太", Status: models.RequestStatusAccepted, Timestamp: "2026-10-17T18:05:00+09:00"},
		{ReportID: reportID, StaffName: "山田 花子", Status: models.RequestStatusSuperseded, Timestamp: "2026-10-17T18:00:00+09:00"},
	}, nil)

	w := suite.get("/dashboard/substitute-requests")

	suite.Equal(http.StatusOK, w.Code)
	var got []service.SubstituteRequestResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Len(got, 2)
	suite.Equal(models.RequestStatusAccepted, got[0].Status)
}

func (suite *DashboardHandlerTestSuite) TestListErrors() {
	suite.workflow.EXPECT().ListReports().Return(nil, errors.New("boom"))
	suite.workflow.EXPECT().ListRequests().Return(nil, errors.New("boom"))

	suite.Equal(http.StatusInternalServerError, suite.get("/dashboard/absence-reports").Code)
	suite.Equal(http.StatusInternalServerError, suite.get("/dashboard/substitute-requests").Code)
}

func (suite *DashboardHandlerTestSuite) TestTestAbsenceReport() {
	reportID := uuid.New()
	suite.workflow.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event service.InboundEvent) (*service.EventResult, error) {
			suite.Equal("U1234567890", event.SourceUserID)
			suite.Equal("明日、体調不良のため欠勤させていただきます。", event.RawText)
			suite.True(strings.HasPrefix(event.EventID, "test-"))
			suite.False(event.ReceivedAt.IsZero())
			suite.Empty(event.ReplyHandle)
			return &service.EventResult{
				Outcome:            service.EventAbsenceReported,
				Kind:               classifier.KindAbsenceNotice,
				ReportID:           &reportID,
				CandidatesNotified: 2,
			}, nil
		})

	w := suite.postTest(`{"staff_id":" U1234567890 ","message":"明日、体調不良のため欠勤させていただきます。"}`)

	suite.Equal(http.StatusOK, w.Code)
	var got handlers.TestAbsenceReportResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.True(got.Success)
	suite.Equal("absence_reported", got.Message)
	suite.Require().NotNil(got.Result)
	suite.Equal(2, got.Result.CandidatesNotified)
	suite.Equal(reportID, *got.Result.ReportID)
}

func (suite *DashboardHandlerTestSuite) TestTestAbsenceReportBadRequest() {
	tests := []string{
		`{"staff_id":"U1234567890"}`,
		`{"message":"hello"}`,
		`not json`,
	}
	for _, body := range tests {
		suite.Run(body, func() {
			suite.Equal(http.StatusBadRequest, suite.postTest(body).Code)
		})
	}
}

func (suite *DashboardHandlerTestSuite) TestTestAbsenceReportErrors() {
	validationErr := validator.New().Struct(struct {
		SourceUserID string `validate:"required"`
	}{})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("validation failed: %w", validationErr), http.StatusBadRequest},
		{"report vanished", apperrors.ErrReportNotFound, http.StatusNotFound},
		{"sequence exhausted", apperrors.ErrReportExists, http.StatusConflict},
		{"internal", errors.New("failed to look up staff: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.workflow.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := suite.postTest(`{"staff_id":"U1234567890","message":"hello"}`)

			suite.Equal(tt.wantStatus, w.Code)
			suite.Contains(w.Body.String(), `"success":false`)
		})
	}
}

func (suite *DashboardHandlerTestSuite) TestTestAbsenceReportLogsAdmin() {
	hook := test.NewGlobal()
	defer hook.Reset()

	handler := handlers.NewDashboardHandler(suite.workflow)
	router := gin.New()
	router.POST("/test/absence-report", func(c *gin.Context) {
		c.Set("username", "admin")
		c.Set("auth_claims", &auth.AuthClaims{Username: "admin", Role: "admin"})
		c.Next()
	}, handler.TestAbsenceReport)

	suite.workflow.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		Return(&service.EventResult{Outcome: service.EventUnrecognized}, nil)

	req := httptest.NewRequest(http.MethodPost, "/test/absence-report", strings.NewReader(`{"staff_id":"U1234567890","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "Running test message" {
			entry = e
		}
	}
	suite.Require().NotNil(entry)
	suite.Equal("admin", entry.Data["admin"])
	suite.Equal("admin", entry.Data["role"])
	suite.Equal("U1234567890", entry.Data["staff_id"])
}

func TestDashboardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerTestSuite))
}
