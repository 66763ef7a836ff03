package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/mocks"
	"staff-absence-backend/internal/repository"
	"staff-absence-backend/internal/service"
	"staff-absence-backend/internal/templates"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	absentID    = "U1234567890"
	candidateA  = "U2345678901"
	candidateB  = "U3456789012"
	absenceText = "明日、体調不良のため欠勤させていただきます。"
	acceptText  = "代わりに出勤します"
	declineText = "代わりに出勤できません"
)

var jst = time.FixedZone("JST", 9*60*60)

// WorkflowOrchestratorTestSuite runs whole conversations through the orchestrator
type WorkflowOrchestratorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockNotifier *mocks.MockNotifier
	workflow     *config.WorkflowConfig
	store        *repository.MemoryStore
	orchestrator *service.WorkflowOrchestrator

	mu   sync.Mutex
	sent []service.OutboundMessage
}

func (suite *WorkflowOrchestratorTestSuite) SetupTest() {
	suite.sent = nil
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockNotifier = mocks.NewMockNotifier(suite.ctrl)
	suite.mockNotifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg service.OutboundMessage) error {
		suite.mu.Lock()
		defer suite.mu.Unlock()
		suite.sent = append(suite.sent, msg)
		return nil
	}).AnyTimes()

	suite.workflow = config.DefaultWorkflowConfig()
	suite.workflow.Appointments = []config.Appointment{
		{CustomerName: "鈴木 一郎", CustomerLineID: "Ucustomer0001", StaffID: absentID, Date: "2026-10-18", Time: "14:00"},
		{CustomerName: "高橋 次郎", CustomerLineID: "Ucustomer0002", StaffID: absentID, Date: "2026-10-19", Time: "11:00"},
	}
	suite.build(suite.mockNotifier)
}

func (suite *WorkflowOrchestratorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *WorkflowOrchestratorTestSuite) build(notifier service.Notifier) {
	v := validator.New()
	suite.store = repository.NewMemoryStore(suite.workflow.Staff)

	ledger, err := service.NewAbsenceLedger(suite.store.Reports, suite.store.Staff, v, fixedClock)
	suite.Require().NoError(err)
	coordinator := service.NewRecruitmentCoordinator(ledger, suite.store.Requests, fixedClock)

	suite.orchestrator = service.NewWorkflowOrchestrator(
		classifier.New(suite.workflow.Classifier, fixedClock),
		ledger,
		coordinator,
		notifier,
		templates.NewRenderer(suite.workflow.Templates),
		suite.workflow,
		v,
		jst,
	)
}

func (suite *WorkflowOrchestratorTestSuite) handle(sender, text string) *service.EventResult {
	result, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{
		EventID:      "evt-" + sender,
		SourceUserID: sender,
		RawText:      text,
		ReplyHandle:  "reply-" + sender,
		ReceivedAt:   fixedClock(),
	})
	suite.Require().NoError(err)
	return result
}

// drain returns and forgets the messages sent so far
func (suite *WorkflowOrchestratorTestSuite) drain() []service.OutboundMessage {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	sent := suite.sent
	suite.sent = nil
	return sent
}

func byChannel(messages []service.OutboundMessage, channel service.Channel) []service.OutboundMessage {
	var out []service.OutboundMessage
	for _, msg := range messages {
		if msg.Channel == channel {
			out = append(out, msg)
		}
	}
	return out
}

func (suite *WorkflowOrchestratorTestSuite) TestAbsenceStartsRecruitment() {
	result := suite.handle(absentID, absenceText)

	suite.Equal(service.EventAbsenceReported, result.Outcome)
	suite.Equal(classifier.KindAbsenceNotice, result.Kind)
	suite.Require().NotNil(result.ReportID)
	suite.Require().NotNil(result.Absence)
	suite.Equal("2026-10-18", result.Absence.Date)
	suite.Equal("体調不良", result.Absence.Reason)
	suite.Equal(2, result.CandidatesNotified)
	suite.False(result.RecruitmentExhausted)

	report, err := suite.store.Reports.GetByID(*result.ReportID)
	suite.Require().NoError(err)
	suite.Equal(models.ReportStatusRecruiting, report.Status)
	suite.Equal(absenceText, report.RawText)

	sent := suite.drain()
	suite.Len(sent, 4)

	staff := byChannel(sent, service.ChannelStaff)
	suite.Require().Len(staff, 3)
	suite.Equal(candidateA, staff[0].RecipientID)
	suite.Equal(candidateB, staff[1].RecipientID)
	for _, msg := range staff[:2] {
		suite.Contains(msg.Text, "代替出勤のお願い")
		suite.Contains(msg.Text, "田中 美咲")
		suite.Contains(msg.Text, "2026-10-18")
		suite.Empty(msg.ReplyHandle)
	}

	reply := staff[2]
	suite.Equal(absentID, reply.RecipientID)
	suite.Equal("reply-"+absentID, reply.ReplyHandle)
	suite.Contains(reply.Text, "当日欠勤報告")
	suite.Contains(reply.Text, "2026-10-17 18:00")

	admin := byChannel(sent, service.ChannelAdmin)
	suite.Require().Len(admin, 1)
	suite.Empty(admin[0].RecipientID)
	suite.Contains(admin[0].Text, "090-1234-5678")
	suite.Contains(admin[0].Text, "2名に依頼")
}

func (suite *WorkflowOrchestratorTestSuite) TestFirstAcceptWinsAndLateAcceptIsTooLate() {
	reported := suite.handle(absentID, absenceText)
	suite.drain()

	accepted := suite.handle(candidateA, acceptText)
	suite.Equal(service.EventSubstituteAccepted, accepted.Outcome)
	suite.Equal(classifier.KindSubstituteAccept, accepted.Kind)
	suite.Equal(*reported.ReportID, *accepted.ReportID)
	suite.Equal(1, accepted.CustomersNotified)

	sent := suite.drain()
	suite.Len(sent, 3)

	staff := byChannel(sent, service.ChannelStaff)
	suite.Require().Len(staff, 1)
	suite.Equal(candidateA, staff[0].RecipientID)
	suite.Contains(staff[0].Text, "佐藤 健太さん、代替出勤ありがとうございます")
	suite.Contains(staff[0].Text, "5,000")

	admin := byChannel(sent, service.ChannelAdmin)
	suite.Require().Len(admin, 1)
	suite.Contains(admin[0].Text, "代替スタッフ: 佐藤 健太")
	suite.Contains(admin[0].Text, "顧客連絡: 1件")

	customer := byChannel(sent, service.ChannelCustomer)
	suite.Require().Len(customer, 1)
	suite.Equal("Ucustomer0001", customer[0].RecipientID)
	suite.Contains(customer[0].Text, "鈴木 一郎")
	suite.Contains(customer[0].Text, "2026-10-18 14:00")
	suite.Contains(customer[0].Text, "代替スタッフ: 佐藤 健太")

	late := suite.handle(candidateB, acceptText)
	suite.Equal(service.EventTooLate, late.Outcome)
	sent = suite.drain()
	suite.Require().Len(sent, 1)
	suite.Equal(candidateB, sent[0].RecipientID)
	suite.Contains(sent[0].Text, "既に他のスタッフで決定しました")

	report, err := suite.store.Reports.GetByID(*reported.ReportID)
	suite.Require().NoError(err)
	suite.Equal(models.ReportStatusFilled, report.Status)

	repeat := suite.handle(candidateB, acceptText)
	suite.Equal(service.EventUnrecognized, repeat.Outcome)
}

func (suite *WorkflowOrchestratorTestSuite) TestAllDeclinesExhaustRecruitment() {
	reported := suite.handle(absentID, absenceText)
	suite.drain()

	first := suite.handle(candidateA, declineText)
	suite.Equal(service.EventSubstituteDeclined, first.Outcome)
	suite.False(first.RecruitmentExhausted)
	sent := suite.drain()
	suite.Require().Len(sent, 1)
	suite.Contains(sent[0].Text, "他のスタッフに依頼いたします")

	second := suite.handle(candidateB, declineText)
	suite.Equal(service.EventSubstituteDeclined, second.Outcome)
	suite.True(second.RecruitmentExhausted)

	sent = suite.drain()
	suite.Len(sent, 2)
	admin := byChannel(sent, service.ChannelAdmin)
	suite.Require().Len(admin, 1)
	suite.Contains(admin[0].Text, "代替スタッフが見つかりませんでした")

	report, err := suite.store.Reports.GetByID(*reported.ReportID)
	suite.Require().NoError(err)
	suite.Equal(models.ReportStatusUnfilled, report.Status)
}

func (suite *WorkflowOrchestratorTestSuite) TestRepliesRouteToOldestOpenReport() {
	first := suite.handle(absentID, absenceText)
	second := suite.handle(candidateB, "明日は風邪で休みます")
	suite.drain()

	accepted := suite.handle(candidateA, acceptText)
	suite.Equal(service.EventSubstituteAccepted, accepted.Outcome)
	suite.Equal(*first.ReportID, *accepted.ReportID)

	again := suite.handle(candidateA, acceptText)
	suite.Equal(service.EventSubstituteAccepted, again.Outcome)
	suite.Equal(*second.ReportID, *again.ReportID)
}

func (suite *WorkflowOrchestratorTestSuite) TestUnknownStaff() {
	result := suite.handle("Ustranger", absenceText)

	suite.Equal(service.EventUnknownStaff, result.Outcome)
	sent := suite.drain()
	suite.Require().Len(sent, 1)
	suite.Equal("Ustranger", sent[0].RecipientID)
	suite.Contains(sent[0].Text, "スタッフ情報が見つかりません")

	reports, err := suite.store.Reports.GetAll()
	suite.Require().NoError(err)
	suite.Empty(reports)
}

func (suite *WorkflowOrchestratorTestSuite) TestReplyFromUnknownStaff() {
	suite.handle(absentID, absenceText)
	suite.drain()

	for _, text := range []string{acceptText, declineText} {
		result := suite.handle("Ustranger", text)

		suite.Equal(service.EventUnknownStaff, result.Outcome)
		suite.Nil(result.ReportID)
		sent := suite.drain()
		suite.Require().Len(sent, 1)
		suite.Equal("Ustranger", sent[0].RecipientID)
		suite.Contains(sent[0].Text, "スタッフ情報が見つかりません")
	}

	requests, err := suite.store.Requests.GetAll()
	suite.Require().NoError(err)
	for _, request := range requests {
		suite.Equal(models.RequestStatusPending, request.Status)
	}
}

func (suite *WorkflowOrchestratorTestSuite) TestEachTestStartsWithoutSentMessages() {
	suite.Empty(suite.drain())
}

func (suite *WorkflowOrchestratorTestSuite) TestUnrecognizedMessages() {
	testCases := []struct {
		name   string
		sender string
		text   string
	}{
		{"small talk", absentID, "おはようございます"},
		{"reply without request", candidateA, acceptText},
		{"marker without intent", candidateA, "代わりの件ですが"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			result := suite.handle(tc.sender, tc.text)
			suite.Equal(service.EventUnrecognized, result.Outcome)

			sent := suite.drain()
			suite.Require().Len(sent, 1)
			suite.Contains(sent[0].Text, "メッセージを理解できませんでした")
		})
	}
}

func (suite *WorkflowOrchestratorTestSuite) TestSoleStaffMemberExhaustsImmediately() {
	suite.workflow.Staff = suite.workflow.Staff[:1]
	suite.build(suite.mockNotifier)

	result := suite.handle(absentID, absenceText)

	suite.Equal(service.EventAbsenceReported, result.Outcome)
	suite.Equal(0, result.CandidatesNotified)
	suite.True(result.RecruitmentExhausted)

	report, err := suite.store.Reports.GetByID(*result.ReportID)
	suite.Require().NoError(err)
	suite.Equal(models.ReportStatusUnfilled, report.Status)

	admin := byChannel(suite.drain(), service.ChannelAdmin)
	suite.Require().Len(admin, 2)
	suite.Contains(admin[1].Text, "代替スタッフが見つかりませんでした")
}

func (suite *WorkflowOrchestratorTestSuite) TestAdminRecipients() {
	suite.workflow.AdminRecipients = []string{"Uadmin01", "Uadmin02"}
	suite.build(suite.mockNotifier)

	suite.handle(absentID, absenceText)

	admin := byChannel(suite.drain(), service.ChannelAdmin)
	suite.Require().Len(admin, 2)
	suite.Equal("Uadmin01", admin[0].RecipientID)
	suite.Equal("Uadmin02", admin[1].RecipientID)
	suite.Equal(admin[0].Text, admin[1].Text)
	suite.NotEqual(admin[0].ID, admin[1].ID)
}

func (suite *WorkflowOrchestratorTestSuite) TestInvalidEvent() {
	_, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{RawText: absenceText})

	suite.Require().Error(err)
	suite.Contains(err.Error(), "validation failed")
	suite.Empty(suite.drain())
}

func (suite *WorkflowOrchestratorTestSuite) TestDashboardViews() {
	reported := suite.handle(absentID, absenceText)
	suite.handle(candidateA, declineText)
	suite.handle(candidateB, acceptText)

	stats, err := suite.orchestrator.Stats()
	suite.Require().NoError(err)
	suite.Equal(&service.StatsResponse{
		TotalAbsenceReports:     1,
		TotalSubstituteRequests: 2,
		AcceptedSubstitutes:     1,
		DeclinedSubstitutes:     1,
	}, stats)

	reports, err := suite.orchestrator.ListReports()
	suite.Require().NoError(err)
	suite.Require().Len(reports, 1)
	suite.Equal(*reported.ReportID, reports[0].ID)
	suite.Equal("田中 美咲", reports[0].StaffName)
	suite.Equal("2026-10-18", reports[0].Date)
	suite.Equal("10:00-18:00", reports[0].Time)
	suite.Equal(models.ReportStatusFilled, reports[0].Status)
	suite.Equal("2026-10-17T18:00:00+09:00", reports[0].Timestamp)

	requests, err := suite.orchestrator.ListRequests()
	suite.Require().NoError(err)
	suite.Require().Len(requests, 2)
	statuses := map[string]models.RequestStatus{}
	for _, request := range requests {
		statuses[request.StaffName] = request.Status
		suite.True(strings.HasSuffix(request.Timestamp, "+09:00"))
	}
	suite.Equal(models.RequestStatusDeclined, statuses["佐藤 健太"])
	suite.Equal(models.RequestStatusAccepted, statuses["山田 花子"])
}

func TestWorkflowOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowOrchestratorTestSuite))
}

// WorkflowDeliveryTestSuite wires the orchestrator to a real dispatcher
type WorkflowDeliveryTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	staffTransport *mocks.MockTransport
	adminTransport *mocks.MockTransport
	orchestrator   *service.WorkflowOrchestrator
}

func (suite *WorkflowDeliveryTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.staffTransport = mocks.NewMockTransport(suite.ctrl)
	suite.adminTransport = mocks.NewMockTransport(suite.ctrl)

	dispatcher := service.NewNotificationDispatcher(map[service.Channel]service.Transport{
		service.ChannelStaff: suite.staffTransport,
		service.ChannelAdmin: suite.adminTransport,
	}, service.DispatcherOptions{
		MaxAttempts: 2,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	})

	workflow := config.DefaultWorkflowConfig()
	v := validator.New()
	store := repository.NewMemoryStore(workflow.Staff)
	ledger, err := service.NewAbsenceLedger(store.Reports, store.Staff, v, fixedClock)
	suite.Require().NoError(err)

	suite.orchestrator = service.NewWorkflowOrchestrator(
		classifier.New(workflow.Classifier, fixedClock),
		ledger,
		service.NewRecruitmentCoordinator(ledger, store.Requests, fixedClock),
		dispatcher,
		templates.NewRenderer(nil),
		workflow,
		v,
		jst,
	)
	dispatcher.SetFailureHandler(suite.orchestrator.HandleDeliveryFailure)
}

func (suite *WorkflowDeliveryTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *WorkflowDeliveryTestSuite) TestUndeliverableMessageIsReportedToAdmins() {
	suite.staffTransport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg service.OutboundMessage) error {
		if msg.RecipientID == candidateB {
			return apperrors.NewDeliveryError("staff", 400, errors.New("user blocked the account"))
		}
		return nil
	}).Times(3)

	var admin []service.OutboundMessage
	suite.adminTransport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg service.OutboundMessage) error {
		admin = append(admin, msg)
		return nil
	}).Times(2)

	result, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{
		SourceUserID: absentID,
		RawText:      absenceText,
	})
	suite.Require().NoError(err)
	suite.Equal(service.EventAbsenceReported, result.Outcome)

	suite.Require().Len(admin, 2)
	suite.Contains(admin[0].Text, "通知エラー")
	suite.Contains(admin[0].Text, candidateB)
	suite.Contains(admin[0].Text, "試行回数: 1")
	suite.Contains(admin[1].Text, "欠勤報告")
}

func (suite *WorkflowDeliveryTestSuite) TestFailedAdminMessageIsNotEscalated() {
	suite.staffTransport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	suite.adminTransport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("webhook down")).Times(2)

	_, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{
		SourceUserID: absentID,
		RawText:      absenceText,
	})
	suite.Require().NoError(err)
}

func TestWorkflowDeliveryTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowDeliveryTestSuite))
}

// WorkflowFailureTestSuite covers internal errors surfaced by the store
type WorkflowFailureTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockReports  *mocks.MockAbsenceReportRepositoryInterface
	mockStaff    *mocks.MockStaffDirectoryInterface
	mockRequests *mocks.MockSubstituteRequestRepositoryInterface
	mockNotifier *mocks.MockNotifier
	orchestrator *service.WorkflowOrchestrator
}

func (suite *WorkflowFailureTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockReports = mocks.NewMockAbsenceReportRepositoryInterface(suite.ctrl)
	suite.mockStaff = mocks.NewMockStaffDirectoryInterface(suite.ctrl)
	suite.mockRequests = mocks.NewMockSubstituteRequestRepositoryInterface(suite.ctrl)
	suite.mockNotifier = mocks.NewMockNotifier(suite.ctrl)

	suite.mockReports.EXPECT().MaxSequence().Return(int64(0), nil)
	v := validator.New()
	ledger, err := service.NewAbsenceLedger(suite.mockReports, suite.mockStaff, v, fixedClock)
	suite.Require().NoError(err)

	workflow := config.DefaultWorkflowConfig()
	suite.orchestrator = service.NewWorkflowOrchestrator(
		classifier.New(workflow.Classifier, fixedClock),
		ledger,
		service.NewRecruitmentCoordinator(ledger, suite.mockRequests, fixedClock),
		suite.mockNotifier,
		templates.NewRenderer(nil),
		workflow,
		v,
		jst,
	)
}

func (suite *WorkflowFailureTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *WorkflowFailureTestSuite) TestStoreFailureRepliesWithInternalError() {
	suite.mockStaff.EXPECT().GetByID(absentID).Return(nil, errors.New("connection refused"))
	suite.mockNotifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg service.OutboundMessage) error {
		suite.Equal(absentID, msg.RecipientID)
		suite.Contains(msg.Text, "エラーが発生しました")
		return nil
	})

	result, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{
		SourceUserID: absentID,
		RawText:      absenceText,
	})

	suite.Nil(result)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "failed to look up staff")
}

func (suite *WorkflowFailureTestSuite) TestNotifierFailureDoesNotFailWorkflow() {
	suite.mockStaff.EXPECT().GetByID(candidateA).Return(&testStaff[1], nil)
	suite.mockRequests.EXPECT().GetByCandidateID(candidateA).Return(nil, nil)
	suite.mockNotifier.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(apperrors.ErrDispatchQueueFull)

	result, err := suite.orchestrator.HandleEvent(context.Background(), service.InboundEvent{
		SourceUserID: candidateA,
		RawText:      acceptText,
	})

	suite.Require().NoError(err)
	suite.Equal(service.EventUnrecognized, result.Outcome)
}

func TestWorkflowFailureTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowFailureTestSuite))
}
