//go:build integration
// +build integration

package repository

import (
	"sync"
	"testing"

	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// AbsenceReportRepositoryTestSuite tests the AbsenceReportRepository
type AbsenceReportRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *AbsenceReportRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *AbsenceReportRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewAbsenceReportRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *AbsenceReportRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *AbsenceReportRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *AbsenceReportRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// TestCreate tests creating a new report
func (suite *AbsenceReportRepositoryTestSuite) TestCreate() {
	report := suite.factories.AbsenceReport.Create()

	err := suite.repo.Create(report)

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, report.ID)

	found, err := suite.repo.GetByID(report.ID)
	suite.NoError(err)
	suite.Equal(report.Reason, found.Reason)
	suite.Equal(models.ReportStatusReported, found.Status)
}

// TestCreateDuplicateSequence tests the sequence unique index
func (suite *AbsenceReportRepositoryTestSuite) TestCreateDuplicateSequence() {
	first := suite.factories.AbsenceReport.Create()
	suite.Require().NoError(suite.repo.Create(first))

	second := suite.factories.AbsenceReport.Create()
	second.Sequence = first.Sequence
	suite.ErrorIs(suite.repo.Create(second), gorm.ErrDuplicatedKey)
}

// TestGetByIDNotFound tests retrieving a missing report
func (suite *AbsenceReportRepositoryTestSuite) TestGetByIDNotFound() {
	_, err := suite.repo.GetByID(uuid.New())
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestGetAllAndMaxSequence tests ordering and the sequence seed
func (suite *AbsenceReportRepositoryTestSuite) TestGetAllAndMaxSequence() {
	maxSequence, err := suite.repo.MaxSequence()
	suite.NoError(err)
	suite.Equal(int64(0), maxSequence)

	var created []*models.AbsenceReport
	for i := 0; i < 3; i++ {
		report := suite.factories.AbsenceReport.Create()
		suite.Require().NoError(suite.repo.Create(report))
		created = append(created, report)
	}

	reports, err := suite.repo.GetAll()
	suite.NoError(err)
	suite.Require().Len(reports, 3)
	for i := range created {
		suite.Equal(created[i].ID, reports[i].ID)
	}

	maxSequence, err = suite.repo.MaxSequence()
	suite.NoError(err)
	suite.Equal(created[2].Sequence, maxSequence)
}

// TestUpdateStatus tests compare-and-set status changes
func (suite *AbsenceReportRepositoryTestSuite) TestUpdateStatus() {
	report := suite.factories.AbsenceReport.Create()
	suite.Require().NoError(suite.repo.Create(report))

	suite.NoError(suite.repo.UpdateStatus(report.ID, models.ReportStatusReported, models.ReportStatusRecruiting))
	suite.ErrorIs(suite.repo.UpdateStatus(report.ID, models.ReportStatusReported, models.ReportStatusRecruiting), apperrors.ErrStatusConflict)
	suite.ErrorIs(suite.repo.UpdateStatus(uuid.New(), models.ReportStatusReported, models.ReportStatusRecruiting), gorm.ErrRecordNotFound)
}

// TestUpdateStatusConcurrent tests that exactly one concurrent transition wins
func (suite *AbsenceReportRepositoryTestSuite) TestUpdateStatusConcurrent() {
	report := suite.factories.AbsenceReport.Create()
	suite.Require().NoError(suite.repo.Create(report))

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- suite.repo.UpdateStatus(report.ID, models.ReportStatusReported, models.ReportStatusRecruiting)
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		suite.ErrorIs(err, apperrors.ErrStatusConflict)
	}
	suite.Equal(1, wins)
}

func TestAbsenceReportRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AbsenceReportRepositoryTestSuite))
}
