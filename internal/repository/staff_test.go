//go:build integration
// +build integration

package repository

import (
	"testing"

	"staff-absence-backend/internal/database"
	"staff-absence-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// StaffRepositoryTestSuite tests the StaffRepository
type StaffRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *StaffRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *StaffRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())
	suite.repo = NewStaffRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *StaffRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *StaffRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *StaffRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// TestCreateAndGet tests creating and reading a staff profile
func (suite *StaffRepositoryTestSuite) TestCreateAndGet() {
	staff := suite.factories.Staff.Create()
	suite.Require().NoError(suite.repo.Create(staff))
	suite.NotZero(staff.CreatedAt)

	found, err := suite.repo.GetByID(staff.ID)
	suite.NoError(err)
	suite.Equal(staff.Name, found.Name)

	_, err = suite.repo.GetByID("U-missing")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestCreateDuplicate tests the primary key translation
func (suite *StaffRepositoryTestSuite) TestCreateDuplicate() {
	staff := suite.factories.Staff.Create()
	suite.Require().NoError(suite.repo.Create(staff))

	again := suite.factories.Staff.WithID(staff.ID)
	suite.ErrorIs(suite.repo.Create(again), gorm.ErrDuplicatedKey)
}

// TestSeedStaffUpserts tests that seeding twice updates instead of failing
func (suite *StaffRepositoryTestSuite) TestSeedStaffUpserts() {
	staff := suite.factories.Staff.Directory(3)
	suite.Require().NoError(database.SeedStaff(suite.baseTestSuite.DB, staff))

	staff[0].Name = "Renamed"
	suite.Require().NoError(database.SeedStaff(suite.baseTestSuite.DB, staff))

	all, err := suite.repo.List()
	suite.NoError(err)
	suite.Len(all, 3)

	found, err := suite.repo.GetByID(staff[0].ID)
	suite.NoError(err)
	suite.Equal("Renamed", found.Name)
}

func TestStaffRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(StaffRepositoryTestSuite))
}
