package testutils

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/database"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for readiness ping
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	pgUser     = "absence"
	pgPassword = "absence"
	pgDatabase = "absence_test"
)

// workflowTables are truncated children first
var workflowTables = []string{
	"substitute_requests",
	"absence_reports",
	"staff_profiles",
}

// pgContainer is the Postgres instance shared by every suite in one test binary
type pgContainer struct {
	once     sync.Once
	err      error
	pool     *dockertest.Pool
	resource *dockertest.Resource
	db       *gorm.DB
	config   *config.Config
}

var shared pgContainer

// BaseTestSuite gives a repository suite a migrated workflow database
type BaseTestSuite struct {
	DB     *gorm.DB
	Config *config.Config
}

// SetupTestSuite starts the shared Postgres container on first use
func SetupTestSuite(t *testing.T) *BaseTestSuite {
	t.Helper()
	shared.once.Do(func() { shared.err = shared.start() })
	if shared.err != nil {
		t.Fatalf("failed to start postgres container: %v", shared.err)
	}
	return &BaseTestSuite{DB: shared.db, Config: shared.config}
}

// CleanupSharedContainer purges the shared container. TestMain calls it once per package.
func CleanupSharedContainer() {
	if shared.db != nil {
		if sqlDB, err := shared.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		shared.db = nil
	}
	if shared.pool == nil || shared.resource == nil {
		return
	}
	if err := shared.pool.Purge(shared.resource); err != nil {
		log.Printf("could not purge postgres container %s: %v", shared.resource.Container.Name, err)
	}
	shared.pool, shared.resource = nil, nil
}

func (s *BaseTestSuite) SetupTest()    { s.CleanTestDB() }
func (s *BaseTestSuite) TearDownTest() { s.CleanTestDB() }

// TeardownTestSuite leaves the container running for the next suite
func (s *BaseTestSuite) TeardownTestSuite() { s.CleanTestDB() }

// CleanTestDB empties the workflow tables
func (s *BaseTestSuite) CleanTestDB() {
	if s.DB == nil {
		return
	}
	migrator := s.DB.Migrator()
	for _, table := range workflowTables {
		if migrator.HasTable(table) {
			s.DB.Exec(`TRUNCATE TABLE "` + table + `" CASCADE`)
		}
	}
}

func (c *pgContainer) start() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("could not connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute
	c.pool = pool

	tag := os.Getenv("TEST_POSTGRES_TAG")
	if tag == "" {
		tag = "15-alpine"
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        tag,
		Env: []string{
			"POSTGRES_USER=" + pgUser,
			"POSTGRES_PASSWORD=" + pgPassword,
			"POSTGRES_DB=" + pgDatabase,
			"TZ=Asia/Tokyo",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("could not start postgres: %w", err)
	}
	c.resource = resource
	// a crashed test binary must not leave the container behind
	_ = resource.Expire(600)

	dsn := fmt.Sprintf("postgres://%s:%s@127.0.0.1:%s/%s?sslmode=disable",
		pgUser, pgPassword, resource.GetPort("5432/tcp"), pgDatabase)

	if err := pool.Retry(func() error {
		std, err := sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		defer std.Close()
		return std.Ping()
	}); err != nil {
		return fmt.Errorf("postgres did not become ready: %w", err)
	}

	db, err := database.Initialize(dsn, &database.Options{LogLevel: gormlogger.Silent})
	if err != nil {
		return err
	}
	c.db = db
	c.config = &config.Config{
		Environment: "test",
		LogLevel:    "debug",
		Timezone:    "Asia/Tokyo",
		StoreDriver: config.StorePostgres,
		DatabaseURL: dsn,
	}

	log.Printf("postgres test container %s ready", resource.Container.Name)
	return nil
}
