// test_helpers.go - shared setup for integration tests against a real sqlite file
package testing

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"portalbackend/internal/catalog"
	"portalbackend/internal/data"
)

// TestConfig holds configuration for test runs
type TestConfig struct {
	DBPath      string
	TestDataDir string
}

// TestSuite provides utilities for integration testing
type TestSuite struct {
	Config    TestConfig
	DB        *sql.DB
	Catalog   *catalog.Service
	mu        sync.Mutex
	testCount int
}

// NewTestSuite creates a new test suite with its own temporary database
func NewTestSuite(t *testing.T) *TestSuite {
	testDir := filepath.Join(os.TempDir(), fmt.Sprintf("portaltest_%d_%d",
		time.Now().UnixNano(), os.Getpid()))
	if err := os.MkdirAll(testDir, 0755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}

	dbPath := filepath.Join(testDir, fmt.Sprintf("test_%d.db", time.Now().UnixNano()))

	suite := &TestSuite{
		Config: TestConfig{
			DBPath:      dbPath,
			TestDataDir: testDir,
		},
		Catalog: catalog.NewService(),
	}

	if err := suite.InitDatabase(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	t.Cleanup(func() {
		suite.Cleanup()
	})

	return suite
}

// InitDatabase sets up the test database with the production schema
func (ts *TestSuite) InitDatabase() error {
	if err := data.InitDB(ts.Config.DBPath); err != nil {
		return fmt.Errorf("failed to init data package: %w", err)
	}

	db, err := data.GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	ts.DB = db

	if err := data.CreateTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Reopen closes and reopens the database, simulating a process restart.
func (ts *TestSuite) Reopen() error {
	if err := data.CloseDB(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return ts.InitDatabase()
}

// Cleanup removes temporary test files and closes the database
func (ts *TestSuite) Cleanup() {
	if err := data.CloseDB(); err != nil {
		fmt.Printf("Warning: failed to close data package database: %v\n", err)
	}

	// Wait a moment for file handles to be released
	time.Sleep(200 * time.Millisecond)

	if err := os.RemoveAll(ts.Config.TestDataDir); err != nil {
		fmt.Printf("Warning: failed to cleanup test directory %s: %v\n", ts.Config.TestDataDir, err)
	}
}

// GenerateStudentID creates a unique test student id
func (ts *TestSuite) GenerateStudentID() string {
	ts.mu.Lock()
	ts.testCount++
	count := ts.testCount
	ts.mu.Unlock()

	return fmt.Sprintf("ERP-test-%d-%d", time.Now().Unix(), count)
}
