package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"portalbackend/internal/logger"
)

// Global database instance
var (
	db   *sql.DB
	dbMu sync.RWMutex
)

// Database connection pool configuration
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
	connMaxIdleTime = time.Minute * 15
	queryTimeout    = time.Second * 30
)

const TimeFormat = time.RFC3339

// InitDB initializes the database with connection pooling and resilience
func InitDB(dataSourceName string) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	// Close existing connection if any
	if db != nil {
		db.Close()
	}

	return initDBWithRetry(dataSourceName, 3)
}

func initDBWithRetry(dataSourceName string, maxRetries int) error {
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sql.Open("sqlite", dataSourceName)
		if err != nil {
			logger.LogWarn("Database connection attempt %d failed: %v", attempt, err)
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return fmt.Errorf("failed to open database after %d attempts: %w", maxRetries, err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
		db.SetConnMaxIdleTime(connMaxIdleTime)

		// Test the connection
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.LogWarn("Database ping attempt %d failed: %v", attempt, err)
			db.Close()
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return fmt.Errorf("failed to ping database after %d attempts: %w", maxRetries, err)
		}

		if err := enablePragmasWithRetry(db); err != nil {
			logger.LogWarn("Failed to enable some database optimizations: %v", err)
			// Don't fail initialization for pragma errors
		}

		logger.LogInfo("Database connection established successfully (attempt %d)", attempt)
		return nil
	}

	return fmt.Errorf("failed to initialize database after %d attempts", maxRetries)
}

func enablePragmasWithRetry(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}

	var lastErr error
	for _, pragma := range pragmas {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		_, err := conn.ExecContext(ctx, pragma)
		cancel()

		if err != nil {
			logger.LogWarn("Failed to execute %s: %v", pragma, err)
			lastErr = err
		}
	}
	return lastErr
}

// GetDB returns the database connection with health check
func GetDB() (*sql.DB, error) {
	dbMu.RLock()
	defer dbMu.RUnlock()

	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.LogError("Database health check failed: %v", err)
		return nil, fmt.Errorf("database connection unhealthy: %w", err)
	}

	return db, nil
}

// CloseDB closes the database connection gracefully
func CloseDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// =============================================================================
// SCHEMA DEFINITIONS
// =============================================================================

const receiptTableSchema = `
    CREATE TABLE IF NOT EXISTS receipts (
        token TEXT PRIMARY KEY,
        context TEXT NOT NULL,
        stage INTEGER DEFAULT 0,
        student_id TEXT,
        method TEXT,
        lines_json TEXT DEFAULT '[]',
        charges_json TEXT DEFAULT '[]',
        subtotal REAL DEFAULT 0,
        total REAL DEFAULT 0,
        details_json TEXT DEFAULT '{}',
        created_at TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_receipts_context ON receipts(context);
    CREATE INDEX IF NOT EXISTS idx_receipts_stage ON receipts(stage);`

const reservationTableSchema = `
    CREATE TABLE IF NOT EXISTS reservations (
        reservation_id TEXT PRIMARY KEY,
        erp_id TEXT NOT NULL,
        student_name TEXT NOT NULL,
        course_year TEXT NOT NULL,
        books_json TEXT DEFAULT '[]',
        reserved_at TEXT NOT NULL,
        due_at TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_reservations_erp ON reservations(erp_id);`

const activityTableSchema = `
    CREATE TABLE IF NOT EXISTS activity_entries (
        entry_id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        title TEXT NOT NULL,
        category TEXT,
        points INTEGER DEFAULT 0,
        held_on TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_activity_student ON activity_entries(student_id);`

const syllabusTableSchema = `
    CREATE TABLE IF NOT EXISTS syllabus_progress (
        subject_id TEXT NOT NULL,
        unit_id TEXT NOT NULL,
        covered BOOLEAN DEFAULT 0,
        updated_at TEXT NOT NULL,
        PRIMARY KEY (subject_id, unit_id)
    );`

const cartTableSchema = `
    CREATE TABLE IF NOT EXISTS saved_carts (
        cart_key TEXT PRIMARY KEY,
        lines_json TEXT DEFAULT '[]',
        updated_at TEXT NOT NULL
    );`

func CreateTables() error {
	tables := []struct {
		name   string
		schema string
	}{
		{"receipts", receiptTableSchema},
		{"reservations", reservationTableSchema},
		{"activity", activityTableSchema},
		{"syllabus", syllabusTableSchema},
		{"carts", cartTableSchema},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.schema); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS (JSON AND TIME HANDLING)
// =============================================================================

func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func unmarshalNullableJSON(nullStr sql.NullString, v interface{}) error {
	if !nullStr.Valid || nullStr.String == "" {
		if err := json.Unmarshal([]byte("{}"), v); err != nil {
			if err := json.Unmarshal([]byte("[]"), v); err != nil {
				return fmt.Errorf("failed to set default for type %T: %w", v, err)
			}
		}
		return nil
	}

	if err := json.Unmarshal([]byte(nullStr.String), v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

func parseTime(timeStr string) (time.Time, error) {
	return time.Parse(TimeFormat, timeStr)
}

// =============================================================================
// GENERIC DATABASE OPERATIONS
// =============================================================================

// ExecDB executes a query with better error handling and timeouts
func ExecDB(query string, args ...interface{}) (sql.Result, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := dbConn.ExecContext(ctx, query, args...)
	if err != nil {
		logger.LogError("Database exec failed: query=%s, error=%v", query, err)
		return nil, fmt.Errorf("database execution failed: %w", err)
	}

	return result, nil
}

// QueryDB executes a query with timeout and returns rows
func QueryDB(query string, args ...interface{}) (*sql.Rows, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		logger.LogError("Database query failed: query=%s, error=%v", query, err)
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return rows, nil
}
