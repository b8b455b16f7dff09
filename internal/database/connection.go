package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by the DB_TYPE environment variable
// ("sqlite" or "postgres", sqlite by default) and initializes the schema.
func Connect() (*sqlx.DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	switch dbType {
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
			path = filepath.Join(dataDir, "khatm.db")
		}
		return OpenSQLite(path)

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
		if err := InitializeSchema(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// OpenSQLite opens (or creates) a sqlite database at path and initializes
// the schema. Pass ":memory:" for an in-memory database in tests.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitializeSchema creates the tables if they don't exist.
func InitializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS surahs (
				id %s,
				number INTEGER NOT NULL UNIQUE,
				name_arabic TEXT NOT NULL DEFAULT '',
				name_english TEXT NOT NULL DEFAULT '',
				name_transliteration TEXT NOT NULL,
				verse_count INTEGER NOT NULL,
				revelation_type TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS khatms (
				id %s,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				start_date TIMESTAMP NOT NULL,
				end_date TIMESTAMP NOT NULL,
				frequency_type TEXT NOT NULL,
				reading_days TEXT,
				reading_time TEXT NOT NULL,
				timezone TEXT NOT NULL DEFAULT 'UTC',
				reading_mode TEXT NOT NULL DEFAULT 'read_listen',
				enable_audio_break BOOLEAN NOT NULL DEFAULT true,
				total_sessions INTEGER NOT NULL,
				total_verses INTEGER NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				is_completed BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS khatm_sessions (
				id %s,
				khatm_id INTEGER NOT NULL,
				session_number INTEGER NOT NULL,
				scheduled_date TIMESTAMP NOT NULL,
				scheduled_time TEXT NOT NULL,
				start_verse INTEGER NOT NULL,
				end_verse INTEGER NOT NULL,
				start_surah INTEGER NOT NULL,
				start_verse_in_surah INTEGER NOT NULL,
				end_surah INTEGER NOT NULL,
				end_verse_in_surah INTEGER NOT NULL,
				verse_count INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'scheduled',
				verses_read_count INTEGER NOT NULL DEFAULT 0,
				current_verse INTEGER,
				completed_at TIMESTAMP,
				skipped_at TIMESTAMP,
				skipped_reason TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (khatm_id) REFERENCES khatms(id),
				UNIQUE(khatm_id, session_number),
				UNIQUE(khatm_id, scheduled_date)
			)
		`, idColumn),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
