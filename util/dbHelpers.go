package util

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"  // driver: postgres
	_ "modernc.org/sqlite" // driver: sqlite
)

var DB *sql.DB
var DBDriver string

// DBConnectAndPopulateDBVar opens the datastore named by the config and
// stores the handle in the package-level DB var. Postgres is the production
// target; sqlite backs local development and the test suite.
func DBConnectAndPopulateDBVar(cfg Config) error {
	var err error
	switch cfg.DBDriver {
	case "postgres":
		connectString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.SSLMode)
		DB, err = sql.Open("postgres", connectString)
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.SQLitePath)
		DB, err = sql.Open("sqlite", dsn)
	default:
		return errors.New("unsupported DB_DRIVER: " + cfg.DBDriver)
	}
	if err != nil {
		return err
	}
	if err = DB.Ping(); err != nil {
		return err
	}
	DBDriver = cfg.DBDriver
	return nil
}

func ddlStrings(driver string) []string {
	serial := "SERIAL PRIMARY KEY"
	if driver == "sqlite" {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	sqlStrings := []string{}
	sqlStrings = append(sqlStrings,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
    id %s,
    email VARCHAR(255) UNIQUE NOT NULL,
    hashed_password VARCHAR(512) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT true,
    is_superuser BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS question_categories (
    id %s,
    name VARCHAR(255) UNIQUE NOT NULL,
    exam_type VARCHAR(50) NOT NULL DEFAULT 'rhcsa',
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS questions (
    id %s,
    text TEXT NOT NULL,
    difficulty VARCHAR(20) NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')) DEFAULT 'medium',
    category VARCHAR(255) NOT NULL,
    category_id INT,
    exam_type VARCHAR(50) NOT NULL DEFAULT 'rhcsa',
    FOREIGN KEY (category_id) REFERENCES question_categories(id)
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS answers (
    id %s,
    text TEXT NOT NULL,
    is_correct BOOLEAN NOT NULL DEFAULT false,
    question_id INT NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
)`, serial),
		`CREATE TABLE IF NOT EXISTS test_attempts (
    id VARCHAR(36) PRIMARY KEY,
    user_id INT NOT NULL,
    start_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    end_time TIMESTAMP,
    score INT NOT NULL DEFAULT 0,
    max_score INT NOT NULL DEFAULT 0,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`,
		// answer_id intentionally carries no foreign key: rows referencing a
		// deleted answer are removed by the application cascade, not the store.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS user_answers (
    id %s,
    test_attempt_id VARCHAR(36) NOT NULL,
    question_id INT NOT NULL,
    answer_id INT NOT NULL,
    is_correct BOOLEAN NOT NULL DEFAULT false,
    FOREIGN KEY (test_attempt_id) REFERENCES test_attempts(id) ON DELETE CASCADE
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS theory_topics (
    id %s,
    title VARCHAR(255) NOT NULL,
    description TEXT,
    parent_id INT,
    exam_type VARCHAR(50) NOT NULL DEFAULT 'rhcsa',
    display_order INT NOT NULL DEFAULT 0,
    FOREIGN KEY (parent_id) REFERENCES theory_topics(id)
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS theory_contents (
    id %s,
    topic_id INT UNIQUE NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (topic_id) REFERENCES theory_topics(id) ON DELETE CASCADE
)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS theory_resources (
    id %s,
    topic_id INT NOT NULL,
    title VARCHAR(255) NOT NULL,
    url VARCHAR(1024) NOT NULL,
    resource_type VARCHAR(50) NOT NULL DEFAULT 'link',
    FOREIGN KEY (topic_id) REFERENCES theory_topics(id) ON DELETE CASCADE
)`, serial),
		`CREATE TABLE IF NOT EXISTS topic_questions (
    topic_id INT NOT NULL,
    question_id INT NOT NULL,
    PRIMARY KEY (topic_id, question_id),
    FOREIGN KEY (topic_id) REFERENCES theory_topics(id) ON DELETE CASCADE,
    FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
)`)
	return sqlStrings
}

func CreateTableIfNotExists() error {
	sqlStrings := ddlStrings(DBDriver)
	for i, ddl := range sqlStrings {
		_, err := DB.Exec(ddl)
		if err != nil {
			return fmt.Errorf("error creating table %d: %w", i, err)
		}
	}
	return nil
}

func dropTables() []string {
	return []string{
		"DROP TABLE IF EXISTS topic_questions",
		"DROP TABLE IF EXISTS theory_resources",
		"DROP TABLE IF EXISTS theory_contents",
		"DROP TABLE IF EXISTS theory_topics",
		"DROP TABLE IF EXISTS user_answers",
		"DROP TABLE IF EXISTS test_attempts",
		"DROP TABLE IF EXISTS answers",
		"DROP TABLE IF EXISTS questions",
		"DROP TABLE IF EXISTS question_categories",
		"DROP TABLE IF EXISTS users",
	}
}

// DropAllTables removes every table the service owns, children first. Used
// by the test suite to reset state between runs.
func DropAllTables() error {
	for _, stmt := range dropTables() {
		if _, err := DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
