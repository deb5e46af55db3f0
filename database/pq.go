package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"student-fees-api/config"
)

// EnsureDatabase connects to the maintenance database with the raw driver and
// creates the target database when it does not exist yet. GORM cannot do this
// itself: its DSN already points at the target database.
func EnsureDatabase() error {
	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_PORT,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", getEnv.DB_NAME).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot be parameterized; the name comes from our own
	// environment, not from request input.
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", getEnv.DB_NAME)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", getEnv.DB_NAME, err)
	}

	log.Printf("Created database %s", getEnv.DB_NAME)
	return nil
}
