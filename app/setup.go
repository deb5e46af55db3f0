package app

import (
	"fmt"
	"log"
	"os"

	"student-fees-api/api"
	"student-fees-api/config"
	"student-fees-api/database"
	"student-fees-api/router"
	"student-fees-api/services/cron"
)

func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Create the database if it does not exist yet, then connect.
	if err := database.EnsureDatabase(); err != nil {
		log.Printf("Warning: could not ensure database exists: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(store)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store)

	return server.Run()
}
