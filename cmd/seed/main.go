package main

import (
	"log"

	"github.com/hyeonwoo-dev/tunequiz-api/config"
	"github.com/hyeonwoo-dev/tunequiz-api/database"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	gormDB := store.GetDB().(*gorm.DB)
	if err := database.NewSeeder(gormDB).SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed successfully")
}
