// Command main runs the database seeder for JamMatch.
package main

import (
	"flag"
	"log"

	"github.com/SCGamer30/jam-match-sub001/internal/config"
	"github.com/SCGamer30/jam-match-sub001/internal/database"
	"github.com/SCGamer30/jam-match-sub001/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of musicians to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("JamMatch Database Seeder")
	log.Printf("Target: %d users, clean=%v", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:     *numUsers,
		ShouldClean:  *shouldClean,
		MinBandScore: cfg.MinBandScore,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
