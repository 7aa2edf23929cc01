package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/velotir/starship_registry/internal/config"
	"github.com/velotir/starship_registry/internal/seed"
)

func main() {
	path := flag.String("data", "data.json", "path to the seed data file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := seed.Run(db, *path); err != nil {
		log.Fatalf("seed error: %v", err)
	}
	log.Println("database seeding complete")
}
