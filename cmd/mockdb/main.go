package main

import (
	"flag"
	"fmt"
	"optime/cmd/mockdb/engine"
	"os"
	"time"
)

func main() {
	out := flag.String("out", "optime-test.db", "Output database path")
	userID := flag.String("user", "usr_00000000-0000-0000-0000-000000000000", "Observing user id (drives table names)")
	days := flag.Int("days", 28, "Days of history to generate")
	friends := flag.Int("friends", 5, "Number of friends")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		UserID:  *userID,
		Days:    *days,
		Friends: *friends,
		Seed:    *seed,
		Now:     time.Now(),
	}

	fmt.Printf("Generating %d days of events for %d friends to %s...\n", cfg.Days, cfg.Friends, *out)

	if err := engine.Generate(*out, cfg); err != nil {
		fmt.Printf("Failed to generate mock database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
