package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"reserva/internal/database"
	"reserva/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("inventory", "configs/inventory.yaml", "path to inventory.yaml")
		dbPath   = flag.String("db", "./data/reservations.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	var seed models.InventorySeed
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse inventory: %w", err)
	}
	if len(seed.Products) == 0 {
		return fmt.Errorf("no products in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.SyncInventory(ctx, &seed); err != nil {
		return fmt.Errorf("sync inventory: %w", err)
	}

	units := 0
	for _, p := range seed.Products {
		units += len(p.Units)
	}
	fmt.Printf("done: products=%d units=%d\n", len(seed.Products), units)
	return nil
}
