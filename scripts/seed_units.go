package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"aromos/internal/config"
	"aromos/internal/database"
	"aromos/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type UnitsConfig struct {
	Units []models.Unit `yaml:"units"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		unitsPath = flag.String("units", "", "path to units.yaml; empty seeds the default 12 bungalows")
		dbPath    = flag.String("db", "./data/aromos.db", "path to sqlite db")
	)
	flag.Parse()

	units := models.DefaultUnits()
	if *unitsPath != "" {
		data, err := os.ReadFile(*unitsPath)
		if err != nil {
			return fmt.Errorf("read units: %w", err)
		}
		var cfg UnitsConfig
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse units: %w", err)
		}
		if len(cfg.Units) == 0 {
			return fmt.Errorf("no units in yaml")
		}
		if err = config.ValidateUnits(cfg.Units); err != nil {
			return fmt.Errorf("validate units: %w", err)
		}
		units = cfg.Units
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	updated := 0
	for _, u := range units {
		if u.ID == "" {
			continue
		}
		status := u.Status
		if status == "" {
			status = models.UnitStatusFree
		}

		existing, err := db.GetUnit(ctx, u.ID)
		if err == nil {
			// имя можно переименовать, операционный статус не трогаем
			if existing.Name != u.Name {
				if _, err = db.ExecContext(ctx,
					`UPDATE units SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
					u.Name, u.ID,
				); err != nil {
					return fmt.Errorf("update %s: %w", u.ID, err)
				}
				updated++
			}
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("get %s: %w", u.ID, err)
		}

		if _, err = db.ExecContext(ctx,
			`INSERT INTO units (id, name, status) VALUES (?, ?, ?)`,
			u.ID, u.Name, status,
		); err != nil {
			return fmt.Errorf("create %s: %w", u.ID, err)
		}
		created++
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
