package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/itsdivyansh1/proptech-v2-ai/config"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/corpus"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/database"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/processor"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	csvPath := flag.String("csv", cfg.Corpus.CSVPath, "listings CSV snapshot to import")
	dbPath := flag.String("db", cfg.Corpus.DBPath, "SQLite database to write")
	replace := flag.Bool("replace", false, "delete existing listings before importing")
	flag.Parse()

	if *dbPath == "" {
		logger.Fatal("No database path given, set -db or CORPUS_DB_PATH")
	}

	listings, err := corpus.LoadCSV(*csvPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read CSV")
	}
	// Reject snapshots the server could not encode
	if _, err := corpus.FromListings(listings); err != nil {
		logger.WithError(err).Fatal("Invalid listings")
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gdb, err := db.Gorm()
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batches := processor.NewBatchProcessor(gdb, cfg, logger)
	if *replace {
		deleted, err := batches.Replace(ctx, listings)
		if err != nil {
			logger.WithError(err).Fatal("Import failed, existing listings kept")
		}
		logger.WithField("deleted", deleted).Info("Replaced existing listings")
	} else {
		written, err := batches.Import(ctx, listings)
		if err != nil {
			logger.WithError(err).WithField("written", written).Fatal("Import failed")
		}
	}

	counts, err := db.GetRegionCounts()
	if err != nil {
		logger.WithError(err).Fatal("Failed to count stored listings")
	}
	for _, c := range counts {
		logger.WithFields(logrus.Fields{
			"region":   c.Region,
			"listings": c.Count,
		}).Info("Stored region")
	}

	logger.WithFields(logrus.Fields{
		"csv":      *csvPath,
		"db":       *dbPath,
		"listings": len(listings),
		"regions":  len(counts),
	}).Info("Import complete")
}
