package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/itsdivyansh1/proptech-v2-ai/config"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/database"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// Transactor runs fn inside a database transaction.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor writes listings to the database in batches
type BatchProcessor struct {
	db     Transactor
	logger *logrus.Logger
	config *config.Config
	write  func(tx *gorm.DB, batch []models.Listing) error
	clear  func(tx *gorm.DB) (int64, error)
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &BatchProcessor{
		db:     db,
		config: config,
		logger: logger,
		write:  database.InsertListings,
		clear:  database.DeleteListings,
	}
}

// Import writes listings in batches of config.Import.BatchSize, each in its
// own transaction. It returns the number of listings written before the
// first batch that failed every attempt.
func (p *BatchProcessor) Import(ctx context.Context, listings []models.Listing) (int, error) {
	written := 0
	batches := lo.Chunk(listings, p.config.Import.BatchSize)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := p.processBatch(ctx, batch); err != nil {
			return written, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}
		written += len(batch)
	}

	p.logger.WithFields(logrus.Fields{
		"listings": written,
		"batches":  len(batches),
	}).Info("Import finished")
	return written, nil
}

// Replace swaps every stored listing for listings. The delete and all
// inserts share one transaction, so a failed or cancelled run leaves the
// previous listings in place. It returns the number of listings removed.
func (p *BatchProcessor) Replace(ctx context.Context, listings []models.Listing) (int64, error) {
	batches := lo.Chunk(listings, p.config.Import.BatchSize)

	var deleted int64
	err := p.withRetry(ctx, "replace listings", func() error {
		return p.db.Transaction(func(tx *gorm.DB) error {
			n, err := p.clear(tx)
			if err != nil {
				return fmt.Errorf("failed to clear listings: %w", err)
			}
			for i, batch := range batches {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := p.write(tx, batch); err != nil {
					return fmt.Errorf("batch %d of %d: failed to insert listings batch: %w", i+1, len(batches), err)
				}
			}
			deleted = n
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	p.logger.WithFields(logrus.Fields{
		"deleted":  deleted,
		"listings": len(listings),
		"batches":  len(batches),
	}).Info("Replace finished")
	return deleted, nil
}

// processBatch handles a single batch of listings with transaction and retry logic
func (p *BatchProcessor) processBatch(ctx context.Context, batch []models.Listing) error {
	err := p.withRetry(ctx, "process batch", func() error {
		return p.db.Transaction(func(tx *gorm.DB) error {
			if err := p.write(tx, batch); err != nil {
				return fmt.Errorf("failed to insert listings batch: %w", err)
			}
			return nil
		})
	})
	if err == nil {
		p.logger.Debugf("Successfully processed batch of %d listings", len(batch))
	}
	return err
}

// withRetry runs fn up to config.Import.MaxRetries+1 times, waiting
// config.Import.RetryDelay between attempts.
func (p *BatchProcessor) withRetry(ctx context.Context, what string, fn func() error) error {
	maxRetries := p.config.Import.MaxRetries

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying %s, attempt %d of %d", what, attempt, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.Import.RetryDelay):
			}
		}

		if err = fn(); err == nil {
			return nil
		}
		p.logger.Errorf("Failed to %s: %v", what, err)
	}

	return fmt.Errorf("failed to %s after %d attempts: %w", what, maxRetries+1, err)
}
