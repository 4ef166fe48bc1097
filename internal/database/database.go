package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Wait on writers instead of failing with SQLITE_BUSY
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

// GetAllListings returns every stored listing in insertion order.
func (d *Database) GetAllListings() ([]models.Listing, error) {
	rows, err := d.db.Query(`
        SELECT
            bhk,
            COALESCE(type, '') as type,
            COALESCE(locality, '') as locality,
            area,
            price,
            COALESCE(price_unit, '') as price_unit,
            COALESCE(region, '') as region,
            COALESCE(status, '') as status,
            COALESCE(age, '') as age
        FROM listings
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		err := rows.Scan(
			&l.BHK,
			&l.Type,
			&l.Locality,
			&l.Area,
			&l.Price,
			&l.PriceUnit,
			&l.Region,
			&l.Status,
			&l.Age,
		)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// RegionCount is the number of stored listings for one region.
type RegionCount struct {
	Region string
	Count  int
}

// GetRegionCounts returns the listing count per region, largest first.
func (d *Database) GetRegionCounts() ([]RegionCount, error) {
	rows, err := d.db.Query(`
        SELECT region, COUNT(*) as listing_count
        FROM listings
        GROUP BY region
        ORDER BY listing_count DESC, region
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []RegionCount
	for rows.Next() {
		var c RegionCount
		if err := rows.Scan(&c.Region, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Gorm returns a gorm handle that shares this database's connection pool.
func (d *Database) Gorm() (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{Conn: d.db}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func (d *Database) Close() error {
	return d.db.Close()
}
