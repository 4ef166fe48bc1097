package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// ListingRecord is the stored form of a listing.
type ListingRecord struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	BHK       int     `gorm:"column:bhk;not null"`
	Type      string  `gorm:"column:type"`
	Locality  string  `gorm:"column:locality"`
	Area      float64 `gorm:"column:area;not null"`
	Price     float64 `gorm:"column:price;not null"`
	PriceUnit string  `gorm:"column:price_unit"`
	Region    string  `gorm:"column:region;index:idx_listings_region"`
	Status    string  `gorm:"column:status"`
	Age       string  `gorm:"column:age"`
}

func (ListingRecord) TableName() string {
	return "listings"
}

// NewListingRecord converts a listing to its stored form.
func NewListingRecord(l models.Listing) ListingRecord {
	return ListingRecord{
		BHK:       l.BHK,
		Type:      l.Type,
		Locality:  l.Locality,
		Area:      l.Area,
		Price:     l.Price,
		PriceUnit: l.PriceUnit,
		Region:    l.Region,
		Status:    l.Status,
		Age:       l.Age,
	}
}

func (d *Database) RunMigrations() error {
	gdb, err := d.Gorm()
	if err != nil {
		return err
	}
	if err := gdb.AutoMigrate(&ListingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate listings table: %v", err)
	}
	return nil
}

// InsertListings writes a batch of listings using tx.
func InsertListings(tx *gorm.DB, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	records := make([]ListingRecord, len(listings))
	for i, l := range listings {
		records[i] = NewListingRecord(l)
	}
	return tx.Create(&records).Error
}

// DeleteListings removes every stored listing using tx.
func DeleteListings(tx *gorm.DB) (int64, error) {
	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ListingRecord{})
	return res.RowsAffected, res.Error
}
