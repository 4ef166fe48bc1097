package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.RunMigrations())

	listings, err := db.GetAllListings()
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestInsertAndReadListings(t *testing.T) {
	db := setupTestDB(t)
	gdb, err := db.Gorm()
	require.NoError(t, err)

	listings := []models.Listing{
		{Region: "Airoli", Locality: "Sector 19", Type: "Apartment", BHK: 2, Status: "Ready to move", Age: "Resale", Area: 650, Price: 1.05, PriceUnit: "Cr"},
		{Region: "Thane West", Locality: "Lodha Amara", Type: "Apartment", BHK: 1, Status: "Under Construction", Age: "New", Area: 410, Price: 62, PriceUnit: "L"},
		{Region: "Airoli", Locality: "Sector 20", Type: "Apartment", BHK: 1, Status: "Ready to move", Age: "New", Area: 390.5, Price: 58, PriceUnit: "L"},
	}
	require.NoError(t, InsertListings(gdb, listings))

	got, err := db.GetAllListings()
	require.NoError(t, err)
	assert.Equal(t, listings, got)

	counts, err := db.GetRegionCounts()
	require.NoError(t, err)
	assert.Equal(t, []RegionCount{{Region: "Airoli", Count: 2}, {Region: "Thane West", Count: 1}}, counts)

	deleted, err := DeleteListings(gdb)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	got, err = db.GetAllListings()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertListings_Empty(t *testing.T) {
	db := setupTestDB(t)
	gdb, err := db.Gorm()
	require.NoError(t, err)

	assert.NoError(t, InsertListings(gdb, nil))
}

func TestGetAllListings_NoTable(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetAllListings()
	assert.Error(t, err)
}
