package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

var requiredColumns = []string{
	"bhk", "type", "locality", "area", "price", "price_unit", "region", "status", "age",
}

// LoadCSV reads a listings snapshot from a CSV file.
func LoadCSV(path string) ([]models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(bufio.NewReader(f))
}

// ReadCSV parses listings from r. The header row must name every column of
// the snapshot; extra columns are ignored.
func ReadCSV(r io.Reader) ([]models.Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	out := make([]models.Listing, 0, len(records)-1)
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		bhk, err := strconv.Atoi(get("bhk"))
		if err != nil || bhk < 1 {
			return nil, fmt.Errorf("row %d: bhk must be a positive integer (got %q)", rowIdx+1, get("bhk"))
		}
		area, err := strconv.ParseFloat(get("area"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid area %q", rowIdx+1, get("area"))
		}
		price, err := strconv.ParseFloat(get("price"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", rowIdx+1, get("price"))
		}

		out = append(out, models.Listing{
			Region:    get("region"),
			Locality:  get("locality"),
			Type:      get("type"),
			BHK:       bhk,
			Status:    get("status"),
			Age:       get("age"),
			Area:      area,
			Price:     price,
			PriceUnit: get("price_unit"),
		})
	}

	return out, nil
}
