package geometry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

func TestFixedLocator(t *testing.T) {
	l := FixedLocator{Location: "Airoli"}

	name, err := l.Locate(28.61, 77.20)
	require.NoError(t, err)
	assert.Equal(t, "Airoli", name)

	_, err = l.Locate(95, 72)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(19.1551, 72.9986))
	assert.NoError(t, ValidateCoordinates(-90, 180))

	for _, c := range [][2]float64{{90.5, 0}, {0, -180.1}, {math.NaN(), 72}, {19, math.NaN()}} {
		err := ValidateCoordinates(c[0], c[1])
		assert.ErrorIs(t, err, models.ErrInvalidInput, "%v", c)
	}
}

func TestLoadRegions(t *testing.T) {
	regions, err := LoadRegions("testdata/regions.geojson")
	require.NoError(t, err)
	require.Len(t, regions, 3)

	assert.Equal(t, "Airoli", regions[0].Name)
	assert.InDelta(t, 72.9985, regions[0].Centroid[0], 1e-9)

	assert.Equal(t, "Juhu", regions[2].Name)
	assert.InDelta(t, 72.830, regions[2].Centroid[0], 1e-6)
	assert.InDelta(t, 19.1025, regions[2].Centroid[1], 1e-6)
}

func TestLoadRegions_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRegions(filepath.Join(dir, "missing.geojson"))
	assert.Error(t, err)

	noName := filepath.Join(dir, "noname.geojson")
	require.NoError(t, os.WriteFile(noName, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[72,19]},"properties":{}}]}`), 0644))
	_, err = LoadRegions(noName)
	assert.ErrorContains(t, err, "no region property")

	line := filepath.Join(dir, "line.geojson")
	require.NoError(t, os.WriteFile(line, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[72,19],[73,19]]},"properties":{"region":"X"}}]}`), 0644))
	_, err = LoadRegions(line)
	assert.ErrorContains(t, err, "unsupported geometry")
}

func TestCentroidLocator(t *testing.T) {
	regions, err := LoadRegions("testdata/regions.geojson")
	require.NoError(t, err)
	l := NewCentroidLocator(regions, 25, logrus.New())

	tests := []struct {
		name      string
		lat, lon  float64
		want      string
		wantErrIs error
	}{
		{name: "inside polygon", lat: 19.100, lon: 72.830, want: "Juhu"},
		{name: "near airoli", lat: 19.150, lon: 73.005, want: "Airoli"},
		{name: "near thane", lat: 19.210, lon: 72.970, want: "Thane West"},
		{name: "delhi is too far", lat: 28.61, lon: 77.20, wantErrIs: models.ErrUnknownRegion},
		{name: "latitude out of range", lat: -91, lon: 72, wantErrIs: models.ErrInvalidInput},
		{name: "longitude out of range", lat: 19, lon: 181, wantErrIs: models.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Locate(tt.lat, tt.lon)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentroidLocator_NoLimit(t *testing.T) {
	regions, err := LoadRegions("testdata/regions.geojson")
	require.NoError(t, err)

	got, err := NewCentroidLocator(regions, 0, nil).Locate(28.61, 77.20)
	require.NoError(t, err)
	assert.Equal(t, "Thane West", got)
}

func TestCentroidLocator_Empty(t *testing.T) {
	_, err := NewCentroidLocator(nil, 0, nil).Locate(19, 72)
	assert.ErrorIs(t, err, models.ErrUnknownRegion)
}
