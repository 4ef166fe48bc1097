package geometry

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/sirupsen/logrus"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// Locator resolves coordinates to a corpus region name.
type Locator interface {
	Locate(latitude, longitude float64) (string, error)
}

// FixedLocator resolves every coordinate to the same location. The listings
// carry no coordinates, so this is the default.
type FixedLocator struct {
	Location string
}

func (l FixedLocator) Locate(latitude, longitude float64) (string, error) {
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return "", err
	}
	return l.Location, nil
}

// Region is a named area: either a boundary polygon or just a point.
type Region struct {
	Name     string
	Geometry orb.Geometry
	Centroid orb.Point
}

// CentroidLocator picks the region whose boundary contains the point, or
// failing that the region with the nearest centroid within maxDistance.
type CentroidLocator struct {
	regions     []Region
	maxDistance float64 // meters
	logger      *logrus.Logger
}

// NewCentroidLocator creates a locator over regions. maxDistanceKm <= 0
// disables the distance limit.
func NewCentroidLocator(regions []Region, maxDistanceKm float64, logger *logrus.Logger) *CentroidLocator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	maxDistance := math.Inf(1)
	if maxDistanceKm > 0 {
		maxDistance = maxDistanceKm * 1000
	}
	return &CentroidLocator{regions: regions, maxDistance: maxDistance, logger: logger}
}

// LoadRegions reads region shapes from a GeoJSON FeatureCollection. Every
// feature needs a "region" property; point features are used as centroids.
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %v", err)
	}

	regions := make([]Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := f.Properties.MustString("region", "")
		if name == "" {
			return nil, fmt.Errorf("feature %d has no region property", i)
		}

		var centroid orb.Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			centroid = g
		case orb.Polygon, orb.MultiPolygon:
			centroid, _ = planar.CentroidArea(g)
		default:
			return nil, fmt.Errorf("feature %d (%s): unsupported geometry %s", i, name, f.Geometry.GeoJSONType())
		}

		regions = append(regions, Region{Name: name, Geometry: f.Geometry, Centroid: centroid})
	}

	return regions, nil
}

func (l *CentroidLocator) Locate(latitude, longitude float64) (string, error) {
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return "", err
	}
	point := orb.Point{longitude, latitude}

	for _, r := range l.regions {
		if contains(r.Geometry, point) {
			return r.Name, nil
		}
	}

	best := ""
	bestDistance := math.Inf(1)
	for _, r := range l.regions {
		d := geo.Distance(point, r.Centroid)
		if d < bestDistance {
			best, bestDistance = r.Name, d
		}
	}

	if best == "" || bestDistance > l.maxDistance {
		l.logger.WithFields(logrus.Fields{
			"latitude":  latitude,
			"longitude": longitude,
		}).Warn("No region near coordinates")
		return "", fmt.Errorf("%w: no region near (%.5f, %.5f)", models.ErrUnknownRegion, latitude, longitude)
	}

	l.logger.WithFields(logrus.Fields{
		"latitude":    latitude,
		"longitude":   longitude,
		"region":      best,
		"distance_km": bestDistance / 1000,
	}).Debug("Resolved coordinates to region")

	return best, nil
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch shape := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(shape, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(shape, p)
	default:
		return false
	}
}

// ValidateCoordinates reports an input error for coordinates outside the
// valid latitude and longitude ranges.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 ||
		math.IsNaN(latitude) || math.IsNaN(longitude) {
		return models.NewInputError("coordinates out of range", map[string]interface{}{
			"latitude":  latitude,
			"longitude": longitude,
		})
	}
	return nil
}
