// Package recommend picks representative listings for a region.
//
// For every bedroom count in BHKBuckets the engine draws one listing
// uniformly from the region's listings with that count. Each call gets its
// own random generator: a seeded call is reproducible and never disturbs, or
// is disturbed by, calls running concurrently.
package recommend

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/corpus"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// BHKBuckets are the bedroom counts a recommendation covers, in output order.
var BHKBuckets = []int{1, 2, 3}

const (
	// TopLocalityCount is the number of localities reported in a profile.
	TopLocalityCount = 5

	seedScale = 1_000_000
)

// Result is the outcome of one recommendation request.
type Result struct {
	Location        string                  `json:"location"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Profile         models.RegionProfile    `json:"profile"`
}

// Engine produces recommendations from a corpus snapshot.
type Engine struct {
	corpus *corpus.Corpus
	logger *logrus.Logger
}

// NewEngine creates an engine over c.
func NewEngine(c *corpus.Corpus, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Engine{corpus: c, logger: logger}
}

// DeriveSeed maps a caller supplied seed to the integer seed of a generator.
func DeriveSeed(seed float64) int64 {
	return int64(math.Floor(seed * seedScale))
}

// NewRand returns a generator for a single call: seeded from seed when it is
// set, randomly seeded otherwise.
func NewRand(seed *float64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // sampling, not security
	}
	return rand.New(rand.NewSource(DeriveSeed(*seed))) //nolint:gosec // sampling, not security
}

// Recommend returns up to one listing per bedroom bucket for location.
func (e *Engine) Recommend(location string, seed *float64) (*Result, error) {
	return e.RecommendWithRand(location, NewRand(seed))
}

// RecommendWithRand is Recommend with a caller owned generator. rng must not
// be shared with concurrent calls.
func (e *Engine) RecommendWithRand(location string, rng *rand.Rand) (*Result, error) {
	codecs := e.corpus.Codecs()

	name, regionCode, err := e.resolve(location)
	if err != nil {
		return nil, err
	}

	regionData := e.corpus.All().ByRegion(regionCode)

	profile, err := e.profile(name, regionData)
	if err != nil {
		return nil, err
	}

	recommendations := make([]models.Recommendation, 0, len(BHKBuckets))
	for _, bhk := range BHKBuckets {
		bucket := regionData.ByBHK(bhk)

		p, ok := bucket.Sample(rng)
		if !ok {
			e.logger.WithFields(logrus.Fields{
				"location": name,
				"bhk":      bhk,
			}).Warn("No properties found for bhk")
			metrics.RecordEmptyBucket(bhk)
			continue
		}

		listing, err := corpus.Decode(codecs, p)
		if err != nil {
			return nil, fmt.Errorf("failed to decode sampled property: %w", err)
		}

		rec := models.Recommendation{
			BHK:       bhk,
			Price:     models.Round2(listing.Price),
			PriceUnit: listing.PriceUnit,
			Location:  name,
			Locality:  listing.Locality,
			Status:    listing.Status,
			Age:       listing.Age,
			Area:      models.Round2(listing.Area),
		}
		recommendations = append(recommendations, rec)

		e.logger.WithFields(logrus.Fields{
			"location":   name,
			"bhk":        bhk,
			"locality":   rec.Locality,
			"price":      rec.Price,
			"price_unit": rec.PriceUnit,
			"area":       rec.Area,
		}).Info("Selected property")
	}

	metrics.RecommendationsServed.Observe(float64(len(recommendations)))

	return &Result{
		Location:        name,
		Recommendations: recommendations,
		Profile:         profile,
	}, nil
}

// ResolveLocation returns the corpus region name location refers to.
func (e *Engine) ResolveLocation(location string) (string, bool) {
	name, _, err := e.resolve(location)
	return name, err == nil
}

// resolve finds the region code for location, trying the name as given and
// then its title-cased form.
func (e *Engine) resolve(location string) (string, int, error) {
	regions, err := e.corpus.Codecs().Codec(codec.FieldRegion)
	if err != nil {
		return "", 0, err
	}

	for _, candidate := range []string{location, codec.NormalizeRegion(location)} {
		if candidate == "" {
			continue
		}
		if code, err := regions.Encode(candidate); err == nil {
			return candidate, code, nil
		}
	}

	if codec.NormalizeRegion(location) == "" {
		return "", 0, models.NewInputError("location is required", map[string]interface{}{
			"location": location,
		})
	}
	return "", 0, fmt.Errorf("%w: %q", models.ErrUnknownRegion, location)
}

func (e *Engine) profile(name string, regionData corpus.View) (models.RegionProfile, error) {
	codecs := e.corpus.Codecs()
	profile := models.RegionProfile{
		Location:      name,
		ListingCount:  regionData.Len(),
		TopLocalities: []string{},
	}

	top, err := regionData.TopN(codec.FieldLocality, TopLocalityCount)
	if err != nil {
		return profile, err
	}
	for _, code := range top {
		locality, err := codecs.Decode(codec.FieldLocality, code)
		if err != nil {
			return profile, err
		}
		profile.TopLocalities = append(profile.TopLocalities, locality)
	}

	if code, ok, err := regionData.Mode(codec.FieldStatus); err != nil {
		return profile, err
	} else if ok {
		if profile.MostCommonStatus, err = codecs.Decode(codec.FieldStatus, code); err != nil {
			return profile, err
		}
	}

	if code, ok, err := regionData.Mode(codec.FieldAge); err != nil {
		return profile, err
	} else if ok {
		if profile.MostCommonAge, err = codecs.Decode(codec.FieldAge, code); err != nil {
			return profile, err
		}
	}

	return profile, nil
}
