// Package estimator fronts the pre-trained price model.
//
// The model itself is opaque: it takes the feature vector [region_code, bhk]
// and returns a price in lakhs. The gateway owns everything around that call:
// validating the inputs, encoding the region, and turning model failures into
// models.ErrEstimationFailure. Estimation is never retried.
package estimator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// FeatureCount is the width of the model's feature vector.
const FeatureCount = 2

// Gateway validates requests and invokes the price model.
type Gateway struct {
	model   Predictor
	regions *codec.Codec
	logger  *logrus.Logger
}

// NewGateway creates a gateway encoding regions with the given codec.
func NewGateway(model Predictor, regions *codec.Codec, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Gateway{model: model, regions: regions, logger: logger}
}

// KnowsRegion reports whether region is part of the model vocabulary.
func (g *Gateway) KnowsRegion(region string) bool {
	return g.regions.Contains(region)
}

// Estimate returns the predicted price in lakhs for a bhk-bedroom unit in
// region. region must match the vocabulary exactly.
func (g *Gateway) Estimate(ctx context.Context, region string, bhk int) (float64, error) {
	if bhk <= 0 {
		return 0, models.NewInputError("bhk must be a positive integer", map[string]interface{}{
			"region": region,
			"bhk":    bhk,
		})
	}

	code, err := g.regions.Encode(region)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownRegion, region)
	}

	start := time.Now()
	predicted, err := g.model.Predict(ctx, []float64{float64(code), float64(bhk)})
	if err == nil && (math.IsNaN(predicted) || math.IsInf(predicted, 0)) {
		err = fmt.Errorf("model returned %v", predicted)
	}
	metrics.RecordEstimation(time.Since(start), err)

	if err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"region":      region,
			"region_code": code,
			"bhk":         bhk,
		}).Error("Price estimation failed")
		return 0, fmt.Errorf("%w: %v", models.ErrEstimationFailure, err)
	}

	g.logger.WithFields(logrus.Fields{
		"region":          region,
		"region_code":     code,
		"bhk":             bhk,
		"predicted_lakhs": predicted,
	}).Debug("Predicted price")

	return predicted, nil
}
