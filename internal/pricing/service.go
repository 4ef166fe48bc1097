// Package pricing compares a seller's claimed price with the model's estimate.
package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

const (
	// Claimed prices below this are taken to be in lakhs already; anything
	// else is an absolute amount in rupees.
	AbsolutePriceThreshold = 100000
	RupeesPerLakh          = 100000
)

// Estimator predicts a price in lakhs.
type Estimator interface {
	Estimate(ctx context.Context, region string, bhk int) (float64, error)
}

// Service evaluates claimed prices.
type Service struct {
	estimator Estimator
	logger    *logrus.Logger
}

// NewService creates a pricing service backed by estimator.
func NewService(estimator Estimator, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Service{estimator: estimator, logger: logger}
}

// Evaluate compares claimedPrice with the predicted price of a bhk-bedroom
// unit in region. The region is matched case-insensitively.
func (s *Service) Evaluate(ctx context.Context, region string, bhk int, claimedPrice float64) (models.PriceEvaluation, error) {
	region = codec.NormalizeRegion(region)

	if region == "" || bhk <= 0 || !(claimedPrice > 0) || math.IsInf(claimedPrice, 0) {
		return models.PriceEvaluation{}, models.NewInputError(
			"Provide valid 'region', 'bhk', and 'user_price'.",
			map[string]interface{}{
				"region":     region,
				"bhk":        bhk,
				"user_price": claimedPrice,
			},
		)
	}

	predicted, err := s.estimator.Estimate(ctx, region, bhk)
	if err != nil {
		return models.PriceEvaluation{}, err
	}

	claimedLakhs := NormalizeToLakhs(claimedPrice)

	if predicted == 0 {
		s.logger.WithFields(logrus.Fields{
			"region": region,
			"bhk":    bhk,
		}).Error("Estimator predicted a zero price")
		return models.PriceEvaluation{}, fmt.Errorf("%w: region %q, bhk %d", models.ErrDivisionUndefined, region, bhk)
	}

	variation := models.Round2((claimedLakhs - predicted) / predicted * 100)
	metrics.PriceVariation.Observe(variation)

	s.logger.WithFields(logrus.Fields{
		"region":          region,
		"bhk":             bhk,
		"predicted_lakhs": predicted,
		"user_lakhs":      claimedLakhs,
		"variation":       variation,
	}).Debug("Evaluated price")

	return models.PriceEvaluation{
		PredictedPrice: predicted,
		UserPrice:      claimedLakhs,
		PriceVariation: variation,
	}, nil
}

// NormalizeToLakhs converts a claimed price to lakhs. Values below
// AbsolutePriceThreshold are returned unchanged.
func NormalizeToLakhs(price float64) float64 {
	if price < AbsolutePriceThreshold {
		return price
	}
	return price / RupeesPerLakh
}
