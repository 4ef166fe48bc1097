package estimator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

// MockPredictor is a mock implementation of Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	args := m.Called(features)
	return args.Get(0).(float64), args.Error(1)
}

func newTestGateway(p Predictor) *Gateway {
	regions := codec.New(codec.FieldRegion, []string{"Thane", "Airoli", "Andheri West"})
	return NewGateway(p, regions, logrus.New())
}

func TestGateway_EstimateEncodesFeatures(t *testing.T) {
	p := &MockPredictor{}
	// Airoli=0, Andheri West=1, Thane=2
	p.On("Predict", []float64{2, 3}).Return(87.5, nil).Once()

	g := newTestGateway(p)
	price, err := g.Estimate(context.Background(), "Thane", 3)

	require.NoError(t, err)
	assert.Equal(t, 87.5, price)
	p.AssertExpectations(t)
}

func TestGateway_EstimateUnknownRegion(t *testing.T) {
	p := &MockPredictor{}
	g := newTestGateway(p)

	_, err := g.Estimate(context.Background(), "Atlantis", 2)

	assert.ErrorIs(t, err, models.ErrUnknownRegion)
	assert.True(t, models.IsClientError(err))
	p.AssertNotCalled(t, "Predict", mock.Anything)
}

func TestGateway_EstimateInvalidBHK(t *testing.T) {
	p := &MockPredictor{}
	g := newTestGateway(p)

	for _, bhk := range []int{0, -2} {
		_, err := g.Estimate(context.Background(), "Airoli", bhk)
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		var inputErr *models.InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, bhk, inputErr.Details["bhk"])
	}
	p.AssertNotCalled(t, "Predict", mock.Anything)
}

func TestGateway_EstimateFailure(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		err   error
	}{
		{"model error", 0, errors.New("shape mismatch")},
		{"nan output", math.NaN(), nil},
		{"infinite output", math.Inf(1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockPredictor{}
			p.On("Predict", mock.Anything).Return(tt.value, tt.err).Once()

			_, err := newTestGateway(p).Estimate(context.Background(), "Airoli", 1)

			assert.ErrorIs(t, err, models.ErrEstimationFailure)
			assert.False(t, models.IsClientError(err))
			p.AssertNumberOfCalls(t, "Predict", 1)
		})
	}
}

func TestGateway_KnowsRegion(t *testing.T) {
	g := newTestGateway(PredictorFunc(func(context.Context, []float64) (float64, error) { return 1, nil }))

	assert.True(t, g.KnowsRegion("Airoli"))
	assert.False(t, g.KnowsRegion("airoli"))
}
