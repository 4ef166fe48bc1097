package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Predictor is a trained regression model. Implementations must be safe for
// concurrent use.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// PredictorFunc adapts a plain function to Predictor.
type PredictorFunc func(ctx context.Context, features []float64) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// LinearModel is a regression model exported as coefficients. Regions, when
// set, is the region vocabulary the model was trained with.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Regions      []string  `json:"regions,omitempty"`
}

// LoadLinearModel reads a model artifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if len(m.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("model artifact has %d coefficients, want %d", len(m.Coefficients), FeatureCount)
	}
	return &m, nil
}

func (m *LinearModel) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(features))
	}

	y := m.Intercept
	for i, x := range features {
		y += m.Coefficients[i] * x
	}
	return y, nil
}
