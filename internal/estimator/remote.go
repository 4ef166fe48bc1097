package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RemotePredictor calls a model server that serves the trained estimator.
//
// Request:  POST {baseURL}/predict {"features": [[region_code, bhk]]}
// Response: {"predictions": [price_in_lakhs]}
type RemotePredictor struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

type predictRequest struct {
	Features [][]float64 `json:"features"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// NewRemotePredictor creates a predictor for the model server at baseURL.
func NewRemotePredictor(baseURL string, timeout time.Duration, logger *logrus.Logger) *RemotePredictor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &RemotePredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (p *RemotePredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(predictRequest{Features: [][]float64{features}})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WithError(err).WithField("url", p.baseURL).Error("Model server request failed")
		return 0, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(msg))
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode model server response: %w", err)
	}
	if len(result.Predictions) != 1 {
		return 0, fmt.Errorf("model server returned %d predictions, want 1", len(result.Predictions))
	}

	return result.Predictions[0], nil
}
