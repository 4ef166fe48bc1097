package estimator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLinearModel(t *testing.T) {
	path := writeArtifact(t, `{"intercept": 10, "coefficients": [2.5, 30], "regions": ["Airoli", "Thane"]}`)

	m, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Airoli", "Thane"}, m.Regions)

	price, err := m.Predict(context.Background(), []float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 72.5, price, 1e-9)
}

func TestLoadLinearModel_Errors(t *testing.T) {
	_, err := LoadLinearModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadLinearModel(writeArtifact(t, `not json`))
	assert.Error(t, err)

	_, err = LoadLinearModel(writeArtifact(t, `{"intercept": 1, "coefficients": [1, 2, 3]}`))
	assert.ErrorContains(t, err, "3 coefficients")
}

func TestLinearModel_FeatureCountMismatch(t *testing.T) {
	m := &LinearModel{Coefficients: []float64{1, 1}}
	_, err := m.Predict(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestRemotePredictor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Features, 1)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{req.Features[0][0] + req.Features[0][1]}})
	}))
	defer server.Close()

	p := NewRemotePredictor(server.URL+"/", 5*time.Second, logrus.New())
	price, err := p.Predict(context.Background(), []float64{4, 2})

	require.NoError(t, err)
	assert.Equal(t, 6.0, price)
}

func TestRemotePredictor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{"))
			},
		},
		{
			name: "no predictions",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"predictions": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewRemotePredictor(server.URL, time.Second, nil).Predict(context.Background(), []float64{1, 1})
			assert.Error(t, err)
		})
	}
}
