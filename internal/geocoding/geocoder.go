package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/geometry"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

const cacheFileName = "reverse_geocode_cache.json"

// addressFields are the Nominatim address parts tried as region names, from
// the most to the least specific.
var addressFields = []string{"suburb", "neighbourhood", "quarter", "city_district", "town", "village", "city"}

// ReverseGeocoder resolves coordinates to a known region name using the
// Nominatim reverse API. It implements geometry.Locator.
type ReverseGeocoder struct {
	logger    *logrus.Logger
	baseURL   string
	cacheDir  string
	cache     map[string][]string
	cacheLock sync.RWMutex
	saveLock  sync.Mutex
	client    *http.Client
	limiter   *rate.Limiter
	resolve   func(name string) (string, bool)
}

// NewReverseGeocoder creates a geocoder. resolve maps a candidate place name
// to the corpus region it denotes. An empty cacheDir disables the disk cache.
func NewReverseGeocoder(baseURL, cacheDir string, timeout time.Duration, resolve func(string) (string, bool), logger *logrus.Logger) *ReverseGeocoder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logger.WithError(err).Warn("Could not create geocode cache directory")
			cacheDir = ""
		}
	}

	g := &ReverseGeocoder{
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		cache:    make(map[string][]string),
		client:   &http.Client{Timeout: timeout},
		// Nominatim usage policy: at most one request per second
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		resolve: resolve,
	}

	g.loadCache()

	return g
}

func (g *ReverseGeocoder) loadCache() {
	if g.cacheDir == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(g.cacheDir, cacheFileName))
	if err != nil {
		g.logger.Debugf("Could not load geocode cache: %v", err)
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached coordinates", len(g.cache))
}

func (g *ReverseGeocoder) saveCache() {
	if g.cacheDir == "" {
		return
	}
	g.saveLock.Lock()
	defer g.saveLock.Unlock()

	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.Errorf("Failed to marshal geocode cache: %v", err)
		return
	}

	if err := os.WriteFile(filepath.Join(g.cacheDir, cacheFileName), data, 0644); err != nil {
		g.logger.Errorf("Failed to save geocode cache: %v", err)
	}
}

type reverseResponse struct {
	Address map[string]string `json:"address"`
	Error   string            `json:"error"`
}

// Locate returns the corpus region at the given coordinates.
func (g *ReverseGeocoder) Locate(latitude, longitude float64) (string, error) {
	if err := geometry.ValidateCoordinates(latitude, longitude); err != nil {
		return "", err
	}

	candidates, err := g.lookup(latitude, longitude)
	if err != nil {
		return "", err
	}

	for _, name := range candidates {
		if region, ok := g.resolve(name); ok {
			return region, nil
		}
	}

	g.logger.WithFields(logrus.Fields{
		"latitude":   latitude,
		"longitude":  longitude,
		"candidates": candidates,
	}).Warn("No known region at coordinates")
	return "", fmt.Errorf("%w: no listings near %.4f,%.4f", models.ErrUnknownRegion, latitude, longitude)
}

// lookup returns the place names around a point, using the cache when it can.
// Coordinates are keyed at four decimals, roughly 10 m.
func (g *ReverseGeocoder) lookup(latitude, longitude float64) ([]string, error) {
	cacheKey := fmt.Sprintf("%.4f|%.4f", latitude, longitude)

	g.cacheLock.RLock()
	if names, ok := g.cache[cacheKey]; ok {
		g.cacheLock.RUnlock()
		g.logger.WithField("key", cacheKey).Debug("Found place names in cache")
		return names, nil
	}
	g.cacheLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), g.client.Timeout)
	defer cancel()
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoding rate limit: %w", err)
	}

	params := url.Values{
		"lat":            []string{strconv.FormatFloat(latitude, 'f', 6, 64)},
		"lon":            []string{strconv.FormatFloat(longitude, 'f', 6, 64)},
		"format":         []string{"json"},
		"addressdetails": []string{"1"},
		"zoom":           []string{"16"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "proptech-ai/1.0")
	req.Header.Set("Accept-Language", "en")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("key", cacheKey).Error("Geocoding request failed")
		return nil, fmt.Errorf("geocoding request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	var result reverseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		g.logger.WithError(err).WithField("key", cacheKey).Error("Failed to parse response")
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}

	var names []string
	if result.Error == "" {
		for _, field := range addressFields {
			if name := strings.TrimSpace(result.Address[field]); name != "" {
				names = append(names, name)
			}
		}
	}

	g.logger.WithFields(logrus.Fields{
		"key":    cacheKey,
		"names":  names,
		"source": "nominatim",
	}).Debug("Reverse geocoded coordinates")

	g.cacheLock.Lock()
	g.cache[cacheKey] = names
	g.cacheLock.Unlock()

	g.saveCache()

	return names, nil
}
