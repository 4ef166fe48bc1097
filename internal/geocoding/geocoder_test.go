package geocoding

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
)

func knownRegions(names ...string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		for _, n := range names {
			if n == name {
				return n, true
			}
		}
		return "", false
	}
}

func newNominatim(t *testing.T, body string, calls *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReverseGeocoder_Locate(t *testing.T) {
	var calls int32
	server := newNominatim(t, `{"address":{"suburb":"Sector 19","city_district":"Airoli","city":"Navi Mumbai"}}`, &calls)

	g := NewReverseGeocoder(server.URL, "", 5*time.Second, knownRegions("Airoli", "Thane West"), logrus.New())

	region, err := g.Locate(19.1551, 72.9986)
	require.NoError(t, err)
	assert.Equal(t, "Airoli", region)

	// Second lookup for the same point is served from the cache
	region, err = g.Locate(19.15512, 72.99861)
	require.NoError(t, err)
	assert.Equal(t, "Airoli", region)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReverseGeocoder_UnknownRegion(t *testing.T) {
	var calls int32
	server := newNominatim(t, `{"address":{"suburb":"Connaught Place","city":"New Delhi"}}`, &calls)

	g := NewReverseGeocoder(server.URL, "", 5*time.Second, knownRegions("Airoli"), logrus.New())

	_, err := g.Locate(28.6315, 77.2167)
	assert.ErrorIs(t, err, models.ErrUnknownRegion)
}

func TestReverseGeocoder_NominatimError(t *testing.T) {
	var calls int32
	server := newNominatim(t, `{"error":"Unable to geocode"}`, &calls)

	g := NewReverseGeocoder(server.URL, "", 5*time.Second, knownRegions("Airoli"), logrus.New())

	_, err := g.Locate(0.5, -30)
	assert.ErrorIs(t, err, models.ErrUnknownRegion)
}

func TestReverseGeocoder_InvalidCoordinates(t *testing.T) {
	g := NewReverseGeocoder("http://127.0.0.1:1", "", time.Second, knownRegions(), logrus.New())

	_, err := g.Locate(91, 72)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestReverseGeocoder_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewReverseGeocoder(server.URL, "", 5*time.Second, knownRegions("Airoli"), logrus.New())

	_, err := g.Locate(19.15, 72.99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.False(t, models.IsClientError(err))
}

func TestReverseGeocoder_DiskCache(t *testing.T) {
	var calls int32
	server := newNominatim(t, `{"address":{"suburb":"Juhu"}}`, &calls)
	cacheDir := t.TempDir()

	first := NewReverseGeocoder(server.URL, cacheDir, 5*time.Second, knownRegions("Juhu"), logrus.New())
	_, err := first.Locate(19.1, 72.83)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cacheDir, cacheFileName))
	require.NoError(t, err)

	second := NewReverseGeocoder(server.URL, cacheDir, 5*time.Second, knownRegions("Juhu"), logrus.New())
	region, err := second.Locate(19.1, 72.83)
	require.NoError(t, err)
	assert.Equal(t, "Juhu", region)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
