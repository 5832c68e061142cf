package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineClientInstallsMissingPair(t *testing.T) {
	var installs atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/pairs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			installs.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(offlinePairsResponse{})
	})
	mux.HandleFunc("/v1/translate", func(w http.ResponseWriter, r *http.Request) {
		var req offlineTranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en", req.Source)
		assert.Equal(t, "de", req.Target)
		_ = json.NewEncoder(w).Encode(offlineTranslateResponse{Text: "hallo"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewOfflineClient(server.URL, 5*time.Second)
	out, err := c.Translate(context.Background(), "hello", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "hallo", out)
	assert.Equal(t, int32(1), installs.Load())

	// The installed pair is cached; a second call skips installation.
	_, err = c.Translate(context.Background(), "hello again", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, int32(1), installs.Load())
}

func TestOfflineClientSkipsInstalledPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/pairs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(offlinePairsResponse{
			Pairs: []offlinePair{{Source: "en", Target: "fr"}},
		})
	})
	mux.HandleFunc("/v1/translate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(offlineTranslateResponse{Text: "bonjour"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewOfflineClient(server.URL, 5*time.Second)
	out, err := c.Translate(context.Background(), "hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out)
}

func TestNewOfflineClientEmptyEndpoint(t *testing.T) {
	assert.Nil(t, NewOfflineClient("", time.Second))
}
