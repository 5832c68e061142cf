package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	out string
	err error
}

func (s *stubTranslator) Translate(_ context.Context, _, _, _ string) (string, error) {
	return s.out, s.err
}

func TestProviderIdentity(t *testing.T) {
	p := NewProvider(nil, nil, zerolog.Nop())
	out, fallback := p.Translate(context.Background(), "hello", "en", "en")
	assert.Equal(t, "hello", out)
	assert.False(t, fallback)
}

func TestProviderPrefersOffline(t *testing.T) {
	offline := &stubTranslator{out: "hallo"}
	online := &stubTranslator{out: "WRONG"}
	p := NewProvider(offline, online, zerolog.Nop())

	out, fallback := p.Translate(context.Background(), "hello", "en", "de")
	assert.Equal(t, "hallo", out)
	assert.False(t, fallback)
}

func TestProviderFallsBackToOnline(t *testing.T) {
	offline := &stubTranslator{err: errors.New("daemon down")}
	online := &stubTranslator{out: "hallo"}
	p := NewProvider(offline, online, zerolog.Nop())

	out, fallback := p.Translate(context.Background(), "hello", "en", "de")
	assert.Equal(t, "hallo", out)
	assert.False(t, fallback)
}

func TestProviderPassthroughWhenAllFail(t *testing.T) {
	offline := &stubTranslator{err: errors.New("daemon down")}
	online := &stubTranslator{err: errors.New("blocked")}
	p := NewProvider(offline, online, zerolog.Nop())

	out, fallback := p.Translate(context.Background(), "hello", "en", "de")
	assert.Equal(t, "hello", out)
	assert.True(t, fallback)
}

func TestProviderToleratesTypedNilOffline(t *testing.T) {
	var offline *OfflineClient
	online := &stubTranslator{out: "hallo"}
	p := NewProvider(offline, online, zerolog.Nop())

	out, fallback := p.Translate(context.Background(), "hello", "en", "de")
	assert.Equal(t, "hallo", out)
	assert.False(t, fallback)
}

func TestOnlineClientParsesSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("sl"))
		assert.Equal(t, "de", r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte(`[[["Hallo ","Hello ",null,null,10],["Welt","world",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	c := NewOnlineClient(server.URL, 5*time.Second)
	out, err := c.Translate(context.Background(), "Hello world", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", out)
}

func TestOnlineClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewOnlineClient(server.URL, 5*time.Second)
	_, err := c.Translate(context.Background(), "hello", "en", "de")
	require.Error(t, err)
}

