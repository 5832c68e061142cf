package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// RuntimeClient talks msgpack-over-HTTP to the inference runtime process.
type RuntimeClient struct {
	baseURL    string
	httpClient *http.Client
	loadClient *http.Client
}

// NewRuntimeClient constructs a runtime client with a pooled transport.
// timeout bounds inference calls; model loads are bounded by ctx only.
func NewRuntimeClient(baseURL string, timeout time.Duration) *RuntimeClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &RuntimeClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		loadClient: &http.Client{Transport: transport},
	}
}

// Health checks whether the runtime process is reachable.
func (c *RuntimeClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create runtime request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runtime unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Device reports the runtime's inference device and current GPU memory usage.
func (c *RuntimeClient) Device(ctx context.Context) (*DeviceInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/device", nil)
	if err != nil {
		return nil, fmt.Errorf("create runtime request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	var info DeviceInfo
	if err := c.decode(resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LoadModel asks the runtime to load a model into the named slot. Loading
// multi-gigabyte weights takes minutes, so the request is bounded by ctx
// rather than the client timeout.
func (c *RuntimeClient) LoadModel(ctx context.Context, req *LoadModelRequest) error {
	httpReq, err := c.post(ctx, "/v1/models/load", req)
	if err != nil {
		return err
	}
	resp, err := c.loadClient.Do(httpReq)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return runtimeError(resp.StatusCode, body)
	}
	return nil
}

// CustomVoice synthesizes speech with a preset speaker timbre.
func (c *RuntimeClient) CustomVoice(ctx context.Context, req *CustomVoiceRequest) (*TTSResult, error) {
	return c.ttsCall(ctx, "/v1/tts/custom-voice", req)
}

// CloneVoice synthesizes speech in the voice of the reference sample.
func (c *RuntimeClient) CloneVoice(ctx context.Context, req *CloneVoiceRequest) (*TTSResult, error) {
	return c.ttsCall(ctx, "/v1/tts/clone", req)
}

// XTTS synthesizes speech with the cross-lingual model.
func (c *RuntimeClient) XTTS(ctx context.Context, req *XTTSRequest) (*TTSResult, error) {
	return c.ttsCall(ctx, "/v1/tts/xtts", req)
}

// Transcribe runs speech recognition over the supplied audio.
func (c *RuntimeClient) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error) {
	httpReq, err := c.post(ctx, "/v1/asr/transcribe", req)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	var result TranscribeResult
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RuntimeClient) ttsCall(ctx context.Context, path string, req any) (*TTSResult, error) {
	httpReq, err := c.post(ctx, path, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	var result TTSResult
	if err := c.decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RuntimeClient) post(ctx context.Context, path string, req any) (*http.Request, error) {
	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal runtime request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create runtime request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/msgpack")
	return httpReq, nil
}

func (c *RuntimeClient) decode(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read runtime response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return runtimeError(resp.StatusCode, body)
	}
	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshal runtime response: %w", err)
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrRuntimeTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
}
