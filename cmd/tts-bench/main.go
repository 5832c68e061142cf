// tts-bench load-tests a running gateway. It drives either the blocking
// /synthesize endpoint or the NDJSON /synthesize/stream endpoint and
// reports latency percentiles, and for streams the time to first chunk.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type target struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker"`
	Language string `json:"language"`
}

type synthesizePayload struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker,omitempty"`
	Language string `json:"language,omitempty"`
}

type streamChunk struct {
	Chunk          string `json:"chunk"`
	SequenceNumber int    `json:"sequence_number"`
	IsLast         bool   `json:"is_last"`
	Error          string `json:"error,omitempty"`
}

type benchClient struct {
	baseURL     string
	apiKey      string
	streaming   bool
	fallback    target
	targets     []target
	targetIndex uint64
	client      *http.Client
}

type runResult struct {
	duration     time.Duration
	success      bool
	statusCode   int
	err          error
	firstChunkAt time.Duration
	chunks       int
}

func newBenchClient(baseURL, apiKey string, streaming bool, fallback target, targets []target) *benchClient {
	return &benchClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		streaming: streaming,
		fallback:  fallback,
		targets:   targets,
		client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *benchClient) nextTarget() target {
	if len(c.targets) == 0 {
		return c.fallback
	}
	idx := atomic.AddUint64(&c.targetIndex, 1)
	return c.targets[(idx-1)%uint64(len(c.targets))]
}

func (c *benchClient) Do(ctx context.Context) runResult {
	start := time.Now()
	tgt := c.nextTarget()

	body, err := json.Marshal(synthesizePayload{
		Text:     tgt.Text,
		Speaker:  tgt.Speaker,
		Language: tgt.Language,
	})
	if err != nil {
		return runResult{err: fmt.Errorf("encode request: %w", err)}
	}

	path := "/synthesize"
	if c.streaming {
		path = "/synthesize/stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return runResult{err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "tts-bench/0.1")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return runResult{duration: time.Since(start), err: err}
	}
	defer resp.Body.Close()

	var firstChunkAt time.Duration
	chunks := 0

	if c.streaming {
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 1<<20), 16<<20)
		for scanner.Scan() {
			if chunks == 0 {
				firstChunkAt = time.Since(start)
			}
			var chunk streamChunk
			if decodeErr := json.Unmarshal(scanner.Bytes(), &chunk); decodeErr != nil {
				err = decodeErr
				break
			}
			if chunk.Error != "" {
				err = fmt.Errorf("stream error: %s", chunk.Error)
				break
			}
			chunks++
		}
		if err == nil {
			err = scanner.Err()
		}
	} else {
		_, err = io.Copy(io.Discard, resp.Body)
	}

	duration := time.Since(start)
	success := err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300

	return runResult{
		duration:     duration,
		success:      success,
		statusCode:   resp.StatusCode,
		err:          err,
		firstChunkAt: firstChunkAt,
		chunks:       chunks,
	}
}

type summary struct {
	durations    []time.Duration
	firstChunks  []time.Duration
	total        int
	success      int
	chunksServed int
}

func (s *summary) add(result runResult) {
	s.total++
	if result.success {
		s.success++
		s.durations = append(s.durations, result.duration)
		if result.firstChunkAt > 0 {
			s.firstChunks = append(s.firstChunks, result.firstChunkAt)
		}
	}
	s.chunksServed += result.chunks
}

func percentile(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	rank := p * float64(len(values)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(values) {
		return values[lower]
	}
	weight := rank - float64(lower)
	return time.Duration(float64(values[lower])*(1-weight) + float64(values[upper])*weight)
}

func average(values []time.Duration) time.Duration {
	if len(values) == 0 {
		return 0
	}
	var total time.Duration
	for _, v := range values {
		total += v
	}
	return total / time.Duration(len(values))
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []target
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func main() {
	baseURL := flag.String("base-url", "http://127.0.0.1:8000", "Benchmark target base URL")
	apiKey := flag.String("api-key", "", "Bearer token, when the gateway requires one")
	count := flag.Int("count", 1, "Number of requests to send")
	concurrency := flag.Int("concurrency", 1, "Number of concurrent workers")
	streaming := flag.Bool("streaming", false, "Use the NDJSON streaming endpoint")
	text := flag.String("text", "你好，世界。", "Text to synthesize")
	speaker := flag.String("speaker", "", "Preset speaker name")
	language := flag.String("language", "", "Language code")
	targetsFile := flag.String("targets", "", "Path to JSON file with request targets")
	loop := flag.Bool("loop", false, "Send requests continuously until interrupted")
	flag.Parse()

	var targets []target
	if *targetsFile != "" {
		loaded, err := loadTargets(*targetsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load targets: %v\n", err)
			os.Exit(1)
		}
		targets = loaded
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := newBenchClient(*baseURL, *apiKey, *streaming, target{
		Text:     *text,
		Speaker:  *speaker,
		Language: *language,
	}, targets)

	jobs := make(chan struct{}, *concurrency)
	results := make(chan runResult, *concurrency)
	var workers sync.WaitGroup

	for i := 0; i < *concurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- client.Do(ctx)
			}
		}()
	}

	go func() {
		if *loop {
			for {
				select {
				case <-ctx.Done():
					close(jobs)
					return
				case jobs <- struct{}{}:
				}
			}
		}

		for i := 0; i < *count; i++ {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case jobs <- struct{}{}:
			}
		}
		close(jobs)
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	var sum summary
	for res := range results {
		sum.add(res)
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "request error: %v\n", res.err)
		}
	}

	fmt.Printf("Total requests: %d\n", sum.total)
	fmt.Printf("Success: %d, Failed: %d\n", sum.success, sum.total-sum.success)

	if len(sum.durations) > 0 {
		fmt.Printf("Average duration: %s\n", average(sum.durations))
		fmt.Printf("P50: %s\n", percentile(sum.durations, 0.50))
		fmt.Printf("P75: %s\n", percentile(sum.durations, 0.75))
		fmt.Printf("P90: %s\n", percentile(sum.durations, 0.90))
		fmt.Printf("P95: %s\n", percentile(sum.durations, 0.95))
	}

	if *streaming {
		fmt.Println("Streaming metrics:")
		if len(sum.firstChunks) > 0 {
			fmt.Printf("  Avg time to first chunk: %s\n", average(sum.firstChunks))
			fmt.Printf("  P50 time to first chunk: %s\n", percentile(sum.firstChunks, 0.50))
		}
		fmt.Printf("  Chunks served: %d\n", sum.chunksServed)
	}
}
