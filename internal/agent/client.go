package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:8000"
	// MinAudioBytes is the smallest TTS body accepted as real audio. Smaller
	// bodies are error payloads served with a 2xx status.
	MinAudioBytes = 500

	defaultHTTPTimeout = 3 * time.Minute
	errorBodyLimit     = 512
)

// ErrAudioPayloadTooSmall is returned when /tts answers with a body too small
// to be playable audio.
var ErrAudioPayloadTooSmall = errors.New("tts payload too small to be audio")

// ErrEmptyResponse is returned when a 2xx reply carries no response text.
var ErrEmptyResponse = errors.New("response field missing or empty")

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Endpoint string
	Status   string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server error %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: server error %s (%s)", e.Endpoint, e.Status, e.Body)
}

// Config describes how to reach the backend.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a stateless wrapper around the /chat, /analyze_jd and /tts
// endpoints. Every call is a single round trip; failures are returned as-is.
type Client struct {
	base   string
	client *http.Client
	log    *zap.Logger
}

// New builds a client for the given configuration.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   base,
		client: pickHTTPClient(cfg.HTTPClient),
		log:    logger.Named("agent"),
	}
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.base
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type textResponse struct {
	Response string `json:"response"`
}

type ttsRequest struct {
	Text string `json:"text"`
}

// Converse sends one message to /chat and returns the agent's markdown reply.
func (c *Client) Converse(ctx context.Context, message, sessionID string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	buf, err := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return "", err
	}
	body, err := c.post(ctx, "/chat", "application/json", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	return decodeTextResponse("/chat", body)
}

// AnalyzeDocument uploads a PDF job description to /analyze_jd.
func (c *Client) AnalyzeDocument(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	body, err := c.post(ctx, "/analyze_jd", writer.FormDataContentType(), &form)
	if err != nil {
		return "", err
	}
	return decodeTextResponse("/analyze_jd", body)
}

// SynthesizeSpeech turns text into an audio clip via /tts.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	spoken := SpeakableText(text)
	if spoken == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}
	buf, err := json.Marshal(ttsRequest{Text: spoken})
	if err != nil {
		return nil, err
	}
	clip, err := c.post(ctx, "/tts", "application/json", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	if len(clip) < MinAudioBytes {
		c.log.Warn("rejecting undersized tts payload", zap.Int("bytes", len(clip)))
		return nil, fmt.Errorf("%w: %d bytes", ErrAudioPayloadTooSmall, len(clip))
	}
	c.log.Debug("audio ready", zap.Int("bytes", len(clip)))
	return clip, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("endpoint", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("request complete",
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(started)),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > errorBodyLimit {
			snippet = snippet[:errorBodyLimit]
		}
		return nil, &StatusError{
			Endpoint: path,
			Status:   resp.Status,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(snippet)),
		}
	}
	return body, nil
}

func decodeTextResponse(endpoint string, body []byte) (string, error) {
	var parsed textResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return "", fmt.Errorf("%s: %w", endpoint, ErrEmptyResponse)
	}
	return parsed.Response, nil
}

var markdownNoise = regexp.MustCompile(`[*#_\[\]]`)

// SpeakableText strips basic markdown so it is not read aloud.
func SpeakableText(text string) string {
	return strings.TrimSpace(markdownNoise.ReplaceAllString(text, ""))
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// TTS generation can take tens of seconds; the caller's context handles cancellation.
	return &http.Client{Timeout: defaultHTTPTimeout}
}
