package openai

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
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/poiesic/hearsay/ai"
	"github.com/sirupsen/logrus"
)

// Transcriber implements ai.Transcriber against an OpenAI-compatible
// /audio/transcriptions endpoint (OpenAI, faster-whisper-server, LocalAI, ...).
type Transcriber struct {
	endpoint   string
	model      string
	apiKey     string
	newBackOff func() backoff.BackOff
	httpClient *http.Client
	logger     logrus.FieldLogger
}

var _ ai.Transcriber = (*Transcriber)(nil)

// TranscriberOption configures a Transcriber.
type TranscriberOption func(*Transcriber)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(client *http.Client) TranscriberOption {
	return func(t *Transcriber) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithBackOff replaces the retry schedule. Each Transcribe call gets a fresh BackOff.
func WithBackOff(newBackOff func() backoff.BackOff) TranscriberOption {
	return func(t *Transcriber) {
		if newBackOff != nil {
			t.newBackOff = newBackOff
		}
	}
}

// WithLogger sets the logger used by the transcriber.
func WithLogger(logger logrus.FieldLogger) TranscriberOption {
	return func(t *Transcriber) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// apiError is a non-2xx response from the transcription service.
type apiError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *apiError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("transcription api error: status %d type %s message %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("transcription api error: status %d body %s", e.StatusCode, e.Message)
}

// verboseTranscription is the verbose_json response body.
type verboseTranscription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// NewTranscriber creates a transcriber from config.
func NewTranscriber(config *ai.Config, opts ...TranscriberOption) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	maxElapsed := config.TranscriptionMaxElapsed
	t := &Transcriber{
		endpoint:   strings.TrimSuffix(config.TranscriptionHost, "/") + "/audio/transcriptions",
		model:      config.TranscriptionModel,
		apiKey:     config.TranscriptionAPIKey,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = maxElapsed
			return bo
		},
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithField("component", "openai-transcriber")
	return t, nil
}

// Transcribe uploads the audio file at path and returns its transcription.
// Transport failures and 5xx responses are retried with exponential backoff;
// 4xx responses fail immediately.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (ai.Transcription, error) {
	audio, err := readAudio(path)
	if err != nil {
		return ai.Transcription{}, err
	}

	body, contentType, err := t.buildForm(filepath.Base(path), audio)
	if err != nil {
		return ai.Transcription{}, err
	}

	var (
		result  verboseTranscription
		attempt int
	)
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create transcription request: %w", err))
		}
		req.Header.Set("Content-Type", contentType)
		if t.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+t.apiKey)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			t.logger.WithError(err).WithField("attempt", attempt).Warn("transcription request failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := decodeAPIError(resp)
			if resp.StatusCode >= http.StatusInternalServerError {
				t.logger.WithError(apiErr).WithField("attempt", attempt).Warn("transcription server error")
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode transcription response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(t.newBackOff(), ctx)); err != nil {
		return ai.Transcription{}, fmt.Errorf("transcribe %s: %w", filepath.Base(path), err)
	}

	t.logger.WithFields(logrus.Fields{
		"file":     filepath.Base(path),
		"language": result.Language,
		"duration": result.Duration,
		"attempts": attempt,
	}).Debug("transcribed audio")

	return ai.Transcription{
		Text:     strings.TrimSpace(result.Text),
		Language: result.Language,
	}, nil
}

func (t *Transcriber) buildForm(filename string, audio []byte) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

// readAudio loads path, reporting ai.ErrAudioNotFound when it is missing or
// not a regular file.
func readAudio(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ai.ErrAudioNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ai.ErrAudioNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ai.ErrAudioNotFound, path)
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ai.ErrAudioNotFound, path, err)
	}
	return audio, nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return &apiError{StatusCode: resp.StatusCode, Type: payload.Error.Type, Message: payload.Error.Message}
	}
	return &apiError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
