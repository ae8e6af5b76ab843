package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// HTTPTranscriber calls the speech-to-text service: POST {base}/transcribe
// with the audio as a multipart upload, expecting a JSON {text} response.
type HTTPTranscriber struct {
	client *resty.Client
	logger *zap.Logger
}

// transcribeResponse matches the transcription service response. The service
// may also return per-word segments; only the joined text is consumed.
type transcribeResponse struct {
	Text string `json:"text"`
}

func NewHTTPTranscriber(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPTranscriber {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &HTTPTranscriber{client: client, logger: logger}
}

// Transcribe uploads the audio file and returns the transcription text.
// Non-2xx responses are hard failures with the response body surfaced.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	t.logger.Info("transcribing audio", zap.String("path", audioPath))

	var out transcribeResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(audioPath), file).
		SetResult(&out).
		Post("/transcribe")
	if err != nil {
		return "", fmt.Errorf("calling transcription service: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcription service error (HTTP %d): %s", resp.StatusCode(), resp.String())
	}

	t.logger.Info("transcription received", zap.Int("chars", len(out.Text)))
	return out.Text, nil
}
