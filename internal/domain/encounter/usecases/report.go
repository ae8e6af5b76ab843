package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

// ErrMalformedResponse marks an AI response that was received but could not
// be parsed into the expected structure.
var ErrMalformedResponse = errors.New("malformed AI response")

// ReportSource derives a structured clinical report from transcription text.
// Output is non-deterministic across calls; only schema validity is promised.
type ReportSource interface {
	Derive(ctx context.Context, recordingID, transcription string) (encounter.Report, error)
}

// aiMessage is one role-tagged message in a chat-completion request.
type aiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages []aiMessage `json:"messages"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// completionClient talks to the LLM-style chat completion endpoint shared by
// report derivation and FHIR export.
type completionClient struct {
	client *resty.Client
	logger *zap.Logger
}

func newCompletionClient(endpointURL string, timeout time.Duration, logger *zap.Logger) *completionClient {
	client := resty.New().
		SetBaseURL(endpointURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &completionClient{client: client, logger: logger}
}

// complete sends the message list and returns the completion text with any
// markdown code fences stripped.
func (c *completionClient) complete(ctx context.Context, system, user string) (string, error) {
	req := completionRequest{
		Messages: []aiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var out completionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("")
	if err != nil {
		return "", fmt.Errorf("calling AI endpoint: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("AI endpoint error (HTTP %d): %s", resp.StatusCode(), resp.String())
	}

	return stripCodeFences(out.Completion), nil
}

// stripCodeFences removes the ```json ... ``` markers the model sometimes
// wraps its output in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// reportPayload is the JSON document the AI endpoint returns for a report
// derivation request. Demographics are nullable; partial data is valid.
type reportPayload struct {
	PatientInfo struct {
		Name   *string `json:"name"`
		Age    *int    `json:"age"`
		Gender *string `json:"gender"`
	} `json:"patientInfo"`
	Vitals     []encounter.Vital         `json:"vitals"`
	Symptoms   []string                  `json:"symptoms"`
	Treatments []string                  `json:"treatments"`
	Timeline   []encounter.TimelineEvent `json:"timeline"`
	SOAPNote   *encounter.SOAPNote       `json:"soapNote"`
}

// AIReportSource derives reports remotely through the chat-completion endpoint.
type AIReportSource struct {
	client       *completionClient
	systemPrompt string
	logger       *zap.Logger
}

func NewAIReportSource(endpointURL, systemPrompt string, timeout time.Duration, logger *zap.Logger) *AIReportSource {
	return &AIReportSource{
		client:       newCompletionClient(endpointURL, timeout, logger),
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Derive sends the transcription to the AI endpoint and parses the returned
// JSON into a report. A response that does not match the schema fails
// explicitly; it is never patched up into a partial report.
func (s *AIReportSource) Derive(ctx context.Context, recordingID, transcription string) (encounter.Report, error) {
	completion, err := s.client.complete(ctx, s.systemPrompt, transcription)
	if err != nil {
		return encounter.Report{}, err
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(completion), &payload); err != nil {
		s.logger.Warn("AI report response did not parse", zap.Error(err))
		return encounter.Report{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.SOAPNote == nil {
		return encounter.Report{}, fmt.Errorf("%w: missing soapNote", ErrMalformedResponse)
	}

	return buildReport(recordingID, payload), nil
}

// buildReport assembles a report from a parsed payload. The timeline is
// ordered by timestamp; vitals keep their arrival order as a time series.
func buildReport(recordingID string, payload reportPayload) encounter.Report {
	rep := encounter.Report{
		ID:          uuid.NewString(),
		RecordingID: recordingID,
		Date:        time.Now().UTC(),
		Vitals:      payload.Vitals,
		Symptoms:    payload.Symptoms,
		Treatments:  payload.Treatments,
		Timeline:    payload.Timeline,
		SOAPNote:    *payload.SOAPNote,
	}
	if payload.PatientInfo.Name != nil {
		rep.PatientInfo.Name = *payload.PatientInfo.Name
	}
	if payload.PatientInfo.Age != nil {
		rep.PatientInfo.Age = *payload.PatientInfo.Age
	}
	if payload.PatientInfo.Gender != nil {
		rep.PatientInfo.Gender = *payload.PatientInfo.Gender
	}

	sort.SliceStable(rep.Timeline, func(i, j int) bool {
		return rep.Timeline[i].Timestamp < rep.Timeline[j].Timestamp
	})
	return rep
}
