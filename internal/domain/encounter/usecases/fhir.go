package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

// FHIRConverter turns a report plus provider identity into a FHIR
// DiagnosticReport JSON document.
type FHIRConverter interface {
	Convert(ctx context.Context, report encounter.Report, provider ProviderInfo) (string, error)
}

// ProviderInfo identifies the organization and provider on the exported
// DiagnosticReport.
type ProviderInfo struct {
	OrganizationName string `json:"organizationName"`
	ProviderName     string `json:"providerName"`
	ProviderID       string `json:"providerID"`
}

// AIFHIRConverter produces the FHIR document through the chat-completion
// endpoint and validates the result before accepting it.
type AIFHIRConverter struct {
	client       *completionClient
	systemPrompt string
	logger       *zap.Logger
}

func NewAIFHIRConverter(endpointURL, systemPrompt string, timeout time.Duration, logger *zap.Logger) *AIFHIRConverter {
	return &AIFHIRConverter{
		client:       newCompletionClient(endpointURL, timeout, logger),
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Convert asks the endpoint for a DiagnosticReport and verifies the response
// parses as JSON with the right resourceType. Failures never touch the
// recording's status; FHIR export is local to the action that requested it.
func (c *AIFHIRConverter) Convert(ctx context.Context, report encounter.Report, provider ProviderInfo) (string, error) {
	user, err := json.Marshal(struct {
		Report       encounter.Report `json:"report"`
		ProviderInfo ProviderInfo     `json:"providerInfo"`
	}{report, provider})
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	completion, err := c.client.complete(ctx, c.systemPrompt, string(user))
	if err != nil {
		return "", err
	}

	var resource struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal([]byte(completion), &resource); err != nil {
		return "", fmt.Errorf("%w: FHIR output is not valid JSON: %v", ErrMalformedResponse, err)
	}
	if resource.ResourceType != "DiagnosticReport" {
		return "", fmt.Errorf("%w: expected DiagnosticReport, got %q", ErrMalformedResponse, resource.ResourceType)
	}

	c.logger.Info("FHIR export generated", zap.String("report_id", report.ID))
	return completion, nil
}
