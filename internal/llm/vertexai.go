package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *vertexgenai.Client
	model     *vertexgenai.GenerativeModel
	modelName string
	projectID string
	location  string
}

// NewVertexAIClient creates a Vertex AI client. Without a credentials file the
// application default credentials are used.
func NewVertexAIClient(ctx context.Context, cfg Config) (*VertexAIClient, error) {
	cfg = cfg.withDefaults()

	projectID := strings.TrimSpace(cfg.Project)
	if projectID == "" {
		return nil, fmt.Errorf("vertexai project: %w", ErrMissingCredential)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := vertexgenai.NewClient(ctx, projectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	return &VertexAIClient{
		client:    client,
		model:     model,
		modelName: cfg.Model,
		projectID: projectID,
		location:  cfg.Location,
	}, nil
}

// GenerateContent sends a prompt to the model and returns the response
func (v *VertexAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return vertexText(resp)
}

func (v *VertexAIClient) Model() string {
	return v.modelName
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}

func vertexText(resp *vertexgenai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("response candidate has no content")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(vertexgenai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return joinParts(parts)
}
