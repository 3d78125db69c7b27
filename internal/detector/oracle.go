package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"roadwatch/internal/models"
)

// Fixed confidences for oracle verdicts: the oracle reports a boolean
// violation flag without localization, so the confidence is a convention,
// not a model output.
const (
	oracleViolationConfidence = 0.9
	oracleCleanConfidence     = 0.95
)

// AnalyzeResponse is the oracle's verdict for one media item. Images carry
// the annotated frame inline, videos a URL to the annotated file.
type AnalyzeResponse struct {
	Type          string `json:"type"` // "image" or "video"
	Violation     bool   `json:"violation"`
	ViolationType string `json:"violation_type"`
	Timestamp     string `json:"timestamp"`
	FileURL       string `json:"file_url,omitempty"`
	ImageBase64   string `json:"image_base64,omitempty"`
}

// HealthResponse represents the oracle's health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelType   string `json:"model_type"`
}

// OracleClient is a client for the external detection service. It is the
// primary Detector implementation; callers fall back to the Simulator when
// any call here fails.
type OracleClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOracleClient creates a new detection service client.
func NewOracleClient(baseURL string) *OracleClient {
	return &OracleClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Detect sends the raw media to the oracle and normalizes its boolean
// verdict into a detection record sequence.
func (c *OracleClient) Detect(ctx context.Context, media Media) ([]models.DetectionRecord, error) {
	resp, err := c.Analyze(ctx, media)
	if err != nil {
		return nil, err
	}
	return NormalizeVerdict(resp), nil
}

// Analyze posts the media to the oracle's /analyze endpoint and returns the
// raw response, including the annotated image or file URL.
func (c *OracleClient) Analyze(ctx context.Context, media Media) (*AnalyzeResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", media.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(media.Content); err != nil {
		return nil, fmt.Errorf("failed to write media content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detection service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// HealthCheck checks if the detection service is healthy.
func (c *OracleClient) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detection service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// NormalizeVerdict maps the oracle's unlocalized boolean verdict to the
// canonical record sequence: one ViolationDetected or one NoViolation
// record at fixed confidence. A typed verdict from the oracle is kept.
func NormalizeVerdict(resp *AnalyzeResponse) []models.DetectionRecord {
	if !resp.Violation {
		return []models.DetectionRecord{{
			Type:       models.NoViolation,
			Confidence: oracleCleanConfidence,
		}}
	}

	violationType := resp.ViolationType
	if violationType == "" || violationType == models.NoViolation {
		violationType = models.ViolationDetected
	}
	return []models.DetectionRecord{{
		Type:       violationType,
		Confidence: oracleViolationConfidence,
	}}
}
