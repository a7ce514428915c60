package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/models"
)

// Verdict is the oracle's classification of one user's digest.
type Verdict struct {
	Suspicious bool                  `json:"suspicious"`
	Level      models.SuspicionLevel `json:"suspicionLevel"`
	Reason     string                `json:"reason"`
}

// fallbackReason is used when a suspicious response carries no parsable
// reason clause.
const fallbackReason = "Suspicious pattern detected"

var reasonPattern = regexp.MustCompile(`(?i)reason:?\s*([^.]+)`)

// OracleService calls a local Ollama model to classify activity digests.
// The model replies in free text; ParseOracleResponse applies the
// substring contract that turns that text into a Verdict.
type OracleService struct {
	baseURL  string
	llmModel string
	client   *http.Client
	timeout  time.Duration
}

type OllamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type OllamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

func NewOracleService(ollamaURL, llmModel string) *OracleService {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if llmModel == "" {
		llmModel = "llama2:13b"
	}

	// Get timeout from environment or use default
	timeoutStr := os.Getenv("OLLAMA_TIMEOUT_SECONDS")
	timeout := 120 * time.Second
	if timeoutStr != "" {
		if t, err := time.ParseDuration(timeoutStr + "s"); err == nil {
			timeout = t
		}
	}

	return &OracleService{
		baseURL:  ollamaURL,
		llmModel: llmModel,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
	}
}

// CheckHealth verifies the local model endpoint is reachable
func (o *OracleService) CheckHealth() error {
	url := fmt.Sprintf("%s/api/tags", o.baseURL)
	resp, err := o.client.Get(url)
	if err != nil {
		return fmt.Errorf("oracle service not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle service returned status %d", resp.StatusCode)
	}

	return nil
}

// AnalyzeDigest submits one user's digest and returns the parsed verdict.
// Any transport or decode failure comes back as OracleUnavailableError so
// the analyzer can skip the user and keep the run going.
func (o *OracleService) AnalyzeDigest(ctx context.Context, digest *ActivityDigest) (*Verdict, error) {
	prompt := o.buildPrompt(digest)

	response, err := o.generate(ctx, prompt)
	if err != nil {
		return nil, &OracleUnavailableError{Err: err}
	}

	return ParseOracleResponse(response), nil
}

func (o *OracleService) buildPrompt(digest *ActivityDigest) string {
	summaryJSON, _ := json.MarshalIndent(digest, "", "  ")

	return fmt.Sprintf(`Analyze the following user activity pattern for suspicious behavior. Consider:
- Login attempts and failures
- Content creation patterns
- Error frequencies
- Time patterns
- IP address variations
Activity Summary: %s

Is this activity pattern suspicious? If yes, what is the suspicion level (low/medium/high) and reason?`, string(summaryJSON))
}

func (o *OracleService) generate(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	request := OllamaGenerateRequest{
		Model:  o.llmModel,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": 0.3,
		},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/generate", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	elapsed := time.Since(startTime)

	if err != nil {
		logger.WithOracle("suspicion_analysis").Errorf("Oracle request failed after %v: %v", elapsed, err)
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	logger.WithOracle("suspicion_analysis").Debugf("Oracle request completed in %v with status %d", elapsed, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		respBodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama API returned status %d, body: %s", resp.StatusCode, string(respBodyBytes))
	}

	var ollamaResp OllamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode Ollama response: %w", err)
	}

	return ollamaResp.Response, nil
}

// ParseOracleResponse applies the free-text contract: the response is
// suspicious when it contains "suspicious" (case-insensitive); the level
// is high over medium over low by substring presence; the reason is the
// text following "reason:" up to the next period, with a fixed fallback.
func ParseOracleResponse(response string) *Verdict {
	lower := strings.ToLower(response)
	suspicious := strings.Contains(lower, "suspicious")

	verdict := &Verdict{
		Suspicious: suspicious,
		Level:      models.SuspicionNone,
	}

	if !suspicious {
		return verdict
	}

	switch {
	case strings.Contains(lower, "high"):
		verdict.Level = models.SuspicionHigh
	case strings.Contains(lower, "medium"):
		verdict.Level = models.SuspicionMedium
	default:
		verdict.Level = models.SuspicionLow
	}

	if m := reasonPattern.FindStringSubmatch(response); m != nil {
		verdict.Reason = strings.TrimSpace(m[1])
	} else {
		verdict.Reason = fallbackReason
	}

	return verdict
}
