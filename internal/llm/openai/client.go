package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syedaman12/Lab-report-interpreter/constants"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm"
)

// Failure messages for the two specified analysis failure modes.
const (
	errNoAPIKey  = "No API key provided"
	errParseJSON = "Failed to parse GPT JSON"
)

// Analyze implements llm.ReportAnalyzer over an OpenAI-compatible
// chat/completions endpoint. It performs at most one outbound call, no
// retries, no streaming, and never returns a Go error: missing credentials,
// transport failures, and unparsable replies all collapse into the failure
// variant so the caller can persist the outcome like any other.
func (c *Client) Analyze(ctx context.Context, text string) llm.AnalysisReport {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		c.logger.Warn("llm.analyze.no_api_key", "req_id", rid)
		return llm.Failed(errNoAPIKey, "")
	}

	c.logger.Info("llm.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"max_tokens", c.cfg.MaxTokens,
		"text_len", len(text),
	)

	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{"role": "user", "content": llm.BuildPrompt(text)},
		},
		"max_tokens": c.cfg.MaxTokens,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.analyze.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Failed(fmt.Sprintf("analysis service call failed: %v", err), "")
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.analyze.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Failed(errParseJSON, string(raw))
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.analyze.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Failed(errParseJSON, string(raw))
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	// Structural validation only. Field values, including status strings,
	// are trusted verbatim from the service.
	if err := llm.ValidateReportJSON([]byte(content)); err != nil {
		c.logger.Warn("llm.analyze.reply_rejected",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Failed(errParseJSON, content)
	}

	var report llm.LabReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		c.logger.Error("llm.analyze.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Failed(errParseJSON, content)
	}

	for _, r := range report.Results {
		if !constants.IsKnownStatus(r.Status) {
			c.logger.Warn("llm.analyze.unexpected_status",
				"req_id", rid, "test", r.Test, "status", r.Status)
		}
	}

	c.logger.Info("llm.analyze.ok",
		"req_id", rid,
		"results", len(report.Results),
		"overall_status", report.OverallStatus,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Success(report)
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis service http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.logger.Warn("llm.analyze.body_close_error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis service status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

