package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TranslationClient translates between two language codes. A source of
// "auto" asks the backend to detect the source language itself.
type TranslationClient interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type libreTranslateClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLibreTranslateClient speaks the LibreTranslate /translate API.
func NewLibreTranslateClient(baseURL, apiKey string, timeout time.Duration) TranslationClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &libreTranslateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (c *libreTranslateClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	jsonBody, err := json.Marshal(translateRequest{
		Q:      text,
		Source: backendCode(source),
		Target: backendCode(target),
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate API error: %s - %s", resp.Status, truncate(string(respBody), 200))
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode translate response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("translate API error: %s", result.Error)
	}
	return result.TranslatedText, nil
}

// backendCode maps catalog codes onto LibreTranslate codes ("zh-CN" -> "zh").
func backendCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "auto" {
		return code
	}
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		code = code[:idx]
	}
	return code
}
