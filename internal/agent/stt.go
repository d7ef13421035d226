package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const DefaultSTTURL = "http://localhost:8000/transcribe"

// STTClient turns a WAV recording into text. The language is a speech
// code such as "fr-FR".
type STTClient interface {
	Transcribe(ctx context.Context, wavData []byte, language string) (string, error)
}

type whisperClient struct {
	url        string
	httpClient *http.Client
}

func NewWhisperClient(url string, timeout time.Duration) STTClient {
	if url == "" {
		url = DefaultSTTURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &whisperClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sttResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (c *whisperClient) Transcribe(ctx context.Context, wavData []byte, language string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wavData); err != nil {
		return "", err
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("STT request failed: %w", err)
	}
	defer resp.Body.Close()

	// The service answers 422 when it heard nothing it could decode.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return "", ErrUnintelligible
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("STT API error: %s - %s", resp.Status, truncate(string(respBody), 200))
	}

	var result sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode STT response: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}
