package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
)

// Transcript is the speech-to-text contract:
// (audioBytes, languageHint?) -> {text, confidence}.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte, languageHint lang.Language) (Transcript, error)
}

// Synthesis is the text-to-speech contract:
// (text, language) -> {audioUrl, duration}.
type Synthesis struct {
	AudioURL string        `json:"audioUrl"`
	Duration time.Duration `json:"duration"`
}

type TextToSpeech interface {
	Synthesize(ctx context.Context, text string, language lang.Language) (Synthesis, error)
}

// HTTPSpeechClient talks to a JSON speech service for both directions.
type HTTPSpeechClient struct {
	sttURL string
	ttsURL string
	client *http.Client
}

func NewHTTPSpeechClient(sttURL, ttsURL string, timeout time.Duration) *HTTPSpeechClient {
	return &HTTPSpeechClient{
		sttURL: sttURL,
		ttsURL: ttsURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPSpeechClient) Transcribe(ctx context.Context, audio []byte, languageHint lang.Language) (Transcript, error) {
	payload := map[string]string{
		"audio": base64.StdEncoding.EncodeToString(audio),
	}
	if !languageHint.IsZero() {
		payload["languageHint"] = languageHint.String()
	}

	var out Transcript
	if err := c.postJSON(ctx, c.sttURL, payload, &out); err != nil {
		return Transcript{}, fmt.Errorf("speech-to-text failed: %w", err)
	}
	return out, nil
}

func (c *HTTPSpeechClient) Synthesize(ctx context.Context, text string, language lang.Language) (Synthesis, error) {
	payload := map[string]string{
		"text":     text,
		"language": language.String(),
	}

	var out struct {
		AudioURL   string  `json:"audioUrl"`
		DurationMS float64 `json:"durationMs"`
	}
	if err := c.postJSON(ctx, c.ttsURL, payload, &out); err != nil {
		return Synthesis{}, fmt.Errorf("text-to-speech failed: %w", err)
	}
	return Synthesis{
		AudioURL: out.AudioURL,
		Duration: time.Duration(out.DurationMS) * time.Millisecond,
	}, nil
}

func (c *HTTPSpeechClient) postJSON(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
