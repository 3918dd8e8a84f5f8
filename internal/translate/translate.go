package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/thainews/internal/logger"
)

// ErrorPrefix starts every sentinel stored in place of a translation.
const ErrorPrefix = "[TRANSLATION ERROR]"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Translator turns source text into translated text. Implementations never
// fail: problems come back as a Sentinel string.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Sentinel formats a failure reason as a storable translation value.
func Sentinel(reason string) string {
	return ErrorPrefix + " " + reason
}

// IsSentinel reports whether s describes a failed translation.
func IsSentinel(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

// Options configures the HTTP translator.
type Options struct {
	APIKey          string
	APIKeyName      string // environment variable name, used in the missing-key sentinel
	APIURL          string
	Model           string
	TargetLanguage  string
	MaxOutputTokens int
	Timeout         time.Duration
	HTTPClient      *http.Client // optional; overrides Timeout
}

// Client calls a text-generation endpoint that speaks the Responses API
// (or its legacy chat-completions shape).
type Client struct {
	apiKey          string
	apiKeyName      string
	apiURL          string
	model           string
	targetLanguage  string
	maxOutputTokens int
	httpClient      *http.Client
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	keyName := opts.APIKeyName
	if keyName == "" {
		keyName = "OPENAI_API_KEY"
	}
	language := opts.TargetLanguage
	if language == "" {
		language = "Thai"
	}

	return &Client{
		apiKey:          opts.APIKey,
		apiKeyName:      keyName,
		apiURL:          opts.APIURL,
		model:           opts.Model,
		targetLanguage:  language,
		maxOutputTokens: opts.MaxOutputTokens,
		httpClient:      httpClient,
	}
}

type responsesRequest struct {
	Model           string `json:"model"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

// Prompt builds the instruction sent with the source text.
func Prompt(language, text string) string {
	return fmt.Sprintf("Translate this news into %s:\n%s", language, text)
}

// Translate performs one request and returns the translation or a sentinel.
func (c *Client) Translate(ctx context.Context, text string) string {
	if c.apiKey == "" {
		return Sentinel("Missing " + c.apiKeyName)
	}

	payload, err := json.Marshal(responsesRequest{
		Model:           c.model,
		Input:           Prompt(c.targetLanguage, text),
		MaxOutputTokens: c.maxOutputTokens,
	})
	if err != nil {
		return Sentinel(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Sentinel(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("translation request failed", "error", err)
		return Sentinel(err.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Debug("failed to read translation response", "status", resp.StatusCode, "error", err)
		return Sentinel(err.Error())
	}

	result := ParseResponse(body)
	if IsSentinel(result) {
		logger.Debug("translation service returned no text", "status", resp.StatusCode, "result", result)
		return result
	}

	logger.Debug("translation ok", "status", resp.StatusCode, "runes", len([]rune(result)))
	return result
}

// ParseResponse extracts translated text from a raw service response. It
// tries each known response shape in order, then an explicit error object,
// and finally embeds the raw payload in a sentinel.
func ParseResponse(body []byte) string {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		return rawResponseSentinel(body)
	}

	for _, ex := range extractors {
		if text, ok := ex.extract(decoded); ok {
			if clean := SanitizeAIText(text); clean != "" {
				return clean
			}
			return strings.TrimSpace(text)
		}
	}

	if msg, ok := serviceError(decoded); ok {
		return Sentinel(msg)
	}

	return rawResponseSentinel(body)
}

func rawResponseSentinel(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		raw = "<empty body>"
	}
	return Sentinel("raw_response: " + raw)
}

// extractor pulls text out of one known response shape.
type extractor struct {
	name    string
	extract func(map[string]any) (string, bool)
}

var extractors = []extractor{
	{name: "output_text", extract: func(res map[string]any) (string, bool) {
		return textAt(res, "output_text")
	}},
	{name: "output.content", extract: func(res map[string]any) (string, bool) {
		return textAt(res, "output", 0, "content", 0, "text")
	}},
	{name: "choices.message", extract: func(res map[string]any) (string, bool) {
		return textAt(res, "choices", 0, "message", "content")
	}},
}

func serviceError(res map[string]any) (string, bool) {
	if msg, ok := textAt(res, "error", "message"); ok {
		return msg, true
	}
	if msg, ok := textAt(res, "error"); ok {
		return msg, true
	}
	if errObj, ok := res["error"]; ok && errObj != nil {
		raw, err := json.Marshal(errObj)
		if err == nil && string(raw) != "{}" {
			return string(raw), true
		}
	}
	return "", false
}

// textAt walks a decoded JSON value by object keys (string) and array
// indexes (int) and returns a non-blank string found at the end.
func textAt(v any, path ...any) (string, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = obj[key]; !ok {
				return "", false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return "", false
			}
			cur = arr[key]
		default:
			return "", false
		}
	}

	s, ok := cur.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
