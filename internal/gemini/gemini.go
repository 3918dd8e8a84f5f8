// Package gemini is an alternate translation backend built on the Gemini SDK.
// It follows the same contract as translate.Client: failures come back as
// sentinel strings, never as errors.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/translate"
)

const apiKeyName = "GEMINI_API_KEY"

type Options struct {
	APIKey          string
	Model           string
	TargetLanguage  string
	MaxOutputTokens int
	Timeout         time.Duration
}

// generator is the part of genai.GenerativeModel the translator needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Translator struct {
	client   *genai.Client
	model    generator
	language string
	timeout  time.Duration
}

// NewTranslator builds a translator. Without an API key it returns a
// translator that reports the missing key for every item.
func NewTranslator(ctx context.Context, opts Options) (*Translator, error) {
	t := &Translator{
		language: opts.TargetLanguage,
		timeout:  opts.Timeout,
	}
	if t.language == "" {
		t.language = "Thai"
	}
	if t.timeout <= 0 {
		t.timeout = 20 * time.Second
	}
	if opts.APIKey == "" {
		return t, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxOutputTokens))
	}

	t.client = client
	t.model = model
	return t, nil
}

func (t *Translator) Close() {
	if t.client != nil {
		t.client.Close()
	}
}

func (t *Translator) Translate(ctx context.Context, text string) string {
	if t.model == nil {
		return translate.Sentinel("Missing " + apiKeyName)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.model.GenerateContent(ctx, genai.Text(translate.Prompt(t.language, text)))
	if err != nil {
		logger.Debug("gemini request failed", "error", err)
		return translate.Sentinel(err.Error())
	}

	return responseText(resp)
}

// responseText joins the text parts of the first candidate, or explains why there are none.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return translate.Sentinel("raw_response: <empty body>")
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		if out := strings.TrimSpace(b.String()); out != "" {
			if clean := translate.SanitizeAIText(out); clean != "" {
				return clean
			}
			return out
		}
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return translate.Sentinel("prompt blocked: " + fb.BlockReason.String())
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return translate.Sentinel("raw_response: " + fmt.Sprintf("%+v", *resp))
	}
	return translate.Sentinel("raw_response: " + string(raw))
}
