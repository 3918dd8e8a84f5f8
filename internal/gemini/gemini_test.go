package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (s *stubModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if txt, ok := parts[0].(genai.Text); ok {
			s.prompt = string(txt)
		}
	}
	return s.resp, s.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestTranslateMissingKey(t *testing.T) {
	tr, err := NewTranslator(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, "[TRANSLATION ERROR] Missing GEMINI_API_KEY", tr.Translate(context.Background(), "X"))
}

func TestTranslateJoinsTextParts(t *testing.T) {
	model := &stubModel{resp: textResponse(genai.Text("ข่าว"), genai.Text("โลก"))}
	tr := &Translator{model: model, language: "Thai", timeout: time.Second}

	require.Equal(t, "ข่าวโลก", tr.Translate(context.Background(), "X\nhttp://a"))
	require.Equal(t, "Translate this news into Thai:\nX\nhttp://a", model.prompt)
}

func TestTranslateRequestError(t *testing.T) {
	tr := &Translator{model: &stubModel{err: errors.New("quota exceeded")}, timeout: time.Second}
	require.Equal(t, "[TRANSLATION ERROR] quota exceeded", tr.Translate(context.Background(), "X"))
}

func TestResponseTextBlocked(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	}
	got := responseText(resp)
	require.True(t, strings.HasPrefix(got, "[TRANSLATION ERROR] prompt blocked:"))
}

func TestResponseTextEmpty(t *testing.T) {
	got := responseText(&genai.GenerateContentResponse{})
	require.True(t, strings.HasPrefix(got, "[TRANSLATION ERROR] raw_response:"))
	require.Equal(t, "[TRANSLATION ERROR] raw_response: <empty body>", responseText(nil))
}
