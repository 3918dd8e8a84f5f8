package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRecordUsesUTC(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, bangkok)

	r := NewRecord("BBC", "Title", "http://a", "แปล", at)
	require.Equal(t, "2025-06-01T02:30:00Z", r.Timestamp)
	require.Equal(t, "http://a", r.Link)
}

func TestTranslationInput(t *testing.T) {
	require.Equal(t, "Title\nhttp://a", TranslationInput("Title", "http://a"))
}
