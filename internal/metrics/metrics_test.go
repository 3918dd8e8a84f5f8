package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestIncrementTranslation(t *testing.T) {
	m := New()
	m.IncrementTranslation(true)
	m.IncrementTranslation(true)
	m.IncrementTranslation(false)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Translations.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("failure")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordsWritten.Add(3)
	m.StoreSize.Set(42)
	m.RecordRun(time.Now().Add(-time.Second))

	path := filepath.Join(t.TempDir(), "thainews.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.True(t, strings.Contains(out, "thainews_records_written_total 3"), out)
	require.True(t, strings.Contains(out, "thainews_store_records 42"), out)
	require.Contains(t, out, "thainews_last_run_timestamp_seconds")
}
