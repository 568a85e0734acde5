package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	m.RecordFile("unit", "changed", time.Millisecond)
	m.RecordFile("unit", "changed", time.Millisecond)
	m.RecordFile("e2e", "failed", time.Millisecond)
	m.RecordEdits("qualified", 3)
	m.RecordEdits("qualified", 0)
	m.RecordWritten(120)
	m.RecordWritten(-1)

	assert.InDelta(t, 2, testutil.ToFloat64(m.files.WithLabelValues("unit", "changed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.files.WithLabelValues("e2e", "failed")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.edits.WithLabelValues("qualified")), 0)
	assert.InDelta(t, 120, testutil.ToFloat64(m.bytesWritten), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a := NewMetrics()
	b := NewMetrics()

	a.RecordWritten(10)

	assert.InDelta(t, 0, testutil.ToFloat64(b.bytesWritten), 0)
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordFile("unit", "unchanged", time.Millisecond)

	path := filepath.Join(t.TempDir(), "requalify.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `requalify_files_total{group="unit",outcome="unchanged"} 1`)
}
