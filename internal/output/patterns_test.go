package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore_RecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "patterns.json")
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	store, err := OpenPatternStore(path, clk)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	first := []PatternMatch{{Pattern: "Request <n> failed", Count: 3}}
	assert.Equal(t, 1, store.Record(first))
	require.NotNil(t, first[0].New)
	assert.True(t, *first[0].New)
	assert.Equal(t, 3, first[0].TotalSeen)
	require.NoError(t, store.Save())

	clk.Add(24 * time.Hour)
	reopened, err := OpenPatternStore(path, clk)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())

	second := []PatternMatch{
		{Pattern: "Request <n> failed", Count: 2},
		{Pattern: "Login from <ip> rejected", Count: 2},
	}
	assert.Equal(t, 1, reopened.Record(second))
	assert.False(t, *second[0].New)
	assert.Equal(t, 5, second[0].TotalSeen)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), *second[0].FirstSeen)
	assert.True(t, *second[1].New)
}

func TestPatternStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenPatternStore(path, nil)
	assert.Error(t, err)
}
