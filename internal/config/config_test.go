package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.7, c.MissingThreshold)
	assert.Equal(t, 10, c.SampleRows)
	assert.Equal(t, 10, c.TopValues)
	assert.Equal(t, 1.5, c.OutlierIQRMultiplier)
	assert.Equal(t, uint64(42), c.RandomSeed)
	assert.Equal(t, "markdown", c.OutputFormat)
	assert.Equal(t, "product_level_evaluation", c.ReportType)
	assert.Equal(t, 30, c.HistogramBins)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabprofile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missing_threshold: 0.5\nsample_rows: 5\nlog_level: debug\n"), 0o644))
	t.Setenv("TABPROFILE_SAMPLE_ROWS", "3")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.MissingThreshold)
	assert.Equal(t, 3, c.SampleRows)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 10, c.TopValues)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TABPROFILE_TOP_VALUES=7\nTABPROFILE_SAMPLE_ROWS=4\n"), 0o644))
	// the real environment wins over .env
	t.Setenv("TABPROFILE_SAMPLE_ROWS", "2")
	t.Cleanup(func() { _ = os.Unsetenv("TABPROFILE_TOP_VALUES") })
	t.Chdir(dir)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.TopValues)
	assert.Equal(t, 2, c.SampleRows)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missing_threshold: 1.5\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "missing_threshold")

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSetAndSave(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("top_values", "5"))
	require.NoError(t, c.Set("REPORT_TYPE", "comparative_analysis"))
	require.NoError(t, c.Set("random_seed", "7"))
	assert.ErrorContains(t, c.Set("top_values", "many"), "invalid value for top_values")
	assert.ErrorContains(t, c.Set("sample_rows", "-1"), "sample_rows")
	assert.ErrorContains(t, c.Set("api_key", "x"), "unknown key")

	require.NoError(t, c.Set("sample_rows", "10"))
	require.NoError(t, Save(c, ""))
	assert.FileExists(t, filepath.Join(home, ".tabprofile", "config.yaml"))

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, again.TopValues)
	assert.Equal(t, "comparative_analysis", again.ReportType)
	assert.Equal(t, uint64(7), again.RandomSeed)
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 12)
	assert.IsIncreasing(t, keys)
}
