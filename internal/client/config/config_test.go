package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.NotEmpty(t, cfg.StudyID)
	assert.NotEmpty(t, cfg.BaseURL)
	assert.NotEmpty(t, cfg.DatabasePath)
	assert.NotEmpty(t, cfg.FilesDir)
	assert.Equal(t, PolicyKeep, cfg.ValidationFailurePolicy)
	assert.Equal(t, 30*time.Second, cfg.UploadPollInterval)
}

func TestParseJson_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	jc := JsonConfig{
		StudyID:                 "other-study",
		BaseURL:                 "https://example.org/v3/",
		ValidationFailurePolicy: "retry",
	}
	data, err := json.Marshal(jc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o660))

	oldArgs := os.Args
	os.Args = []string{"test", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "other-study", cfg.StudyID)
	assert.Equal(t, "https://example.org/v3/", cfg.BaseURL)
	assert.Equal(t, PolicyRetry, cfg.ValidationFailurePolicy)
	// untouched fields keep their defaults
	assert.Equal(t, "study.db", cfg.DatabasePath)
}

func TestParseJson_DurationString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"upload_poll_interval":"5s"}`), 0o660))

	oldArgs := os.Args
	os.Args = []string{"test", "-config", path}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, 5*time.Second, cfg.UploadPollInterval)
}

func TestParseJson_NoFileGiven(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test"}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "ohsu-molemapper", cfg.StudyID)
}
