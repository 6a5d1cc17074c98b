package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/studybridge/internal/flagx"
	"github.com/dmitrijs2005/studybridge/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	StudyID                 string         `json:"study_id"`
	BaseURL                 string         `json:"base_url"`
	UserAgent               string         `json:"user_agent"`
	DatabasePath            string         `json:"database_path"`
	FilesDir                string         `json:"files_dir"`
	UploadPollInterval      timex.Duration `json:"upload_poll_interval"`
	ValidationFailurePolicy string         `json:"validation_failure_policy"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only non-zero JSON values override the current Config. Intended usage is:
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.StudyID != "" {
		cfg.StudyID = jc.StudyID
	}
	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.UserAgent != "" {
		cfg.UserAgent = jc.UserAgent
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.FilesDir != "" {
		cfg.FilesDir = jc.FilesDir
	}
	if jc.UploadPollInterval.Duration != 0 {
		cfg.UploadPollInterval = jc.UploadPollInterval.Duration
	}
	if jc.ValidationFailurePolicy != "" {
		cfg.ValidationFailurePolicy = ValidationFailurePolicy(jc.ValidationFailurePolicy)
	}
}
