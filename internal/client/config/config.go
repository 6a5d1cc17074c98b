package config

import "time"

// ValidationFailurePolicy decides what the upload pipeline does with a
// record whose server-side validation came back failed or unknown.
type ValidationFailurePolicy string

const (
	// PolicyKeep leaves the record in the queue and only logs; an operator
	// decides what to do with it.
	PolicyKeep ValidationFailurePolicy = "keep"
	// PolicyDrop removes the record and its local file permanently.
	PolicyDrop ValidationFailurePolicy = "drop"
	// PolicyRetry clears the remote id so the file is retransmitted from
	// scratch on the next queue pass.
	PolicyRetry ValidationFailurePolicy = "retry"
)

// Config holds runtime settings for the study client.
//
// StudyID, BaseURL and UserAgent identify the deployment; they are injected
// into the transport instead of being baked into per-study subclasses.
type Config struct {
	StudyID                 string
	BaseURL                 string
	UserAgent               string
	DatabasePath            string
	FilesDir                string
	UploadPollInterval      time.Duration
	ValidationFailurePolicy ValidationFailurePolicy
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StudyID = "ohsu-molemapper"
	c.BaseURL = "https://webservices-staging.sagebridge.org/v3/"
	c.UserAgent = "Mole Mapper/1"
	c.DatabasePath = "study.db"
	c.FilesDir = "files"
	c.UploadPollInterval = 30 * time.Second
	c.ValidationFailurePolicy = PolicyKeep
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
