package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/studybridge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the study service (default from Config)
//	-s string   study identifier
//	-d string   path to the local SQLite database
//	-f string   directory holding queued upload files
//	-p string   validation-failure policy: keep, drop or retry
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-f", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the study service")
	fs.StringVar(&cfg.StudyID, "s", cfg.StudyID, "study identifier")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.FilesDir, "f", cfg.FilesDir, "directory for queued upload files")
	policy := fs.String("p", string(cfg.ValidationFailurePolicy), "validation-failure policy (keep, drop, retry)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ValidationFailurePolicy = ValidationFailurePolicy(*policy)
}
