// Package config loads runtime settings for the study client.
//
// Configuration is layered: compiled-in defaults, then an optional JSON file
// (path given via -c/-config), then command-line flags. Later sources win.
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds.
package config
